package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type testEnv struct {
	db          *gorm.DB
	store       *storage.LocalStore
	images      *service.ImageService
	recipes     *service.RecipeService
	memberships *service.MembershipService
	follows     *service.FollowService
	users       *service.UserService
	shopping    *service.ShoppingService
	catalog     *service.CatalogService

	author *model.User
	other  *model.User

	breakfast *model.Tag
	lunch     *model.Tag
	dinner    *model.Tag

	flour *model.Ingredient
	eggs  *model.Ingredient
	milk  *model.Ingredient
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	store := storage.NewLocalStore(t.TempDir(), "/media")
	images := service.NewImageService(store)
	recipes := service.NewRecipeService(db, images)

	return &testEnv{
		db:          db,
		store:       store,
		images:      images,
		recipes:     recipes,
		memberships: service.NewMembershipService(db, recipes, images),
		follows:     service.NewFollowService(db, images),
		users:       service.NewUserService(db),
		shopping:    service.NewShoppingService(db),
		catalog:     service.NewCatalogService(db),

		author: testhelpers.CreateUser(t, db, "author"),
		other:  testhelpers.CreateUser(t, db, "other"),

		breakfast: testhelpers.CreateTag(t, db, "Завтрак", "#E26C2D", "breakfast"),
		lunch:     testhelpers.CreateTag(t, db, "Обед", "#49B64E", "lunch"),
		dinner:    testhelpers.CreateTag(t, db, "Ужин", "#8775D2", "dinner"),

		flour: testhelpers.CreateIngredient(t, db, "Мука", "г"),
		eggs:  testhelpers.CreateIngredient(t, db, "Яйца", "шт"),
		milk:  testhelpers.CreateIngredient(t, db, "Молоко", "мл"),
	}
}

// recipeRequest builds a valid create request for the env's catalog.
func (e *testEnv) recipeRequest(t *testing.T, name string) types.RecipeRequest {
	return types.RecipeRequest{
		Ingredients: []types.IngredientAmount{
			{ID: e.flour.ID, Amount: 200},
			{ID: e.eggs.ID, Amount: 2},
		},
		Tags:        []uuid.UUID{e.breakfast.ID},
		Image:       testhelpers.ImageDataURI(t),
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 30,
	}
}

// createRecipe stores a recipe and waits a moment so publication dates differ.
func (e *testEnv) createRecipe(t *testing.T, author *model.User, req types.RecipeRequest) *types.RecipeResponse {
	t.Helper()
	resp, err := e.recipes.CreateRecipe(context.Background(), testhelpers.Identity(author), req)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	return resp
}
