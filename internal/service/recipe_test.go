package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestCreateRecipe(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := env.recipeRequest(t, "Блины")
	req.Tags = []uuid.UUID{env.lunch.ID, env.breakfast.ID}

	resp, err := env.recipes.CreateRecipe(ctx, testhelpers.Identity(env.author), req)
	require.NoError(t, err)

	assert.Equal(t, "Блины", resp.Name)
	assert.Equal(t, env.author.ID, resp.Author.ID)
	assert.False(t, resp.Author.IsSubscribed)
	assert.False(t, resp.IsFavorited)
	assert.False(t, resp.IsInShoppingCart)
	require.NotNil(t, resp.Image)
	assert.Contains(t, *resp.Image, "/media/recipes/images/")

	require.Len(t, resp.Tags, 2)
	assert.Equal(t, "Завтрак", resp.Tags[0].Name)
	assert.Equal(t, "Обед", resp.Tags[1].Name)

	require.Len(t, resp.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredientResponse{ID: env.flour.ID, Name: "Мука", MeasurementUnit: "г", Amount: 200}, resp.Ingredients[0])
	assert.Equal(t, types.RecipeIngredientResponse{ID: env.eggs.ID, Name: "Яйца", MeasurementUnit: "шт", Amount: 2}, resp.Ingredients[1])
}

func TestCreateRecipeAmountsArePerRecipe(t *testing.T) {
	env := setupEnv(t)

	first := env.recipeRequest(t, "First")
	first.Ingredients = []types.IngredientAmount{{ID: env.flour.ID, Amount: 100}}
	second := env.recipeRequest(t, "Second")
	second.Ingredients = []types.IngredientAmount{{ID: env.flour.ID, Amount: 700}}

	a := env.createRecipe(t, env.author, first)
	b := env.createRecipe(t, env.author, second)

	got, err := env.recipes.GetRecipe(context.Background(), a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Ingredients[0].Amount)

	got, err = env.recipes.GetRecipe(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 700, got.Ingredients[0].Amount)
}

func TestCreateRecipeValidation(t *testing.T) {
	env := setupEnv(t)
	identity := testhelpers.Identity(env.author)

	tests := []struct {
		name   string
		mutate func(r *types.RecipeRequest)
		field  string
	}{
		{"no ingredients", func(r *types.RecipeRequest) { r.Ingredients = nil }, "ingredients"},
		{"duplicate ingredient", func(r *types.RecipeRequest) {
			r.Ingredients = []types.IngredientAmount{{ID: env.flour.ID, Amount: 1}, {ID: env.flour.ID, Amount: 2}}
		}, "ingredients"},
		{"amount too small", func(r *types.RecipeRequest) { r.Ingredients[0].Amount = 0 }, "ingredients"},
		{"amount too large", func(r *types.RecipeRequest) { r.Ingredients[0].Amount = model.AmountMax + 1 }, "ingredients"},
		{"no tags", func(r *types.RecipeRequest) { r.Tags = nil }, "tags"},
		{"duplicate tag", func(r *types.RecipeRequest) { r.Tags = []uuid.UUID{env.lunch.ID, env.lunch.ID} }, "tags"},
		{"cooking time too small", func(r *types.RecipeRequest) { r.CookingTime = 0 }, "cooking_time"},
		{"cooking time too large", func(r *types.RecipeRequest) { r.CookingTime = model.CookTimeMax + 1 }, "cooking_time"},
		{"empty name", func(r *types.RecipeRequest) { r.Name = "" }, "name"},
		{"empty text", func(r *types.RecipeRequest) { r.Text = "" }, "text"},
		{"missing image", func(r *types.RecipeRequest) { r.Image = "" }, "image"},
		{"broken image", func(r *types.RecipeRequest) { r.Image = "data:image/png;base64,bm90IGFuIGltYWdl" }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := env.recipeRequest(t, "Invalid")
			tt.mutate(&req)

			_, err := env.recipes.CreateRecipe(context.Background(), identity, req)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	env := setupEnv(t)
	identity := testhelpers.Identity(env.author)

	req := env.recipeRequest(t, "Unknown tag")
	req.Tags = []uuid.UUID{uuid.New()}
	_, err := env.recipes.CreateRecipe(context.Background(), identity, req)
	assert.ErrorIs(t, err, service.ErrNotFound)

	req = env.recipeRequest(t, "Unknown ingredient")
	req.Ingredients = append(req.Ingredients, types.IngredientAmount{ID: uuid.New(), Amount: 5})
	_, err = env.recipes.CreateRecipe(context.Background(), identity, req)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var count int64
	require.NoError(t, env.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "failed creates must not leave recipes behind")

	entries, err := os.ReadDir(filepath.Join(env.store.Root(), "recipes", "images"))
	if err == nil {
		assert.Empty(t, entries, "failed creates must not leave images behind")
	}
}

func TestCreateRecipeRequiresIdentity(t *testing.T) {
	env := setupEnv(t)
	_, err := env.recipes.CreateRecipe(context.Background(), nil, env.recipeRequest(t, "Anonymous"))
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestUpdateRecipeReplacesSets(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	identity := testhelpers.Identity(env.author)

	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))

	update := types.RecipeRequest{
		Ingredients: []types.IngredientAmount{{ID: env.milk.ID, Amount: 300}},
		Tags:        []uuid.UUID{env.dinner.ID},
		Name:        "Блины на молоке",
		Text:        "Whisk milk in.",
		CookingTime: 45,
	}
	resp, err := env.recipes.UpdateRecipe(ctx, identity, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, "Блины на молоке", resp.Name)
	assert.Equal(t, 45, resp.CookingTime)
	assert.Equal(t, created.Image, resp.Image, "an empty image keeps the stored one")
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, env.dinner.ID, resp.Tags[0].ID)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, env.milk.ID, resp.Ingredients[0].ID)
	assert.Equal(t, 300, resp.Ingredients[0].Amount)

	var links int64
	require.NoError(t, env.db.Model(&model.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&links).Error)
	assert.EqualValues(t, 1, links)
}

func TestUpdateRecipeFailureKeepsPreviousState(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	identity := testhelpers.Identity(env.author)

	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))

	update := env.recipeRequest(t, "Renamed")
	update.Image = ""
	update.Tags = []uuid.UUID{env.dinner.ID}
	update.Ingredients = []types.IngredientAmount{{ID: env.milk.ID, Amount: 1}, {ID: uuid.New(), Amount: 1}}

	_, err := env.recipes.UpdateRecipe(ctx, identity, created.ID, update)
	require.ErrorIs(t, err, service.ErrNotFound)

	got, err := env.recipes.GetRecipe(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Блины", got.Name)
	assert.Equal(t, created.Tags, got.Tags)
	assert.Equal(t, created.Ingredients, got.Ingredients)
}

func TestUpdateRecipeReplacesImage(t *testing.T) {
	env := setupEnv(t)
	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))

	update := env.recipeRequest(t, "Блины")
	resp, err := env.recipes.UpdateRecipe(context.Background(), testhelpers.Identity(env.author), created.ID, update)
	require.NoError(t, err)
	require.NotNil(t, resp.Image)
	assert.NotEqual(t, *created.Image, *resp.Image)

	entries, err := os.ReadDir(filepath.Join(env.store.Root(), "recipes", "images"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the previous image is removed")
}

func TestUpdateRecipeDiscardsImageCommittedConcurrently(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))

	var original string
	require.NoError(t, env.db.Model(&model.Recipe{}).Where("id = ?", created.ID).Pluck("image", &original).Error)

	concurrent := "recipes/images/concurrent.png"
	require.NoError(t, env.store.Put(ctx, concurrent, []byte("png"), "image/png"))

	// Another writer swaps the image right after the permission check reads the recipe.
	armed := true
	require.NoError(t, env.db.Callback().Query().After("gorm:query").Register("test:concurrent_image", func(db *gorm.DB) {
		if !armed || db.Statement.Table != "recipes" {
			return
		}
		armed = false
		db.Error = errors.Join(db.Error, env.db.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE recipes SET image = ? WHERE id = ?", concurrent, created.ID).Error)
	}))

	_, err := env.recipes.UpdateRecipe(ctx, testhelpers.Identity(env.author), created.ID, env.recipeRequest(t, "Блины"))
	require.NoError(t, err)
	assert.False(t, armed)

	_, err = os.Stat(filepath.Join(env.store.Root(), filepath.FromSlash(concurrent)))
	assert.True(t, os.IsNotExist(err), "the image replaced by this update is removed")
	_, err = os.Stat(filepath.Join(env.store.Root(), filepath.FromSlash(original)))
	assert.NoError(t, err, "an image this update never saw stays in place")
}

func TestUpdateRecipePermissions(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))

	update := env.recipeRequest(t, "Hijacked")
	update.Image = ""

	_, err := env.recipes.UpdateRecipe(ctx, testhelpers.Identity(env.other), created.ID, update)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = env.recipes.UpdateRecipe(ctx, nil, created.ID, update)
	assert.ErrorIs(t, err, service.ErrForbidden)

	admin := testhelpers.CreateAdmin(t, env.db, "admin")
	resp, err := env.recipes.UpdateRecipe(ctx, testhelpers.Identity(admin), created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", resp.Name)
	assert.Equal(t, env.author.ID, resp.Author.ID, "the author never changes")

	_, err = env.recipes.UpdateRecipe(ctx, testhelpers.Identity(env.author), uuid.New(), update)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteRecipe(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))

	_, err := env.memberships.AddMembership(ctx, testhelpers.Identity(env.other), created.ID, model.MembershipFavorite)
	require.NoError(t, err)

	err = env.recipes.DeleteRecipe(ctx, testhelpers.Identity(env.other), created.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, env.recipes.DeleteRecipe(ctx, testhelpers.Identity(env.author), created.ID))

	_, err = env.recipes.GetRecipe(ctx, created.ID, nil)
	assert.ErrorIs(t, err, service.ErrNotFound)

	for _, m := range []interface{}{&model.Membership{}, &model.RecipeIngredient{}, &model.RecipeTag{}} {
		var count int64
		require.NoError(t, env.db.Model(m).Where("recipe_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	entries, err := os.ReadDir(filepath.Join(env.store.Root(), "recipes", "images"))
	require.NoError(t, err)
	assert.Empty(t, entries, "the image asset is removed with the recipe")

	var ingredients int64
	require.NoError(t, env.db.Model(&model.Ingredient{}).Count(&ingredients).Error)
	assert.EqualValues(t, 3, ingredients, "catalog entries survive recipe deletion")
}

func TestListRecipesFilters(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	both := env.recipeRequest(t, "Both")
	both.Tags = []uuid.UUID{env.breakfast.ID, env.lunch.ID}
	r1 := env.createRecipe(t, env.author, both)

	lunchOnly := env.recipeRequest(t, "Lunch only")
	lunchOnly.Tags = []uuid.UUID{env.lunch.ID}
	r2 := env.createRecipe(t, env.other, lunchOnly)

	dinnerOnly := env.recipeRequest(t, "Dinner only")
	dinnerOnly.Tags = []uuid.UUID{env.dinner.ID}
	r3 := env.createRecipe(t, env.author, dinnerOnly)

	ids := func(page *types.Page[types.RecipeResponse]) []uuid.UUID {
		out := make([]uuid.UUID, len(page.Results))
		for i, r := range page.Results {
			out[i] = r.ID
		}
		return out
	}

	t.Run("newest first", func(t *testing.T) {
		page, err := env.recipes.ListRecipes(ctx, types.RecipeFilter{}, types.PageParams{}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Count)
		assert.Equal(t, []uuid.UUID{r3.ID, r2.ID, r1.ID}, ids(page))
	})

	t.Run("tags use OR without duplicates", func(t *testing.T) {
		page, err := env.recipes.ListRecipes(ctx, types.RecipeFilter{Tags: []string{"breakfast", "lunch"}}, types.PageParams{}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Count)
		assert.Equal(t, []uuid.UUID{r2.ID, r1.ID}, ids(page))
	})

	t.Run("unknown tag slug", func(t *testing.T) {
		_, err := env.recipes.ListRecipes(ctx, types.RecipeFilter{Tags: []string{"breakfast", "brunch"}}, types.PageParams{}, nil)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "tags")
	})

	t.Run("author", func(t *testing.T) {
		page, err := env.recipes.ListRecipes(ctx, types.RecipeFilter{AuthorID: &env.other.ID}, types.PageParams{}, nil)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{r2.ID}, ids(page))
	})

	t.Run("memberships", func(t *testing.T) {
		viewer := testhelpers.Identity(env.other)
		_, err := env.memberships.AddMembership(ctx, viewer, r1.ID, model.MembershipFavorite)
		require.NoError(t, err)
		_, err = env.memberships.AddMembership(ctx, viewer, r3.ID, model.MembershipShoppingCart)
		require.NoError(t, err)

		page, err := env.recipes.ListRecipes(ctx, types.RecipeFilter{Favorited: true}, types.PageParams{}, viewer)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{r1.ID}, ids(page))
		assert.True(t, page.Results[0].IsFavorited)
		assert.False(t, page.Results[0].IsInShoppingCart)

		page, err = env.recipes.ListRecipes(ctx, types.RecipeFilter{InShoppingCart: true}, types.PageParams{}, viewer)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{r3.ID}, ids(page))
		assert.True(t, page.Results[0].IsInShoppingCart)

		page, err = env.recipes.ListRecipes(ctx, types.RecipeFilter{Favorited: true}, types.PageParams{}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Count, "membership filters are ignored for anonymous callers")
		for _, r := range page.Results {
			assert.False(t, r.IsFavorited)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := env.recipes.ListRecipes(ctx, types.RecipeFilter{}, types.PageParams{Page: 2, Limit: 2}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Count)
		assert.Equal(t, []uuid.UUID{r1.ID}, ids(page))
	})
}

func TestGetRecipeViewerFlags(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	created := env.createRecipe(t, env.author, env.recipeRequest(t, "Блины"))
	viewer := testhelpers.Identity(env.other)

	_, err := env.follows.Subscribe(ctx, viewer, env.author.ID, 0)
	require.NoError(t, err)
	_, err = env.memberships.AddMembership(ctx, viewer, created.ID, model.MembershipShoppingCart)
	require.NoError(t, err)

	got, err := env.recipes.GetRecipe(ctx, created.ID, viewer)
	require.NoError(t, err)
	assert.True(t, got.Author.IsSubscribed)
	assert.True(t, got.IsInShoppingCart)
	assert.False(t, got.IsFavorited)

	got, err = env.recipes.GetRecipe(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.False(t, got.Author.IsSubscribed)
	assert.False(t, got.IsInShoppingCart)
}
