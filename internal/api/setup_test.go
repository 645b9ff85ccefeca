package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (d *memoryDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = make(map[string]bool)
	}
	d.revoked[jti] = true
	return nil
}

func (d *memoryDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[jti], nil
}

// apiEnv is a router wired to real services over an in-memory database.
type apiEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService

	author *model.User
	other  *model.User

	breakfast *model.Tag
	lunch     *model.Tag
	flour     *model.Ingredient
	eggs      *model.Ingredient
}

func newAPIEnv(t *testing.T, opts api.Options) *apiEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	images := service.NewImageService(storage.NewLocalStore(t.TempDir(), "/media"))
	auth := service.NewAuthService(db, testSecret, time.Hour, &memoryDenylist{})
	recipes := service.NewRecipeService(db, images)

	router := gin.New()
	api.RegisterRoutes(router, api.Services{
		Auth:        auth,
		Users:       service.NewUserService(db),
		Catalog:     service.NewCatalogService(db),
		Recipes:     recipes,
		Memberships: service.NewMembershipService(db, recipes, images),
		Follows:     service.NewFollowService(db, images),
		Shopping:    service.NewShoppingService(db),
	}, opts)

	return &apiEnv{
		router: router,
		db:     db,
		auth:   auth,

		author: testhelpers.CreateUser(t, db, "author"),
		other:  testhelpers.CreateUser(t, db, "other"),

		breakfast: testhelpers.CreateTag(t, db, "Завтрак", "#E26C2D", "breakfast"),
		lunch:     testhelpers.CreateTag(t, db, "Обед", "#49B64E", "lunch"),
		flour:     testhelpers.CreateIngredient(t, db, "Мука", "г"),
		eggs:      testhelpers.CreateIngredient(t, db, "Яйца", "шт"),
	}
}

// token logs u in through the auth service and returns the bearer token.
func (e *apiEnv) token(t *testing.T, u *model.User) string {
	t.Helper()
	token, err := e.auth.Login(context.Background(), types.LoginRequest{
		Email:    u.Email,
		Password: testhelpers.TestPassword,
	})
	require.NoError(t, err)
	return token
}

// do performs a request against the router. body is JSON encoded unless nil.
func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) recipeBody(t *testing.T, name string) types.RecipeRequest {
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

// createRecipe posts a recipe with token and returns the decoded response.
func (e *apiEnv) createRecipe(t *testing.T, token, name string) types.RecipeResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/recipes", e.recipeBody(t, name), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var recipe types.RecipeResponse
	decode(t, w, &recipe)
	time.Sleep(2 * time.Millisecond)
	return recipe
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
