package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.UserResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, identity *types.Identity, req types.SetPasswordRequest) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user profile reads
type IUserService interface {
	ListUsers(ctx context.Context, viewer *types.Identity, page types.PageParams) (*types.Page[types.UserResponse], error)
	GetUser(ctx context.Context, viewer *types.Identity, id uuid.UUID) (*types.UserResponse, error)
	Me(ctx context.Context, identity *types.Identity) (*types.UserResponse, error)
}

// ICatalogService defines the interface for tag and ingredient reads
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uuid.UUID) (*types.TagResponse, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, identity *types.Identity, req types.RecipeRequest) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, identity *types.Identity, id uuid.UUID, req types.RecipeRequest) (*types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, identity *types.Identity, id uuid.UUID) error
	GetRecipe(ctx context.Context, id uuid.UUID, viewer *types.Identity) (*types.RecipeResponse, error)
	ListRecipes(ctx context.Context, filter types.RecipeFilter, page types.PageParams, viewer *types.Identity) (*types.Page[types.RecipeResponse], error)
}

// IMembershipService defines the interface for favorites and shopping cart
type IMembershipService interface {
	AddMembership(ctx context.Context, identity *types.Identity, recipeID uuid.UUID, kind model.MembershipKind) (*types.ShortRecipe, error)
	RemoveMembership(ctx context.Context, identity *types.Identity, recipeID uuid.UUID, kind model.MembershipKind) error
}

// IFollowService defines the interface for subscriptions
type IFollowService interface {
	Subscribe(ctx context.Context, identity *types.Identity, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, identity *types.Identity, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, identity *types.Identity, page types.PageParams, recipesLimit int) (*types.Page[types.SubscriptionResponse], error)
}

// IShoppingService defines the interface for the shopping list aggregate
type IShoppingService interface {
	ShoppingList(ctx context.Context, identity *types.Identity) ([]types.ShoppingListItem, error)
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IUserService       = (*UserService)(nil)
	_ ICatalogService    = (*CatalogService)(nil)
	_ IRecipeService     = (*RecipeService)(nil)
	_ IMembershipService = (*MembershipService)(nil)
	_ IFollowService     = (*FollowService)(nil)
	_ IShoppingService   = (*ShoppingService)(nil)
)
