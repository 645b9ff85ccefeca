package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingService aggregates the ingredients of the recipes in a user's
// shopping cart.
type ShoppingService struct {
	db *gorm.DB
}

func NewShoppingService(db *gorm.DB) *ShoppingService {
	return &ShoppingService{db: db}
}

// ShoppingList returns one row per distinct (ingredient name, unit) across
// the identity's shopping cart with the amounts summed, ordered by name.
func (s *ShoppingService) ShoppingList(ctx context.Context, identity *types.Identity) ([]types.ShoppingListItem, error) {
	if identity == nil {
		return nil, ErrForbidden
	}

	items := []types.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("recipe_memberships").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = recipe_memberships.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_memberships.user_id = ? AND recipe_memberships.kind = ?", identity.UserID, model.MembershipShoppingCart).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
