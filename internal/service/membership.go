package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MembershipService manages the per-user recipe sets (favorites and
// shopping cart). Both sets share the same table and rules and differ only
// by kind.
type MembershipService struct {
	db      *gorm.DB
	recipes *RecipeService
	images  *ImageService
}

func NewMembershipService(db *gorm.DB, recipes *RecipeService, images *ImageService) *MembershipService {
	return &MembershipService{db: db, recipes: recipes, images: images}
}

// AddMembership puts a recipe into one of the identity's sets.
func (s *MembershipService) AddMembership(ctx context.Context, identity *types.Identity, recipeID uuid.UUID, kind model.MembershipKind) (*types.ShortRecipe, error) {
	if identity == nil {
		return nil, ErrForbidden
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown membership kind %q", kind)
	}

	recipe, err := s.recipes.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Membership{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", identity.UserID, recipeID, kind).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: recipe is already in %s", ErrConflict, kind)
	}

	membership := model.Membership{UserID: identity.UserID, RecipeID: recipeID, Kind: kind}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&membership).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: recipe is already in %s", ErrConflict, kind)
		}
		return nil, err
	}

	metrics.MembershipChanges.WithLabelValues(string(kind), "add").Inc()
	short := s.images.shortRecipe(recipe)
	return &short, nil
}

// RemoveMembership takes a recipe out of one of the identity's sets. It
// returns ErrNotFound when the recipe was not in the set.
func (s *MembershipService) RemoveMembership(ctx context.Context, identity *types.Identity, recipeID uuid.UUID, kind model.MembershipKind) error {
	if identity == nil {
		return ErrForbidden
	}
	if _, err := s.recipes.findRecipe(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", identity.UserID, recipeID, kind).
		Delete(&model.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe is not in %s", ErrNotFound, kind)
	}

	metrics.MembershipChanges.WithLabelValues(string(kind), "remove").Inc()
	return nil
}
