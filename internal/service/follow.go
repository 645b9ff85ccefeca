package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// FollowService manages subscriptions between users.
type FollowService struct {
	db     *gorm.DB
	images *ImageService
}

func NewFollowService(db *gorm.DB, images *ImageService) *FollowService {
	return &FollowService{db: db, images: images}
}

// Subscribe makes identity follow authorID. recipesLimit truncates the
// returned recipe list when positive.
func (s *FollowService) Subscribe(ctx context.Context, identity *types.Identity, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if identity == nil {
		return nil, ErrForbidden
	}
	if identity.UserID == authorID {
		return nil, fieldError("following", "you cannot subscribe to yourself")
	}

	var author model.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", authorID)
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("user_id = ? AND following_id = ?", identity.UserID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: subscription", ErrConflict)
	}

	follow := model.Follow{UserID: identity.UserID, FollowingID: authorID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&follow).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: subscription", ErrConflict)
		}
		return nil, err
	}

	metrics.FollowChanges.WithLabelValues("subscribe").Inc()

	subs, err := s.subscriptionResponses(ctx, []model.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unsubscribe removes the subscription of identity to authorID. It returns
// ErrNotFound when there was none.
func (s *FollowService) Unsubscribe(ctx context.Context, identity *types.Identity, authorID uuid.UUID) error {
	if identity == nil {
		return ErrForbidden
	}
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", identity.UserID, authorID).
		Delete(&model.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: subscription", ErrNotFound)
	}

	metrics.FollowChanges.WithLabelValues("unsubscribe").Inc()
	return nil
}

// Subscriptions lists the authors identity follows, ordered by username.
func (s *FollowService) Subscriptions(ctx context.Context, identity *types.Identity, page types.PageParams, recipesLimit int) (*types.Page[types.SubscriptionResponse], error) {
	if identity == nil {
		return nil, ErrForbidden
	}
	page = page.Normalize()
	followed := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.User{}).
			Where("id IN (?)", s.db.Model(&model.Follow{}).Select("following_id").Where("user_id = ?", identity.UserID))
	}

	var count int64
	if err := followed().Count(&count).Error; err != nil {
		return nil, err
	}

	var authors []model.User
	if err := followed().Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&authors).Error; err != nil {
		return nil, err
	}

	results, err := s.subscriptionResponses(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &types.Page[types.SubscriptionResponse]{Count: count, Results: results}, nil
}

// subscriptionResponses renders followed authors with their newest recipes
// and recipe counts.
func (s *FollowService) subscriptionResponses(ctx context.Context, authors []model.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, len(authors))
	for i := range authors {
		author := &authors[i]

		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
			return nil, err
		}

		q := s.db.WithContext(ctx).Where("author_id = ?", author.ID).Order("pub_date DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []model.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, err
		}

		short := make([]types.ShortRecipe, len(recipes))
		for j := range recipes {
			short[j] = s.images.shortRecipe(&recipes[j])
		}
		out[i] = types.SubscriptionResponse{
			UserResponse: userResponse(author, true),
			Recipes:      short,
			RecipesCount: count,
		}
	}
	return out, nil
}
