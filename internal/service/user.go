package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService serves public user profiles.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListUsers returns a page of users ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewer *types.Identity, page types.PageParams) (*types.Page[types.UserResponse], error) {
	page = page.Normalize()

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return nil, err
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	state, err := loadViewerState(ctx, s.db, viewer, nil, ids)
	if err != nil {
		return nil, err
	}

	results := make([]types.UserResponse, len(users))
	for i := range users {
		results[i] = userResponse(&users[i], state.follows(users[i].ID))
	}
	return &types.Page[types.UserResponse]{Count: count, Results: results}, nil
}

func (s *UserService) GetUser(ctx context.Context, viewer *types.Identity, id uuid.UUID) (*types.UserResponse, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, err
	}

	state, err := loadViewerState(ctx, s.db, viewer, nil, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	resp := userResponse(&user, state.follows(user.ID))
	return &resp, nil
}

// Me returns the profile of the identity itself.
func (s *UserService) Me(ctx context.Context, identity *types.Identity) (*types.UserResponse, error) {
	if identity == nil {
		return nil, ErrForbidden
	}
	return s.GetUser(ctx, identity, identity.UserID)
}
