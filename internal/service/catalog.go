package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogService serves the read-only tag and ingredient catalogs.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	var tags []model.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	out := make([]types.TagResponse, len(tags))
	for i := range tags {
		out[i] = tagResponse(&tags[i])
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*types.TagResponse, error) {
	var tag model.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag", id)
		}
		return nil, err
	}
	resp := tagResponse(&tag)
	return &resp, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// ignoring case. An empty prefix lists everything.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if prefix := strings.ToLower(strings.TrimSpace(namePrefix)); prefix != "" {
		q = q.Where(`search_name LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	}

	var ingredients []model.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	out := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = ingredientResponse(&ingredients[i])
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error) {
	var ingredient model.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("ingredient", id)
		}
		return nil, err
	}
	resp := ingredientResponse(&ingredient)
	return &resp, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
