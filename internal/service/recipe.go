package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles the recipe aggregate: the recipe row together with
// its tag set and its ingredient quantities.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// CreateRecipe stores a recipe authored by identity with its full tag and
// ingredient sets in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, identity *types.Identity, req types.RecipeRequest) (*types.RecipeResponse, error) {
	if identity == nil {
		return nil, ErrForbidden
	}
	if err := invalid(req.ValidateCreate()); err != nil {
		return nil, err
	}

	imageKey, err := s.images.SaveBase64(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := model.Recipe{
		AuthorID:    identity.UserID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       imageKey,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, req.Tags); err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.images.discard(ctx, imageKey)
		return nil, err
	}

	metrics.RecipeWrites.WithLabelValues("create").Inc()
	log.Info().Str("recipe_id", recipe.ID.String()).Str("author_id", identity.UserID.String()).Msg("recipe created")

	return s.GetRecipe(ctx, recipe.ID, identity)
}

// UpdateRecipe replaces the scalar fields, the tag set and the ingredient set
// of a recipe. Nothing is applied unless every part succeeds.
func (s *RecipeService) UpdateRecipe(ctx context.Context, identity *types.Identity, id uuid.UUID, req types.RecipeRequest) (*types.RecipeResponse, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	existing, err := s.findRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.CanModify(existing.AuthorID) {
		return nil, ErrForbidden
	}

	var newImage string
	if req.Image != "" {
		if newImage, err = s.images.SaveBase64(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	var oldImage string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockRecipe(tx, id)
		if err != nil {
			return err
		}
		oldImage = current.Image

		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if newImage != "" {
			updates["image"] = newImage
		}
		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, id, req.Tags); err != nil {
			return err
		}
		return replaceIngredients(tx, id, req.Ingredients)
	})
	if err != nil {
		s.images.discard(ctx, newImage)
		return nil, err
	}
	if newImage != "" {
		s.images.discard(ctx, oldImage)
	}

	metrics.RecipeWrites.WithLabelValues("update").Inc()

	return s.GetRecipe(ctx, id, identity)
}

// DeleteRecipe removes a recipe, its memberships, its ingredient and tag links
// and finally its image asset.
func (s *RecipeService) DeleteRecipe(ctx context.Context, identity *types.Identity, id uuid.UUID) error {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !identity.CanModify(recipe.AuthorID) {
		return ErrForbidden
	}

	var image string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockRecipe(tx, id)
		if err != nil {
			return err
		}
		image = current.Image

		if err := tx.Where("recipe_id = ?", id).Delete(&model.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.images.discard(ctx, image)

	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	log.Info().Str("recipe_id", id.String()).Msg("recipe deleted")
	return nil
}

// GetRecipe reads a recipe in its canonical shape as seen by viewer.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID, viewer *types.Identity) (*types.RecipeResponse, error) {
	var recipe model.Recipe
	if err := s.withAggregate(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, err
	}

	state, err := loadViewerState(ctx, s.db, viewer, []uuid.UUID{recipe.ID}, []uuid.UUID{recipe.AuthorID})
	if err != nil {
		return nil, err
	}
	resp := s.images.recipeResponse(&recipe, state.recipeFlags(&recipe))
	return &resp, nil
}

// ListRecipes returns one page of recipes matching filter, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter, page types.PageParams, viewer *types.Identity) (*types.Page[types.RecipeResponse], error) {
	page = page.Normalize()
	if err := s.checkTagSlugs(ctx, filter.Tags); err != nil {
		return nil, err
	}
	filtered := func() *gorm.DB {
		return s.applyFilter(s.db.WithContext(ctx).Model(&model.Recipe{}), filter, viewer)
	}

	var count int64
	if err := filtered().Count(&count).Error; err != nil {
		return nil, err
	}

	var recipes []model.Recipe
	if err := s.withAggregate(filtered()).
		Order("recipes.pub_date DESC").Order("recipes.id").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}
	state, err := loadViewerState(ctx, s.db, viewer, recipeIDs, authorIDs)
	if err != nil {
		return nil, err
	}

	results := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		results[i] = s.images.recipeResponse(&recipes[i], state.recipeFlags(&recipes[i]))
	}
	return &types.Page[types.RecipeResponse]{Count: count, Results: results}, nil
}

func (s *RecipeService) applyFilter(q *gorm.DB, filter types.RecipeFilter, viewer *types.Identity) *gorm.DB {
	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.Tags) > 0 {
		// any of the given slugs matches
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if viewer != nil {
		if filter.Favorited {
			q = q.Where("recipes.id IN (?)", s.membersOf(viewer.UserID, model.MembershipFavorite))
		}
		if filter.InShoppingCart {
			q = q.Where("recipes.id IN (?)", s.membersOf(viewer.UserID, model.MembershipShoppingCart))
		}
	}
	return q
}

// checkTagSlugs rejects a filter naming a tag slug that does not exist.
func (s *RecipeService) checkTagSlugs(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	var found []string
	if err := s.db.WithContext(ctx).Model(&model.Tag{}).Where("slug IN ?", slugs).Pluck("slug", &found).Error; err != nil {
		return err
	}
	known := make(map[string]bool, len(found))
	for _, slug := range found {
		known[slug] = true
	}
	for _, slug := range slugs {
		if !known[slug] {
			return fieldError("tags", fmt.Sprintf("unknown tag %q", slug))
		}
	}
	return nil
}

func (s *RecipeService) membersOf(userID uuid.UUID, kind model.MembershipKind) *gorm.DB {
	return s.db.Model(&model.Membership{}).
		Select("recipe_id").
		Where("user_id = ? AND kind = ?", userID, kind)
}

func (s *RecipeService) withAggregate(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Tags").Preload("Ingredients.Ingredient")
}

func (s *RecipeService) findRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, err
	}
	return &recipe, nil
}

// lockRecipe re-reads a recipe inside tx. On Postgres the row stays locked
// until the transaction ends, so the image key read here is the one replaced.
func lockRecipe(tx *gorm.DB, id uuid.UUID) (*model.Recipe, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var recipe model.Recipe
	if err := q.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, err
	}
	return &recipe, nil
}

// replaceTags makes tagIDs the complete tag set of a recipe.
func replaceTags(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := ensureExist(tx, &model.Tag{}, "tag", tagIDs); err != nil {
		return err
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeTag{}).Error; err != nil {
		return err
	}
	rows := make([]model.RecipeTag, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = model.RecipeTag{RecipeID: recipeID, TagID: id}
	}
	return tx.Create(&rows).Error
}

// replaceIngredients deletes every ingredient link of a recipe and inserts
// the given set in bulk.
func replaceIngredients(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	if err := ensureExist(tx, &model.Ingredient{}, "ingredient", ids); err != nil {
		return err
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return err
	}
	rows := make([]model.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = model.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	return tx.Omit(clause.Associations).CreateInBatches(&rows, 100).Error
}

// ensureExist returns a not-found error naming the first id absent from the
// table of dest.
func ensureExist(tx *gorm.DB, dest interface{}, what string, ids []uuid.UUID) error {
	var found []uuid.UUID
	if err := tx.Model(dest).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	present := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range ids {
		if !present[id] {
			return notFound(what, id)
		}
	}
	return nil
}
