package service

import (
	"sort"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

func userResponse(u *model.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func tagResponse(t *model.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i *model.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func (s *ImageService) shortRecipe(r *model.Recipe) types.ShortRecipe {
	return types.ShortRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

// recipeFlags holds the per-viewer computed fields of a recipe read.
type recipeFlags struct {
	favorited      bool
	inShoppingCart bool
	subscribed     bool
}

func (s *ImageService) recipeResponse(r *model.Recipe, flags recipeFlags) types.RecipeResponse {
	tags := make([]types.TagResponse, len(r.Tags))
	for i := range r.Tags {
		tags[i] = tagResponse(&r.Tags[i])
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	// each amount comes from this recipe's own link row
	ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = types.RecipeIngredientResponse{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].Name < ingredients[j].Name })

	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           userResponse(&r.Author, flags.subscribed),
		Ingredients:      ingredients,
		IsFavorited:      flags.favorited,
		IsInShoppingCart: flags.inShoppingCart,
		Name:             r.Name,
		Image:            s.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}
