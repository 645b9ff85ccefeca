package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/model"
)

// IngredientAmount references an ingredient and the quantity a recipe uses.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

func (a IngredientAmount) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, requiredID),
		validation.Field(&a.Amount,
			validation.Required.Error("must be at least 1"),
			validation.Min(model.AmountMin).Error("must be at least 1"),
			validation.Max(model.AmountMax).Error("must be no greater than 32000"),
		),
	)
}

// RecipeRequest is the body of recipe create and update calls. Image is a
// base64 data URI; on update an empty image keeps the stored one.
type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uuid.UUID        `json:"tags"`
	Image       string             `json:"image"`
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
}

// ValidateCreate validates a request that creates a recipe.
func (r RecipeRequest) ValidateCreate() error {
	return r.validate(true)
}

// Validate validates a request that updates a recipe.
func (r RecipeRequest) Validate() error {
	return r.validate(false)
}

func (r RecipeRequest) validate(imageRequired bool) error {
	ingredientIDs := make([]uuid.UUID, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredientIDs[i] = ing.ID
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Ingredients,
			validation.Required.Error("at least one ingredient is required"),
			distinctIDs("ingredients", ingredientIDs),
		),
		validation.Field(&r.Tags,
			validation.Required.Error("at least one tag is required"),
			distinctIDs("tags", r.Tags),
			validation.Each(requiredID),
		),
		validation.Field(&r.Image, validation.When(imageRequired, validation.Required)),
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, model.MaxNameLength)),
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.CookingTime,
			validation.Required.Error("must be at least 1 minute"),
			validation.Min(model.CookTimeMin).Error("must be at least 1 minute"),
			validation.Max(model.CookTimeMax).Error("must be no greater than 32000 minutes"),
		),
	)
}

// RecipeFilter narrows a recipe listing. Favorited and InShoppingCart are
// ignored for anonymous callers.
type RecipeFilter struct {
	AuthorID       *uuid.UUID
	Tags           []string
	Favorited      bool
	InShoppingCart bool
}

// RecipeIngredientResponse is an ingredient as used by one recipe.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse is the canonical read shape of a recipe.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            *string                    `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	PubDate          time.Time                  `json:"pub_date"`
}

// ShortRecipe is the compact recipe shape used by memberships and subscriptions.
type ShortRecipe struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       *string   `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}
