package types

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/model"
)

// usernamePattern accepts letters, digits and the characters . @ + - _
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required,
			validation.RuneLength(3, model.MaxEmailLength),
			is.EmailFormat,
		),
		validation.Field(&r.Username,
			validation.Required,
			validation.RuneLength(1, model.MaxUserFieldLength),
			validation.Match(usernamePattern).Error("may contain only letters, digits and @/./+/-/_"),
		),
		validation.Field(&r.FirstName, validation.Required, validation.RuneLength(1, model.MaxUserFieldLength)),
		validation.Field(&r.LastName, validation.Required, validation.RuneLength(1, model.MaxUserFieldLength)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(8, 128)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r SetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.RuneLength(8, 128)),
	)
}

// UserResponse is a public user profile as seen by the requester.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// SubscriptionResponse is a followed author together with their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}
