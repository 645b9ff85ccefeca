package model

import (
	"github.com/google/uuid"
)

const (
	CookTimeMin = 1
	CookTimeMax = 32000

	AmountMin = 1
	AmountMax = 32000

	MaxNameLength      = 200
	MaxUserFieldLength = 150
	MaxEmailLength     = 254
)

// ensureID assigns a fresh UUID when the primary key has not been set.
// Postgres would fill it through gen_random_uuid(), SQLite cannot.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeTag{},
		&RecipeIngredient{},
		&Membership{},
		&Follow{},
	}
}
