package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipKind names the purpose of a user-recipe membership set.
type MembershipKind string

const (
	MembershipFavorite     MembershipKind = "favorite"
	MembershipShoppingCart MembershipKind = "shopping_cart"
)

// Valid reports whether k is a known membership kind.
func (k MembershipKind) Valid() bool {
	return k == MembershipFavorite || k == MembershipShoppingCart
}

// Membership records that a recipe belongs to one of a user's sets
// (favorites or shopping cart). A pair can appear at most once per kind.
type Membership struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_recipe_kind" json:"user_id"`
	RecipeID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_recipe_kind;index" json:"recipe_id"`
	Kind      MembershipKind `gorm:"size:20;not null;uniqueIndex:idx_membership_user_recipe_kind" json:"kind"`
	User      User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Membership) TableName() string {
	return "recipe_memberships"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
