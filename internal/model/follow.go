package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a subscription of UserID to the recipes of FollowingID.
type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair;check:chk_follow_not_self,user_id <> following_id" json:"user_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair;index" json:"following_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Following   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
