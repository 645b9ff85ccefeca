package model

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is administrator managed reference data attached to recipes.
type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Color string    `gorm:"size:7;not null;uniqueIndex" json:"color"`
	Slug  string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Ingredient is unique per (name, measurement unit). SearchName keeps a
// lower-cased copy of Name so prefix search is case-insensitive for any
// alphabet on every supported database.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	SearchName      string    `gorm:"size:200;not null;index" json:"-"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = strings.ToLower(i.Name)
	return nil
}
