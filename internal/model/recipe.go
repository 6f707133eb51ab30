package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is owned by one user and linked to that user's tags and ingredients.
type Recipe struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"-" gorm:"not null;index"`
	Title       string          `json:"title" gorm:"size:255;not null;index"`
	TimeMinutes int             `json:"time_minutes" gorm:"not null;check:time_minutes >= 0"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(5,2);not null"`
	Link        string          `json:"link" gorm:"size:255;not null;default:''"`
	Image       string          `json:"image" gorm:"size:255;not null;default:''"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Tags        []Tag        `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient `json:"ingredients" gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE"`
}

// TagIDs returns the ids of the associated tags.
func (r *Recipe) TagIDs() []uint {
	ids := make([]uint, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// IngredientIDs returns the ids of the associated ingredients.
func (r *Recipe) IngredientIDs() []uint {
	ids := make([]uint, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ids = append(ids, i.ID)
	}
	return ids
}
