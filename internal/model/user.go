package model

import "time"

// User represents an account that owns tags, ingredients and recipes.
// Email is the login identifier and is always stored lower-cased.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string     `json:"name" gorm:"size:255;not null;default:''"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	IsStaff      bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser  bool       `json:"is_superuser" gorm:"not null;default:false"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Tags        []Tag        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipes     []Recipe     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
