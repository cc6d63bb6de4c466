package models

import "gorm.io/gorm"

// MealTemplate is a saved snapshot of a meal's content (no timestamp or
// social fields) for quick re-entry, mostly used for baby meals.
type MealTemplate struct {
	gorm.Model
	UserID uint `gorm:"index;not null"`

	FoodName          string
	Description       string
	ImageURL          string
	Type              string
	Ingredients       []string           `gorm:"serializer:json"`
	IngredientDetails []IngredientDetail `gorm:"serializer:json"`
	Nutrition         Nutrition          `gorm:"embedded;embeddedPrefix:nutrition_"`
	IsBabyFood        bool
}
