package models

import (
	"time"

	"gorm.io/gorm"
)

// Sharing levels controlling feed visibility.
const (
	SharingPublic   = "public"
	SharingPartners = "partners"
	SharingPrivate  = "private"
)

// Baby reactions, cycled good → soso → bad by the owner.
const (
	ReactionGood = "good"
	ReactionSoso = "soso"
	ReactionBad  = "bad"
)

// Nutrition is the AI-estimated macro snapshot for one meal.
// Calories is authoritative for all totals; it is not required to equal
// the macro-derived sum (4/4/9), since the estimates come from separate
// model outputs.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

type IngredientDetail struct {
	Name              string `json:"name"`
	NutritionEstimate string `json:"nutritionEstimate"`
	Benefit           string `json:"benefit"`
}

// One logged eating event.
type Meal struct {
	gorm.Model
	UserID uint      `gorm:"index;not null"`
	AteAt  time.Time `gorm:"index;not null"` // event time, not insertion time
	Type   string    // breakfast|lunch|dinner|snack

	FoodName          string
	Description       string
	ImageURL          string
	Ingredients       []string           `gorm:"serializer:json"`
	IngredientDetails []IngredientDetail `gorm:"serializer:json"`
	Nutrition         Nutrition          `gorm:"embedded;embeddedPrefix:nutrition_"`
	AIDescription     string
	AITip             string

	SharingLevel       string `gorm:"default:public"`
	ShareDiaryCalories bool

	IsBabyFood   bool
	BabyID       *uint  `gorm:"index"`
	BabyName     string // fallback join key for records saved before baby ids existed
	BabyReaction string

	Likes    []MealLike    `gorm:"constraint:OnDelete:CASCADE"`
	Comments []MealComment `gorm:"constraint:OnDelete:CASCADE"`
}

// MealLike has set semantics: the composite unique index rejects
// duplicate likes at the store level, and the service layer rejects
// self-likes before the write.
type MealLike struct {
	gorm.Model
	MealID uint `gorm:"uniqueIndex:idx_meal_liker;not null"`
	UserID uint `gorm:"uniqueIndex:idx_meal_liker;not null"`
}

// MealComment is append-only; ordering is chronological by CreatedAt.
type MealComment struct {
	gorm.Model
	MealID   uint `gorm:"index;not null"`
	UserID   uint
	UserName string
	Text     string `gorm:"type:text"`
}
