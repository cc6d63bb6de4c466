package utils

import "github.com/bird3325/hankki-sub000/models"

// NormalizeMeal is the single fetch-boundary cleanup applied to every
// meal leaving the store. Downstream code (feed composition, derived
// stats) assumes fully-populated records: non-nil slices, zeroed
// nutrition, and an explicit sharing level. An empty or unknown sharing
// level normalizes to "public" — that is the deliberate default for
// records written before the privacy field existed, not a coercion
// accident.
func NormalizeMeal(m *models.Meal) {
	switch m.SharingLevel {
	case models.SharingPublic, models.SharingPartners, models.SharingPrivate:
	default:
		m.SharingLevel = models.SharingPublic
	}
	if m.Ingredients == nil {
		m.Ingredients = []string{}
	}
	if m.IngredientDetails == nil {
		m.IngredientDetails = []models.IngredientDetail{}
	}
	if m.Likes == nil {
		m.Likes = []models.MealLike{}
	}
	if m.Comments == nil {
		m.Comments = []models.MealComment{}
	}
	if m.Type == "" {
		m.Type = "snack"
	}
}

func NormalizeMeals(meals []models.Meal) []models.Meal {
	for i := range meals {
		NormalizeMeal(&meals[i])
	}
	return meals
}
