package services

import "github.com/bird3325/hankki-sub000/models"

// FriendSet holds the viewer's current co-members: every user sharing at
// least one family group with the viewer. It must be derived fresh from
// the store per request (membership is mutable) and never cached.
type FriendSet map[uint]struct{}

func (f FriendSet) Has(userID uint) bool {
	_, ok := f[userID]
	return ok
}

// IsFeedVisible decides whether a viewer may see a meal in any feed.
// Owners always see their own records regardless of sharing level.
func IsFeedVisible(m *models.Meal, viewerID uint, friends FriendSet) bool {
	if m.UserID == viewerID {
		return true
	}
	switch m.SharingLevel {
	case models.SharingPublic:
		return true
	case models.SharingPartners:
		return friends.Has(m.UserID)
	case models.SharingPrivate:
		return false
	default:
		// Unset levels are normalized to public at the fetch boundary;
		// a record that slipped past still reads as public, explicitly.
		return true
	}
}

// CanSeeNutritionDetail is the single gate for nutrition visibility:
// owner, baby food, or the owner's opt-in. Baby meals are always
// detail-visible once they are feed-visible.
func CanSeeNutritionDetail(m *models.Meal, viewerID uint) bool {
	return m.UserID == viewerID || m.IsBabyFood || m.ShareDiaryCalories
}

// RedactNutritionDetail strips the fields the gate protects before a
// meal is handed to a viewer who failed CanSeeNutritionDetail: the macro
// numbers and the per-ingredient estimates. Ingredient names and the
// rest of the record stay. The detail slice is copied so the caller's
// backing array is never mutated.
func RedactNutritionDetail(m *models.Meal) {
	m.Nutrition = models.Nutrition{}
	if len(m.IngredientDetails) > 0 {
		details := make([]models.IngredientDetail, len(m.IngredientDetails))
		copy(details, m.IngredientDetails)
		for i := range details {
			details[i].NutritionEstimate = ""
		}
		m.IngredientDetails = details
	}
}
