package services

import (
	"time"

	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"

	"gorm.io/gorm"
)

// Growth tiers by weekly meal count.
const (
	GrowthRapid      = "폭풍 성장"  // ≥14 meals this week
	GrowthSteady     = "안정적 성장" // ≥7
	GrowthConsistent = "꾸준한 실천" // ≥3
	GrowthStarting   = "기록 시작"  // else
)

func GrowthLabelFor(mealCount int) string {
	switch {
	case mealCount >= 14:
		return GrowthRapid
	case mealCount >= 7:
		return GrowthSteady
	case mealCount >= 3:
		return GrowthConsistent
	default:
		return GrowthStarting
	}
}

// BabyGrowthReport covers the current Monday-starting week for one baby.
type BabyGrowthReport struct {
	BabyName          string        `json:"babyName"`
	AgeMonths         int           `json:"ageMonths"`
	MealCount         int           `json:"mealCount"`
	UniqueIngredients int           `json:"uniqueIngredients"`
	GrowthLabel       string        `json:"growthLabel"`
	BestMenu          string        `json:"bestMenu"`
	AllergenExposures int           `json:"allergenExposures"`
	Fasting           FastingStatus `json:"fasting"`
}

// BabyWeeklyGrowth derives the weekly report from the baby's meals.
// Best menu is the most frequent food name, ties broken by first
// encounter in iteration order. Allergen exposure counts meals whose
// ingredient list overlaps the allergy list under the bidirectional
// substring rule.
func BabyWeeklyGrowth(meals []models.Meal, baby *models.BabyProfile, ref time.Time) BabyGrowthReport {
	ws := startOfWeek(ref)
	we := ws.AddDate(0, 0, 7)

	var week []models.Meal
	var all []models.Meal
	for i := range meals {
		if !MealForBaby(&meals[i], baby) {
			continue
		}
		all = append(all, meals[i])
		if !meals[i].AteAt.Before(ws) && meals[i].AteAt.Before(we) {
			week = append(week, meals[i])
		}
	}

	ingredients := map[string]struct{}{}
	menuCounts := map[string]int{}
	bestMenu := ""
	bestCount := 0
	exposures := 0
	for i := range week {
		for _, ing := range week[i].Ingredients {
			ingredients[ing] = struct{}{}
		}
		if name := week[i].FoodName; name != "" {
			menuCounts[name]++
			if menuCounts[name] > bestCount {
				bestCount = menuCounts[name]
				bestMenu = name
			}
		}
		if len(utils.FindAllergens(week[i].Ingredients, baby.Allergies)) > 0 {
			exposures++
		}
	}

	return BabyGrowthReport{
		BabyName:          baby.Name,
		AgeMonths:         baby.AgeInMonths(ref),
		MealCount:         len(week),
		UniqueIngredients: len(ingredients),
		GrowthLabel:       GrowthLabelFor(len(week)),
		BestMenu:          bestMenu,
		AllergenExposures: exposures,
		Fasting:           FastingWindow(all, BabyFastingTargetHours, ref),
	}
}

// BabyDailySummary is the baby calorie card, matched by the dual key.
func BabyDailySummary(meals []models.Meal, baby *models.BabyProfile, target float64, day time.Time) DailySummary {
	var own []models.Meal
	for i := range meals {
		if MealForBaby(&meals[i], baby) {
			own = append(own, meals[i])
		}
	}
	return DailySummaryFor(own, target, day)
}

type BabyStatsService struct {
	db  *gorm.DB
	fam *FamilyService
}

func NewBabyStatsService(db *gorm.DB, fam *FamilyService) *BabyStatsService {
	return &BabyStatsService{db: db, fam: fam}
}

func (s *BabyStatsService) WeeklyGrowth(userID, babyID uint, ref time.Time) (*BabyGrowthReport, error) {
	baby, err := s.fam.Baby(userID, babyID)
	if err != nil {
		return nil, err
	}

	var meals []models.Meal
	err = s.db.
		Where("is_baby_food = ? AND (baby_id = ? OR baby_name = ?)", true, baby.ID, baby.Name).
		Order("ate_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, GuardStoreError(err)
	}
	report := BabyWeeklyGrowth(utils.NormalizeMeals(meals), baby, ref)
	return &report, nil
}
