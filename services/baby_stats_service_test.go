package services

import (
	"testing"
	"time"

	"github.com/bird3325/hankki-sub000/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGrowthLabelFor(t *testing.T) {
	assert.Equal(t, GrowthStarting, GrowthLabelFor(0))
	assert.Equal(t, GrowthStarting, GrowthLabelFor(2))
	assert.Equal(t, GrowthConsistent, GrowthLabelFor(3))
	assert.Equal(t, GrowthSteady, GrowthLabelFor(7))
	assert.Equal(t, GrowthSteady, GrowthLabelFor(13))
	assert.Equal(t, GrowthRapid, GrowthLabelFor(14))
}

func babyMealNamed(baby *models.BabyProfile, ateAt time.Time, food string, ingredients ...string) models.Meal {
	id := baby.ID
	return models.Meal{
		UserID:      1,
		AteAt:       ateAt,
		IsBabyFood:  true,
		BabyID:      &id,
		FoodName:    food,
		Ingredients: ingredients,
	}
}

func TestBabyWeeklyGrowth(t *testing.T) {
	// Week of Monday 2026-03-09, reporting on Friday.
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	ref := monday.AddDate(0, 0, 4).Add(10 * time.Hour)

	baby := &models.BabyProfile{
		Model:     gorm.Model{ID: 10},
		Name:      "하은",
		BirthDate: "2025-06-01",
		Allergies: []string{"계란", "우유"},
	}

	meals := []models.Meal{
		babyMealNamed(baby, monday.Add(9*time.Hour), "계란죽", "쌀", "계란후라이"),
		babyMealNamed(baby, monday.Add(13*time.Hour), "바나나퓨레", "바나나"),
		babyMealNamed(baby, monday.AddDate(0, 0, 1).Add(9*time.Hour), "계란죽", "쌀", "계란"),
		babyMealNamed(baby, monday.AddDate(0, 0, 2).Add(9*time.Hour), "두유죽", "쌀", "두유"),
		// Legacy record keyed by name only still counts.
		{UserID: 1, AteAt: monday.AddDate(0, 0, 3).Add(9 * time.Hour), IsBabyFood: true, BabyName: "하은", FoodName: "소고기죽", Ingredients: []string{"쌀", "소고기"}},
		// Outside the week.
		babyMealNamed(baby, monday.AddDate(0, 0, -2).Add(9*time.Hour), "계란죽", "계란"),
		// Different baby.
		{UserID: 1, AteAt: monday.Add(11 * time.Hour), IsBabyFood: true, BabyName: "지유", FoodName: "이유식"},
	}

	report := BabyWeeklyGrowth(meals, baby, ref)

	assert.Equal(t, "하은", report.BabyName)
	assert.Equal(t, 5, report.MealCount)
	assert.Equal(t, GrowthConsistent, report.GrowthLabel)
	// 쌀, 계란후라이, 바나나, 계란, 두유, 소고기
	assert.Equal(t, 6, report.UniqueIngredients)
	assert.Equal(t, "계란죽", report.BestMenu, "most frequent wins; tie keeps first encounter")
	// 계란후라이 and 계란 match 계란; 두유 must not match 우유.
	assert.Equal(t, 2, report.AllergenExposures)
	assert.Equal(t, 9, report.AgeMonths)
	assert.True(t, report.Fasting.Known)
}

func TestBabyWeeklyGrowthBestMenuTie(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	baby := &models.BabyProfile{Model: gorm.Model{ID: 10}, Name: "하은"}

	meals := []models.Meal{
		babyMealNamed(baby, monday.Add(9*time.Hour), "바나나퓨레"),
		babyMealNamed(baby, monday.Add(13*time.Hour), "계란죽"),
	}
	report := BabyWeeklyGrowth(meals, baby, monday)
	assert.Equal(t, "바나나퓨레", report.BestMenu, "first encountered wins a tie")
}

func TestBabyWeeklyGrowthEmptyWeek(t *testing.T) {
	baby := &models.BabyProfile{Model: gorm.Model{ID: 10}, Name: "하은"}
	report := BabyWeeklyGrowth(nil, baby, time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 0, report.MealCount)
	assert.Equal(t, GrowthStarting, report.GrowthLabel)
	assert.Empty(t, report.BestMenu)
	assert.False(t, report.Fasting.Known, "no meals ever means the fasting card is unknown")
}

func TestBabyDailySummaryUsesDualKey(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	baby := &models.BabyProfile{Model: gorm.Model{ID: 10}, Name: "하은"}

	id := uint(10)
	meals := []models.Meal{
		{AteAt: day.Add(9 * time.Hour), IsBabyFood: true, BabyID: &id, Nutrition: models.Nutrition{Calories: 150}},
		{AteAt: day.Add(12 * time.Hour), IsBabyFood: true, BabyName: "하은", Nutrition: models.Nutrition{Calories: 100}},
		{AteAt: day.Add(13 * time.Hour), IsBabyFood: true, BabyName: "지유", Nutrition: models.Nutrition{Calories: 100}},
		{AteAt: day.Add(14 * time.Hour), Nutrition: models.Nutrition{Calories: 500}}, // adult meal
	}

	sum := BabyDailySummary(meals, baby, 1000, day)
	assert.Equal(t, 250.0, sum.Total)
}
