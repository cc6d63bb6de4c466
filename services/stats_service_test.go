package services

import (
	"testing"
	"time"

	"github.com/bird3325/hankki-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calMeal(userID uint, ateAt time.Time, calories float64) models.Meal {
	return models.Meal{
		UserID:    userID,
		AteAt:     ateAt,
		Nutrition: models.Nutrition{Calories: calories},
	}
}

func TestFastingWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.Local)

	t.Run("no meals is unknown, not a zero-hour fast", func(t *testing.T) {
		st := FastingWindow(nil, 16, now)
		assert.False(t, st.Known)
	})

	t.Run("digesting below half the target", func(t *testing.T) {
		st := FastingWindow([]models.Meal{calMeal(1, now.Add(-4*time.Hour), 500)}, 16, now)
		require.True(t, st.Known)
		assert.Equal(t, 4, st.Hours)
		assert.Equal(t, FastingLabelDigesting, st.Label)
	})

	t.Run("onset at half", func(t *testing.T) {
		st := FastingWindow([]models.Meal{calMeal(1, now.Add(-8*time.Hour), 500)}, 16, now)
		assert.Equal(t, FastingLabelOnset, st.Label)
		assert.InDelta(t, 0.5, st.Progress, 1e-9)
	})

	t.Run("burning at three quarters", func(t *testing.T) {
		st := FastingWindow([]models.Meal{calMeal(1, now.Add(-12*time.Hour), 500)}, 16, now)
		assert.Equal(t, FastingLabelBurning, st.Label)
	})

	t.Run("progress caps at one", func(t *testing.T) {
		st := FastingWindow([]models.Meal{calMeal(1, now.Add(-30*time.Hour), 500)}, 16, now)
		assert.Equal(t, 1.0, st.Progress)
	})

	t.Run("latest meal wins regardless of slice order", func(t *testing.T) {
		meals := []models.Meal{
			calMeal(1, now.Add(-10*time.Hour), 500),
			calMeal(1, now.Add(-2*time.Hour), 300),
			calMeal(1, now.Add(-6*time.Hour), 400),
		}
		st := FastingWindow(meals, 16, now)
		assert.Equal(t, 2, st.Hours)
	})
}

func TestDailySummaryFor(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	meals := []models.Meal{
		calMeal(1, day.Add(8*time.Hour), 600),
		calMeal(1, day.Add(13*time.Hour), 900),
		calMeal(1, day.Add(-1*time.Hour), 500), // yesterday
	}
	meals[0].Nutrition.Carbs = 40
	meals[1].Nutrition.Carbs = 60
	meals[1].Nutrition.Fat = 10

	sum := DailySummaryFor(meals, 2000, day)
	assert.Equal(t, 1500.0, sum.Total)
	assert.Equal(t, 75.0, sum.Percent)
	assert.Equal(t, 500.0, sum.Remaining)
	assert.Equal(t, 400.0, sum.Macros.Carbs, "macros sum over the same day window")
	assert.Equal(t, 90.0, sum.Macros.Fat)

	over := DailySummaryFor([]models.Meal{calMeal(1, day.Add(12*time.Hour), 3000)}, 2000, day)
	assert.Equal(t, 100.0, over.Percent, "percent caps at 100")
	assert.Equal(t, 0.0, over.Remaining, "remaining floors at zero")
}

func TestCleanStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 21, 0, 0, 0, time.Local)
	today := dayStart(now)
	target := 2000.0

	dayMeals := func(daysAgo int, calories ...float64) []models.Meal {
		d := today.AddDate(0, 0, -daysAgo)
		out := make([]models.Meal, 0, len(calories))
		for i, c := range calories {
			out = append(out, calMeal(1, d.Add(time.Duration(8+i)*time.Hour), c))
		}
		return out
	}

	t.Run("consecutive in-band days count", func(t *testing.T) {
		var meals []models.Meal
		meals = append(meals, dayMeals(0, 1900)...)
		meals = append(meals, dayMeals(1, 1800)...)
		meals = append(meals, dayMeals(2, 2100)...)
		assert.Equal(t, 3, CleanStreak(meals, target, now))
	})

	t.Run("day over the 1.1x band breaks the run", func(t *testing.T) {
		var meals []models.Meal
		meals = append(meals, dayMeals(0, 1900)...)
		meals = append(meals, dayMeals(1, 1800)...)
		meals = append(meals, dayMeals(2, 2400)...) // 2400 > 2200
		assert.Equal(t, 2, CleanStreak(meals, target, now))
	})

	t.Run("today without meals is forgiven, not counted", func(t *testing.T) {
		var meals []models.Meal
		meals = append(meals, dayMeals(1, 1800)...)
		meals = append(meals, dayMeals(2, 2000)...)
		assert.Equal(t, 2, CleanStreak(meals, target, now))
	})

	t.Run("earlier empty day ends the walk", func(t *testing.T) {
		var meals []models.Meal
		meals = append(meals, dayMeals(0, 1900)...)
		// day 1 empty
		meals = append(meals, dayMeals(2, 2000)...)
		assert.Equal(t, 1, CleanStreak(meals, target, now))
	})

	t.Run("under the 0.8x band breaks", func(t *testing.T) {
		var meals []models.Meal
		meals = append(meals, dayMeals(0, 1500)...) // 1500 < 1600
		assert.Equal(t, 0, CleanStreak(meals, target, now))
	})

	t.Run("lookback stops at thirty days", func(t *testing.T) {
		var meals []models.Meal
		for d := 0; d < 40; d++ {
			meals = append(meals, dayMeals(d, 2000)...)
		}
		assert.Equal(t, 30, CleanStreak(meals, target, now))
	})
}

func TestWeeklyRollup(t *testing.T) {
	// 2026-03-09 is a Monday.
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	target := 2000.0

	meals := []models.Meal{
		calMeal(1, monday.Add(9*time.Hour), 800),
		calMeal(1, monday.Add(13*time.Hour), 1200), // Monday total 2000, target met
		calMeal(1, monday.AddDate(0, 0, 2).Add(8*time.Hour), 1000), // Wednesday, under band
		calMeal(1, monday.AddDate(0, 0, 7).Add(8*time.Hour), 999),  // next week, excluded
	}

	report := WeeklyRollup(meals, target, monday.AddDate(0, 0, 4)) // a Friday in that week
	assert.Equal(t, monday, report.WeekStart)
	assert.Equal(t, 2000.0, report.DailyTotals[0])
	assert.Equal(t, 1000.0, report.DailyTotals[2])
	assert.Equal(t, 3000.0, report.Total)
	assert.Equal(t, 2, report.DaysLogged)
	assert.Equal(t, 1500.0, report.Average, "average divides by days with meals, not 7")
	assert.Equal(t, 1, report.TargetMetDays)
}

func TestWeeklyRollupBandIsWiderThanStreakBand(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	// 2300 is out of the streak band (>1.1x) but inside the weekly band (<=1.2x).
	meals := []models.Meal{calMeal(1, monday.Add(12*time.Hour), 2300)}

	report := WeeklyRollup(meals, 2000, monday)
	assert.Equal(t, 1, report.TargetMetDays)
	assert.Equal(t, 0, CleanStreak(meals, 2000, monday.Add(21*time.Hour)))
}

func TestMonthlyTrend(t *testing.T) {
	// Reference Friday; its week starts Monday 2026-03-09.
	ref := time.Date(2026, 3, 13, 10, 0, 0, 0, time.Local)
	thisMonday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)

	meals := []models.Meal{
		calMeal(1, thisMonday.Add(9*time.Hour), 1400),                 // current week
		calMeal(1, thisMonday.AddDate(0, 0, -7).Add(9*time.Hour), 700), // one week back
	}

	points := MonthlyTrend(meals, ref)
	assert.Equal(t, 0.0, points[0])
	assert.Equal(t, 0.0, points[1])
	assert.Equal(t, 100.0, points[2], "divisor is a fixed 7, not days logged")
	assert.Equal(t, 200.0, points[3], "current week is the last point")
}

func TestMacroBreakdown(t *testing.T) {
	got := MacroBreakdown(models.Nutrition{Carbs: 50, Protein: 30, Fat: 10})
	assert.Equal(t, 200.0, got.Carbs)
	assert.Equal(t, 120.0, got.Protein)
	assert.Equal(t, 90.0, got.Fat)
}

func TestMonthlyBurnedCalories(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	assert.Equal(t, 30000.0, MonthlyBurnedCalories(2000, now))
	assert.Equal(t, 2000.0*15, MonthlyBurnedCalories(0, now), "zero target falls back to default")
}

func TestStartOfWeekIsMonday(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.Local)
	assert.Equal(t, monday, startOfWeek(sunday), "Sunday belongs to the Monday-started week")
	assert.Equal(t, monday, startOfWeek(monday.Add(5*time.Hour)))
}
