package services

import (
	"time"

	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"

	"gorm.io/gorm"
)

const (
	DefaultTargetCalories   = 2000.0
	DefaultFastingGoalHours = 16.0
	BabyFastingTargetHours  = 4.0

	// Two different tolerance bands, on purpose. The streak band keeps a
	// run alive day over day; the weekly band marks a single day "target
	// met" in the weekly report. Do not unify them; both are pinned by
	// regression tests.
	streakBandLow  = 0.8
	streakBandHigh = 1.1
	weeklyBandLow  = 0.8
	weeklyBandHigh = 1.2

	streakLookbackDays = 30
)

// Fasting labels shown on the home card.
const (
	FastingLabelBurning   = "지방 연소 중"
	FastingLabelOnset     = "공복 진입"
	FastingLabelDigesting = "소화 중"
)

// FastingStatus is the elapsed-since-last-meal card. Known=false means
// no meals at all — a distinct unknown state, not a zero-hour fast.
type FastingStatus struct {
	Known    bool      `json:"known"`
	Hours    int       `json:"hours"`
	Minutes  int       `json:"minutes"`
	Progress float64   `json:"progress"`
	Label    string    `json:"label"`
	LastMeal time.Time `json:"lastMeal"`
}

// FastingWindow takes the latest meal in the list (adult or one baby's)
// and expresses the elapsed window against the target. now is injected;
// nothing in the stats layer reads the wall clock.
func FastingWindow(meals []models.Meal, targetHours float64, now time.Time) FastingStatus {
	if targetHours <= 0 {
		targetHours = DefaultFastingGoalHours
	}
	var last time.Time
	found := false
	for i := range meals {
		if meals[i].AteAt.After(last) {
			last = meals[i].AteAt
			found = true
		}
	}
	if !found {
		return FastingStatus{}
	}
	elapsed := now.Sub(last)
	if elapsed < 0 {
		elapsed = 0
	}
	progress := elapsed.Hours() / targetHours
	if progress > 1 {
		progress = 1
	}
	label := FastingLabelDigesting
	switch {
	case progress >= 0.75:
		label = FastingLabelBurning
	case progress >= 0.5:
		label = FastingLabelOnset
	}
	return FastingStatus{
		Known:    true,
		Hours:    int(elapsed.Hours()),
		Minutes:  int(elapsed.Minutes()) % 60,
		Progress: progress,
		Label:    label,
		LastMeal: last,
	}
}

// DailySummary is the calorie card for one local calendar day, with the
// macro kcal split for the breakdown chart.
type DailySummary struct {
	Total     float64       `json:"total"`
	Target    float64       `json:"target"`
	Percent   float64       `json:"percent"`
	Remaining float64       `json:"remaining"`
	Macros    MacroCalories `json:"macros"`
}

// DailyCalories sums calories over the local midnight-to-midnight day.
// Malformed records already read as zero after normalization, so one bad
// row never aborts the sum.
func DailyCalories(meals []models.Meal, day time.Time) float64 {
	start := dayStart(day)
	end := start.AddDate(0, 0, 1)
	var total float64
	for i := range meals {
		if !meals[i].AteAt.Before(start) && meals[i].AteAt.Before(end) {
			total += meals[i].Nutrition.Calories
		}
	}
	return total
}

func DailySummaryFor(meals []models.Meal, target float64, day time.Time) DailySummary {
	if target <= 0 {
		target = DefaultTargetCalories
	}
	start := dayStart(day)
	end := start.AddDate(0, 0, 1)
	var macros models.Nutrition
	for i := range meals {
		if !meals[i].AteAt.Before(start) && meals[i].AteAt.Before(end) {
			macros.Carbs += meals[i].Nutrition.Carbs
			macros.Protein += meals[i].Nutrition.Protein
			macros.Fat += meals[i].Nutrition.Fat
		}
	}
	total := DailyCalories(meals, day)
	percent := total / target * 100
	if percent > 100 {
		percent = 100
	}
	remaining := target - total
	if remaining < 0 {
		remaining = 0
	}
	return DailySummary{
		Total:     total,
		Target:    target,
		Percent:   percent,
		Remaining: remaining,
		Macros:    MacroBreakdown(macros),
	}
}

// CleanStreak walks backward day-by-day from today over the viewer's own
// non-baby meals, at most 30 days. A day counts while its total stays in
// [0.8, 1.1]×target. A zero-meal day is forgiven only on day 0 — today
// may still be in progress — and skipped without counting; any later
// zero-meal day or out-of-band day ends the walk. The day-0 asymmetry is
// a product rule, not an implementation accident.
func CleanStreak(meals []models.Meal, target float64, now time.Time) int {
	if target <= 0 {
		target = DefaultTargetCalories
	}
	streak := 0
	today := dayStart(now)
	for day := 0; day < streakLookbackDays; day++ {
		d := today.AddDate(0, 0, -day)
		dEnd := d.AddDate(0, 0, 1)
		var total float64
		count := 0
		for i := range meals {
			if !meals[i].AteAt.Before(d) && meals[i].AteAt.Before(dEnd) {
				total += meals[i].Nutrition.Calories
				count++
			}
		}
		if count == 0 {
			if day == 0 {
				continue
			}
			break
		}
		if total < streakBandLow*target || total > streakBandHigh*target {
			break
		}
		streak++
	}
	return streak
}

// WeeklyReport buckets one Monday-starting week.
type WeeklyReport struct {
	WeekStart     time.Time  `json:"weekStart"`
	DailyTotals   [7]float64 `json:"dailyTotals"` // Monday..Sunday
	Total         float64    `json:"total"`
	DaysLogged    int        `json:"daysLogged"`
	Average       float64    `json:"average"` // total / days with ≥1 meal
	TargetMetDays int        `json:"targetMetDays"`
}

// WeeklyRollup averages over days that actually have meals, not over 7.
// Target-met uses the wider [0.8, 1.2]×target band.
func WeeklyRollup(meals []models.Meal, target float64, ref time.Time) WeeklyReport {
	if target <= 0 {
		target = DefaultTargetCalories
	}
	ws := startOfWeek(ref)
	we := ws.AddDate(0, 0, 7)

	var report WeeklyReport
	report.WeekStart = ws
	var counts [7]int
	for i := range meals {
		at := meals[i].AteAt
		if at.Before(ws) || !at.Before(we) {
			continue
		}
		idx := daysBetween(ws, at)
		if idx < 0 || idx > 6 {
			continue
		}
		report.DailyTotals[idx] += meals[i].Nutrition.Calories
		counts[idx]++
	}
	for i := 0; i < 7; i++ {
		report.Total += report.DailyTotals[i]
		if counts[i] == 0 {
			continue
		}
		report.DaysLogged++
		if report.DailyTotals[i] >= weeklyBandLow*target && report.DailyTotals[i] <= weeklyBandHigh*target {
			report.TargetMetDays++
		}
	}
	if report.DaysLogged > 0 {
		report.Average = report.Total / float64(report.DaysLogged)
	}
	return report
}

// MonthlyTrend returns four points, oldest first: the per-day average of
// the Monday-starting week ending i weeks before ref, for i = 3,2,1,0.
// Unlike the weekly rollup, the divisor is a fixed 7 even when some days
// have no meals.
func MonthlyTrend(meals []models.Meal, ref time.Time) [4]float64 {
	var out [4]float64
	base := startOfWeek(ref)
	for i := 3; i >= 0; i-- {
		ws := base.AddDate(0, 0, -7*i)
		we := ws.AddDate(0, 0, 7)
		var total float64
		for j := range meals {
			if !meals[j].AteAt.Before(ws) && meals[j].AteAt.Before(we) {
				total += meals[j].Nutrition.Calories
			}
		}
		out[3-i] = total / 7
	}
	return out
}

// MacroCalories is the 4/4/9 kcal-per-gram conversion used by the
// breakdown chart. Stored calories remain authoritative for totals; the
// AI's estimates are not required to be internally consistent, and we do
// not recompute calories from macros.
type MacroCalories struct {
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

func MacroBreakdown(n models.Nutrition) MacroCalories {
	return MacroCalories{
		Carbs:   n.Carbs * 4,
		Protein: n.Protein * 4,
		Fat:     n.Fat * 9,
	}
}

// MonthlyBurnedCalories is a placeholder heuristic surfaced verbatim in
// the app: target × day-of-month. It is not an energy-expenditure model;
// keep the formula as-is so user-visible numbers do not shift.
func MonthlyBurnedCalories(target float64, now time.Time) float64 {
	if target <= 0 {
		target = DefaultTargetCalories
	}
	return target * float64(now.Day())
}

// ---------- calendar helpers ----------

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	tt := dayStart(t)
	return tt.AddDate(0, 0, -(wd - 1))
}

// daysBetween counts calendar days from a (midnight) to t's day,
// immune to DST-length days.
func daysBetween(a, t time.Time) int {
	d := dayStart(t)
	days := 0
	for cur := a; cur.Before(d) && days < 366; cur = cur.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// ---------- store-backed wrapper ----------

type StatsService struct {
	db       *gorm.DB
	settings *SettingsService
}

func NewStatsService(db *gorm.DB, settings *SettingsService) *StatsService {
	return &StatsService{db: db, settings: settings}
}

// ownAdultMeals loads the viewer's non-baby meals, normalized.
func (s *StatsService) ownAdultMeals(userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.
		Where("user_id = ? AND is_baby_food = ?", userID, false).
		Order("ate_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, GuardStoreError(err)
	}
	return utils.NormalizeMeals(meals), nil
}

func (s *StatsService) Fasting(userID uint, now time.Time) (*FastingStatus, error) {
	meals, err := s.ownAdultMeals(userID)
	if err != nil {
		return nil, err
	}
	cfg := s.settings.Get(userID)
	st := FastingWindow(meals, cfg.FastingGoalHours, now)
	return &st, nil
}

func (s *StatsService) Daily(userID uint, day time.Time) (*DailySummary, error) {
	meals, err := s.ownAdultMeals(userID)
	if err != nil {
		return nil, err
	}
	cfg := s.settings.Get(userID)
	sum := DailySummaryFor(meals, cfg.TargetCalories, day)
	return &sum, nil
}

func (s *StatsService) Streak(userID uint, now time.Time) (int, error) {
	meals, err := s.ownAdultMeals(userID)
	if err != nil {
		return 0, err
	}
	cfg := s.settings.Get(userID)
	return CleanStreak(meals, cfg.TargetCalories, now), nil
}

func (s *StatsService) Weekly(userID uint, ref time.Time) (*WeeklyReport, error) {
	meals, err := s.ownAdultMeals(userID)
	if err != nil {
		return nil, err
	}
	cfg := s.settings.Get(userID)
	report := WeeklyRollup(meals, cfg.TargetCalories, ref)
	return &report, nil
}

func (s *StatsService) Monthly(userID uint, ref time.Time) ([4]float64, error) {
	meals, err := s.ownAdultMeals(userID)
	if err != nil {
		return [4]float64{}, err
	}
	return MonthlyTrend(meals, ref), nil
}

func (s *StatsService) Burned(userID uint, now time.Time) float64 {
	cfg := s.settings.Get(userID)
	return MonthlyBurnedCalories(cfg.TargetCalories, now)
}
