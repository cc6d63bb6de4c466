package services

import (
	"sort"
	"time"

	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"

	"gorm.io/gorm"
)

const babyPlaceholderName = "아기"

// BabyRef is the display identity a baby meal resolved to.
type BabyRef struct {
	Profile  *models.BabyProfile `json:"profile,omitempty"`
	Name     string              `json:"name"`
	Resolved bool                `json:"resolved"`
}

// ResolveBaby is the one two-step lookup used everywhere a meal needs a
// baby identity: id key first, name fallback, placeholder on miss.
// Legacy records carry only a name, so the fallback is a compatibility
// requirement, and a miss degrades to a placeholder instead of dropping
// the meal.
func ResolveBaby(m *models.Meal, babies []models.BabyProfile) BabyRef {
	if m.BabyID != nil {
		for i := range babies {
			if babies[i].ID == *m.BabyID {
				return BabyRef{Profile: &babies[i], Name: babies[i].Name, Resolved: true}
			}
		}
	}
	if m.BabyName != "" {
		for i := range babies {
			if babies[i].Name == m.BabyName {
				return BabyRef{Profile: &babies[i], Name: babies[i].Name, Resolved: true}
			}
		}
		return BabyRef{Name: m.BabyName}
	}
	return BabyRef{Name: babyPlaceholderName}
}

// MealForBaby applies the same dual-key rules to membership checks.
func MealForBaby(m *models.Meal, baby *models.BabyProfile) bool {
	if !m.IsBabyFood {
		return false
	}
	if m.BabyID != nil {
		return *m.BabyID == baby.ID
	}
	return m.BabyName != "" && m.BabyName == baby.Name
}

// ComposeFamilyFeed filters to visible non-baby meals, newest first.
// The sort is stable so meals with equal timestamps keep fetch order.
// Feed visibility and nutrition detail are separate gates: a meal the
// viewer may see still gets its numbers redacted unless the owner opted
// into sharing them.
func ComposeFamilyFeed(meals []models.Meal, viewerID uint, friends FriendSet) []models.Meal {
	out := make([]models.Meal, 0, len(meals))
	for i := range meals {
		if meals[i].IsBabyFood {
			continue
		}
		if !IsFeedVisible(&meals[i], viewerID, friends) {
			continue
		}
		out = append(out, meals[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AteAt.After(out[j].AteAt)
	})
	for i := range out {
		if !CanSeeNutritionDetail(&out[i], viewerID) {
			RedactNutritionDetail(&out[i])
		}
	}
	return out
}

type BabyFeedItem struct {
	Meal models.Meal `json:"meal"`
	Baby BabyRef     `json:"baby"`
}

// ComposeBabyFeed mirrors the family feed for baby meals and attaches
// the resolved baby identity for avatar/age display.
func ComposeBabyFeed(meals []models.Meal, viewerID uint, friends FriendSet, babies []models.BabyProfile) []BabyFeedItem {
	filtered := make([]models.Meal, 0, len(meals))
	for i := range meals {
		if !meals[i].IsBabyFood {
			continue
		}
		if !IsFeedVisible(&meals[i], viewerID, friends) {
			continue
		}
		filtered = append(filtered, meals[i])
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].AteAt.After(filtered[j].AteAt)
	})
	out := make([]BabyFeedItem, 0, len(filtered))
	for i := range filtered {
		out = append(out, BabyFeedItem{Meal: filtered[i], Baby: ResolveBaby(&filtered[i], babies)})
	}
	return out
}

// DiaryDay is the three-way partition for a single calendar day.
type DiaryDay struct {
	Mine    []models.Meal            `json:"mine"`
	Friends []models.Meal            `json:"friends"`
	Babies  map[string][]models.Meal `json:"babies"` // keyed by resolved baby name
}

// ComposeDiaryForDate partitions one local midnight-to-midnight day.
// Friends' entries require the stronger ShareDiaryCalories opt-in on top
// of group co-membership; feed-level sharing alone is not enough here.
func ComposeDiaryForDate(meals []models.Meal, date time.Time, viewerID uint, friends FriendSet, babies []models.BabyProfile) DiaryDay {
	start := dayStart(date)
	end := start.AddDate(0, 0, 1)

	day := DiaryDay{
		Mine:    []models.Meal{},
		Friends: []models.Meal{},
		Babies:  map[string][]models.Meal{},
	}
	for i := range meals {
		m := meals[i]
		if m.AteAt.Before(start) || !m.AteAt.Before(end) {
			continue
		}
		switch {
		case m.IsBabyFood:
			ref := ResolveBaby(&m, babies)
			day.Babies[ref.Name] = append(day.Babies[ref.Name], m)
		case m.UserID == viewerID:
			day.Mine = append(day.Mine, m)
		case m.ShareDiaryCalories && friends.Has(m.UserID):
			day.Friends = append(day.Friends, m)
		}
	}
	return day
}

// FeedService is the store-backed wrapper around the pure composers.
type FeedService struct {
	db  *gorm.DB
	fam *FamilyService
}

func NewFeedService(db *gorm.DB, fam *FamilyService) *FeedService {
	return &FeedService{db: db, fam: fam}
}

// publicSharingLevels are the levels anyone may reach at fetch time.
// The empty level predates the sharing field and normalizes to public
// downstream, so the query has to match it the same way.
var publicSharingLevels = []string{models.SharingPublic, ""}

// fetchReachable loads everything the composer might show the viewer:
// own meals, friends' meals and public ones, social preloaded,
// normalized at the boundary.
func (s *FeedService) fetchReachable(viewerID uint, friends FriendSet) ([]models.Meal, error) {
	ids := make([]uint, 0, len(friends)+1)
	ids = append(ids, viewerID)
	for id := range friends {
		ids = append(ids, id)
	}

	var meals []models.Meal
	err := s.db.
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("user_id IN ? OR sharing_level IN ?", ids, publicSharingLevels).
		Order("ate_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, GuardStoreError(err)
	}
	return utils.NormalizeMeals(meals), nil
}

func (s *FeedService) FamilyFeed(viewerID uint) ([]models.Meal, error) {
	friends, err := s.fam.FriendIDs(viewerID)
	if err != nil {
		return nil, err
	}
	meals, err := s.fetchReachable(viewerID, friends)
	if err != nil {
		return nil, err
	}
	return ComposeFamilyFeed(meals, viewerID, friends), nil
}

func (s *FeedService) BabyFeed(viewerID uint) ([]BabyFeedItem, error) {
	friends, err := s.fam.FriendIDs(viewerID)
	if err != nil {
		return nil, err
	}
	babies, err := s.fam.Babies(viewerID)
	if err != nil {
		return nil, err
	}
	meals, err := s.fetchReachable(viewerID, friends)
	if err != nil {
		return nil, err
	}
	return ComposeBabyFeed(meals, viewerID, friends, babies), nil
}

func (s *FeedService) Diary(viewerID uint, date time.Time) (*DiaryDay, error) {
	friends, err := s.fam.FriendIDs(viewerID)
	if err != nil {
		return nil, err
	}
	babies, err := s.fam.Babies(viewerID)
	if err != nil {
		return nil, err
	}
	meals, err := s.fetchReachable(viewerID, friends)
	if err != nil {
		return nil, err
	}
	day := ComposeDiaryForDate(meals, date, viewerID, friends, babies)
	return &day, nil
}
