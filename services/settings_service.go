package services

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/bird3325/hankki-sub000/models"

	"gorm.io/gorm"
)

// DefaultSettings is the base every stored document merges onto.
func DefaultSettings() models.Settings {
	return models.Settings{
		TargetCalories:   DefaultTargetCalories,
		FastingGoalHours: DefaultFastingGoalHours,
		Notifications: models.NotificationSettings{
			MealReminders: true,
			ReminderTimes: []string{"08:00", "12:00", "18:30"},
			Social:        true,
		},
		DefaultSharing:     models.SharingPublic,
		ShareDiaryCalories: false,
	}
}

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get deep-merges the stored document onto the defaults. Decoding onto
// a populated defaults value means absent fields keep their default —
// a partial persisted document never nulls out nested fields. Load
// failures degrade to pure defaults rather than erroring the caller.
func (s *SettingsService) Get(userID uint) models.Settings {
	cfg := DefaultSettings()
	var row models.UserSettings
	err := s.db.Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("settings load failed for user %d: %v", userID, GuardStoreError(err))
		}
		return cfg
	}
	if row.Raw != "" {
		if err := json.Unmarshal([]byte(row.Raw), &cfg); err != nil {
			log.Printf("settings document malformed for user %d: %v", userID, err)
			return DefaultSettings()
		}
	}
	return cfg
}

// Update merges a partial patch into the stored document, recursively,
// so a client writing {"notifications":{"social":false}} keeps the
// reminder times it never mentioned.
func (s *SettingsService) Update(user *models.User, patch json.RawMessage) (models.Settings, error) {
	if user.IsGuest() {
		return s.Get(user.ID), ErrGuestReadOnly
	}

	var row models.UserSettings
	err := s.db.Where("user_id = ?", user.ID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Get(user.ID), GuardStoreError(err)
	}

	existing := map[string]any{}
	if row.Raw != "" {
		_ = json.Unmarshal([]byte(row.Raw), &existing)
	}
	incoming := map[string]any{}
	if err := json.Unmarshal(patch, &incoming); err != nil {
		return s.Get(user.ID), errors.New("설정 형식이 올바르지 않아요")
	}
	merged := mergeJSON(existing, incoming)
	raw, err := json.Marshal(merged)
	if err != nil {
		return s.Get(user.ID), err
	}

	row.UserID = user.ID
	row.Raw = string(raw)
	if err := s.db.Where("user_id = ?", user.ID).Assign(models.UserSettings{Raw: row.Raw}).
		FirstOrCreate(&row).Error; err != nil {
		return s.Get(user.ID), GuardStoreError(err)
	}
	return s.Get(user.ID), nil
}

// mergeJSON overlays src onto dst, descending into objects.
func mergeJSON(dst, src map[string]any) map[string]any {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				dst[k] = mergeJSON(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}
