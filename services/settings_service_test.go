package services

import (
	"encoding/json"
	"testing"

	"github.com/bird3325/hankki-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	assert.Equal(t, 2000.0, cfg.TargetCalories)
	assert.Equal(t, 16.0, cfg.FastingGoalHours)
	assert.Equal(t, models.SharingPublic, cfg.DefaultSharing)
	assert.False(t, cfg.ShareDiaryCalories)
	assert.Equal(t, []string{"08:00", "12:00", "18:30"}, cfg.Notifications.ReminderTimes)
}

func TestMergeJSONDeepMerge(t *testing.T) {
	existing := map[string]any{
		"targetCalories": 1800.0,
		"notifications": map[string]any{
			"mealReminders": true,
			"reminderTimes": []any{"08:00", "12:00"},
			"social":        true,
		},
	}
	incoming := map[string]any{
		"notifications": map[string]any{
			"social": false,
		},
	}

	merged := mergeJSON(existing, incoming)
	notif, ok := merged["notifications"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, notif["social"])
	assert.Equal(t, true, notif["mealReminders"], "untouched nested keys survive")
	assert.Equal(t, []any{"08:00", "12:00"}, notif["reminderTimes"])
	assert.Equal(t, 1800.0, merged["targetCalories"])
}

func TestMergeJSONScalarReplacesObject(t *testing.T) {
	existing := map[string]any{"notifications": map[string]any{"social": true}}
	incoming := map[string]any{"notifications": "off"}
	merged := mergeJSON(existing, incoming)
	assert.Equal(t, "off", merged["notifications"], "type change replaces wholesale")
}

func TestPartialDocumentDecodesOntoDefaults(t *testing.T) {
	// The Get path unmarshals the stored document onto a populated
	// defaults value; absent fields must keep their default.
	cfg := DefaultSettings()
	raw := `{"targetCalories": 1500, "notifications": {"social": false}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, 1500.0, cfg.TargetCalories)
	assert.False(t, cfg.Notifications.Social)
	assert.True(t, cfg.Notifications.MealReminders, "unmentioned nested field keeps default")
	assert.Equal(t, 16.0, cfg.FastingGoalHours)
	assert.Equal(t, []string{"08:00", "12:00", "18:30"}, cfg.Notifications.ReminderTimes)
}
