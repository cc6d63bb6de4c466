package models

import "gorm.io/gorm"

// UserSettings stores the raw settings JSON as written by the client.
// Partial documents are expected; SettingsService deep-merges Raw onto
// the defaults on load so missing nested fields never null out.
type UserSettings struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex;not null"`
	Raw    string `gorm:"type:jsonb;default:'{}'"`
}

// Settings is the fully-populated view handed to the rest of the app.
type Settings struct {
	TargetCalories     float64              `json:"targetCalories"`
	FastingGoalHours   float64              `json:"fastingGoalHours"`
	Notifications      NotificationSettings `json:"notifications"`
	DefaultSharing     string               `json:"defaultSharing"`
	ShareDiaryCalories bool                 `json:"shareDiaryCalories"`
}

type NotificationSettings struct {
	MealReminders bool     `json:"mealReminders"`
	ReminderTimes []string `json:"reminderTimes"` // "HH:MM"
	Social        bool     `json:"social"`
}
