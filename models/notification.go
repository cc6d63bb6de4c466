package models

import "time"

// Notification is the stored record behind a social push (like, comment)
// or a changefeed invalidation that was also worth surfacing.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Type      string `gorm:"size:20"` // "like" | "comment" | "info"
	Message   string `gorm:"type:text"`
	MealID    uint
	CreatedAt time.Time
}
