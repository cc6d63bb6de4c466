package models

import (
	"time"

	"gorm.io/gorm"
)

// BabyProfile is a tracked child, owned collectively by a family group.
// Meals reference babies by id when available and by name as a fallback
// (legacy records were saved before profiles carried ids), so both keys
// stay queryable.
type BabyProfile struct {
	gorm.Model
	GroupID   uint     `gorm:"index;not null"`
	Name      string   `gorm:"not null"`
	BirthDate string   // YYYY-MM-DD
	Allergies []string `gorm:"serializer:json"`
	Avatar    string
}

// AgeInMonths is always derived, never stored.
func (b *BabyProfile) AgeInMonths(now time.Time) int {
	birth, err := time.ParseInLocation("2006-01-02", b.BirthDate, now.Location())
	if err != nil {
		return 0
	}
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
