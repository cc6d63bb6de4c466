package models

import (
	"time"

	"gorm.io/gorm"
)

// GuestEmail is the sentinel demo account. Every mutating service path
// checks it before touching the store; guest sessions are read-only.
const GuestEmail = "guest@hankki.app"

type User struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Name          string
	Avatar        string
	ResetToken    string
	ResetTokenExp time.Time
}

func (u *User) IsGuest() bool {
	return u.Email == GuestEmail
}
