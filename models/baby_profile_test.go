package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeInMonths(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)

	assert.Equal(t, 9, (&BabyProfile{BirthDate: "2025-06-01"}).AgeInMonths(now))
	assert.Equal(t, 8, (&BabyProfile{BirthDate: "2025-06-20"}).AgeInMonths(now),
		"day-of-month not reached yet")
	assert.Equal(t, 0, (&BabyProfile{BirthDate: "2026-05-01"}).AgeInMonths(now),
		"future birth date clamps to zero")
	assert.Equal(t, 0, (&BabyProfile{BirthDate: "not-a-date"}).AgeInMonths(now))
	assert.Equal(t, 0, (&BabyProfile{}).AgeInMonths(now))
}
