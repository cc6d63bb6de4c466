package models

import "gorm.io/gorm"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// FamilyGroup is the sharing boundary for "partners" visibility.
// A user may belong to several groups; the group whose creator is the
// current user is treated as that user's primary group for invite-code
// display.
type FamilyGroup struct {
	gorm.Model
	Name       string
	InviteCode string `gorm:"uniqueIndex;not null;size:20"`
	CreatorID  uint   `gorm:"index;not null"`

	Members []FamilyMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Babies  []BabyProfile  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

type FamilyMember struct {
	gorm.Model
	GroupID uint   `gorm:"uniqueIndex:idx_group_user;not null"`
	UserID  uint   `gorm:"uniqueIndex:idx_group_user;not null"`
	Role    string `gorm:"default:member;size:16"`
}
