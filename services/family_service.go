package services

import (
	"errors"

	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"

	"gorm.io/gorm"
)

var (
	ErrInviteCodeNotFound = errors.New("초대 코드를 찾을 수 없어요")
	ErrNotGroupAdmin      = errors.New("관리자만 할 수 있는 동작입니다")
	ErrBabyNotFound       = errors.New("아기 정보를 찾을 수 없어요")
)

type FamilyService struct {
	db *gorm.DB
}

func NewFamilyService(db *gorm.DB) *FamilyService {
	return &FamilyService{db: db}
}

func (s *FamilyService) CreateGroup(user *models.User, name string) (*models.FamilyGroup, error) {
	if user.IsGuest() {
		return nil, ErrGuestReadOnly
	}
	group := &models.FamilyGroup{
		Name:       name,
		InviteCode: utils.NewInviteCode(),
		CreatorID:  user.ID,
	}
	if err := s.db.Create(group).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	member := &models.FamilyMember{GroupID: group.ID, UserID: user.ID, Role: models.RoleAdmin}
	if err := s.db.Create(member).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	return group, nil
}

func (s *FamilyService) JoinByCode(user *models.User, code string) (*models.FamilyGroup, error) {
	if user.IsGuest() {
		return nil, ErrGuestReadOnly
	}
	var group models.FamilyGroup
	err := s.db.Where("invite_code = ?", code).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteCodeNotFound
		}
		return nil, GuardStoreError(err)
	}
	var existing models.FamilyMember
	err = s.db.Where("group_id = ? AND user_id = ?", group.ID, user.ID).First(&existing).Error
	if err == nil {
		return &group, nil // already a member
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, GuardStoreError(err)
	}
	member := &models.FamilyMember{GroupID: group.ID, UserID: user.ID, Role: models.RoleMember}
	if err := s.db.Create(member).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	return &group, nil
}

func (s *FamilyService) Leave(user *models.User, groupID uint) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, user.ID).
		Delete(&models.FamilyMember{}).Error
	return GuardStoreError(err)
}

// Groups lists every group the user belongs to, members and babies
// preloaded.
func (s *FamilyService) Groups(userID uint) ([]models.FamilyGroup, error) {
	var memberships []models.FamilyMember
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	if len(memberships) == 0 {
		return []models.FamilyGroup{}, nil
	}
	ids := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.GroupID)
	}
	var groups []models.FamilyGroup
	err := s.db.Preload("Members").Preload("Babies").Where("id IN ?", ids).Find(&groups).Error
	if err != nil {
		return nil, GuardStoreError(err)
	}
	return groups, nil
}

// PrimaryGroup is the group treated as "mine" for invite-code display:
// the one whose creator is the current user.
func (s *FamilyService) PrimaryGroup(userID uint) (*models.FamilyGroup, error) {
	var group models.FamilyGroup
	err := s.db.Preload("Members").Preload("Babies").
		Where("creator_id = ?", userID).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, GuardStoreError(err)
	}
	return &group, nil
}

// FriendIDs derives the viewer's co-member set fresh from the store.
// "Partners" visibility means sharing any group with the owner, so this
// is a union across all of the viewer's groups. Never cached: group
// membership is mutable and the privacy filter must see current state.
func (s *FamilyService) FriendIDs(userID uint) (FriendSet, error) {
	var memberships []models.FamilyMember
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	friends := FriendSet{}
	if len(memberships) == 0 {
		return friends, nil
	}
	ids := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.GroupID)
	}
	var others []models.FamilyMember
	if err := s.db.Where("group_id IN ?", ids).Find(&others).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	for _, m := range others {
		if m.UserID != userID {
			friends[m.UserID] = struct{}{}
		}
	}
	return friends, nil
}

// Babies collects the baby profiles across all of the user's groups.
func (s *FamilyService) Babies(userID uint) ([]models.BabyProfile, error) {
	groups, err := s.Groups(userID)
	if err != nil {
		return nil, err
	}
	var babies []models.BabyProfile
	for _, g := range groups {
		babies = append(babies, g.Babies...)
	}
	return babies, nil
}

// Baby fetches one profile, scoped to the user's groups.
func (s *FamilyService) Baby(userID, babyID uint) (*models.BabyProfile, error) {
	babies, err := s.Babies(userID)
	if err != nil {
		return nil, err
	}
	for i := range babies {
		if babies[i].ID == babyID {
			return &babies[i], nil
		}
	}
	return nil, ErrBabyNotFound
}

func (s *FamilyService) isAdmin(userID, groupID uint) (bool, error) {
	var member models.FamilyMember
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, GuardStoreError(err)
	}
	return member.Role == models.RoleAdmin, nil
}

func (s *FamilyService) AddBaby(user *models.User, groupID uint, baby *models.BabyProfile) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	admin, err := s.isAdmin(user.ID, groupID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrNotGroupAdmin
	}
	baby.GroupID = groupID
	if err := s.db.Create(baby).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(user.ID, "baby_profiles", "INSERT")
	return nil
}

func (s *FamilyService) UpdateBaby(user *models.User, baby *models.BabyProfile) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	admin, err := s.isAdmin(user.ID, baby.GroupID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrNotGroupAdmin
	}
	if err := s.db.Save(baby).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(user.ID, "baby_profiles", "UPDATE")
	return nil
}

func (s *FamilyService) DeleteBaby(user *models.User, babyID uint) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	baby, err := s.Baby(user.ID, babyID)
	if err != nil {
		return err
	}
	admin, err := s.isAdmin(user.ID, baby.GroupID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrNotGroupAdmin
	}
	if err := s.db.Delete(&models.BabyProfile{}, babyID).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(user.ID, "baby_profiles", "DELETE")
	return nil
}

// Invite mails the group's invite code.
func (s *FamilyService) Invite(user *models.User, groupID uint, email string) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	var group models.FamilyGroup
	if err := s.db.First(&group, groupID).Error; err != nil {
		return GuardStoreError(err)
	}
	return utils.SendInviteEmail(email, group.Name, group.InviteCode)
}
