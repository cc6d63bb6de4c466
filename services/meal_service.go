package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"

	"gorm.io/gorm"
)

var (
	ErrOwnMealLike  = errors.New("내 식사에는 좋아요를 누를 수 없어요")
	ErrNotMealOwner = errors.New("본인 기록만 수정할 수 있어요")
	ErrEmptyComment = errors.New("댓글 내용을 입력해 주세요")
	ErrMealNotFound = errors.New("기록을 찾을 수 없어요")
)

type MealService struct {
	db  *gorm.DB
	fam *FamilyService
}

func NewMealService(db *gorm.DB, fam *FamilyService) *MealService {
	return &MealService{db: db, fam: fam}
}

// CreateMeal satisfies MealWriter for the entry workflow.
func (s *MealService) CreateMeal(m *models.Meal) error {
	if err := s.db.Create(m).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(m.UserID, "meals", "INSERT")
	return nil
}

func (s *MealService) GetMeal(mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&meal, mealID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, GuardStoreError(err)
	}
	utils.NormalizeMeal(&meal)
	return &meal, nil
}

// resolveViewerMeal applies the read-path privacy rules to a fetched
// meal. An invisible meal reads as missing so its existence never
// leaks, and a visible one without the nutrition opt-in goes out
// redacted.
func resolveViewerMeal(meal *models.Meal, viewerID uint, friends FriendSet) (*models.Meal, error) {
	if meal.UserID == viewerID {
		return meal, nil
	}
	if !IsFeedVisible(meal, viewerID, friends) {
		return nil, ErrMealNotFound
	}
	if !CanSeeNutritionDetail(meal, viewerID) {
		RedactNutritionDetail(meal)
	}
	return meal, nil
}

// GetMealForViewer is the fetch every non-owner read goes through.
// Friend membership is derived fresh per request; it is never cached.
func (s *MealService) GetMealForViewer(viewerID, mealID uint) (*models.Meal, error) {
	meal, err := s.GetMeal(mealID)
	if err != nil {
		return nil, err
	}
	if meal.UserID == viewerID {
		return meal, nil
	}
	friends, err := s.fam.FriendIDs(viewerID)
	if err != nil {
		return nil, err
	}
	return resolveViewerMeal(meal, viewerID, friends)
}

// MealUpdate carries the owner-editable fields.
type MealUpdate struct {
	FoodName           *string           `json:"foodName"`
	Description        *string           `json:"description"`
	Type               *string           `json:"type"`
	Ingredients        []string          `json:"ingredients"`
	Nutrition          *models.Nutrition `json:"nutrition"`
	SharingLevel       *string           `json:"sharingLevel"`
	ShareDiaryCalories *bool             `json:"shareDiaryCalories"`
}

func (s *MealService) UpdateMeal(user *models.User, mealID uint, upd MealUpdate) (*models.Meal, error) {
	if user.IsGuest() {
		return nil, ErrGuestReadOnly
	}
	meal, err := s.GetMeal(mealID)
	if err != nil {
		return nil, err
	}
	if meal.UserID != user.ID {
		return nil, ErrNotMealOwner
	}
	if upd.FoodName != nil {
		meal.FoodName = *upd.FoodName
	}
	if upd.Description != nil {
		meal.Description = *upd.Description
	}
	if upd.Type != nil {
		meal.Type = *upd.Type
	}
	if upd.Ingredients != nil {
		meal.Ingredients = upd.Ingredients
	}
	if upd.Nutrition != nil {
		meal.Nutrition = *upd.Nutrition
	}
	if upd.SharingLevel != nil {
		meal.SharingLevel = *upd.SharingLevel
	}
	if upd.ShareDiaryCalories != nil {
		meal.ShareDiaryCalories = *upd.ShareDiaryCalories
	}
	if err := s.db.Save(meal).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	EmitMealChange(meal.UserID, "meals", "UPDATE")
	return meal, nil
}

// DeleteMeal is the owner's hard delete.
func (s *MealService) DeleteMeal(user *models.User, mealID uint) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	meal, err := s.GetMeal(mealID)
	if err != nil {
		return err
	}
	if meal.UserID != user.ID {
		return ErrNotMealOwner
	}
	if err := s.db.Where("meal_id = ?", mealID).Delete(&models.MealLike{}).Error; err != nil {
		return GuardStoreError(err)
	}
	if err := s.db.Where("meal_id = ?", mealID).Delete(&models.MealComment{}).Error; err != nil {
		return GuardStoreError(err)
	}
	if err := s.db.Delete(&models.Meal{}, mealID).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(user.ID, "meals", "DELETE")
	return nil
}

// RemoveFromFeed is the soft variant: sharing forced to private, record
// otherwise retained.
func (s *MealService) RemoveFromFeed(user *models.User, mealID uint) (*models.Meal, error) {
	private := models.SharingPrivate
	return s.UpdateMeal(user, mealID, MealUpdate{SharingLevel: &private})
}

// Like adds the viewer to the like set. Self-likes are rejected and a
// duplicate is a no-op; both guards live here at the action boundary,
// not as stored constraints the client has to interpret.
func (s *MealService) Like(user *models.User, mealID uint) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	meal, err := s.GetMealForViewer(user.ID, mealID)
	if err != nil {
		return err
	}
	if meal.UserID == user.ID {
		return ErrOwnMealLike
	}
	var existing models.MealLike
	err = s.db.Where("meal_id = ? AND user_id = ?", mealID, user.ID).First(&existing).Error
	if err == nil {
		return nil // already liked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return GuardStoreError(err)
	}
	if err := s.db.Create(&models.MealLike{MealID: mealID, UserID: user.ID}).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(meal.UserID, "meal_likes", "INSERT")
	EmitSocial(meal.UserID, "like", fmt.Sprintf("%s님이 회원님의 식사를 좋아해요", user.Name), mealID)
	return nil
}

func (s *MealService) Unlike(user *models.User, mealID uint) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	meal, err := s.GetMeal(mealID)
	if err != nil {
		return err
	}
	if err := s.db.Where("meal_id = ? AND user_id = ?", mealID, user.ID).
		Delete(&models.MealLike{}).Error; err != nil {
		return GuardStoreError(err)
	}
	EmitMealChange(meal.UserID, "meal_likes", "DELETE")
	return nil
}

// AddComment appends to the chronological comment list.
func (s *MealService) AddComment(user *models.User, mealID uint, text string) (*models.MealComment, error) {
	if user.IsGuest() {
		return nil, ErrGuestReadOnly
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	meal, err := s.GetMealForViewer(user.ID, mealID)
	if err != nil {
		return nil, err
	}
	comment := &models.MealComment{
		MealID:   mealID,
		UserID:   user.ID,
		UserName: user.Name,
		Text:     text,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	EmitMealChange(meal.UserID, "meal_comments", "INSERT")
	if meal.UserID != user.ID {
		EmitSocial(meal.UserID, "comment", fmt.Sprintf("%s님이 댓글을 남겼어요: %s", user.Name, text), mealID)
	}
	return comment, nil
}

// CycleReaction advances the baby reaction good → soso → bad → good.
func (s *MealService) CycleReaction(user *models.User, mealID uint) (*models.Meal, error) {
	if user.IsGuest() {
		return nil, ErrGuestReadOnly
	}
	meal, err := s.GetMeal(mealID)
	if err != nil {
		return nil, err
	}
	if meal.UserID != user.ID {
		return nil, ErrNotMealOwner
	}
	switch meal.BabyReaction {
	case models.ReactionGood:
		meal.BabyReaction = models.ReactionSoso
	case models.ReactionSoso:
		meal.BabyReaction = models.ReactionBad
	default:
		meal.BabyReaction = models.ReactionGood
	}
	if err := s.db.Save(meal).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	EmitMealChange(meal.UserID, "meals", "UPDATE")
	return meal, nil
}

// ListOwn returns the viewer's meals newest first, normalized.
func (s *MealService) ListOwn(userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("user_id = ?", userID).
		Order("ate_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, GuardStoreError(err)
	}
	return utils.NormalizeMeals(meals), nil
}
