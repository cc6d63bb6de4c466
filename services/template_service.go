package services

import (
	"errors"

	"github.com/bird3325/hankki-sub000/models"

	"gorm.io/gorm"
)

var ErrTemplateNotFound = errors.New("템플릿을 찾을 수 없어요")

type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

func (s *TemplateService) List(userID uint) ([]models.MealTemplate, error) {
	var templates []models.MealTemplate
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&templates).Error
	if err != nil {
		return nil, GuardStoreError(err)
	}
	return templates, nil
}

func (s *TemplateService) Get(userID, templateID uint) (*models.MealTemplate, error) {
	var t models.MealTemplate
	err := s.db.Where("id = ? AND user_id = ?", templateID, userID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, GuardStoreError(err)
	}
	return &t, nil
}

// SaveFromMeal snapshots a meal's content, dropping timestamp and
// social fields. Only the owner's meals can be templated; snapshotting
// would otherwise copy content past its sharing level.
func (s *TemplateService) SaveFromMeal(user *models.User, meal *models.Meal) (*models.MealTemplate, error) {
	if user.IsGuest() {
		return nil, ErrGuestReadOnly
	}
	if meal.UserID != user.ID {
		return nil, ErrNotMealOwner
	}
	t := &models.MealTemplate{
		UserID:            user.ID,
		FoodName:          meal.FoodName,
		Description:       meal.Description,
		ImageURL:          meal.ImageURL,
		Type:              meal.Type,
		Ingredients:       meal.Ingredients,
		IngredientDetails: meal.IngredientDetails,
		Nutrition:         meal.Nutrition,
		IsBabyFood:        meal.IsBabyFood,
	}
	if err := s.db.Create(t).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	return t, nil
}

func (s *TemplateService) Delete(user *models.User, templateID uint) error {
	if user.IsGuest() {
		return ErrGuestReadOnly
	}
	err := s.db.Where("id = ? AND user_id = ?", templateID, user.ID).
		Delete(&models.MealTemplate{}).Error
	return GuardStoreError(err)
}
