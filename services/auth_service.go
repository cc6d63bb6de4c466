package services

import (
	"errors"

	"github.com/bird3325/hankki-sub000/config"
	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"

	"gorm.io/gorm"
)

func RegisterUser(email, password, name string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{Email: email, Password: hashed, Name: name}
	return GuardStoreError(config.DB.Create(&user).Error)
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	return &user, nil
}

// EnsureGuestUser makes sure the demo sentinel account exists so guest
// sessions can browse. It never gets write access; the services reject
// it at every mutating entry point.
func EnsureGuestUser() (*models.User, error) {
	user, err := FindUserByEmail(models.GuestEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hashed, err := utils.HashPassword(utils.NewInviteCode())
	if err != nil {
		return nil, err
	}
	guest := models.User{Email: models.GuestEmail, Password: hashed, Name: "체험 계정"}
	if err := config.DB.Create(&guest).Error; err != nil {
		return nil, GuardStoreError(err)
	}
	return &guest, nil
}
