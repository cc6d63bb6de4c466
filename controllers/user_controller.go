package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/bird3325/hankki-sub000/config"
	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"
	"github.com/bird3325/hankki-sub000/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Settings *services.SettingsService
}

func NewUserController(settings *services.SettingsService) *UserController {
	return &UserController{Settings: settings}
}

func (h *UserController) GetProfile(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":     user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"avatar": user.Avatar,
		"guest":  user.IsGuest(),
	})
}

func (h *UserController) UpdateProfile(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	if user.IsGuest() {
		c.JSON(http.StatusForbidden, gin.H{"error": services.ErrGuestReadOnly.Error()})
		return
	}
	var body struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"` // data URL or existing URL
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Name != "" {
		user.Name = body.Name
	}
	if body.Avatar != "" {
		avatar := body.Avatar
		if utils.IsDataURL(avatar) {
			url, err := utils.UploadBase64Image(avatar, "avatars")
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": "사진을 업로드하지 못했어요"})
				return
			}
			avatar = url
		}
		user.Avatar = avatar
	}
	if err := config.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "프로필을 저장하지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (h *UserController) GetSettings(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	c.JSON(http.StatusOK, h.Settings.Get(user.ID))
}

// UpdateSettings accepts a partial document and deep-merges it.
func (h *UserController) UpdateSettings(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	var patch json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	merged, err := h.Settings.Update(user, patch)
	if err != nil {
		status := http.StatusBadRequest
		if err == services.ErrGuestReadOnly {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, merged)
}
