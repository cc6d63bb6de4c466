package controllers

import (
	"net/http"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"
	"github.com/bird3325/hankki-sub000/utils"

	"github.com/gin-gonic/gin"
)

type UploadController struct{}

func NewUploadController() *UploadController {
	return &UploadController{}
}

// Upload stores a base64 data URL image and returns its public URL.
func (h *UploadController) Upload(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	if user.IsGuest() {
		c.JSON(http.StatusForbidden, gin.H{"error": services.ErrGuestReadOnly.Error()})
		return
	}
	var body struct {
		Image  string `json:"image" binding:"required"`
		Prefix string `json:"prefix"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsDataURL(body.Image) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미지 형식이 올바르지 않아요"})
		return
	}
	prefix := body.Prefix
	if prefix == "" {
		prefix = "uploads"
	}
	url, err := utils.UploadBase64Image(body.Image, prefix)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "사진을 업로드하지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
