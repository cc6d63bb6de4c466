package controllers

import (
	"net/http"
	"time"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"

	"github.com/gin-gonic/gin"
)

type FeedController struct {
	Svc *services.FeedService
}

func NewFeedController(svc *services.FeedService) *FeedController {
	return &FeedController{Svc: svc}
}

func (h *FeedController) Family(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	feed, err := h.Svc.FamilyFeed(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "피드를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *FeedController) Baby(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	feed, err := h.Svc.BabyFeed(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "피드를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *FeedController) Diary(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	date := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = parsed
	}
	day, err := h.Svc.Diary(user.ID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "다이어리를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, day)
}
