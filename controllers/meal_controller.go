package controllers

import (
	"net/http"
	"strconv"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Svc *services.MealService
}

func NewMealController(svc *services.MealService) *MealController {
	return &MealController{Svc: svc}
}

func mealIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return 0, false
	}
	return uint(id), true
}

func (h *MealController) ListOwn(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	meals, err := h.Svc.ListOwn(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "기록을 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) Get(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	meal, err := h.Svc.GetMealForViewer(user.ID, mealID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealController) Update(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	var upd services.MealUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.Svc.UpdateMeal(user, mealID, upd)
	if err != nil {
		status := http.StatusBadRequest
		if err == services.ErrGuestReadOnly || err == services.ErrNotMealOwner {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealController) Delete(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteMeal(user, mealID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *MealController) RemoveFromFeed(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	meal, err := h.Svc.RemoveFromFeed(user, mealID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealController) Like(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	if err := h.Svc.Like(user, mealID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "liked"})
}

func (h *MealController) Unlike(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	if err := h.Svc.Unlike(user, mealID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unliked"})
}

func (h *MealController) Comment(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.Svc.AddComment(user, mealID, body.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *MealController) CycleReaction(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}
	meal, err := h.Svc.CycleReaction(user, mealID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meal)
}
