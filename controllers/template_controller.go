package controllers

import (
	"net/http"
	"strconv"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"

	"github.com/gin-gonic/gin"
)

type TemplateController struct {
	Svc   *services.TemplateService
	Meals *services.MealService
}

func NewTemplateController(svc *services.TemplateService, meals *services.MealService) *TemplateController {
	return &TemplateController{Svc: svc, Meals: meals}
}

func (h *TemplateController) List(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	templates, err := h.Svc.List(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "템플릿을 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// SaveFromMeal snapshots an existing meal as a reusable template.
func (h *TemplateController) SaveFromMeal(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	var body struct {
		MealID uint `json:"mealId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.Meals.GetMeal(body.MealID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	t, err := h.Svc.SaveFromMeal(user, meal)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TemplateController) Delete(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	if err := h.Svc.Delete(user, uint(templateID)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
