package controllers

import (
	"net/http"
	"strconv"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/services"

	"github.com/gin-gonic/gin"
)

type FamilyController struct {
	Svc *services.FamilyService
}

func NewFamilyController(svc *services.FamilyService) *FamilyController {
	return &FamilyController{Svc: svc}
}

func (h *FamilyController) List(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	groups, err := h.Svc.Groups(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "가족 정보를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *FamilyController) Primary(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	group, err := h.Svc.PrimaryGroup(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "가족 정보를 불러오지 못했어요"})
		return
	}
	if group == nil {
		c.JSON(http.StatusOK, gin.H{"group": nil})
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *FamilyController) Create(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := h.Svc.CreateGroup(user, body.Name)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *FamilyController) Join(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := h.Svc.JoinByCode(user, body.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *FamilyController) Leave(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	if err := h.Svc.Leave(user, uint(groupID)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left"})
}

func (h *FamilyController) Invite(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.Invite(user, uint(groupID), body.Email); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "초대 메일을 보내지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invited"})
}

type babyInput struct {
	Name      string   `json:"name" binding:"required"`
	BirthDate string   `json:"birthDate"`
	Allergies []string `json:"allergies"`
	Avatar    string   `json:"avatar"`
}

func (h *FamilyController) AddBaby(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	var body babyInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	baby := &models.BabyProfile{
		Name:      body.Name,
		BirthDate: body.BirthDate,
		Allergies: body.Allergies,
		Avatar:    body.Avatar,
	}
	if err := h.Svc.AddBaby(user, uint(groupID), baby); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, baby)
}

func (h *FamilyController) UpdateBaby(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	babyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baby id"})
		return
	}
	baby, err := h.Svc.Baby(user.ID, uint(babyID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var body babyInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	baby.Name = body.Name
	baby.BirthDate = body.BirthDate
	baby.Allergies = body.Allergies
	baby.Avatar = body.Avatar
	if err := h.Svc.UpdateBaby(user, baby); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, baby)
}

func (h *FamilyController) DeleteBaby(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	babyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baby id"})
		return
	}
	if err := h.Svc.DeleteBaby(user, uint(babyID)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
