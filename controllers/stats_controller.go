package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Svc  *services.StatsService
	Baby *services.BabyStatsService
}

func NewStatsController(svc *services.StatsService, baby *services.BabyStatsService) *StatsController {
	return &StatsController{Svc: svc, Baby: baby}
}

func refDate(c *gin.Context, key string) (time.Time, bool) {
	ref := time.Now()
	if v := c.Query(key); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
			return time.Time{}, false
		}
		ref = parsed
	}
	return ref, true
}

func (h *StatsController) Fasting(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	st, err := h.Svc.Fasting(user.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "공복 정보를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StatsController) Daily(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	day, ok := refDate(c, "date")
	if !ok {
		return
	}
	sum, err := h.Svc.Daily(user.ID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "일일 요약을 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *StatsController) Streak(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	streak, err := h.Svc.Streak(user.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "스트릭을 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

func (h *StatsController) Weekly(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	ref, ok := refDate(c, "week_of")
	if !ok {
		return
	}
	report, err := h.Svc.Weekly(user.ID, ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "주간 리포트를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *StatsController) Monthly(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	ref, ok := refDate(c, "ref")
	if !ok {
		return
	}
	points, err := h.Svc.Monthly(user.ID, ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "월간 추이를 불러오지 못했어요"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *StatsController) Burned(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"burned": h.Svc.Burned(user.ID, time.Now())})
}

func (h *StatsController) BabyGrowth(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	babyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baby id"})
		return
	}
	report, err := h.Baby.WeeklyGrowth(user.ID, uint(babyID), time.Now())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
