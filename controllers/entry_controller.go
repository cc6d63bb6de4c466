package controllers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/bird3325/hankki-sub000/middlewares"
	"github.com/bird3325/hankki-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

type EntryController struct {
	Svc       *services.EntryService
	Templates *services.TemplateService
	Family    *services.FamilyService
}

func NewEntryController(svc *services.EntryService, templates *services.TemplateService, family *services.FamilyService) *EntryController {
	return &EntryController{Svc: svc, Templates: templates, Family: family}
}

func (h *EntryController) Start(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	var body struct {
		NativeBridge bool `json:"nativeBridge"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	sessionID := xid.New().String()
	session := h.Svc.Start(sessionID, user.ID, user.IsGuest())
	if body.NativeBridge {
		session.EnableBridge()
	}
	c.JSON(http.StatusCreated, gin.H{"sessionId": sessionID, "state": session.State()})
}

func (h *EntryController) session(c *gin.Context) (*services.EntrySession, bool) {
	s, ok := h.Svc.Get(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "세션이 만료되었어요. 처음부터 다시 시도해 주세요"})
		return nil, false
	}
	return s, true
}

func decodeDataURL(dataURL string) ([]byte, bool) {
	parts := strings.SplitN(dataURL, ",", 2)
	if len(parts) != 2 {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Location receives the host-app bridge callback while an analysis for
// the session may still be waiting on it.
func (h *EntryController) Location(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var body services.Location
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session.ProvideLocation(&body)
	c.JSON(http.StatusOK, gin.H{"message": "received"})
}

// Analyze attaches the captured image. A browser client sends its
// geolocation inline; a wrapped client omits it and the session waits
// briefly for the bridge callback instead. Absent entirely is valid.
func (h *EntryController) Analyze(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Image    string             `json:"image" binding:"required"` // data URL
		Location *services.Location `json:"location"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, ok := decodeDataURL(body.Image)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미지 형식이 올바르지 않아요"})
		return
	}
	if err := session.AttachImage(c.Request.Context(), raw, body.Image, body.Location); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "state": session.State()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.State(), "draft": session.Draft()})
}

func (h *EntryController) Reanalyze(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Reanalyze(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "state": session.State()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": session.State(), "draft": session.Draft()})
}

// FromTemplate skips analysis and jumps to review.
func (h *EntryController) FromTemplate(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	session, ok := h.session(c)
	if !ok {
		return
	}
	templateID, err := strconv.ParseUint(c.Param("tid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	t, err := h.Templates.Get(user.ID, uint(templateID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	session.FromTemplate(t)
	c.JSON(http.StatusOK, gin.H{"state": session.State(), "draft": session.Draft()})
}

func (h *EntryController) Manual(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Manual()
	c.JSON(http.StatusOK, gin.H{"state": session.State(), "draft": session.Draft()})
}

// Edit applies review-step field edits. Ingredient set changes kick off
// a background recalculation; the response reports it via recalculating.
func (h *EntryController) Edit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		FoodName     *string  `json:"foodName"`
		Description  *string  `json:"description"`
		Type         *string  `json:"type"`
		Calories     *float64 `json:"calories"`
		Ingredients  []string `json:"ingredients"`
		LocationName *string  `json:"locationName"`
		SharingLevel *string  `json:"sharingLevel"`
		ShareDiary   *bool    `json:"shareDiaryCalories"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.FoodName != nil {
		session.SetFoodName(*body.FoodName)
	}
	if body.Description != nil {
		session.SetDescription(*body.Description)
	}
	if body.Type != nil {
		session.SetType(*body.Type)
	}
	if body.LocationName != nil {
		session.SetLocationName(*body.LocationName)
	}
	if body.Calories != nil {
		session.SetCalories(*body.Calories)
	}
	if body.SharingLevel != nil || body.ShareDiary != nil {
		draft := session.Draft()
		level := draft.SharingLevel
		share := draft.ShareDiaryCalories
		if body.SharingLevel != nil {
			level = *body.SharingLevel
		}
		if body.ShareDiary != nil {
			share = *body.ShareDiary
		}
		session.SetSharing(level, share)
	}
	if body.Ingredients != nil {
		session.SetIngredients(c.Request.Context(), body.Ingredients)
	}
	c.JSON(http.StatusOK, gin.H{
		"state":         session.State(),
		"draft":         session.Draft(),
		"recalculating": session.IsRecalculating(),
		"warnings":      session.AllergenWarnings(),
	})
}

// BabyMode selects the target baby and reaction for this entry and
// returns the advisory allergen warnings for the current ingredients.
func (h *EntryController) BabyMode(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	session, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		BabyID   uint   `json:"babyId"`
		Reaction string `json:"reaction"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.BabyID == 0 {
		session.SetBabyMode(nil, "")
		c.JSON(http.StatusOK, gin.H{"warnings": nil})
		return
	}
	baby, err := h.Family.Baby(user.ID, body.BabyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	session.SetBabyMode(baby, body.Reaction)
	c.JSON(http.StatusOK, gin.H{"warnings": session.AllergenWarnings()})
}

func (h *EntryController) Save(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	meal, err := session.Save(c.Request.Context())
	if err != nil {
		status := http.StatusBadRequest
		if err == services.ErrGuestReadOnly {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.Svc.Drop(c.Param("sid"))
	c.JSON(http.StatusCreated, meal)
}
