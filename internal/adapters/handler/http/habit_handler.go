package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsu-emily/punchie-pass/internal/adapters/handler/http/middleware"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type themePayload struct {
	Emoji          string `json:"emoji"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

type createHabitRequest struct {
	Title          string        `json:"title" binding:"required"`
	Description    string        `json:"description"`
	Reward         string        `json:"reward"`
	TimeWindow     string        `json:"time_window"`
	CardTemplateID string        `json:"card_template_id"`
	TargetPunches  int           `json:"target_punches" binding:"required,min=1"`
	Icons          []string      `json:"icons"`
	Theme          *themePayload `json:"theme"`
}

type updateHabitRequest struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Reward         string        `json:"reward"`
	TimeWindow     string        `json:"time_window"`
	CardTemplateID string        `json:"card_template_id"`
	TargetPunches  int           `json:"target_punches"`
	Icons          []string      `json:"icons"`
	Theme          *themePayload `json:"theme"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/punch", h.Punch)
		habits.POST("/:id/undo", h.Undo)
		habits.POST("/:id/reset", h.Reset)
	}
}

func toTheme(p *themePayload) domain.Theme {
	if p == nil {
		return domain.Theme{}
	}
	return domain.Theme{
		Emoji:          p.Emoji,
		PrimaryColor:   p.PrimaryColor,
		SecondaryColor: p.SecondaryColor,
	}
}

func isHabitValidationError(err error) bool {
	return errors.Is(err, domain.ErrHabitTitleEmpty) ||
		errors.Is(err, domain.ErrHabitTitleTooLong) ||
		errors.Is(err, domain.ErrHabitDescTooLong) ||
		errors.Is(err, domain.ErrInvalidTarget) ||
		errors.Is(err, domain.ErrInvalidTimeWindow) ||
		errors.Is(err, domain.ErrTooManyIcons) ||
		errors.Is(err, domain.ErrInvalidColor)
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateHabitInput{
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Reward:         req.Reward,
		TimeWindow:     req.TimeWindow,
		CardTemplateID: req.CardTemplateID,
		TargetPunches:  req.TargetPunches,
		Icons:          req.Icons,
		Theme:          toTheme(req.Theme),
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if isHabitValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var theme *domain.Theme
	if req.Theme != nil {
		t := toTheme(req.Theme)
		theme = &t
	}

	input := services.UpdateHabitInput{
		ID:             c.Param("id"),
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Reward:         req.Reward,
		TimeWindow:     req.TimeWindow,
		CardTemplateID: req.CardTemplateID,
		TargetPunches:  req.TargetPunches,
		Icons:          req.Icons,
		Theme:          theme,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if isHabitValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Punch records one punch. The response carries the refreshed habit plus a
// completed flag so the client can trigger its celebration without a second
// round-trip.
func (h *HabitHandler) Punch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	id := c.Param("id")

	completed, err := h.svc.Punch(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit":     habit,
		"completed": completed,
	})
}

func (h *HabitHandler) Undo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.Undo(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Reset(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.Reset(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}
