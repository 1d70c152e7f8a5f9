package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hsu-emily/punchie-pass/internal/adapters/handler/http/middleware"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
)

type JournalHandler struct {
	svc *services.ReflectionService
}

func NewJournalHandler(svc *services.ReflectionService) *JournalHandler {
	return &JournalHandler{
		svc: svc,
	}
}

type startJournalRequest struct {
	Text string `json:"text" binding:"required"`
}

type continueJournalRequest struct {
	Text string `json:"text" binding:"required"`
}

type addReflectionRequest struct {
	Text    string `json:"text" binding:"required"`
	HabitID string `json:"habit_id"`
}

type suggestHabitsRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (h *JournalHandler) RegisterRoutes(router *gin.RouterGroup) {
	journals := router.Group("/journals")
	{
		journals.POST("", h.Start)
		journals.GET("", h.List)
		journals.GET("/:id", h.Get)
		journals.DELETE("/:id", h.Delete)
		journals.POST("/:id/turns", h.Continue)
		journals.POST("/:id/suggestions/:index", h.SelectSuggestion)
	}

	reflections := router.Group("/reflections")
	{
		reflections.POST("", h.AddReflection)
		reflections.GET("", h.ListReflections)
	}

	router.POST("/suggestions/habits", h.SuggestHabits)
}

func (h *JournalHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req startJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	journal, err := h.svc.Start(c.Request.Context(), userID, req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyReflection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, journal)
}

func (h *JournalHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	journals, err := h.svc.ListJournals(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, journals)
}

func (h *JournalHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	journal, err := h.svc.GetJournal(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrJournalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "journal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, journal)
}

func (h *JournalHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.DeleteJournal(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, domain.ErrJournalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "journal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *JournalHandler) Continue(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req continueJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	journal, err := h.svc.Continue(c.Request.Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJournalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "journal not found"})
		case errors.Is(err, domain.ErrEmptyReflection):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, journal)
}

func (h *JournalHandler) SelectSuggestion(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggestion index must be a number"})
		return
	}

	journal, err := h.svc.SelectSuggestion(c.Request.Context(), c.Param("id"), userID, index)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJournalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "journal not found"})
		case errors.Is(err, domain.ErrInvalidTurnIndex):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, journal)
}

func (h *JournalHandler) AddReflection(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req addReflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.svc.AddReflection(c.Request.Context(), userID, req.Text, req.HabitID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyReflection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *JournalHandler) ListReflections(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	entries, err := h.svc.ListReflections(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *JournalHandler) SuggestHabits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req suggestHabitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestions, err := h.svc.SuggestHabits(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "suggestion service unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
