package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsu-emily/punchie-pass/internal/adapters/handler/http/middleware"
	"github.com/hsu-emily/punchie-pass/internal/core/cards"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
)

type CardHandler struct {
	svc *services.CardService
}

func NewCardHandler(svc *services.CardService) *CardHandler {
	return &CardHandler{
		svc: svc,
	}
}

func (h *CardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/templates", h.Templates)

	habits := router.Group("/habits")
	{
		habits.GET("/:id/card", h.Card)
		habits.GET("/:id/card.png", h.CardPNG)
		habits.POST("/:id/share", h.Share)
	}
}

// sizeFromQuery maps ?size= to a display variant. Unknown values fall back to
// the carousel size rather than erroring; the client always gets a card.
func sizeFromQuery(c *gin.Context) cards.SizeVariant {
	if c.Query("size") == string(cards.SizeZoom) {
		return cards.SizeZoom
	}
	return cards.SizeCarousel
}

func (h *CardHandler) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.svc.Templates()})
}

// Card returns the positioned element tree as JSON so clients can render the
// card themselves.
func (h *CardHandler) Card(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	card, err := h.svc.Compose(c.Request.Context(), c.Param("id"), userID, sizeFromQuery(c))
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) CardPNG(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	png, err := h.svc.RenderPNG(c.Request.Context(), c.Param("id"), userID, sizeFromQuery(c))
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *CardHandler) Share(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	result, err := h.svc.Share(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
