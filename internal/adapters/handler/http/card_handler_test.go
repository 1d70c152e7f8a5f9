package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsu-emily/punchie-pass/internal/adapters/blob"
	"github.com/hsu-emily/punchie-pass/internal/adapters/repository"
	"github.com/hsu-emily/punchie-pass/internal/core/cards"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
)

type fixedRasterizer struct{}

func (fixedRasterizer) Rasterize(ctx context.Context, card cards.RenderedCard) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func setupCardRouter(t *testing.T, userID string) (*gin.Engine, *domain.Habit) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewInMemoryHabitRepository()
	habit, err := domain.NewHabit("user-1", "Evening Walk", "", "", domain.TimeWindowDaily, "sunrise", 10, nil, domain.Theme{})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), habit))

	svc := services.NewCardService(repo, fixedRasterizer{}, blob.NewMemoryStore(""), nil, nil)
	handler := NewCardHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1", asUser(userID))
	handler.RegisterRoutes(group)

	return router, habit
}

func TestCardHandler_Templates(t *testing.T) {
	router, _ := setupCardRouter(t, "user-1")

	w := doJSON(t, router, http.MethodGet, "/api/v1/templates", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Templates []cards.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Templates, 4)
	assert.Equal(t, cards.TemplateClassic, resp.Templates[0].ID)
}

func TestCardHandler_Card(t *testing.T) {
	t.Run("Default size is carousel", func(t *testing.T) {
		router, habit := setupCardRouter(t, "user-1")

		w := doJSON(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID+"/card", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var card cards.RenderedCard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
		assert.Equal(t, cards.SizeCarousel, card.Size)
		assert.Equal(t, "Evening Walk", card.Title.Text)
	})

	t.Run("Zoom size via query", func(t *testing.T) {
		router, habit := setupCardRouter(t, "user-1")

		w := doJSON(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID+"/card?size=zoom", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var card cards.RenderedCard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
		assert.Equal(t, cards.SizeZoom, card.Size)
	})

	t.Run("Unknown size falls back to carousel", func(t *testing.T) {
		router, habit := setupCardRouter(t, "user-1")

		w := doJSON(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID+"/card?size=billboard", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var card cards.RenderedCard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
		assert.Equal(t, cards.SizeCarousel, card.Size)
	})

	t.Run("Foreign habit is 404", func(t *testing.T) {
		router, habit := setupCardRouter(t, "user-2")

		w := doJSON(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID+"/card", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCardHandler_CardPNG(t *testing.T) {
	router, habit := setupCardRouter(t, "user-1")

	w := doJSON(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID+"/card.png", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes())
}

func TestCardHandler_Share(t *testing.T) {
	router, habit := setupCardRouter(t, "user-1")

	w := doJSON(t, router, http.MethodPost, "/api/v1/habits/"+habit.ID+"/share", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result services.ShareResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Contains(t, result.ImageURL, habit.ID)
	// No QR fetcher configured; the share still succeeds without one.
	assert.Nil(t, result.QR)
}
