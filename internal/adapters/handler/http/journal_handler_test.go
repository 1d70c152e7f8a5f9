package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsu-emily/punchie-pass/internal/adapters/llm"
	"github.com/hsu-emily/punchie-pass/internal/adapters/repository"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
)

// cannedCoach always answers with the same coaching payload; failing toggles
// the transport error path.
type cannedCoach struct {
	content string
	failing bool
}

func (c *cannedCoach) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if c.failing {
		return nil, errors.New("completion api down")
	}
	return &llm.Response{Content: c.content, Model: "test-model"}, nil
}

func setupJournalRouter(userID string, coach services.CompletionClient) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := services.NewReflectionService(
		repository.NewInMemoryJournalRepository(),
		repository.NewInMemoryReflectionRepository(),
		repository.NewInMemoryHabitRepository(),
		coach,
	)
	handler := NewJournalHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1", asUser(userID))
	handler.RegisterRoutes(group)

	return router
}

func TestJournalHandler_StartAndContinue(t *testing.T) {
	coach := &cannedCoach{content: `{"reply": "Sounds great!", "suggestions": ["pace", "rewards"]}`}
	router := setupJournalRouter("user-1", coach)

	w := doJSON(t, router, http.MethodPost, "/api/v1/journals", gin.H{"text": "I journaled today"})
	require.Equal(t, http.StatusCreated, w.Code)

	var journal domain.Journal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	require.Len(t, journal.Turns, 2)
	assert.Equal(t, "Sounds great!", journal.Turns[1].Text)
	assert.Equal(t, []string{"pace", "rewards"}, journal.Turns[1].Suggestions)

	w = doJSON(t, router, http.MethodPost, "/api/v1/journals/"+journal.ID+"/turns", gin.H{"text": "more thoughts"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	assert.Len(t, journal.Turns, 4)
}

func TestJournalHandler_StartValidation(t *testing.T) {
	router := setupJournalRouter("user-1", &cannedCoach{content: `{"reply": "ok"}`})

	t.Run("Missing text fails binding", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/journals", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Whitespace text maps to 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/journals", gin.H{"text": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestJournalHandler_CoachOutageStillCreates(t *testing.T) {
	router := setupJournalRouter("user-1", &cannedCoach{failing: true})

	w := doJSON(t, router, http.MethodPost, "/api/v1/journals", gin.H{"text": "anyone there?"})

	require.Equal(t, http.StatusCreated, w.Code)
	var journal domain.Journal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	require.Len(t, journal.Turns, 2)
	assert.Equal(t, domain.TurnRoleAI, journal.Turns[1].Role)
	assert.NotEmpty(t, journal.Turns[1].Text)
}

func TestJournalHandler_SelectSuggestion(t *testing.T) {
	coach := &cannedCoach{content: `{"reply": "Try this", "suggestions": ["small steps"]}`}
	router := setupJournalRouter("user-1", coach)

	w := doJSON(t, router, http.MethodPost, "/api/v1/journals", gin.H{"text": "stuck"})
	require.Equal(t, http.StatusCreated, w.Code)
	var journal domain.Journal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))

	t.Run("Valid index continues the conversation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/journals/"+journal.ID+"/suggestions/0", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var updated domain.Journal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Len(t, updated.Turns, 4)
		assert.Contains(t, updated.Turns[2].Text, "small steps")
	})

	t.Run("Out of range index is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/journals/"+journal.ID+"/suggestions/5", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Non-numeric index is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/journals/"+journal.ID+"/suggestions/first", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestJournalHandler_OwnershipAndDelete(t *testing.T) {
	coach := &cannedCoach{content: `{"reply": "ok"}`}

	svc := services.NewReflectionService(
		repository.NewInMemoryJournalRepository(),
		repository.NewInMemoryReflectionRepository(),
		repository.NewInMemoryHabitRepository(),
		coach,
	)
	journal, err := svc.Start(context.Background(), "user-1", "private")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	handler := NewJournalHandler(svc)

	ownerRouter := gin.New()
	handler.RegisterRoutes(ownerRouter.Group("/api/v1", asUser("user-1")))
	strangerRouter := gin.New()
	handler.RegisterRoutes(strangerRouter.Group("/api/v1", asUser("user-2")))

	w := doJSON(t, strangerRouter, http.MethodGet, "/api/v1/journals/"+journal.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, strangerRouter, http.MethodDelete, "/api/v1/journals/"+journal.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, ownerRouter, http.MethodDelete, "/api/v1/journals/"+journal.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestJournalHandler_Reflections(t *testing.T) {
	router := setupJournalRouter("user-1", &cannedCoach{content: `{"reply": "ok"}`})

	w := doJSON(t, router, http.MethodPost, "/api/v1/reflections", gin.H{"text": "good day"})
	require.Equal(t, http.StatusCreated, w.Code)

	var entry domain.ReflectionEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, "good day", entry.Text)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reflections", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var entries []domain.ReflectionEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestJournalHandler_SuggestHabits(t *testing.T) {
	t.Run("Suggestions returned", func(t *testing.T) {
		coach := &cannedCoach{content: `[{"title": "Read", "target_punches": 7, "time_window": "daily"}]`}
		router := setupJournalRouter("user-1", coach)

		w := doJSON(t, router, http.MethodPost, "/api/v1/suggestions/habits", gin.H{"prompt": "calm habits"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Suggestions []services.HabitSuggestion `json:"suggestions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Suggestions, 1)
		assert.Equal(t, "Read", resp.Suggestions[0].Title)
	})

	t.Run("Upstream failure is 502", func(t *testing.T) {
		router := setupJournalRouter("user-1", &cannedCoach{failing: true})

		w := doJSON(t, router, http.MethodPost, "/api/v1/suggestions/habits", gin.H{"prompt": "anything"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
