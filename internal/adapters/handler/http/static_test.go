package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsu-emily/punchie-pass/internal/adapters/blob"
)

func TestServeStaticBlob(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := blob.NewMemoryStore("http://localhost:8080/static")
	require.NoError(t, store.Upload(context.Background(), "cards/user-1/habit-1.png", []byte("png-bytes"), "image/png"))

	router := gin.New()
	router.GET("/static/*object", serveStaticBlob(store))

	t.Run("The store's own public URL path resolves", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/static/cards/user-1/habit-1.png", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", w.Body.String())
	})

	t.Run("Unknown object is 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/static/cards/user-1/missing.png", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Upload without a content type serves a generic one", func(t *testing.T) {
		require.NoError(t, store.Upload(context.Background(), "misc/raw.bin", []byte{1, 2, 3}, ""))

		w := doJSON(t, router, http.MethodGet, "/static/misc/raw.bin", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	})
}
