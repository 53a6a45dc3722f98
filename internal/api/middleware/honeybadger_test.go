package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHoneybadgerMiddleware_DisabledPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(HoneybadgerMiddleware("", "test"))
	r.GET("/api/watchlist", func(c *gin.Context) { c.Status(http.StatusInsufficientStorage) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))

	if w.Code != http.StatusInsufficientStorage {
		t.Errorf("expected handler status to pass through, got %d", w.Code)
	}
}
