package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(allowed string) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(allowed))
	r.GET("/api/watchlist", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/api/watchlist", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		allowed   string
		origin    string
		wantACAO  string
		wantCreds string
		wantVary  string
	}{
		{"wildcard", "*", "http://example.com", "*", "", ""},
		{"listed origin", "http://allowed.com,http://also-allowed.com", "http://also-allowed.com", "http://also-allowed.com", "true", "Origin"},
		{"unlisted origin", "http://allowed.com", "http://not-allowed.com", "", "", "Origin"},
		{"no origin header", "http://allowed.com", "", "", "", ""},
		{"empty allow-list", "", "http://example.com", "", "", "Origin"},
		{"whitespace trimmed", "  http://a.com  ,  http://b.com  ", "http://b.com", "http://b.com", "true", "Origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			corsRouter(tt.allowed).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
				t.Errorf("ACAO: expected %q, got %q", tt.wantACAO, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("credentials: expected %q, got %q", tt.wantCreds, got)
			}
			if got := w.Header().Get("Vary"); got != tt.wantVary {
				t.Errorf("Vary: expected %q, got %q", tt.wantVary, got)
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/watchlist", nil)
	req.Header.Set("Origin", "http://allowed.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	corsRouter("http://allowed.com").ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") != corsAllowMethods {
		t.Errorf("unexpected methods %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
	if w.Header().Get("Access-Control-Allow-Headers") != corsAllowHeaders {
		t.Errorf("unexpected headers %q", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestCORSMiddleware_PreflightEchoesRequestedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/watchlist", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom-Header, X-Another")
	w := httptest.NewRecorder()

	corsRouter("*").ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "X-Custom-Header, X-Another" {
		t.Errorf("expected echoed headers, got %q", got)
	}
}

func TestCORSMiddleware_PreflightFromUnlistedOriginPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/watchlist", nil)
	req.Header.Set("Origin", "http://evil.com")
	w := httptest.NewRecorder()

	corsRouter("http://allowed.com").ServeHTTP(w, req)

	if w.Code == http.StatusNoContent {
		t.Error("preflight from an unlisted origin must not be approved")
	}
	if w.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Error("no CORS headers expected for an unlisted origin")
	}
}
