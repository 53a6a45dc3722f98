package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bassista/go_watchlist/internal/config"
	"github.com/gin-gonic/gin"
)

func TestConfigurationController_GetConfiguration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		cfg          config.Config
		expectedBody ConfigurationResponse
	}{
		{
			name: "file backend without source",
			cfg: config.Config{
				Storage: config.StorageConfig{Backend: config.BackendFile, WatchEnabled: true},
				Source:  config.SourceConfig{Type: config.SourceNone},
			},
			expectedBody: ConfigurationResponse{StorageBackend: "file", WatchEnabled: true, SourceType: "none"},
		},
		{
			name: "bolt backend with periodic refresh and tmdb",
			cfg: config.Config{
				Storage: config.StorageConfig{Backend: config.BackendBolt, RefreshInterval: 90 * time.Second},
				Source:  config.SourceConfig{Type: config.SourceTMDB, APIKey: "secret-token", Language: "it-IT"},
			},
			expectedBody: ConfigurationResponse{StorageBackend: "bolt", RefreshIntervalSec: 90, SourceType: "tmdb", SourceEnabled: true, Language: "it-IT"},
		},
		{
			name:         "empty source type reads as none",
			cfg:          config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}},
			expectedBody: ConfigurationResponse{StorageBackend: "memory", SourceType: "none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cc := NewConfigurationController(&cfg)

			r := gin.New()
			r.GET("/configuration", cc.GetConfiguration)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/configuration", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var got ConfigurationResponse
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if got != tt.expectedBody {
				t.Errorf("expected %+v, got %+v", tt.expectedBody, got)
			}
			if strings.Contains(w.Body.String(), "secret-token") {
				t.Error("api key must not be exposed")
			}
		})
	}
}
