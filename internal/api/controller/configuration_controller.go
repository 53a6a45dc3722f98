package controller

import (
	"net/http"

	"github.com/bassista/go_watchlist/internal/config"
	"github.com/gin-gonic/gin"
)

// ConfigurationResponse is the subset of settings the frontend needs.
type ConfigurationResponse struct {
	StorageBackend     string `json:"storageBackend"`
	WatchEnabled       bool   `json:"watchEnabled"`
	RefreshIntervalSec int    `json:"refreshIntervalSec"`
	SourceType         string `json:"sourceType"`
	SourceEnabled      bool   `json:"sourceEnabled"`
	Language           string `json:"language,omitempty"`
}

// ConfigurationController handles configuration-related API endpoints.
type ConfigurationController struct {
	config *config.Config
}

// NewConfigurationController creates a new ConfigurationController.
func NewConfigurationController(cfg *config.Config) *ConfigurationController {
	return &ConfigurationController{
		config: cfg,
	}
}

// GetConfiguration returns the application configuration for the frontend.
// Secrets are never included.
func (cc *ConfigurationController) GetConfiguration(c *gin.Context) {
	sourceType := cc.config.Source.Type
	if sourceType == "" {
		sourceType = config.SourceNone
	}
	c.JSON(http.StatusOK, ConfigurationResponse{
		StorageBackend:     cc.config.Storage.Backend,
		WatchEnabled:       cc.config.Storage.WatchEnabled,
		RefreshIntervalSec: int(cc.config.Storage.RefreshInterval.Seconds()),
		SourceType:         sourceType,
		SourceEnabled:      sourceType != config.SourceNone,
		Language:           cc.config.Source.Language,
	})
}
