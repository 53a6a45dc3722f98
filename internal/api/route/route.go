package route

import (
	"net/http"

	"github.com/bassista/go_watchlist/internal/app"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the health probe and every /api route.
func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	api := r.Group("/api")
	timeout := appCtx.Config.Server.RequestTimeout

	NewWatchlistRouter(timeout, api, appCtx.Watchlist, appCtx.Source, appCtx.Draining())
	NewConfigurationRouter(timeout, api, appCtx.Config)
}
