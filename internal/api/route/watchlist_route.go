package route

import (
	"time"

	"github.com/bassista/go_watchlist/internal/api/controller"
	"github.com/bassista/go_watchlist/internal/api/middleware"
	"github.com/bassista/go_watchlist/internal/cache"
	"github.com/bassista/go_watchlist/internal/moviesource"
	"github.com/gin-gonic/gin"
)

// NewWatchlistRouter sets up watchlist routes. The event stream is long-lived
// and is registered without the request timeout; it ends when draining closes.
func NewWatchlistRouter(timeout time.Duration, group *gin.RouterGroup, store cache.AppStore, source moviesource.Source, draining <-chan struct{}) {
	wc := controller.NewWatchlistController(store, store, source).EndStreamsOn(draining)

	group.GET("watchlist/events", wc.Events)

	timed := group.Group("", middleware.RequestTimeout(timeout))
	timed.GET("watchlist", wc.AllMovies)
	timed.GET("watchlist/state", wc.State)
	timed.GET("watchlist/:id", wc.IsSaved)
	timed.POST("watchlist", wc.AddMovie)
	timed.POST("watchlist/movie/:id", wc.AddFromSource)
	timed.POST("watchlist/refresh", wc.Refresh)
	timed.DELETE("watchlist/:id", wc.RemoveMovie)
	timed.DELETE("watchlist", wc.ClearAll)
}
