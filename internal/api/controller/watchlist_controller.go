package controller

import (
	"net/http"
	"time"

	"github.com/bassista/go_watchlist/internal/cache"
	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/bassista/go_watchlist/internal/moviesource"
	"github.com/bassista/go_watchlist/internal/repository"
	"github.com/gin-gonic/gin"
)

const watchlistComponent = "watchlist-controller"

// WatchlistController handles watchlist HTTP endpoints using the generic CRUD controller.
type WatchlistController struct {
	crud   *CrudController[repository.Record]
	store  cache.WatchlistStore
	events cache.Observable
	source moviesource.Source
	// draining ends open event streams; nil never fires
	draining <-chan struct{}
}

// NewWatchlistController creates a WatchlistController. events and source may be nil.
func NewWatchlistController(store cache.WatchlistStore, events cache.Observable, source moviesource.Source) *WatchlistController {
	return &WatchlistController{
		crud: &CrudController[repository.Record]{
			Service:   &WatchlistCrudService{Store: store},
			Validator: RecordValidator{},
			Component: watchlistComponent,
		},
		store:  store,
		events: events,
		source: source,
	}
}

// EndStreamsOn makes open event streams return once done is closed, so a
// server shutdown does not wait on them.
func (wc *WatchlistController) EndStreamsOn(done <-chan struct{}) *WatchlistController {
	wc.draining = done
	return wc
}

// AllMovies handles GET /watchlist.
func (wc *WatchlistController) AllMovies(c *gin.Context) {
	logger.WithComponent(watchlistComponent).Debugf("GET /watchlist handler called")
	wc.crud.GetAll(c)
}

// AddMovie handles POST /watchlist with a record body.
func (wc *WatchlistController) AddMovie(c *gin.Context) {
	logger.WithComponent(watchlistComponent).Debugf("POST /watchlist handler called")
	wc.crud.Create(c)
}

// RemoveMovie handles DELETE /watchlist/:id.
func (wc *WatchlistController) RemoveMovie(c *gin.Context) {
	logger.WithComponent(watchlistComponent).Debugf("DELETE /watchlist/%s handler called", c.Param("id"))
	wc.crud.Delete(c)
}

// IsSaved handles GET /watchlist/:id.
func (wc *WatchlistController) IsSaved(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, watchlistComponent, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "saved": wc.store.IsSaved(id)})
}

// State handles GET /watchlist/state.
func (wc *WatchlistController) State(c *gin.Context) {
	c.JSON(http.StatusOK, wc.store.State())
}

// AddFromSource handles POST /watchlist/movie/:id: the movie is looked up in
// the configured source and the result is added.
func (wc *WatchlistController) AddFromSource(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, watchlistComponent, err)
		return
	}
	if wc.source == nil {
		respondError(c, watchlistComponent, ErrNoSource)
		return
	}

	rec, err := wc.source.FetchMovie(c.Request.Context(), id)
	if err != nil {
		respondError(c, watchlistComponent, err)
		return
	}
	if err := wc.store.Add(c.Request.Context(), rec); err != nil {
		respondError(c, watchlistComponent, err)
		return
	}
	logger.WithComponent(watchlistComponent).Debugf("movie %d (%s) added from source", rec.ID, rec.Title)
	c.JSON(http.StatusOK, wc.store.Snapshot())
}

// ClearAll handles DELETE /watchlist.
func (wc *WatchlistController) ClearAll(c *gin.Context) {
	if err := wc.store.ClearAll(c.Request.Context()); err != nil {
		respondError(c, watchlistComponent, err)
		return
	}
	c.JSON(http.StatusOK, wc.store.Snapshot())
}

// Refresh handles POST /watchlist/refresh and returns the resulting state.
func (wc *WatchlistController) Refresh(c *gin.Context) {
	if err := wc.store.Refresh(c.Request.Context()); err != nil {
		respondError(c, watchlistComponent, err)
		return
	}
	c.JSON(http.StatusOK, wc.store.State())
}

// Events handles GET /watchlist/events, streaming every state change as a
// server-sent "state" event until the client goes away or the server drains.
func (wc *WatchlistController) Events(c *gin.Context) {
	if wc.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event stream not available"})
		return
	}
	states, unsubscribe := wc.events.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	// the stream outlives the server write timeout
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logger.WithComponent(watchlistComponent).Debugf("event stream keeps server write deadline: %v", err)
	}

	ctx := c.Request.Context()
	logger.WithComponent(watchlistComponent).Debugf("event stream opened for %s", c.ClientIP())
	for {
		select {
		case <-ctx.Done():
			logger.WithComponent(watchlistComponent).Debugf("event stream closed for %s", c.ClientIP())
			return
		case <-wc.draining:
			logger.WithComponent(watchlistComponent).Debugf("event stream ended for %s: server shutting down", c.ClientIP())
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			c.SSEvent("state", st)
			c.Writer.Flush()
		}
	}
}
