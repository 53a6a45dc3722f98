package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bassista/go_watchlist/internal/cache"
	"github.com/bassista/go_watchlist/internal/config"
	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/bassista/go_watchlist/internal/moviesource"
	"github.com/bassista/go_watchlist/internal/repository"
)

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config    *config.Config
	Medium    repository.Medium
	Repo      repository.Repository
	Watchlist cache.AppStore
	// Source is nil when movie lookups are disabled.
	Source moviesource.Source

	BaseCtx context.Context
	Cancel  context.CancelFunc

	draining     context.Context
	beginDrain   context.CancelFunc
	refreshDone  <-chan struct{}
	shutdownOnce sync.Once
}

func New(cfg *config.Config, medium repository.Medium, repo repository.Repository, store cache.AppStore, source moviesource.Source) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if medium == nil {
		return nil, errors.New("medium is nil")
	}
	if repo == nil {
		return nil, errors.New("repo is nil")
	}
	if store == nil {
		return nil, errors.New("watchlist store is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	draining, beginDrain := context.WithCancel(context.Background())
	return &App{
		Config:     cfg,
		Medium:     medium,
		Repo:       repo,
		Watchlist:  store,
		Source:     source,
		BaseCtx:    ctx,
		Cancel:     cancel,
		draining:   draining,
		beginDrain: beginDrain,
	}, nil
}

// NewFromConfig opens the configured medium and builds every dependency on top of it.
func NewFromConfig(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	medium, err := repository.NewMediumFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s medium: %w", cfg.Storage.Backend, err)
	}
	repo, err := repository.NewWatchlistRepository(medium, cfg.Storage.Key)
	if err != nil {
		_ = medium.Close()
		return nil, err
	}
	source, err := moviesource.NewSourceFromConfig(cfg.Source)
	if err != nil {
		_ = medium.Close()
		return nil, fmt.Errorf("movie source: %w", err)
	}
	list, err := cache.NewWatchlist(context.Background(), repo)
	if err != nil {
		_ = medium.Close()
		return nil, err
	}

	a, err := New(cfg, medium, repo, list, source)
	if err != nil {
		list.Close()
		_ = medium.Close()
		return nil, err
	}
	logger.WithComponent("app").Infof("watchlist ready: backend=%s key=%s records=%d", cfg.Storage.Backend, cfg.Storage.Key, len(list.Snapshot()))
	return a, nil
}

// StartWatchers starts the change watcher on the medium and the periodic
// refresh. A medium without change notifications is not an error.
func (a *App) StartWatchers() error {
	log := logger.WithComponent("app")
	if a.Config.Storage.WatchEnabled {
		err := a.Repo.StartWatcher(a.BaseCtx, func() {
			log.Debug("stored watchlist changed, refreshing")
			if err := a.Watchlist.Refresh(a.BaseCtx); err != nil {
				log.Warnf("refresh after external change failed: %v", err)
			}
		})
		switch {
		case errors.Is(err, repository.ErrWatchUnsupported):
			log.Infof("%s backend has no change notifications, relying on refresh interval", a.Config.Storage.Backend)
		case err != nil:
			return fmt.Errorf("cannot start storage watcher: %w", err)
		}
	}

	a.refreshDone = cache.StartRefreshScheduler(a.BaseCtx, a.Watchlist, a.Config.Storage.RefreshInterval)
	return nil
}

// Draining is closed once shutdown has begun. Long-lived responses end on it.
func (a *App) Draining() <-chan struct{} {
	return a.draining.Done()
}

// BeginShutdown ends long-lived responses so the HTTP server can drain.
// Regular requests keep their context until Shutdown.
func (a *App) BeginShutdown() {
	a.beginDrain()
}

// Shutdown stops background work, lets the running mutation finish and
// closes the medium. Later mutations fail with cache.ErrClosed.
func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.shutdownOnce.Do(func() {
		a.beginDrain()
		a.Cancel()
		if a.refreshDone != nil {
			<-a.refreshDone
		}
		a.Watchlist.Close()
		if err := a.Medium.Close(); err != nil {
			logger.WithComponent("app").Errorf("closing medium: %v", err)
		}
		logger.WithComponent("app").Info("application stopped")
	})
}
