package cache

import (
	"context"

	"github.com/bassista/go_watchlist/internal/repository"
)

// ReadOnlyStore is the synchronous view used by read-only handlers.
// None of its methods touch the durable medium.
type ReadOnlyStore interface {
	Snapshot() repository.Collection
	IsSaved(id int64) bool
	State() State
}

// Refresher reloads the mirror from the durable store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// WatchlistStore is the cache API needed by watchlist handlers.
type WatchlistStore interface {
	ReadOnlyStore
	Refresher
	Add(ctx context.Context, rec repository.Record) error
	Remove(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) error
}

// Observable lets consumers follow state changes.
type Observable interface {
	Subscribe() (<-chan State, func())
}

// AppStore is the cache contract the application container exposes.
type AppStore interface {
	WatchlistStore
	Observable
	Close()
}
