package repository

import "context"

// Medium is the opaque string-keyed persistence capability under the watchlist.
// Set must replace a value atomically: no reader may observe a partial blob.
// Get reports an absent key with an error matching errdefs.ErrNotFound;
// Delete of an absent key succeeds.
type Medium interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Watchable is implemented by media that can report external changes to a key.
type Watchable interface {
	Watch(ctx context.Context, key string, onChange func()) error
}

// CollectionStore reads and writes the whole watchlist under one key.
// Calls are not serialized against each other; the cache does that.
type CollectionStore interface {
	LoadAll(ctx context.Context) (Collection, error)
	SaveAll(ctx context.Context, c Collection) error
	Clear(ctx context.Context) error
}

// Repository is the durable store adapter exposed to the application.
// WatchlistRepository implements this interface.
type Repository interface {
	CollectionStore
	StartWatcher(ctx context.Context, onChange func()) error
}
