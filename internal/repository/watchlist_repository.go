package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/containerd/errdefs"
)

// DefaultKey is the well-known key the watchlist is stored under.
const DefaultKey = "saved_movies"

// WatchlistRepository persists the whole Collection as one JSON array under a
// single key of the medium.
type WatchlistRepository struct {
	medium Medium
	key    string
}

// NewWatchlistRepository creates the adapter for the given medium and key.
// It returns the repository interface to avoid leaking implementation details.
func NewWatchlistRepository(medium Medium, key string) (Repository, error) {
	if medium == nil {
		return nil, errors.New("medium is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &WatchlistRepository{medium: medium, key: key}, nil
}

// LoadAll reads the collection. A missing key is an empty collection.
func (r *WatchlistRepository) LoadAll(ctx context.Context) (Collection, error) {
	data, err := r.medium.Get(ctx, r.key)
	if err != nil {
		if errdefs.IsNotFound(err) {
			logger.WithComponent("watchlist-repo").Tracef("key %s not found, returning empty collection", r.key)
			return Collection{}, nil
		}
		return nil, fmt.Errorf("%w: load %s: %w", ErrStorageUnavailable, r.key, err)
	}

	c, err := decodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %w", ErrDeserializationFailed, r.key, err)
	}
	logger.WithComponent("watchlist-repo").Tracef("loaded %d records from %s", len(c), r.key)
	return c, nil
}

// SaveAll rejects duplicate identities and replaces the stored collection in
// one write.
func (r *WatchlistRepository) SaveAll(ctx context.Context, c Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c == nil {
		c = Collection{}
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrWriteRejected, err)
	}

	if err := r.medium.Set(ctx, r.key, payload); err != nil {
		return classifyWriteError("save", r.key, err)
	}
	logger.WithComponent("watchlist-repo").Debugf("saved %d records to %s", len(c), r.key)
	return nil
}

// Clear deletes the key, so a later LoadAll looks like nothing was ever saved.
func (r *WatchlistRepository) Clear(ctx context.Context) error {
	if err := r.medium.Delete(ctx, r.key); err != nil {
		return classifyWriteError("clear", r.key, err)
	}
	logger.WithComponent("watchlist-repo").Debugf("cleared %s", r.key)
	return nil
}

// StartWatcher reports external changes of the stored collection when the
// medium supports it. The caller owns ctx.
func (r *WatchlistRepository) StartWatcher(ctx context.Context, onChange func()) error {
	w, ok := r.medium.(Watchable)
	if !ok {
		return ErrWatchUnsupported
	}
	return w.Watch(ctx, r.key, onChange)
}

func classifyWriteError(op, key string, err error) error {
	if errdefs.IsUnavailable(err) {
		return fmt.Errorf("%w: %s %s: %w", ErrStorageUnavailable, op, key, err)
	}
	return fmt.Errorf("%w: %s %s: %w", ErrWriteRejected, op, key, err)
}

// decodeCollection parses a stored blob. An empty blob or a JSON null is an
// empty collection; anything else must be an identity-unique array.
func decodeCollection(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Collection{}, nil
	}
	var c Collection
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = Collection{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
