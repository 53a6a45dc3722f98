package controller

import (
	"context"

	"github.com/bassista/go_watchlist/internal/cache"
	"github.com/bassista/go_watchlist/internal/repository"
)

// WatchlistCrudService implements CrudService for watchlist records.
// Reads come from the mirror; writes go through the watchlist queue.
type WatchlistCrudService struct {
	Store cache.WatchlistStore
}

func (s *WatchlistCrudService) All(ctx context.Context) ([]repository.Record, error) {
	return s.Store.Snapshot(), nil
}

func (s *WatchlistCrudService) Add(ctx context.Context, item repository.Record) ([]repository.Record, error) {
	if err := s.Store.Add(ctx, item); err != nil {
		return nil, err
	}
	return s.Store.Snapshot(), nil
}

func (s *WatchlistCrudService) Remove(ctx context.Context, id string) ([]repository.Record, error) {
	movieID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Remove(ctx, movieID); err != nil {
		return nil, err
	}
	return s.Store.Snapshot(), nil
}

// RecordValidator implements CrudValidator for watchlist records.
type RecordValidator struct{}

func (RecordValidator) Validate(item repository.Record) error {
	return item.Validate()
}
