package moviesource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bassista/go_watchlist/internal/config"
	"github.com/bassista/go_watchlist/internal/repository"
	"github.com/containerd/errdefs"
)

// ErrMovieNotFound is returned when the source has no movie with the requested id.
var ErrMovieNotFound = fmt.Errorf("movie not found: %w", errdefs.ErrNotFound)

// Source looks up movie metadata by id.
type Source interface {
	FetchMovie(ctx context.Context, id int64) (repository.Record, error)
}

// MemorySource serves movies from a fixed catalog.
type MemorySource struct {
	mu      sync.RWMutex
	catalog map[int64]repository.Record
}

var _ Source = (*MemorySource)(nil)

// NewMemorySource creates a source holding the given records.
func NewMemorySource(records ...repository.Record) *MemorySource {
	s := &MemorySource{catalog: make(map[int64]repository.Record, len(records))}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Put adds or replaces a catalog entry.
func (s *MemorySource) Put(r repository.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog[r.ID] = repository.Collection{r}.Clone()[0]
}

func (s *MemorySource) FetchMovie(ctx context.Context, id int64) (repository.Record, error) {
	if err := ctx.Err(); err != nil {
		return repository.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.catalog[id]
	if !ok {
		return repository.Record{}, fmt.Errorf("movie %d: %w", id, ErrMovieNotFound)
	}
	return repository.Collection{r}.Clone()[0], nil
}

// DefaultCatalog is served by the memory source when nothing else is configured.
func DefaultCatalog() []repository.Record {
	return []repository.Record{
		{ID: 438631, Title: "Dune", PosterPath: "/d5NXSklXo0qyIYkgV94XAgMIckC.jpg", VoteAverage: 7.8, ReleaseDate: "2021-09-15", GenreIDs: []int{878, 12}},
		{ID: 329865, Title: "Arrival", PosterPath: "/x2FJsf1ElAgr63Y3PNPtJrcmpoe.jpg", VoteAverage: 7.6, ReleaseDate: "2016-11-10", GenreIDs: []int{18, 878, 9648}},
		{ID: 1398, Title: "Stalker", PosterPath: "/lUNpfX8Xa9tAI5M7dQUzuK2ge1E.jpg", VoteAverage: 8.1, ReleaseDate: "1979-05-25", GenreIDs: []int{878, 18, 12}},
		{ID: 949, Title: "Heat", PosterPath: "/umSVjVdbVwtx5ryCA2QXL44Durm.jpg", VoteAverage: 7.9, ReleaseDate: "1995-12-15", GenreIDs: []int{28, 80, 18}},
	}
}

// NewSourceFromConfig builds the configured source. The "none" type returns a
// nil Source; callers treat that as lookups being unavailable.
func NewSourceFromConfig(cfg config.SourceConfig) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case config.SourceNone, "":
		return nil, nil
	case config.SourceMemory:
		return NewMemorySource(DefaultCatalog()...), nil
	case config.SourceTMDB:
		opts := []Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		src, err := NewTMDBSource(cfg.APIKey, cfg.BaseURL, cfg.Language, opts...)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, errors.New("unknown source type: " + cfg.Type)
	}
}
