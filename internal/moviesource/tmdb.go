package moviesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/bassista/go_watchlist/internal/repository"
	"github.com/containerd/errdefs"
)

// movieDetails is the subset of the TMDB movie details payload we keep.
type movieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func (d movieDetails) record() repository.Record {
	r := repository.Record{
		ID:          d.ID,
		Title:       d.Title,
		PosterPath:  d.PosterPath,
		VoteAverage: d.VoteAverage,
		ReleaseDate: d.ReleaseDate,
		Overview:    d.Overview,
	}
	for _, g := range d.Genres {
		r.GenreIDs = append(r.GenreIDs, g.ID)
	}
	return r
}

// TMDBSource fetches movie details from the TMDB API.
type TMDBSource struct {
	token      string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Source = (*TMDBSource)(nil)

// Option configures a TMDBSource.
type Option func(*TMDBSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *TMDBSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout. A client passed to WithHTTPClient is
// copied first and never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(s *TMDBSource) {
		client := *s.httpClient
		client.Timeout = timeout
		s.httpClient = &client
	}
}

// NewTMDBSource creates a TMDB source authenticating with a bearer token.
func NewTMDBSource(token, baseURL, language string, opts ...Option) (*TMDBSource, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	s := &TMDBSource{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchMovie returns the details of movie id as a watchlist record.
func (s *TMDBSource) FetchMovie(ctx context.Context, id int64) (repository.Record, error) {
	if id <= 0 {
		return repository.Record{}, fmt.Errorf("movie id must be positive, got %d: %w", id, errdefs.ErrInvalidArgument)
	}
	endpoint, err := url.Parse(s.baseURL + "/movie/" + strconv.FormatInt(id, 10))
	if err != nil {
		return repository.Record{}, fmt.Errorf("parse tmdb url: %w", err)
	}
	if s.language != "" {
		params := url.Values{}
		params.Set("language", s.language)
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return repository.Record{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return repository.Record{}, fmt.Errorf("execute request (latency=%v): %w: %w", latency, err, errdefs.ErrUnavailable)
	}
	defer resp.Body.Close()
	logger.WithComponent("tmdb").Debugf("GET movie %d -> %d (%v)", id, resp.StatusCode, latency)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return repository.Record{}, fmt.Errorf("movie %d: %w", id, ErrMovieNotFound)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return repository.Record{}, fmt.Errorf("tmdb movie details returned %d (latency=%v): %w", resp.StatusCode, latency, errdefs.ErrUnavailable)
	}

	var payload movieDetails
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return repository.Record{}, fmt.Errorf("decode tmdb response: %w: %w", err, errdefs.ErrUnavailable)
	}
	rec := payload.record()
	if rec.ID == 0 {
		rec.ID = id
	}
	return rec, nil
}
