package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bassista/go_watchlist/internal/cache"
	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/bassista/go_watchlist/internal/moviesource"
	"github.com/bassista/go_watchlist/internal/repository"
	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
)

// ErrNoSource is returned when a movie lookup is requested but no source is configured.
var ErrNoSource = fmt.Errorf("movie source not configured: %w", errdefs.ErrNotImplemented)

// statusFor maps a watchlist error to an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, cache.ErrClosed):
		return http.StatusServiceUnavailable, "watchlist is shutting down"
	case errors.Is(err, moviesource.ErrMovieNotFound):
		return http.StatusNotFound, "movie not found"
	case errdefs.IsNotImplemented(err):
		return http.StatusNotImplemented, "movie lookups are not configured"
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrDeserializationFailed):
		return http.StatusInternalServerError, "stored watchlist is unreadable"
	case errors.Is(err, repository.ErrWriteRejected):
		return http.StatusInsufficientStorage, "storage rejected the write"
	case errors.Is(err, repository.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	case errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable, "movie source unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timeout"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// respondError logs err, records it on the gin context and writes the mapped status.
func respondError(c *gin.Context, component string, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	log := logger.WithComponent(component)
	if status >= 500 {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		log.Debugf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	body := gin.H{"error": msg}
	if kind := repository.KindOf(err); kind != repository.KindUnknown {
		body["kind"] = kind
	}
	c.JSON(status, body)
}

// parseID reads a positive movie id from a path parameter.
func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing movie id: %w", errdefs.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q: %w", raw, errdefs.ErrInvalidArgument)
	}
	return id, nil
}
