package repository

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

// Failure kinds surfaced by the durable store. Each wraps the errdefs class
// that best describes it, so callers may match on either.
var (
	ErrStorageUnavailable    = fmt.Errorf("storage unavailable: %w", errdefs.ErrUnavailable)
	ErrWriteRejected         = fmt.Errorf("write rejected: %w", errdefs.ErrResourceExhausted)
	ErrDeserializationFailed = fmt.Errorf("deserialization failed: %w", errdefs.ErrDataLoss)
	ErrInvalidRecord         = fmt.Errorf("invalid record: %w", errdefs.ErrInvalidArgument)
	ErrWatchUnsupported      = fmt.Errorf("medium cannot be watched: %w", errdefs.ErrNotImplemented)
)

type ErrorKind string

const (
	KindNone                  ErrorKind = ""
	KindStorageUnavailable    ErrorKind = "StorageUnavailable"
	KindWriteRejected         ErrorKind = "WriteRejected"
	KindDeserializationFailed ErrorKind = "DeserializationFailed"
	KindInvalidRecord         ErrorKind = "InvalidRecord"
	KindUnknown               ErrorKind = "Unknown"
)

// KindOf maps an error returned by this package to its kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDeserializationFailed):
		return KindDeserializationFailed
	case errors.Is(err, ErrWriteRejected):
		return KindWriteRejected
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable
	case errors.Is(err, ErrInvalidRecord):
		return KindInvalidRecord
	default:
		return KindUnknown
	}
}

func keyNotFound(key string) error {
	return fmt.Errorf("key %q: %w", key, errdefs.ErrNotFound)
}

func mediumClosed(name string) error {
	return fmt.Errorf("%s medium is closed: %w", name, errdefs.ErrUnavailable)
}
