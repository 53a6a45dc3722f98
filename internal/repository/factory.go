package repository

import (
	"fmt"

	"github.com/bassista/go_watchlist/internal/config"
)

// NewMediumFromConfig opens the durable medium selected by cfg.Backend.
func NewMediumFromConfig(cfg config.StorageConfig) (Medium, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileMedium(cfg.Path)
	case config.BackendBolt:
		return NewBoltMedium(cfg.Path)
	case config.BackendSQLite:
		return NewSQLiteMedium(cfg.Path)
	case config.BackendMemory:
		return NewMemoryMedium(cfg.MemoryQuota), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s, %s, %s, %s)",
			cfg.Backend, config.BackendFile, config.BackendBolt, config.BackendSQLite, config.BackendMemory)
	}
}
