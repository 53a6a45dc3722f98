package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bassista/go_watchlist/internal/config"
	"github.com/bassista/go_watchlist/internal/repository"
	"github.com/gin-gonic/gin"
)

func TestRun_InitFailure(t *testing.T) {
	err := run(&config.Config{Storage: config.StorageConfig{Backend: "redis"}})
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestRun_ListenFailureClosesMedium(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.db")
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: -1, RequestTimeout: time.Second, ShutDownTimeout: time.Second},
		Storage: config.StorageConfig{Backend: config.BackendBolt, Path: path, Key: repository.DefaultKey},
		Misc:    config.MiscConfig{Env: "test", GinMode: gin.TestMode},
	}

	if err := run(cfg); err == nil {
		t.Fatal("expected a listen error")
	}

	// the database file stays locked while the medium is open
	m, err := repository.NewBoltMedium(path)
	if err != nil {
		t.Fatalf("medium was not closed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
