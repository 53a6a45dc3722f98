package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/containerd/errdefs"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// FileMedium stores each key as <dir>/<key>.json.
type FileMedium struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

func NewFileMedium(dir string) (*FileMedium, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file medium directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileMedium{dir: dir}, nil
}

func (m *FileMedium) fileName(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid key %q: %w", key, errdefs.ErrInvalidArgument)
	}
	return key + ".json", nil
}

func (m *FileMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := m.fileName(key)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, mediumClosed("file")
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, keyNotFound(key)
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return data, nil
}

// Set writes through a synced temp file renamed over the target.
func (m *FileMedium) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := m.fileName(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return mediumClosed("file")
	}

	tmpFile, err := os.CreateTemp(m.dir, name+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(value); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filepath.Join(m.dir, name)); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func (m *FileMedium) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := m.fileName(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return mediumClosed("file")
	}

	if err := os.Remove(filepath.Join(m.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove data file: %w", err)
	}
	return nil
}

func (m *FileMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Watch calls onChange after the file for key changes on disk.
// The parent directory is watched, not the file, so temp+rename replaces are
// still observed. Bursts of events are debounced into one call. Cancel ctx to
// stop the watcher.
func (m *FileMedium) Watch(ctx context.Context, key string, onChange func()) error {
	if onChange == nil {
		return errors.New("onChange callback is required")
	}
	name, err := m.fileName(key)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	log := logger.WithComponent("file-medium")
	log.Debugf("watching %s for changes", filepath.Join(m.dir, name))

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()
		schedule := func() {
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})
		}

		for {
			select {
			case <-ctx.Done():
				log.Debug("watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Tracef("change detected: %s", event)
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watcher error: %v", err)
			}
		}
	}()

	return nil
}
