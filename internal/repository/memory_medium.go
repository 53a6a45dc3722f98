package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/containerd/errdefs"
)

// MemoryMedium keeps values in process memory. It is useful for tests and for
// running without any on-disk state. A positive quota caps the total bytes
// stored, mimicking a device storage limit.
type MemoryMedium struct {
	mu     sync.RWMutex
	data   map[string][]byte
	quota  int
	closed bool
}

func NewMemoryMedium(quota int) *MemoryMedium {
	return &MemoryMedium{data: map[string][]byte{}, quota: quota}
}

func (m *MemoryMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, mediumClosed("memory")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, keyNotFound(key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryMedium) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return mediumClosed("memory")
	}
	if m.quota > 0 {
		used := len(value)
		for k, v := range m.data {
			if k != key {
				used += len(v)
			}
		}
		if used > m.quota {
			return fmt.Errorf("storing %d bytes would exceed quota of %d: %w", used, m.quota, errdefs.ErrResourceExhausted)
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemoryMedium) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return mediumClosed("memory")
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
