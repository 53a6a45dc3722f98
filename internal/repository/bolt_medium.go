package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketWatchlist = []byte("watchlist")

// BoltMedium keeps keys in a single bbolt bucket. Every Set and Delete is its
// own read-write transaction.
type BoltMedium struct {
	db     *bolt.DB
	closed atomic.Bool
}

func NewBoltMedium(path string) (*BoltMedium, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("bolt database path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketWatchlist)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltMedium{db: db}, nil
}

func (m *BoltMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.closed.Load() {
		return nil, mediumClosed("bolt")
	}

	var data []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatchlist)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// v is only valid for the life of the transaction
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt view: %w", err)
	}
	if data == nil {
		return nil, keyNotFound(key)
	}
	return data, nil
}

func (m *BoltMedium) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.closed.Load() {
		return mediumClosed("bolt")
	}

	err := m.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketWatchlist)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

func (m *BoltMedium) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.closed.Load() {
		return mediumClosed("bolt")
	}

	err := m.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatchlist)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete: %w", err)
	}
	return nil
}

func (m *BoltMedium) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return m.db.Close()
}
