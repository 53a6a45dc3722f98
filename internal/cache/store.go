package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/bassista/go_watchlist/internal/repository"
)

// ErrClosed is returned for mutations requested after Close.
var ErrClosed = errors.New("watchlist is closed")

// State is what a UI consumer renders from.
type State struct {
	Items     repository.Collection `json:"items"`
	Loading   bool                  `json:"loading"`
	LastError string                `json:"lastError,omitempty"`
	ErrorKind repository.ErrorKind  `json:"errorKind,omitempty"`
	Seq       uint64                `json:"seq"`
}

type mutation struct {
	name string
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// Watchlist keeps an in-memory mirror of the durable collection.
//
// Reads are synchronous and never touch the medium. Mutations go through a
// single worker, one at a time, in arrival order; each one reads the durable
// collection, writes the full result and reloads the mirror before the next
// one starts. Every load is tagged with an increasing sequence number and a
// result older than the current mirror is dropped, so an external Refresh can
// never roll the mirror back past a completed mutation.
type Watchlist struct {
	store repository.CollectionStore

	mu        sync.RWMutex
	mirror    repository.Collection
	mirrorSeq uint64
	loads     int
	lastError error

	seq atomic.Uint64

	jobs      chan *mutation
	stop      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	subsMu sync.Mutex
	subs   map[chan State]struct{}
}

// NewWatchlist starts the mutation worker and performs the initial load.
// A failed initial load is not fatal: it is kept in the state's last error
// and the mirror starts empty.
func NewWatchlist(ctx context.Context, store repository.CollectionStore) (*Watchlist, error) {
	if store == nil {
		return nil, errors.New("collection store is nil")
	}
	w := &Watchlist{
		store:   store,
		mirror:  repository.Collection{},
		jobs:    make(chan *mutation),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		subs:    map[chan State]struct{}{},
	}
	go w.run()

	if err := w.Refresh(ctx); err != nil {
		logger.WithComponent("watchlist").Warnf("initial load failed: %v", err)
	}
	return w, nil
}

func (w *Watchlist) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.stop:
			return
		case m := <-w.jobs:
			logger.WithComponent("watchlist").Tracef("running %s", m.name)
			m.done <- m.run(m.ctx)
		}
	}
}

// enqueue hands fn to the worker and waits for its outcome. Once accepted
// the job runs to completion even if ctx is cancelled.
func (w *Watchlist) enqueue(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	select {
	case <-w.stop:
		return ErrClosed
	default:
	}

	m := &mutation{name: name, ctx: context.WithoutCancel(ctx), run: fn, done: make(chan error, 1)}
	select {
	case w.jobs <- m:
	case <-w.stop:
		return ErrClosed
	}
	return <-m.done
}

// Close stops the worker after the running mutation, if any, and closes all
// subscriptions. It is safe to call more than once.
func (w *Watchlist) Close() {
	w.closeOnce.Do(func() {
		close(w.stop)
		<-w.stopped

		w.subsMu.Lock()
		for ch := range w.subs {
			close(ch)
		}
		w.subs = nil
		w.subsMu.Unlock()
		logger.WithComponent("watchlist").Debug("watchlist closed")
	})
}

// Refresh reloads the mirror. On failure the previous mirror is kept and the
// error is recorded, except for an unreadable blob, which degrades the
// mirror to empty.
func (w *Watchlist) Refresh(ctx context.Context) error {
	return w.reload(ctx)
}

func (w *Watchlist) reload(ctx context.Context) error {
	seq := w.seq.Add(1)
	w.mu.Lock()
	w.loads++
	w.mu.Unlock()
	w.notify()

	c, err := w.store.LoadAll(ctx)

	w.mu.Lock()
	w.loads--
	stale := seq < w.mirrorSeq
	switch {
	case stale:
	case err == nil:
		w.mirror = c.Clone()
		w.mirrorSeq = seq
		w.lastError = nil
	case errors.Is(err, repository.ErrDeserializationFailed):
		w.mirror = repository.Collection{}
		w.mirrorSeq = seq
		w.lastError = err
	default:
		w.lastError = err
	}
	size := len(w.mirror)
	w.mu.Unlock()
	w.notify()

	log := logger.WithComponent("watchlist")
	switch {
	case stale:
		log.Debugf("discarded stale load %d", seq)
	case err != nil:
		log.Warnf("load %d failed: %v", seq, err)
	default:
		log.Tracef("load %d applied, %d records", seq, size)
	}
	return err
}

// install replaces the mirror with a collection known to match the store.
func (w *Watchlist) install(c repository.Collection, clearError bool) {
	seq := w.seq.Add(1)
	w.mu.Lock()
	w.mirror = c.Clone()
	w.mirrorSeq = seq
	if clearError {
		w.lastError = nil
	}
	w.mu.Unlock()
	w.notify()
}

// syncAfterWrite reloads the mirror after a successful write. If that reload
// fails the written collection is installed directly so the mirror still
// matches the store; the reload error stays visible in the state.
func (w *Watchlist) syncAfterWrite(ctx context.Context, written repository.Collection) {
	if err := w.reload(ctx); err != nil {
		logger.WithComponent("watchlist").Warnf("reload after write failed, using written collection: %v", err)
		w.install(written, false)
	}
}

// durable reads the current stored collection for a read-modify-write.
// An unreadable blob counts as an empty watchlist so the user can recover by
// saving again; the deserialization error is returned as unreadable so the
// caller can keep it visible after the write.
func (w *Watchlist) durable(ctx context.Context) (current repository.Collection, unreadable error, err error) {
	c, err := w.store.LoadAll(ctx)
	if errors.Is(err, repository.ErrDeserializationFailed) {
		logger.WithComponent("watchlist").Warnf("stored watchlist unreadable, treating as empty: %v", err)
		return repository.Collection{}, err, nil
	}
	return c, nil, err
}

// report records err as the last error, overriding a successful reload.
func (w *Watchlist) report(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	w.lastError = err
	w.mu.Unlock()
	w.notify()
}

// Add appends rec unless its identity is already saved, which is a no-op success.
func (w *Watchlist) Add(ctx context.Context, rec repository.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return w.enqueue(ctx, "add", func(ctx context.Context) error {
		current, unreadable, err := w.durable(ctx)
		if err != nil {
			logger.WithComponent("watchlist").Warnf("add %d: %v", rec.ID, err)
			return err
		}
		defer w.report(unreadable)
		if current.Contains(rec.ID) {
			logger.WithComponent("watchlist").Debugf("add %d: already saved", rec.ID)
			w.syncAfterWrite(ctx, current)
			return nil
		}

		target := current.With(rec)
		if err := w.store.SaveAll(ctx, target); err != nil {
			logger.WithComponent("watchlist").Warnf("add %d: %v", rec.ID, err)
			return err
		}
		w.syncAfterWrite(ctx, target)
		logger.WithComponent("watchlist").Debugf("added %d (%s)", rec.ID, rec.Title)
		return nil
	})
}

// Remove drops the record with id. Removing an absent identity is a no-op success.
func (w *Watchlist) Remove(ctx context.Context, id int64) error {
	return w.enqueue(ctx, "remove", func(ctx context.Context) error {
		current, unreadable, err := w.durable(ctx)
		if err != nil {
			logger.WithComponent("watchlist").Warnf("remove %d: %v", id, err)
			return err
		}
		defer w.report(unreadable)
		if !current.Contains(id) {
			logger.WithComponent("watchlist").Debugf("remove %d: not saved", id)
			w.syncAfterWrite(ctx, current)
			return nil
		}

		target := current.Without(id)
		if err := w.store.SaveAll(ctx, target); err != nil {
			logger.WithComponent("watchlist").Warnf("remove %d: %v", id, err)
			return err
		}
		w.syncAfterWrite(ctx, target)
		logger.WithComponent("watchlist").Debugf("removed %d", id)
		return nil
	})
}

// ClearAll deletes the stored collection. The result is known, so the mirror
// is emptied without a reload.
func (w *Watchlist) ClearAll(ctx context.Context) error {
	return w.enqueue(ctx, "clear", func(ctx context.Context) error {
		if err := w.store.Clear(ctx); err != nil {
			logger.WithComponent("watchlist").Warnf("clear: %v", err)
			return err
		}
		w.install(repository.Collection{}, true)
		logger.WithComponent("watchlist").Debug("cleared watchlist")
		return nil
	})
}

// IsSaved answers from the mirror only.
func (w *Watchlist) IsSaved(id int64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mirror.Contains(id)
}

// Snapshot returns a deep copy of the mirror.
func (w *Watchlist) Snapshot() repository.Collection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mirror.Clone()
}

// LastError returns the error of the most recent failed load, or the
// unreadable blob a mutation replaced since then, or nil.
func (w *Watchlist) LastError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

func (w *Watchlist) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := State{
		Items:     w.mirror.Clone(),
		Loading:   w.loads > 0,
		ErrorKind: repository.KindOf(w.lastError),
		Seq:       w.mirrorSeq,
	}
	if w.lastError != nil {
		st.LastError = w.lastError.Error()
	}
	return st
}

// Subscribe returns a channel carrying the latest state. The channel holds at
// most one pending state; a slow reader only ever sees the newest. Call the
// returned function to unsubscribe.
func (w *Watchlist) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	w.subsMu.Lock()
	if w.subs == nil {
		w.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	w.subs[ch] = struct{}{}
	ch <- w.State()
	w.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.subsMu.Lock()
			defer w.subsMu.Unlock()
			if _, ok := w.subs[ch]; ok {
				delete(w.subs, ch)
				close(ch)
			}
		})
	}
}

func (w *Watchlist) notify() {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	if len(w.subs) == 0 {
		return
	}
	st := w.State()
	for ch := range w.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		// replace the pending state with the newer one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
