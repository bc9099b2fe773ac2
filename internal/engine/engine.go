// Package engine owns the single authoritative in-memory snapshot and
// reconciles it with the remote document store: local mutations are
// persisted on a debounce timer, inbound change notifications replace the
// snapshot wholesale. Conflict policy is last-write-wins at document
// granularity; an unsaved local edit can be discarded by a remote update
// that arrives before the debounce fires.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"boxinventory/api/internal/inventory"
	"boxinventory/api/internal/store"
)

// DefaultDebounce is the quiet period collapsing a burst of mutations into
// one remote write.
const DefaultDebounce = 1000 * time.Millisecond

const persistTimeout = 10 * time.Second

// DocumentStore is the remote singleton-document collaborator.
type DocumentStore interface {
	Get(ctx context.Context) (store.Document, error)
	Insert(ctx context.Context, doc store.Document) error
	Replace(ctx context.Context, doc store.Document) error
}

// ChangeFeed delivers document updates between clients. May be absent, in
// which case the engine runs unsubscribed.
type ChangeFeed interface {
	Publish(ctx context.Context, doc store.Document) error
	Subscribe(ctx context.Context, handler func(store.Document)) (io.Closer, error)
}

// State is the engine lifecycle phase.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateFailed        State = "failed" // terminal; only a restart recovers
)

// ErrNotReady is returned for mutations outside the Ready state.
var ErrNotReady = errors.New("engine not ready")

// Engine mediates between local mutations and the remote store.
type Engine struct {
	docs     DocumentStore
	feed     ChangeFeed
	debounce time.Duration

	mu        sync.Mutex
	state     State
	snapshot  inventory.Snapshot
	timer     *time.Timer
	echoGuard bool
	closed    bool

	sub io.Closer
}

// New creates an engine in the Uninitialized state. feed may be nil.
func New(docs DocumentStore, feed ChangeFeed, debounce time.Duration) *Engine {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Engine{
		docs:     docs,
		feed:     feed,
		debounce: debounce,
		state:    StateUninitialized,
	}
}

// Start loads the remote document, seeding the default snapshot if none
// exists, and subscribes to the change feed. A load or seed failure is
// terminal for this engine; the caller surfaces it and does not retry.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return fmt.Errorf("start from state %s", e.state)
	}
	e.mu.Unlock()

	doc, err := e.docs.Get(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		seed := inventory.DefaultSnapshot()
		log.Printf("engine: no remote document, seeding default snapshot")
		if err := e.docs.Insert(ctx, store.Document{ID: store.SingletonID, Data: seed, UpdatedAt: time.Now().UTC()}); err != nil {
			e.fail()
			return fmt.Errorf("seed document: %w", err)
		}
		doc.Data = seed
	case err != nil:
		e.fail()
		return fmt.Errorf("load document: %w", err)
	}

	e.mu.Lock()
	e.snapshot = doc.Data.Clone()
	e.echoGuard = true
	e.state = StateReady
	e.mu.Unlock()

	if e.feed != nil {
		sub, err := e.feed.Subscribe(ctx, e.applyRemote)
		if err != nil {
			// Contained: the engine still works, it just won't see other
			// clients' edits until restart.
			log.Printf("engine: change-feed subscription failed: %v", err)
		} else {
			e.sub = sub
		}
	}
	return nil
}

func (e *Engine) fail() {
	e.mu.Lock()
	e.state = StateFailed
	e.mu.Unlock()
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns a deep copy of the current snapshot.
func (e *Engine) Snapshot() inventory.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot.Clone()
}

// Update applies a pure mutation to the snapshot and rearms the persist
// timer. Within a burst only the last snapshot reaches the remote store.
func (e *Engine) Update(mutate func(inventory.Snapshot) inventory.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady || e.closed {
		return ErrNotReady
	}
	e.snapshot = mutate(e.snapshot)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, e.persist)
	return nil
}

// persist writes whatever snapshot is current when the timer fires. That can
// re-persist a remote-originated snapshot unchanged, which is wasteful but
// harmless under last-write-wins.
func (e *Engine) persist() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	doc := store.Document{ID: store.SingletonID, Data: e.snapshot.Clone(), UpdatedAt: time.Now().UTC()}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	e.write(ctx, doc)
}

func (e *Engine) write(ctx context.Context, doc store.Document) {
	if err := e.docs.Replace(ctx, doc); err != nil {
		// Local state stays authoritative; the next successful persist
		// catches the remote copy up.
		log.Printf("engine: persist failed: %v", err)
		return
	}
	if e.feed != nil {
		if err := e.feed.Publish(ctx, doc); err != nil {
			log.Printf("engine: publish failed: %v", err)
		}
	}
}

// applyRemote handles an inbound change notification. The first notification
// after load is dropped: it is the echo of this client's own bootstrap
// write. After the guard clears, notifications replace the snapshot
// unconditionally.
func (e *Engine) applyRemote(doc store.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady || e.closed {
		return
	}
	if e.echoGuard {
		e.echoGuard = false
		log.Printf("engine: ignoring first change notification after load")
		return
	}
	e.snapshot = doc.Data.Clone()
}

// Flush persists the current snapshot immediately, canceling any pending
// debounced write. Used on graceful shutdown.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateReady {
		e.mu.Unlock()
		return ErrNotReady
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	doc := store.Document{ID: store.SingletonID, Data: e.snapshot.Clone(), UpdatedAt: time.Now().UTC()}
	e.mu.Unlock()

	if err := e.docs.Replace(ctx, doc); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if e.feed != nil {
		if err := e.feed.Publish(ctx, doc); err != nil {
			log.Printf("engine: publish failed: %v", err)
		}
	}
	return nil
}

// Close cancels the pending persist and the change-feed subscription.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	if e.sub != nil {
		return e.sub.Close()
	}
	return nil
}
