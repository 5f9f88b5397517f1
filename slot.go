package pubsublatest

import (
	"context"
	"sync"
	"sync/atomic"
)

// slot holds a single latest value with change notification. One side
// publishes; any number of readers peek the value or wait for the next change.
//
// Every store closes the current changed channel and installs a fresh one, so
// a waiter only needs the channel it observed together with seq to know
// whether it missed an update. Once the writer side is closed (the owning
// topic was destroyed) further stores are dropped and waits end.
type slot[T any] struct {
	mu      sync.RWMutex
	value   T
	has     bool
	seq     uint64
	changed chan struct{}
	done    chan struct{}
	closed  bool

	readers atomic.Int64
}

func newSlot[T any]() *slot[T] {
	return &slot[T]{
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// store replaces the current value and wakes every waiter. It reports false
// when the writer side is already closed.
func (s *slot[T]) store(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.value = v
	s.has = true
	s.seq++
	close(s.changed)
	s.changed = make(chan struct{})
	return true
}

// close shuts the writer side. Idempotent.
func (s *slot[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

func (s *slot[T]) load() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.has
}

func (s *slot[T]) readerCount() int {
	return int(s.readers.Load())
}

// subscribe attaches a reader that treats the value present right now as
// already seen: its first wait only returns after the next store.
func (s *slot[T]) subscribe() *reader[T] {
	s.mu.RLock()
	seen := s.seq
	s.mu.RUnlock()

	s.readers.Add(1)
	return &reader[T]{slot: s, seen: seen, stop: make(chan struct{})}
}

// reader is one subscriber's view of a slot.
type reader[T any] struct {
	slot *slot[T]

	mu   sync.Mutex
	seen uint64

	// stop is closed on release and ends any wait in progress.
	stop     chan struct{}
	released atomic.Bool
}

func (r *reader[T]) peek() (T, bool) {
	return r.slot.load()
}

// release detaches the reader from the slot's reader count. Idempotent.
func (r *reader[T]) release() {
	if r.released.CompareAndSwap(false, true) {
		r.slot.readers.Add(-1)
		close(r.stop)
	}
}

func (r *reader[T]) markSeen(seq uint64) {
	r.mu.Lock()
	if seq > r.seen {
		r.seen = seq
	}
	r.mu.Unlock()
}

// wait blocks until the slot changes past what this reader has seen and
// returns the value present at wake-up. A change that is already pending wins
// over cancellation and over a closed writer; otherwise a closed writer or a
// released reader ends the wait with ErrDisconnected. No lock is held while
// blocked, and a cancelled wait leaves the reader exactly as it was.
func (r *reader[T]) wait(ctx context.Context) (T, error) {
	var zero T
	s := r.slot

	for {
		r.mu.Lock()
		seen := r.seen
		r.mu.Unlock()

		s.mu.RLock()
		seq, changed, closed := s.seq, s.changed, s.closed
		value, has := s.value, s.has
		s.mu.RUnlock()

		if seq != seen {
			r.markSeen(seq)
			if has {
				return value, nil
			}
			continue
		}
		if closed || r.released.Load() {
			return zero, ErrDisconnected
		}

		select {
		case <-changed:
		case <-s.done:
		case <-r.stop:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
