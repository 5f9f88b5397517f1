package pubsublatest

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/jonoton/go-pubsublatest/internal/logattr"
)

// Sub is one consumer's cursor over a topic's latest value.
//
// It offers three independent ways to read:
//   - Wait blocks until the topic's value changes and returns the new value.
//   - TryRecv never blocks; it returns the current value only if the topic
//     version moved past what this subscriber last consumed.
//   - Latest peeks the current value without touching the cursor.
//
// Wait and TryRecv keep separate bookkeeping: consuming a value through one
// does not mark it as seen for the other.
//
// A Sub is safe for concurrent use. Call Close when done with it.
type Sub[T any] struct {
	id      string
	name    string
	state   *subState[T]
	cleanup runtime.Cleanup
}

// subState is everything the runtime cleanup needs to detach an abandoned
// Sub. It must never point back at the Sub.
type subState[T any] struct {
	// core is a non-owning back-reference unless cached is set. It is only
	// turned into an owning reference through tryAcquire.
	core   *topic[T]
	reader *reader[T]

	mu           sync.Mutex
	lastSeen     uint64
	cached       bool
	closed       bool
	disconnected bool
}

func newSub[T any](core *topic[T], r *reader[T], baseline uint64, cached bool) *Sub[T] {
	st := &subState[T]{
		core:     core,
		reader:   r,
		lastSeen: baseline,
		cached:   cached,
	}
	s := &Sub[T]{
		id:    uuid.NewString(),
		name:  core.name,
		state: st,
	}
	s.cleanup = runtime.AddCleanup(s, func(st *subState[T]) { st.close() }, st)
	return s
}

// resolve returns whether the topic is reachable, holding a cached strong
// reference on success. st.mu must be held.
//
// A cached reference that is the topic's only remaining owner is dropped
// before anything else. Keeping it would make a topic that everyone else has
// released immortal and hide the disconnection forever. Dropping it destroys
// the topic, so the fresh acquire that follows fails.
func (st *subState[T]) resolve() bool {
	if st.cached && st.core.owners() <= 1 {
		st.cached = false
		st.core.release()
	}
	if st.cached {
		return true
	}
	if st.core.tryAcquire() {
		st.cached = true
		return true
	}
	if !st.disconnected {
		st.disconnected = true
		st.core.logger.Debug("subscriber disconnected", logattr.Topic(st.core.name))
	}
	return false
}

func (st *subState[T]) close() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return false
	}
	st.closed = true
	if st.cached {
		st.cached = false
		st.core.release()
	}
	st.reader.release()
	return true
}

// ID returns the random identifier assigned to this subscriber.
func (s *Sub[T]) ID() string {
	return s.id
}

// TopicName returns the name of the topic this subscriber is bound to.
// It stays available after disconnection.
func (s *Sub[T]) TopicName() string {
	return s.name
}

// LastSeenVersion returns the topic version consumed by the last successful
// TryRecv, or the version captured at subscription time.
func (s *Sub[T]) LastSeenVersion() uint64 {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.lastSeen
}

// Equal reports whether both subscribers are bound to the same topic name.
func (s *Sub[T]) Equal(other *Sub[T]) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.name == other.name
}

// Wait blocks until the topic's value changes after the last change this
// subscriber waited for, then returns the value present at that moment.
// Intermediate values published in between are skipped.
//
// It returns ErrDisconnected once the topic has been destroyed or the
// subscriber is closed, and ctx.Err() if ctx ends first. A cancelled Wait
// leaves the subscriber as it was.
func (s *Sub[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	st := s.state

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return zero, ErrDisconnected
	}
	// Drop a cache that is the last owner so the wait below can observe the
	// topic's destruction instead of keeping it alive.
	st.resolve()
	st.mu.Unlock()

	return st.reader.wait(ctx)
}

// TryRecv returns the current value if the topic version has advanced since
// the last successful TryRecv and records the new version as seen.
//
// It returns ErrEmpty when nothing new was published and ErrDisconnected when
// the topic can no longer be resolved. It never blocks.
func (s *Sub[T]) TryRecv() (T, error) {
	var zero T
	st := s.state

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return zero, ErrDisconnected
	}
	if !st.resolve() {
		return zero, ErrDisconnected
	}

	live := st.core.version.load()
	if !hasNewer(live, st.lastSeen) {
		return zero, ErrEmpty
	}
	st.lastSeen = live

	v, ok := st.reader.peek()
	if !ok {
		return zero, ErrEmpty
	}
	return v, nil
}

// Latest returns the current value, if any, without consuming it. It never
// reports disconnection: the last value stays readable after the topic is
// gone.
func (s *Sub[T]) Latest() (T, bool) {
	return s.state.reader.peek()
}

// HasLatest reports whether the topic holds a value.
func (s *Sub[T]) HasLatest() bool {
	_, ok := s.state.reader.peek()
	return ok
}

// Close detaches the subscriber from its topic and gives up any reference it
// holds. Waits in progress return ErrDisconnected. Close is idempotent.
func (s *Sub[T]) Close() {
	if !s.state.close() {
		return
	}
	s.cleanup.Stop()
	s.state.core.logger.Debug("subscriber closed",
		logattr.Topic(s.name),
		logattr.Subscriber(s.id))
}

// WaitWith is Wait followed by f applied to the received value.
func WaitWith[T, R any](ctx context.Context, s *Sub[T], f func(T) R) (R, error) {
	v, err := s.Wait(ctx)
	if err != nil {
		var zero R
		return zero, err
	}
	return f(v), nil
}

// TryRecvWith is TryRecv followed by f applied to the received value.
func TryRecvWith[T, R any](s *Sub[T], f func(T) R) (R, error) {
	v, err := s.TryRecv()
	if err != nil {
		var zero R
		return zero, err
	}
	return f(v), nil
}

// LatestWith applies f to the current value, if any.
func LatestWith[T, R any](s *Sub[T], f func(T) R) (R, bool) {
	v, ok := s.Latest()
	if !ok {
		var zero R
		return zero, false
	}
	return f(v), true
}
