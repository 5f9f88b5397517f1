package pubsublatest

import (
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/jonoton/go-pubsublatest/internal/logattr"
)

// topic is the shared state behind every handle to one named topic.
//
// refs counts strong owners: the bus entry, live *Topic handles and
// subscribers' cached references. When it reaches zero the topic is destroyed
// and its slot's writer side closes. A destroyed topic can never be acquired
// again.
type topic[T any] struct {
	name    string
	slot    *slot[T]
	version versionCounter
	refs    atomic.Int64
	logger  *slog.Logger
}

// newTopic returns a topic owned once by the caller.
func newTopic[T any](name string, logger *slog.Logger) *topic[T] {
	t := &topic[T]{
		name:   name,
		slot:   newSlot[T](),
		logger: logger,
	}
	t.refs.Store(1)
	return t
}

// tryAcquire takes a strong reference if the topic is still alive. This is
// the only way a non-owning pointer to a topic may be turned into an owning
// one.
func (t *topic[T]) tryAcquire() bool {
	for {
		n := t.refs.Load()
		if n <= 0 {
			return false
		}
		if t.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one strong reference and destroys the topic when it was the
// last one.
func (t *topic[T]) release() {
	if t.refs.Add(-1) != 0 {
		return
	}
	t.slot.close()
	t.logger.Debug("topic destroyed",
		logattr.Topic(t.name),
		logattr.Version(t.version.load()))
}

func (t *topic[T]) owners() int64 {
	return t.refs.Load()
}

func (t *topic[T]) alive() bool {
	return t.refs.Load() > 0
}

func (t *topic[T]) publish(v T) {
	if !t.slot.store(v) {
		return
	}
	t.version.advance()
}

func (t *topic[T]) subscribe() *Sub[T] {
	baseline := t.version.load()
	cached := t.tryAcquire()
	sub := newSub(t, t.slot.subscribe(), baseline, cached)

	t.logger.Debug("subscriber attached",
		logattr.Topic(t.name),
		logattr.Subscriber(sub.id),
		logattr.Version(baseline))
	return sub
}

// Topic is an owning handle to a named topic. While any handle, subscriber
// cache or bus entry owns the topic it stays alive.
//
// Call Release when done with a handle. Handles that become unreachable
// without being released are released by the runtime eventually, but
// subscribers relying on disconnection should not depend on that timing.
type Topic[T any] struct {
	core    *topic[T]
	ref     *topicRef[T]
	cleanup runtime.Cleanup
}

type topicRef[T any] struct {
	core     *topic[T]
	released atomic.Bool
}

func (r *topicRef[T]) release() bool {
	if !r.released.CompareAndSwap(false, true) {
		return false
	}
	r.core.release()
	return true
}

// newTopicHandle wraps a reference the caller already holds.
func newTopicHandle[T any](core *topic[T]) *Topic[T] {
	ref := &topicRef[T]{core: core}
	h := &Topic[T]{core: core, ref: ref}
	h.cleanup = runtime.AddCleanup(h, func(r *topicRef[T]) { r.release() }, ref)
	return h
}

// Publish stores message as the topic's current value, replacing any value
// not yet read, wakes every waiting subscriber and advances the version by
// one. The version saturates at MaxVersion. Publishing to a topic without
// subscribers only updates its state, which later subscribers can peek.
func (t *Topic[T]) Publish(message T) {
	t.core.publish(message)
}

// Subscribe creates a subscriber whose cursor starts at the current version,
// so the value present now is not reported as new by TryRecv.
func (t *Topic[T]) Subscribe() *Sub[T] {
	return t.core.subscribe()
}

// Name returns the topic name.
func (t *Topic[T]) Name() string {
	return t.core.name
}

// Version returns the number of publishes seen by the topic, saturated at
// MaxVersion.
func (t *Topic[T]) Version() uint64 {
	return t.core.version.load()
}

// SubscriberCount returns the number of subscribers that have not been closed.
func (t *Topic[T]) SubscriberCount() int {
	return t.core.slot.readerCount()
}

// HasSubscribers reports whether at least one subscriber is attached.
func (t *Topic[T]) HasSubscribers() bool {
	return t.core.slot.readerCount() > 0
}

// Clone returns another owning handle to the same topic, or nil if the topic
// has already been destroyed.
func (t *Topic[T]) Clone() *Topic[T] {
	if !t.core.tryAcquire() {
		return nil
	}
	return newTopicHandle(t.core)
}

// Release gives up this handle's ownership. It is safe to call more than
// once. A released handle can still publish while other owners keep the
// topic alive; once the topic is destroyed its publishes are dropped.
func (t *Topic[T]) Release() {
	if t.ref.release() {
		t.cleanup.Stop()
	}
}
