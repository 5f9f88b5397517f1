package pubsublatest

import (
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/jonoton/go-pubsublatest/internal/logattr"
	"github.com/jonoton/go-pubsublatest/internal/shardmap"
)

// Bus is a registry of named latest-value topics.
//
// Topics are created on first use by Topic, Publish or Subscribe and live
// until they are removed from the bus and every other owner has released
// them. All methods are safe for concurrent use; operations on topic names
// that map to different registry shards do not contend.
type Bus[T any] struct {
	topics *shardmap.Map[*topic[T]]
	cfg    Config

	logger      *slog.Logger
	topicLogger *slog.Logger

	removed atomic.Uint64
}

// New creates a bus with DefaultConfig adjusted by opts.
func New[T any](opts ...Option) *Bus[T] {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	base := busLogger(o.logger, o.cfg.Debug)

	b := &Bus[T]{
		topics:      shardmap.New[*topic[T]](o.cfg.Shards, o.cfg.Capacity),
		cfg:         o.cfg,
		logger:      componentLogger(base, "bus"),
		topicLogger: componentLogger(base, "topic"),
	}
	b.cfg.Shards = b.topics.ShardCount()

	b.logger.Debug("bus created",
		logattr.Count("capacity", b.cfg.Capacity),
		logattr.Count("shards", b.cfg.Shards))
	return b
}

// NewWithConfig creates a bus from cfg; opts are applied on top of it.
func NewWithConfig[T any](cfg Config, opts ...Option) *Bus[T] {
	return New[T](append([]Option{WithConfig(cfg)}, opts...)...)
}

// HighThroughput creates a bus pre-sized for many topics.
func HighThroughput[T any](opts ...Option) *Bus[T] {
	return NewWithConfig[T](HighThroughputConfig(), opts...)
}

// LowLatency creates a bus sized for a handful of topics.
func LowLatency[T any](opts ...Option) *Bus[T] {
	return NewWithConfig[T](LowLatencyConfig(), opts...)
}

// Config returns the configuration the bus was built with. Shards holds the
// effective shard count.
func (b *Bus[T]) Config() Config {
	return b.cfg
}

// acquire returns the topic registered under name, creating it if needed,
// with one strong reference owned by the caller.
//
// Installation goes through a single LoadOrStore so concurrent callers for an
// unseen name agree on one instance; losing candidates are dropped. A topic
// that dies between lookup and acquire was removed concurrently, so the loop
// looks it up again.
func (b *Bus[T]) acquire(name string) *topic[T] {
	for {
		if t, ok := b.topics.Load(name); ok {
			if t.tryAcquire() {
				return t
			}
			continue
		}

		candidate := newTopic[T](name, b.topicLogger)
		t, loaded := b.topics.LoadOrStore(name, candidate)
		if !loaded {
			b.logger.Debug("topic created", logattr.Topic(name))
		}
		if t.tryAcquire() {
			return t
		}
	}
}

// Topic returns an owning handle to the named topic, creating the topic if it
// does not exist. Release the handle when done.
func (b *Bus[T]) Topic(name string) *Topic[T] {
	return newTopicHandle(b.acquire(name))
}

// Publish publishes message to the named topic, creating the topic if needed.
// A topic created this way has no subscribers and is eligible for
// CleanupUnused until someone subscribes.
func (b *Bus[T]) Publish(name string, message T) {
	t := b.acquire(name)
	t.publish(message)
	t.release()
}

// Subscribe subscribes to the named topic, creating it if needed.
func (b *Bus[T]) Subscribe(name string) *Sub[T] {
	t := b.acquire(name)
	sub := t.subscribe()
	t.release()
	return sub
}

// Remove deletes the named topic from the bus and returns the number of
// subscribers it had at that moment. It reports false if no such topic
// existed.
//
// Subscribers are not disconnected synchronously: Remove only drops the bus's
// own ownership. Once no handle or other subscriber keeps the topic alive,
// subscribers observe ErrDisconnected.
func (b *Bus[T]) Remove(name string) (int, bool) {
	t, ok := b.topics.LoadAndDelete(name)
	if !ok {
		return 0, false
	}
	count := t.slot.readerCount()
	t.release()
	b.removed.Add(1)

	b.logger.Debug("topic removed",
		logattr.Topic(name),
		logattr.Count("subscribers", count))
	return count, true
}

// TopicCount returns the number of registered topics.
func (b *Bus[T]) TopicCount() int {
	return b.topics.Len()
}

// TopicNames returns the names of all registered topics in no particular
// order.
func (b *Bus[T]) TopicNames() []string {
	return b.topics.Keys()
}

// CleanupUnused removes every topic that has no subscribers at scan time and
// returns how many were removed. Topics with subscribers are kept no matter
// how long they have been idle. A Subscribe racing with the sweep may attach
// to a topic that was just removed and then observe ErrDisconnected.
func (b *Bus[T]) CleanupUnused() int {
	removed := b.topics.DeleteIf(func(_ string, t *topic[T]) bool {
		return t.slot.readerCount() == 0
	})

	n := 0
	for _, t := range removed {
		t.release()
		if n < math.MaxInt {
			n++
		}
	}
	b.removed.Add(uint64(len(removed)))

	if n > 0 {
		b.logger.Debug("unused topics cleaned up", logattr.Count("removed", n))
	}
	return n
}

// Clear removes every topic from the bus and returns how many were removed.
func (b *Bus[T]) Clear() int {
	removed := b.topics.DeleteIf(func(string, *topic[T]) bool { return true })
	for _, t := range removed {
		t.release()
	}
	b.removed.Add(uint64(len(removed)))
	return len(removed)
}

// Close tears the bus down by removing every topic. Subscribers whose topics
// are no longer owned elsewhere become disconnected. The bus itself stays
// usable and starts empty. Close always returns nil.
func (b *Bus[T]) Close() error {
	n := b.Clear()
	b.logger.Debug("bus closed", logattr.Count("removed", n))
	return nil
}

// TopicStats is a point-in-time view of one topic.
type TopicStats struct {
	Subscribers int
	Version     uint64
	HasValue    bool
}

// BusStats is a point-in-time view of the bus.
type BusStats struct {
	// Topics maps each registered topic name to its stats.
	Topics map[string]TopicStats

	// TotalRemoved counts topics removed by Remove, CleanupUnused and Clear.
	TotalRemoved uint64
}

// Stats returns a snapshot of the registry. Concurrent publishes and
// subscriptions may change the numbers as soon as it returns.
func (b *Bus[T]) Stats() BusStats {
	stats := BusStats{
		Topics:       make(map[string]TopicStats, b.topics.Len()),
		TotalRemoved: b.removed.Load(),
	}
	b.topics.Range(func(name string, t *topic[T]) bool {
		_, has := t.slot.load()
		stats.Topics[name] = TopicStats{
			Subscribers: t.slot.readerCount(),
			Version:     t.version.load(),
			HasValue:    has,
		}
		return true
	})
	return stats
}
