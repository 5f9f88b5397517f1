package pubsublatest_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pubsub "github.com/jonoton/go-pubsublatest"
)

// collectUntil forces garbage collections until cond holds or the deadline
// passes. Cleanups run on their own goroutine after a cycle, so cond is
// polled rather than checked once.
func collectUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return cond()
	}, 5*time.Second, 10*time.Millisecond)
}

//go:noinline
func abandonSub(topic *pubsub.Topic[string]) {
	_ = topic.Subscribe()
}

//go:noinline
func abandonTopicHandle(bus *pubsub.Bus[string], name, message string) {
	bus.Topic(name).Publish(message)
}

func TestSub_AbandonedSubIsDetached(t *testing.T) {
	t.Parallel()

	bus := newStringBus()
	topic := bus.Topic("abandoned")
	defer topic.Release()

	abandonSub(topic)
	require.Equal(t, 1, topic.SubscriberCount())

	collectUntil(t, func() bool { return topic.SubscriberCount() == 0 })
	assert.False(t, topic.HasSubscribers())
}

func TestTopic_AbandonedHandleIsReleased(t *testing.T) {
	t.Parallel()

	bus := newStringBus()
	sub := bus.Subscribe("abandoned")
	defer sub.Close()

	abandonTopicHandle(bus, "abandoned", "last words")
	_, ok := bus.Remove("abandoned")
	require.True(t, ok)

	collectUntil(t, func() bool {
		_, err := sub.TryRecv()
		return pubsub.IsDisconnected(err)
	})

	msg, ok := sub.Latest()
	assert.True(t, ok)
	assert.Equal(t, "last words", msg)
}
