package pubsublatest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pubsub "github.com/jonoton/go-pubsublatest"
)

func newBytesBus() *pubsub.Bus[[]byte] {
	return pubsub.New[[]byte](pubsub.WithLogger(quietLogger()))
}

func TestPublishBytes_Copies(t *testing.T) {
	t.Parallel()

	bus := newBytesBus()
	sub := bus.Subscribe("bytes")
	defer sub.Close()

	data := []byte("Hello, World!")
	pubsub.PublishBytes(bus, "bytes", data)
	data[0] = 'J'

	got, err := sub.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello, World!"), got)
}

func TestPublishOwnedBytes_SharesBuffer(t *testing.T) {
	t.Parallel()

	bus := newBytesBus()
	sub := bus.Subscribe("bytes")
	defer sub.Close()

	data := []byte{72, 101, 108, 108, 111}
	pubsub.PublishOwnedBytes(bus, "bytes", data)

	got, err := sub.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), got)
	assert.Same(t, &data[0], &got[0])
}

func TestPublishTopicBytes(t *testing.T) {
	t.Parallel()

	bus := newBytesBus()
	topic := bus.Topic("raw")
	defer topic.Release()
	sub := topic.Subscribe()
	defer sub.Close()

	buf := []byte("frame-1")
	pubsub.PublishTopicBytes(topic, buf)
	copy(buf, "FRAME")

	got, err := sub.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-1"), got)

	owned := []byte("frame-2")
	pubsub.PublishTopicOwnedBytes(topic, owned)
	got, err = sub.TryRecv()
	require.NoError(t, err)
	assert.Same(t, &owned[0], &got[0])
	assert.Equal(t, uint64(2), topic.Version())
}
