package pubsublatest

import "bytes"

// PublishBytes publishes a copy of data to the named topic, so the caller may
// reuse data afterwards.
func PublishBytes(b *Bus[[]byte], name string, data []byte) {
	b.Publish(name, bytes.Clone(data))
}

// PublishOwnedBytes publishes data without copying it. The caller hands the
// slice over and must not modify it afterwards; subscribers share it.
func PublishOwnedBytes(b *Bus[[]byte], name string, data []byte) {
	b.Publish(name, data)
}

// PublishTopicBytes publishes a copy of data to t.
func PublishTopicBytes(t *Topic[[]byte], data []byte) {
	t.Publish(bytes.Clone(data))
}

// PublishTopicOwnedBytes publishes data to t without copying it. The caller
// must not modify data afterwards.
func PublishTopicOwnedBytes(t *Topic[[]byte], data []byte) {
	t.Publish(data)
}
