package pubsublatest

import "errors"

var (
	// ErrEmpty is returned by a non-blocking read when the topic has not been
	// published to since the subscriber's last successful read.
	ErrEmpty = errors.New("pubsublatest: no new message")

	// ErrDisconnected is returned when the subscriber's topic can no longer be
	// resolved: it was removed from the bus and no other owner keeps it alive,
	// or the subscriber itself was closed.
	ErrDisconnected = errors.New("pubsublatest: topic disconnected")
)

// IsEmpty reports whether err is (or wraps) ErrEmpty.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrEmpty)
}

// IsDisconnected reports whether err is (or wraps) ErrDisconnected.
func IsDisconnected(err error) bool {
	return errors.Is(err, ErrDisconnected)
}
