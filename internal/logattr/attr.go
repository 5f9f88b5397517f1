// Package logattr holds the slog attributes shared by the bus log lines.
//
// Helpers return an empty slog.Attr for missing values so call sites never
// need nil or empty checks; slog drops empty attributes.
package logattr

import "log/slog"

// Component tags the emitting part of the bus.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Topic creates an attribute for a topic name. Empty names are valid topics,
// so the attribute is always emitted.
func Topic(name string) slog.Attr {
	return slog.String("topic", name)
}

// Subscriber creates an attribute for a subscriber ID.
func Subscriber(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscriber_id", id)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Version creates an attribute for a topic version.
func Version(v uint64) slog.Attr {
	return slog.Uint64("version", v)
}

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}
