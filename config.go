package pubsublatest

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Capacity presets for the topic registry.
const (
	DefaultCapacity        = 16
	HighThroughputCapacity = 64
	LowLatencyCapacity     = 8
)

// Config sizes a Bus. It can be filled from the environment with
// ConfigFromEnv or built from one of the presets.
type Config struct {
	// Capacity is the number of topics the registry is pre-sized for.
	Capacity int `env:"PUBSUB_LATEST_CAPACITY" envDefault:"16"`

	// Shards is the number of independently locked registry shards.
	// Zero derives it from GOMAXPROCS.
	Shards int `env:"PUBSUB_LATEST_SHARDS" envDefault:"0"`

	// Debug gives the bus its own debug-level stderr logger when no logger
	// is configured. Other buses are not affected.
	Debug bool `env:"PUBSUB_LATEST_DEBUG" envDefault:"false"`
}

// DefaultConfig is the configuration used by New.
func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity}
}

// HighThroughputConfig pre-sizes the registry for many topics.
func HighThroughputConfig() Config {
	return Config{Capacity: HighThroughputCapacity}
}

// LowLatencyConfig keeps the registry small for applications with few topics.
func LowLatencyConfig() Config {
	return Config{Capacity: LowLatencyCapacity}
}

// ConfigFromEnv reads a Config from PUBSUB_LATEST_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("pubsublatest: parse config: %w", err)
	}
	return cfg, nil
}

type options struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*options)

// WithConfig replaces the whole configuration. Options applied after it
// still override individual fields.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithCapacity sets the initial registry capacity. Negative values are ignored.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity >= 0 {
			o.cfg.Capacity = capacity
		}
	}
}

// WithShards sets the registry shard count. Zero or negative values keep the
// GOMAXPROCS-derived default.
func WithShards(shards int) Option {
	return func(o *options) {
		if shards > 0 {
			o.cfg.Shards = shards
		}
	}
}

// WithLogger configures structured logging for the bus, its topics and
// subscribers. Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable
// logging entirely.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
