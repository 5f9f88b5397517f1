package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	pubsub "github.com/jonoton/go-pubsublatest"
	"github.com/jonoton/go-pubsublatest/internal/logattr"
)

type reading struct {
	Sensor  string
	Celsius float64
	At      time.Time
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := pubsub.ConfigFromEnv()
	if err != nil {
		logger.Error("load config", logattr.Error(err))
		os.Exit(1)
	}
	bus := pubsub.NewWithConfig[reading](cfg, pubsub.WithLogger(logger))
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup

	// Fast producer: publishes far more often than anyone reads.
	wg.Add(1)
	go func() {
		defer wg.Done()
		topic := bus.Topic("sensors.temp")
		defer topic.Release()

		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				topic.Publish(reading{Sensor: "temp-1", Celsius: 20 + rand.Float64()*5, At: now})
			}
		}
	}()

	// Slow poller: only ever sees the freshest reading.
	poller := bus.Subscribe("sensors.temp")
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer poller.Close()

		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r, err := poller.TryRecv()
				switch {
				case err == nil:
					fmt.Printf("(poller) %.2f°C at version %d\n", r.Celsius, poller.LastSeenVersion())
				case pubsub.IsEmpty(err):
					fmt.Println("(poller) nothing new")
				case pubsub.IsDisconnected(err):
					fmt.Println("(poller) topic gone")
					return
				}
			}
		}
	}()

	// Waiter: blocks for changes and reports the age of what it gets.
	waiter := bus.Subscribe("sensors.temp")
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer waiter.Close()

		for i := 0; i < 5; i++ {
			age, err := pubsub.WaitWith(ctx, waiter, func(r reading) time.Duration { return time.Since(r.At) })
			if errors.Is(err, context.DeadlineExceeded) || pubsub.IsDisconnected(err) {
				return
			}
			fmt.Printf("(waiter) reading is %s old\n", age.Round(time.Microsecond))
			time.Sleep(200 * time.Millisecond)
		}
	}()

	// A topic nobody subscribes to is reclaimed by cleanup.
	bus.Publish("sensors.unused", reading{Sensor: "spare"})
	fmt.Println("\n--- Topics:", bus.TopicNames())
	fmt.Println("--- Cleanup removed:", bus.CleanupUnused())

	wg.Wait()

	stats := bus.Stats()
	for name, ts := range stats.Topics {
		fmt.Printf("\n--- %s: version=%d subscribers=%d\n", name, ts.Version, ts.Subscribers)
	}
}
