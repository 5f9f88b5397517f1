/*
Package pubsublatest implements a thread-safe, in-memory, multi-topic publish-subscribe
bus with latest-only delivery.

Each named topic holds at most one value. Publishing replaces whatever value was there,
whether or not anyone read it, so subscribers always see the freshest value instead of
a backlog. This suits status and telemetry data such as sensor readings, connection
state or live configuration. It does not suit work queues.

# Key Features

  - Latest-Only Delivery: a publish overwrites the previous value. Publishers never
    block and nothing is buffered.

  - Version Cursors: every topic carries a saturating version counter. Each subscriber
    remembers the version it last consumed, so TryRecv can tell "new since I looked"
    from "already seen" without comparing payloads.

  - Three Read Modes: Wait blocks until the value changes, TryRecv polls the version
    without blocking, and Latest peeks without consuming.

  - Disconnection Detection: removing a topic from the bus does not yank it away from
    subscribers. They observe ErrDisconnected once nothing else keeps the topic alive.

  - Cleanup: CleanupUnused drops topics that nobody subscribes to.

  - Thread Safety: All operations are safe for concurrent use by multiple goroutines.

# Usage Examples

Create a bus for a payload type and publish to topics by name. Topics are created on
first use.

	bus := pubsublatest.New[SensorReading]()
	defer bus.Close()

	sub := bus.Subscribe("sensors.temp")
	defer sub.Close()

	bus.Publish("sensors.temp", SensorReading{Celsius: 21.5})
	bus.Publish("sensors.temp", SensorReading{Celsius: 21.7}) // replaces 21.5

	reading, err := sub.TryRecv() // 21.7
	_, err = sub.TryRecv()        // ErrEmpty: nothing new since the last read

# Topic Handles

Bus.Topic returns an owning handle, useful for producers that publish often. Release
it when done; a topic stays alive while any handle, subscriber or the bus owns it.

	topic := bus.Topic("link.state")
	defer topic.Release()

	topic.Publish(LinkUp)
	fmt.Println(topic.Version(), topic.SubscriberCount())

# Waiting For Changes

Wait blocks until the next publish and returns the value present when it wakes. Cancel
through the context:

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reading, err := sub.Wait(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		// nothing published in time
	case errors.Is(err, pubsublatest.ErrDisconnected):
		// topic is gone; resubscribe through the bus
	}

# Errors

Non-blocking reads report one of two sentinel errors:

  - ErrEmpty: nothing new since the last successful read. Retry later, Wait, or peek.
  - ErrDisconnected: the topic was removed and no other owner keeps it alive.

Peeks (Latest, HasLatest, LatestWith) never fail.

# Configuration

Registry sizing is chosen at construction time, either with options or a Config:

	bus := pubsublatest.HighThroughput[[]byte]()

	cfg, err := pubsublatest.ConfigFromEnv() // PUBSUB_LATEST_CAPACITY, ...
	bus := pubsublatest.NewWithConfig[[]byte](cfg, pubsublatest.WithLogger(logger))
*/
package pubsublatest
