package pubsublatest_test

import (
	"fmt"

	pubsub "github.com/jonoton/go-pubsublatest"
)

func Example() {
	bus := pubsub.New[string]()
	defer bus.Close()

	sub := bus.Subscribe("link.state")
	defer sub.Close()

	bus.Publish("link.state", "connecting")
	bus.Publish("link.state", "up")

	state, err := sub.TryRecv()
	fmt.Println(state, err)

	_, err = sub.TryRecv()
	fmt.Println(err)
	// Output:
	// up <nil>
	// pubsublatest: no new message
}

func ExampleBus_Remove() {
	bus := pubsub.New[int]()

	sub := bus.Subscribe("sensor")
	defer sub.Close()

	count, ok := bus.Remove("sensor")
	fmt.Println(count, ok)

	_, err := sub.TryRecv()
	fmt.Println(pubsub.IsDisconnected(err))
	// Output:
	// 1 true
	// true
}

func ExampleBus_CleanupUnused() {
	bus := pubsub.New[int]()

	bus.Publish("orphan", 1)
	keeper := bus.Subscribe("watched")
	defer keeper.Close()

	fmt.Println(bus.CleanupUnused(), bus.TopicNames())
	// Output:
	// 1 [watched]
}
