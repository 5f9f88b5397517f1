package pubsublatest_test

import (
	"fmt"
	"testing"

	pubsub "github.com/jonoton/go-pubsublatest"
)

func BenchmarkBus_Publish(b *testing.B) {
	bus := pubsub.New[[]byte](pubsub.WithLogger(quietLogger()))
	payload := []byte("sensor payload")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish("bench", payload)
	}
}

func BenchmarkBus_PublishParallelManyTopics(b *testing.B) {
	bus := pubsub.HighThroughput[int](pubsub.WithLogger(quietLogger()))
	names := make([]string, 64)
	for i := range names {
		names[i] = fmt.Sprintf("topic_%d", i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			bus.Publish(names[i%len(names)], i)
			i++
		}
	})
}

func BenchmarkTopic_Publish(b *testing.B) {
	bus := pubsub.New[int](pubsub.WithLogger(quietLogger()))
	topic := bus.Topic("bench")
	defer topic.Release()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		topic.Publish(i)
	}
}

func BenchmarkSub_TryRecv(b *testing.B) {
	bus := pubsub.New[int](pubsub.WithLogger(quietLogger()))
	topic := bus.Topic("bench")
	defer topic.Release()
	sub := topic.Subscribe()
	defer sub.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		topic.Publish(i)
		_, _ = sub.TryRecv()
	}
}

func BenchmarkSub_Latest(b *testing.B) {
	bus := pubsub.New[int](pubsub.WithLogger(quietLogger()))
	bus.Publish("bench", 1)
	sub := bus.Subscribe("bench")
	defer sub.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = sub.Latest()
	}
}
