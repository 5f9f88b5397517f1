package pubsublatest

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonoton/go-pubsublatest/internal/logattr"
)

// Collector exports bus statistics as Prometheus metrics. Each scrape takes a
// fresh Stats snapshot.
//
// Per-topic series are labelled with the topic name, so buses with unbounded
// topic names should not be registered. Topics whose names are not valid
// label values (for example invalid UTF-8) are left out of the scrape.
type Collector[T any] struct {
	bus *Bus[T]

	topics      *prometheus.Desc
	subscribers *prometheus.Desc
	version     *prometheus.Desc
	removed     *prometheus.Desc
}

// NewCollector returns a collector for bus. Metric names are prefixed with
// namespace and the "bus" subsystem.
func NewCollector[T any](bus *Bus[T], namespace string, constLabels prometheus.Labels) *Collector[T] {
	name := func(metric string) string {
		return prometheus.BuildFQName(namespace, "bus", metric)
	}
	return &Collector[T]{
		bus: bus,
		topics: prometheus.NewDesc(name("topics"),
			"Number of registered topics.", nil, constLabels),
		subscribers: prometheus.NewDesc(name("topic_subscribers"),
			"Number of live subscribers per topic.", []string{"topic"}, constLabels),
		version: prometheus.NewDesc(name("topic_version"),
			"Current version of each topic. Exported as a float, so values above 2^53 are rounded.",
			[]string{"topic"}, constLabels),
		removed: prometheus.NewDesc(name("topics_removed_total"),
			"Topics removed from the bus.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.topics
	ch <- c.subscribers
	ch <- c.version
	ch <- c.removed
}

// Collect implements prometheus.Collector.
func (c *Collector[T]) Collect(ch chan<- prometheus.Metric) {
	stats := c.bus.Stats()

	ch <- prometheus.MustNewConstMetric(c.topics, prometheus.GaugeValue, float64(len(stats.Topics)))
	for name, ts := range stats.Topics {
		subscribers, err := prometheus.NewConstMetric(c.subscribers, prometheus.GaugeValue, float64(ts.Subscribers), name)
		if err != nil {
			c.bus.logger.Debug("topic skipped by collector", logattr.Topic(name), logattr.Error(err))
			continue
		}
		version, err := prometheus.NewConstMetric(c.version, prometheus.GaugeValue, float64(ts.Version), name)
		if err != nil {
			c.bus.logger.Debug("topic skipped by collector", logattr.Topic(name), logattr.Error(err))
			continue
		}
		ch <- subscribers
		ch <- version
	}
	ch <- prometheus.MustNewConstMetric(c.removed, prometheus.CounterValue, float64(stats.TotalRemoved))
}
