package pubsublatest

import (
	"math"
	"sync/atomic"
)

// MaxVersion is the value at which topic versions stop advancing.
const MaxVersion uint64 = math.MaxUint64

// versionCounter is a monotonic counter that saturates at MaxVersion instead
// of wrapping, so an old version number can never come around again.
type versionCounter struct {
	v atomic.Uint64
}

func (c *versionCounter) load() uint64 {
	return c.v.Load()
}

// advance increments the counter unless it is already saturated and returns
// the resulting value.
func (c *versionCounter) advance() uint64 {
	for {
		cur := c.v.Load()
		if cur == MaxVersion {
			return cur
		}
		if c.v.CompareAndSwap(cur, cur+1) {
			return cur + 1
		}
	}
}

// hasNewer reports whether a reader whose cursor is at seen has something to
// consume when the topic is at live. The second clause is the one allowed step
// onto the saturation plateau: a reader still below MaxVersion gets exactly one
// more delivery once the topic has saturated, after which both sides are
// pinned and nothing is new.
func hasNewer(live, seen uint64) bool {
	return live > seen || (live == MaxVersion && seen < MaxVersion)
}
