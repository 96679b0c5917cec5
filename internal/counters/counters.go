// Package counters implements bounded, eventually-consistent atomic counters
// used for session caps, batch limits, and statistics that readers may observe
// slightly stale but never torn.
package counters

import "sync/atomic"

// Bounded is an atomic counter with a fixed ceiling. TryIncrement fails once
// the ceiling is reached, which backs capacity checks like the SSE session cap.
type Bounded struct {
	value atomic.Int64
	limit int64
}

// NewBounded creates a bounded counter with the given ceiling.
func NewBounded(limit int64) *Bounded {
	return &Bounded{limit: limit}
}

// TryIncrement increments the counter if doing so would not exceed the limit.
// Reports whether the increment succeeded.
func (b *Bounded) TryIncrement() bool {
	for {
		cur := b.value.Load()
		if cur >= b.limit {
			return false
		}
		if b.value.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Decrement reduces the counter by one, floored at zero.
func (b *Bounded) Decrement() {
	for {
		cur := b.value.Load()
		if cur <= 0 {
			return
		}
		if b.value.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Value returns the current count. May be briefly stale under contention.
func (b *Bounded) Value() int64 { return b.value.Load() }

// Limit returns the configured ceiling.
func (b *Bounded) Limit() int64 { return b.limit }

// Counter is a simple unbounded atomic counter for operation/stat tallies.
type Counter struct {
	value atomic.Int64
}

func (c *Counter) Add(n int64) int64 { return c.value.Add(n) }
func (c *Counter) Inc() int64        { return c.value.Add(1) }
func (c *Counter) Value() int64      { return c.value.Load() }
