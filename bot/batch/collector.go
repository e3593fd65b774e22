package batch

import (
	"sync"
	"time"
)

// Released is a completed album handed to the release callback: every item
// added under the group key, exactly once, in arrival order. Ownership
// transfers to the receiver.
type Released struct {
	GroupKey string
	Items    [][]byte
}

type group struct {
	items       [][]byte
	lastUpdated time.Time
	timer       *time.Timer
}

// Collector accumulates photos that share a transport-assigned group key and
// releases each group once no new item has arrived for the quiet period.
// Release is debounced: one timer per group, re-armed on every arrival, so a
// burst of N photos costs one wait, not N.
type Collector struct {
	mu          sync.Mutex
	groups      map[string]*group
	quietPeriod time.Duration
	now         func() time.Time
	release     func(Released)
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock injects the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithRelease sets the callback invoked, on its own goroutine, when a group's
// quiet period expires. Without it groups are only released through TryTake.
func WithRelease(release func(Released)) Option {
	return func(c *Collector) { c.release = release }
}

// NewCollector creates a collector with the given quiet period.
func NewCollector(quietPeriod time.Duration, options ...Option) *Collector {
	c := &Collector{
		groups:      make(map[string]*group),
		quietPeriod: quietPeriod,
		now:         time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Add appends item to the group, creating it if needed, and re-arms the
// group's release timer. Items are never reordered, duplicated or dropped.
func (c *Collector) Add(groupKey string, item []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[groupKey]
	if !ok {
		g = &group{}
		c.groups[groupKey] = g
	}
	g.items = append(g.items, item)
	g.lastUpdated = c.now()

	if c.release == nil {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(c.quietPeriod, func() { c.expire(groupKey) })
}

// TryTake returns the group's items and removes it if the quiet period has
// elapsed since the last Add. Taking is terminal; the key can be reused for
// a fresh group afterwards.
func (c *Collector) TryTake(groupKey string) ([][]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.takeLocked(groupKey)
}

func (c *Collector) takeLocked(groupKey string) ([][]byte, bool) {
	g, ok := c.groups[groupKey]
	if !ok {
		return nil, false
	}
	if c.now().Sub(g.lastUpdated) < c.quietPeriod {
		return nil, false
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	delete(c.groups, groupKey)
	return g.items, true
}

// expire runs on timer fire. An Add racing the timer refreshes lastUpdated,
// in which case the group is not yet quiet and the next timer is already
// armed; nothing to do here. The lock is never held across the callback.
func (c *Collector) expire(groupKey string) {
	c.mu.Lock()
	items, ok := c.takeLocked(groupKey)
	release := c.release
	c.mu.Unlock()

	if ok && release != nil {
		release(Released{GroupKey: groupKey, Items: items})
	}
}

// Len reports the number of open groups.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}
