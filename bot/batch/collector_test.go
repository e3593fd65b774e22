package batch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTryTakeNotReadyBeforeQuietPeriod(t *testing.T) {
	clock := newFakeClock()
	collector := NewCollector(3*time.Second, WithClock(clock.Now))

	collector.Add("g1", []byte("a"))
	clock.Advance(2 * time.Second)

	items, ok := collector.TryTake("g1")
	assert.False(t, ok)
	assert.Nil(t, items)
	assert.Equal(t, 1, collector.Len())
}

func TestTryTakeReturnsItemsInArrivalOrder(t *testing.T) {
	clock := newFakeClock()
	collector := NewCollector(3*time.Second, WithClock(clock.Now))

	added := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	for _, item := range added {
		collector.Add("g1", item)
		clock.Advance(500 * time.Millisecond)
	}
	clock.Advance(3 * time.Second)

	items, ok := collector.TryTake("g1")
	require.True(t, ok)
	require.Equal(t, added, items)

	// Taking is terminal: the entry is gone.
	_, ok = collector.TryTake("g1")
	assert.False(t, ok)
	assert.Equal(t, 0, collector.Len())
}

func TestAddRefreshesQuietPeriod(t *testing.T) {
	clock := newFakeClock()
	collector := NewCollector(3*time.Second, WithClock(clock.Now))

	collector.Add("g1", []byte("a"))
	clock.Advance(2 * time.Second)
	collector.Add("g1", []byte("b"))
	clock.Advance(2 * time.Second)

	_, ok := collector.TryTake("g1")
	assert.False(t, ok, "second add should have reset the quiet window")

	clock.Advance(time.Second)
	items, ok := collector.TryTake("g1")
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, items)
}

func TestTryTakeUnknownGroup(t *testing.T) {
	collector := NewCollector(3 * time.Second)
	_, ok := collector.TryTake("missing")
	assert.False(t, ok)
}

func TestGroupsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	collector := NewCollector(3*time.Second, WithClock(clock.Now))

	collector.Add("g1", []byte("a"))
	clock.Advance(4 * time.Second)
	collector.Add("g2", []byte("b"))

	items, ok := collector.TryTake("g1")
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("a")}, items)

	_, ok = collector.TryTake("g2")
	assert.False(t, ok, "g2 is still inside its quiet period")
}

func TestConcurrentAddsSameGroupLoseNothing(t *testing.T) {
	clock := newFakeClock()
	collector := NewCollector(time.Second, WithClock(clock.Now))

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			collector.Add("g1", []byte(fmt.Sprintf("item-%d", i)))
		}(i)
	}
	wg.Wait()

	clock.Advance(2 * time.Second)
	items, ok := collector.TryTake("g1")
	require.True(t, ok)
	require.Len(t, items, n)

	seen := make(map[string]bool, n)
	for _, item := range items {
		require.False(t, seen[string(item)], "duplicate item %s", item)
		seen[string(item)] = true
	}
}

func TestDebouncedReleaseFiresOncePerGroup(t *testing.T) {
	releases := make(chan Released, 4)
	collector := NewCollector(40*time.Millisecond, WithRelease(func(r Released) {
		releases <- r
	}))

	collector.Add("g1", []byte("a"))
	time.Sleep(10 * time.Millisecond)
	collector.Add("g1", []byte("b"))
	time.Sleep(10 * time.Millisecond)
	collector.Add("g1", []byte("c"))

	select {
	case released := <-releases:
		assert.Equal(t, "g1", released.GroupKey)
		assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, released.Items)
	case <-time.After(time.Second):
		t.Fatal("group was never released")
	}

	select {
	case extra := <-releases:
		t.Fatalf("unexpected second release: %+v", extra)
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, 0, collector.Len())
}

func TestKeyReusableAfterRelease(t *testing.T) {
	clock := newFakeClock()
	collector := NewCollector(time.Second, WithClock(clock.Now))

	collector.Add("g1", []byte("a"))
	clock.Advance(2 * time.Second)
	_, ok := collector.TryTake("g1")
	require.True(t, ok)

	collector.Add("g1", []byte("b"))
	clock.Advance(2 * time.Second)
	items, ok := collector.TryTake("g1")
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("b")}, items)
}
