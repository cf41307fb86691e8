package txnid

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFormat(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 9, 4, 5, 123_000_000, time.UTC)
	g := NewWithClock(func() time.Time { return fixed })

	assert.Equal(t, "T202610150904051230000", g.Next())
	assert.Equal(t, "T202610150904051230001", g.Next())
}

func TestNextRollsIntoNextMillisecond(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 9, 4, 5, 0, time.UTC)
	g := NewWithClock(func() time.Time { return fixed })

	seen := make(map[string]bool)
	for i := 0; i < maxSeq+5; i++ {
		id := g.Next()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.True(t, seen["T202610150904050010000"])
}

func TestNextClockStepBack(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 4, 5, 0, time.UTC)
	g := NewWithClock(func() time.Time { return now })

	first := g.Next()
	now = now.Add(-time.Second)
	second := g.Next()

	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestNextConcurrent(t *testing.T) {
	g := New()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 8*500)
}
