// Package txnid generates transaction identifiers from the wall clock and a
// per-process sequence.
package txnid

import (
	"fmt"
	"sync"
	"time"
)

const maxSeq = 9999

// Generator hands out identifiers of the form T<yyyyMMddHHmmssSSS><seq>.
// Identifiers are unique within one process and sort by creation time.
type Generator struct {
	mu     sync.Mutex
	now    func() time.Time
	lastMs int64
	seq    int
}

// New returns a Generator reading the system clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a Generator reading now.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns a new identifier.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now()
	ms := t.UnixMilli()
	if ms < g.lastMs {
		// Clock stepped back; keep counting on the last millisecond.
		ms = g.lastMs
		t = time.UnixMilli(ms)
	}

	if ms == g.lastMs {
		g.seq++
		if g.seq > maxSeq {
			// Sequence exhausted: borrow the next millisecond.
			ms++
			t = time.UnixMilli(ms)
			g.seq = 0
		}
	} else {
		g.seq = 0
	}
	g.lastMs = ms

	u := t.UTC()
	return fmt.Sprintf("T%s%03d%04d", u.Format("20060102150405"), u.Nanosecond()/int(time.Millisecond), g.seq)
}
