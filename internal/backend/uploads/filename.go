package uploads

import (
	"strconv"
	"sync"
	"time"
)

// nameGenerator issues millisecond timestamps that are strictly increasing
// within the process, even when several uploads arrive in the same millisecond.
type nameGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newNameGenerator() *nameGenerator {
	return &nameGenerator{now: time.Now}
}

func (g *nameGenerator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := g.now().UnixMilli()
	if stamp <= g.last {
		stamp = g.last + 1
	}
	g.last = stamp
	return stamp
}

func (g *nameGenerator) nextName(extension string) string {
	return strconv.FormatInt(g.next(), 10) + extension
}
