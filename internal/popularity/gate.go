package popularity

import (
	"strings"
	"sync"
)

// Gate allows at most one tracking call per settled query. It re-arms only
// when the settled query is cleared or changes to a different value.
type Gate struct {
	mu      sync.Mutex
	settled string
	tracked string // last key Acquire granted; "" when armed
}

// Settle records the current settled query.
func (g *Gate) Settle(query string) {
	key := strings.TrimSpace(query)
	g.mu.Lock()
	defer g.mu.Unlock()
	if key != g.settled {
		g.tracked = ""
	}
	g.settled = key
}

// Acquire reports whether query may be tracked now, and if so marks it
// tracked. It refuses blank queries and queries that are not the settled one.
func (g *Gate) Acquire(query string) bool {
	key := strings.TrimSpace(query)
	g.mu.Lock()
	defer g.mu.Unlock()
	if key == "" || key != g.settled || key == g.tracked {
		return false
	}
	g.tracked = key
	return true
}

// Reset re-arms the gate.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settled = ""
	g.tracked = ""
}
