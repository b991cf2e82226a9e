package testutil

import "sync"

// FixedIDs returns predetermined identifiers in order, then repeats the last
// one. It stands in for UUID generation where tests compare exact output.
//
// Thread-safety: FixedIDs is safe for concurrent use.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator over ids. With no ids, Generate returns
// "test-id-default".
func NewFixedIDs(ids ...string) *FixedIDs {
	if len(ids) == 0 {
		ids = []string{"test-id-default"}
	}
	return &FixedIDs{ids: ids}
}

// Generate returns the next identifier.
func (g *FixedIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}
