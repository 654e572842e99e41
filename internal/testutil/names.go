package testutil

import (
	"fmt"
	"sync"
)

// FixedNameGenerator hands out a fixed list of identifier names in order.
//
// Scenarios use it to pin the names the parser makes up for range
// variables no lambda names, so rendered models and golden files do not
// depend on generator state:
//
//	names: [course, enrollment]
//
// Once the list is exhausted it continues with "<fallback>_<n>", counting
// from the first name past the list. If fallback is empty, "generated" is
// used.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedNameGenerator struct {
	mu       sync.Mutex
	names    []string
	fallback string
	next     int
}

// NewFixedNameGenerator creates a generator returning names in order.
func NewFixedNameGenerator(fallback string, names ...string) *FixedNameGenerator {
	if fallback == "" {
		fallback = "generated"
	}
	return &FixedNameGenerator{names: names, fallback: fallback}
}

// Generate returns the next name.
//
// Implements structure.NameGenerator interface.
func (g *FixedNameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.next
	g.next++
	if i < len(g.names) {
		return g.names[i]
	}
	return fmt.Sprintf("%s_%d", g.fallback, i)
}
