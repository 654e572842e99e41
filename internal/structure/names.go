package structure

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NameGenerator supplies identifier names for range variables no lambda
// parameter names, such as the element of a SelectMany without a result
// selector at the end of a chain.
type NameGenerator interface {
	Generate() string
}

// GeneratedPrefix marks identifier names the parser made up.
const GeneratedPrefix = "<generated>_"

// SequentialNameGenerator generates <generated>_0, <generated>_1, ...
//
// Deterministic output keeps rendered models and golden files stable.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialNameGenerator struct {
	mu   sync.Mutex
	next int
}

// Generate returns the next sequential name.
func (g *SequentialNameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := fmt.Sprintf("%s%d", GeneratedPrefix, g.next)
	g.next++
	return name
}

// UUIDNameGenerator generates names with a UUIDv7 suffix, unique across
// parser instances and processes.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDNameGenerator struct{}

// Generate creates a new UUIDv7-suffixed name.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDNameGenerator) Generate() string {
	return GeneratedPrefix + uuid.Must(uuid.NewV7()).String()
}
