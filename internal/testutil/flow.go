package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predictable run IDs for golden and ledger tests.
//
// With a single configured ID every call returns that ID. Without one, it
// counts: "run-0001", "run-0002", ...
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu sync.Mutex
	id string
	n  int
}

// NewFixedIDGenerator creates a generator. An empty id selects counting mode.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	return &FixedIDGenerator{id: id}
}

// Generate returns the next run ID.
func (g *FixedIDGenerator) Generate() string {
	if g.id != "" {
		return g.id
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%04d", g.n)
}
