package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDGenerator("run-fixed")

	assert.Equal(t, "run-fixed", gen.Generate())
	assert.Equal(t, "run-fixed", gen.Generate())
}

func TestFixedIDGenerator_Counts(t *testing.T) {
	gen := NewFixedIDGenerator("")

	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())
	assert.Equal(t, "run-0003", gen.Generate())
}

func TestFixedIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedIDGenerator("")

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
