package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_StartsAtEpoch(t *testing.T) {
	clock := NewStepClock(time.Second)
	assert.Equal(t, Epoch, clock.Now())
}

func TestStepClock_Advances(t *testing.T) {
	clock := NewStepClock(250 * time.Millisecond)

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.Equal(t, 250*time.Millisecond, second.Sub(first))
	assert.Equal(t, 500*time.Millisecond, third.Sub(first))
}

func TestStepClock_Frozen(t *testing.T) {
	clock := NewStepClock(0)
	assert.Equal(t, clock.Now(), clock.Now())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	seen := make(chan time.Time, numGoroutines*callsPerGoroutine)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				seen <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		assert.False(t, unique[ts], "duplicate timestamp %v", ts)
		unique[ts] = true
	}
	assert.Len(t, unique, numGoroutines*callsPerGoroutine)
}
