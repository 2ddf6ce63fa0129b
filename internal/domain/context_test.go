package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutionContext(t *testing.T) {
	execCtx := NewExecutionContext()

	assert.NotEmpty(t, execCtx.ExecutionID)
	assert.WithinDuration(t, time.Now(), execCtx.StartedAt, time.Second)
	assert.Equal(t, 0, execCtx.Len())

	other := NewExecutionContext()
	assert.NotEqual(t, execCtx.ExecutionID, other.ExecutionID)
}

func TestClaim_OncePerNode(t *testing.T) {
	execCtx := NewExecutionContext()

	assert.True(t, execCtx.Claim("node-a"))
	assert.False(t, execCtx.Claim("node-a"))
	assert.True(t, execCtx.Claim("node-b"))
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	execCtx := NewExecutionContext()

	const attempts = 50
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if execCtx.Claim("contested") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestRecord_InsertOnceAndOrder(t *testing.T) {
	execCtx := NewExecutionContext()

	first := SucceededOutput(map[string]interface{}{"v": 1}, time.Now())
	second := SucceededOutput(map[string]interface{}{"v": 2}, time.Now())

	require.True(t, execCtx.Record("node-a", first))
	require.True(t, execCtx.Record("node-b", second))
	assert.False(t, execCtx.Record("node-a", second), "second record for same node must be dropped")

	assert.Equal(t, 2, execCtx.Len())
	assert.Equal(t, []string{"node-a", "node-b"}, execCtx.ExecutionOrder())

	stored, ok := execCtx.Output("node-a")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"v": 1}, stored.Data)

	_, ok = execCtx.Output("missing")
	assert.False(t, ok)
}

func TestCompleted(t *testing.T) {
	execCtx := NewExecutionContext()
	assert.False(t, execCtx.Completed("node-a"))

	execCtx.Record("node-a", SucceededOutput(nil, time.Now()))
	assert.True(t, execCtx.Completed("node-a"))
}

func TestElapsed_NonNegative(t *testing.T) {
	execCtx := NewExecutionContext()
	assert.GreaterOrEqual(t, execCtx.Elapsed(), time.Duration(0))
}
