package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock returns a clock that advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestStateLifecycle(t *testing.T) {
	s := NewState("Converting", 3)
	s.now = fakeClock(time.Second)

	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, 0.0, s.PercentComplete())
	assert.Zero(t, s.ElapsedTime())

	s.Start()
	assert.Equal(t, Running, s.Phase())

	s.Advance("a.npy", nil)
	assert.Equal(t, 1, s.Completed)
	assert.InDelta(t, 33.33, s.PercentComplete(), 0.01)
	assert.Equal(t, "a.npy", s.Current)
	assert.Greater(t, s.EstimatedTimeRemaining(), time.Duration(0))

	s.Advance("b.npy", errors.New("corrupt"))
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Succeeded())
	assert.False(t, s.IsComplete())

	s.Advance("c.npy", nil)
	assert.Equal(t, Completed, s.Phase())
	assert.True(t, s.IsComplete())
	assert.Equal(t, 100.0, s.PercentComplete())
	assert.Zero(t, s.EstimatedTimeRemaining())

	// Elapsed time is frozen once complete.
	elapsed := s.ElapsedTime()
	assert.Equal(t, elapsed, s.ElapsedTime())
	assert.Greater(t, elapsed, time.Duration(0))
}

func TestStateAdvanceIsMonotonicAndBounded(t *testing.T) {
	s := NewState("Converting", 2)
	s.Advance("a", nil) // implicit Start
	assert.Equal(t, Running, s.Phase())

	s.Advance("b", nil)
	s.Advance("c", nil)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, "b", s.Current)
}

func TestStateEmpty(t *testing.T) {
	s := NewState("Converting", 0)
	s.Start()
	assert.True(t, s.IsComplete())
	assert.Equal(t, 100.0, s.PercentComplete())
	assert.Equal(t, Completed, s.Phase())
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := NewState("Converting", 2)
	s.Advance("a", nil)

	snap := s.Snapshot()
	s.Advance("b", nil)

	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 2, s.Completed)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00:00", formatClock(0))
	assert.Equal(t, "0:00:05", formatClock(4600*time.Millisecond))
	assert.Equal(t, "0:01:05", formatClock(65*time.Second))
	assert.Equal(t, "2:03:04", formatClock(2*time.Hour+3*time.Minute+4*time.Second))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completed", Completed.String())
}
