package progress

import (
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Phase is the lifecycle position of a State.
type Phase int

// Phases move Idle -> Running -> Completed, never backwards.
const (
	Idle Phase = iota
	Running
	Completed
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// State is the completed/total counter of a batch run.
//
// It is not safe for concurrent use: the batch loop owns it and hands copies
// to renderers.
type State struct {
	// Description is the label shown next to the counter.
	Description string

	// Total is the number of items to process.
	Total int

	// Completed is the number of items attempted so far, successful or not.
	Completed int

	// Failed is the number of attempted items that returned an error.
	Failed int

	// Current names the item most recently attempted.
	Current string

	// StartTime is when Start was called.
	StartTime time.Time

	// LastUpdateTime is when the state last advanced.
	LastUpdateTime time.Time

	// FinishTime is set once the state reaches Completed.
	FinishTime time.Time

	now func() time.Time
}

// NewState creates an idle tracker for total items.
func NewState(description string, total int) *State {
	return &State{Description: description, Total: total, now: time.Now}
}

// Start moves the tracker from Idle to Running.
func (s *State) Start() {
	if !s.StartTime.IsZero() {
		return
	}
	now := s.clock()
	s.StartTime = now
	s.LastUpdateTime = now
	if s.Total == 0 {
		s.FinishTime = now
	}
}

// Advance records one attempted item. A non-nil err counts it as failed.
// Advancing past Total is ignored.
func (s *State) Advance(item string, err error) {
	if s.StartTime.IsZero() {
		s.Start()
	}
	if s.Completed >= s.Total {
		return
	}
	s.Completed++
	if err != nil {
		s.Failed++
	}
	s.Current = item
	s.LastUpdateTime = s.clock()
	if s.Completed == s.Total {
		s.FinishTime = s.LastUpdateTime
	}
}

// Phase reports where the tracker is in its lifecycle.
func (s *State) Phase() Phase {
	switch {
	case s.StartTime.IsZero():
		return Idle
	case s.Completed >= s.Total:
		return Completed
	default:
		return Running
	}
}

// PercentComplete returns the completion percentage (0-100).
func (s *State) PercentComplete() float64 {
	if s.Total == 0 {
		return percentMultiplier
	}
	return (float64(s.Completed) / float64(s.Total)) * percentMultiplier
}

// Fraction returns the completion ratio (0-1).
func (s *State) Fraction() float64 {
	return s.PercentComplete() / percentMultiplier
}

// IsComplete returns true if every item has been attempted.
func (s *State) IsComplete() bool {
	return s.Completed >= s.Total
}

// Succeeded returns the number of items attempted without error.
func (s *State) Succeeded() int {
	return s.Completed - s.Failed
}

// ElapsedTime returns the time elapsed since Start, frozen once complete.
func (s *State) ElapsedTime() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if !s.FinishTime.IsZero() {
		return s.FinishTime.Sub(s.StartTime)
	}
	return s.clock().Sub(s.StartTime)
}

// EstimatedTimeRemaining estimates the remaining time from the average time
// per attempted item. Returns 0 if nothing has been attempted yet.
func (s *State) EstimatedTimeRemaining() time.Duration {
	if s.Completed == 0 || s.IsComplete() {
		return 0
	}
	elapsed := s.clock().Sub(s.StartTime)
	avgTimePerItem := elapsed / time.Duration(s.Completed)
	return avgTimePerItem * time.Duration(s.Total-s.Completed)
}

// Snapshot returns a copy that can be handed to another goroutine.
func (s *State) Snapshot() State {
	c := *s
	return c
}

func (s *State) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
