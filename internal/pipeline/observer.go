package pipeline

import (
	"context"
	"time"
)

// EventType identifies a point in the lifecycle of a run.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventWaveStarted  EventType = "wave_started"
	EventStepFinished EventType = "step_finished"
	EventStepFailed   EventType = "step_failed"
	EventRunFinished  EventType = "run_finished"
)

// Event is emitted to observers while a pipeline runs. Fields that do not
// apply to a given Type are left at their zero value.
type Event struct {
	Type      EventType
	RunID     string
	Time      time.Time
	Wave      int // zero-based wave index
	WaveCount int
	StepCount int
	Step      int // original step index
	Kind      StepKind
	Label     string
	Out       string
	Summary   string
	Duration  time.Duration
	Err       error
}

// Observer receives run events. Calls for steps of the same wave may arrive
// from different goroutines, so implementations must be safe for concurrent
// use. Observers must not block for long; they run on the execution path.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

type nopObserver struct{}

func (nopObserver) OnEvent(context.Context, Event) {}
