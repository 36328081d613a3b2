package workflow

import (
	"context"

	"github.com/promocoach/promocoach/state"
)

// EventKind classifies a step lifecycle event.
type EventKind string

const (
	// EventStepStart is emitted before a step begins execution.
	EventStepStart EventKind = "step_start"
	// EventStepProgress is emitted by a step while it is generating.
	EventStepProgress EventKind = "step_progress"
	// EventStepComplete is emitted after a step finishes and its update has
	// been merged.
	EventStepComplete EventKind = "step_complete"
	// EventStepError is emitted when a step returns an error.
	EventStepError EventKind = "step_error"
)

// Event carries information about one step lifecycle transition. Step is
// always the enumerated identifier attached at emission time.
type Event struct {
	Kind   EventKind
	Step   StepID
	RunID  string
	Update state.Update
	Err    error
}

// Emitter receives workflow events. Emitters must not block for long and
// must not influence control flow.
type Emitter func(Event)

// emitterKey is the context key under which the executor exposes its emitter
// to steps, so long-running steps can report in-flight progress.
type emitterKey struct{}

// WithEmitter stores an Emitter in the context.
func WithEmitter(ctx context.Context, emit Emitter) context.Context {
	if emit == nil {
		return ctx
	}
	return context.WithValue(ctx, emitterKey{}, emit)
}

// EmitProgress reports in-flight progress for a step, if an emitter is
// attached to the context. Safe to call from any step.
func EmitProgress(ctx context.Context, id StepID) {
	if v := ctx.Value(emitterKey{}); v != nil {
		if emit, ok := v.(Emitter); ok && emit != nil {
			emit(Event{Kind: EventStepProgress, Step: id})
		}
	}
}
