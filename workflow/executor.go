package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promocoach/promocoach/state"
)

// Executor drives a Graph to completion. Steps on independent branches run
// concurrently in goroutines; their updates are applied one at a time in the
// executor's scheduling loop, so a step only ever sees the merged state of
// steps that finished before it was launched, never a sibling's in-flight
// update.
type Executor struct {
	graph    *Graph
	logger   *zap.Logger
	emitters []Emitter
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithObserver attaches a lifecycle event observer. Observers are invoked
// from the scheduling loop in event order.
func WithObserver(emit Emitter) ExecutorOption {
	return func(e *Executor) {
		if emit != nil {
			e.emitters = append(e.emitters, emit)
		}
	}
}

// NewExecutor creates an executor for the given graph.
func NewExecutor(g *Graph, logger *zap.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		graph:  g,
		logger: logger.With(zap.String("component", "executor")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// completion carries one finished step back to the scheduling loop.
type completion struct {
	id  StepID
	res Result
	err error
}

// Run executes the graph from its entry step until no step remains pending,
// then returns the merged state. An empty graph returns the initial state
// unchanged. Step errors do not abort the run: the failing branch ends and
// the remaining branches continue; all such errors are joined into the
// returned error.
func (e *Executor) Run(ctx context.Context, initial state.State) (state.State, error) {
	if e.graph == nil || e.graph.Entry() == "" {
		return initial, nil
	}
	if err := e.graph.Validate(); err != nil {
		return initial, fmt.Errorf("invalid graph: %w", err)
	}

	runID := uuid.NewString()
	emit := func(ev Event) {
		ev.RunID = runID
		for _, fn := range e.emitters {
			fn(ev)
		}
	}
	ctx = WithEmitter(ctx, emit)

	e.logger.Info("starting workflow run",
		zap.String("run_id", runID),
		zap.String("entry", string(e.graph.Entry())),
	)
	startedAt := time.Now()

	cur := initial
	results := make(chan completion)
	var wg sync.WaitGroup
	inflight := 0
	executed := 0

	launch := func(id StepID) {
		step, ok := e.graph.Step(id)
		if !ok {
			e.logger.Error("successor references unknown step", zap.String("step", string(id)))
			return
		}
		snapshot := cur.Clone()
		inflight++
		wg.Add(1)
		emit(Event{Kind: EventStepStart, Step: id})
		e.logger.Debug("launching step", zap.String("step", string(id)))
		go func() {
			defer wg.Done()
			var res Result
			var err error
			func() {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("step %s panicked: %v", id, r)
					}
				}()
				res, err = step.Run(ctx, snapshot)
			}()
			results <- completion{id: id, res: res, err: err}
		}()
	}

	launch(e.graph.Entry())

	var errs []error
	for inflight > 0 {
		c := <-results
		inflight--
		executed++

		if c.err != nil {
			// The branch ends here; independent branches keep going.
			errs = append(errs, fmt.Errorf("step %s: %w", c.id, c.err))
			emit(Event{Kind: EventStepError, Step: c.id, Err: c.err})
			e.logger.Error("step failed",
				zap.String("step", string(c.id)),
				zap.Error(c.err),
			)
			continue
		}

		cur = state.Apply(cur, c.res.Update)
		emit(Event{Kind: EventStepComplete, Step: c.id, Update: c.res.Update})
		e.logger.Debug("step completed",
			zap.String("step", string(c.id)),
			zap.Bool("empty_update", c.res.Update.IsZero()),
		)

		if ctx.Err() != nil {
			// Stop scheduling; already-launched steps drain normally.
			continue
		}
		for _, next := range e.graph.successors(c.id, cur, c.res) {
			launch(next)
		}
	}
	wg.Wait()

	e.logger.Info("workflow run finished",
		zap.String("run_id", runID),
		zap.Int("steps_executed", executed),
		zap.Int("step_errors", len(errs)),
		zap.Duration("elapsed", time.Since(startedAt)),
	)

	if err := ctx.Err(); err != nil {
		return cur, err
	}
	return cur, errors.Join(errs...)
}
