package coach

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// Runner drives one coaching session: it decides whether this is a first run
// or a resumption, seeds the initial state, and executes the graph to the
// merged final state.
type Runner struct {
	deps      Dependencies
	observers []workflow.Emitter
	logger    *zap.Logger
}

// NewRunner creates a session runner. Observers receive the lifecycle event
// stream of every run.
func NewRunner(deps Dependencies, observers ...workflow.Emitter) *Runner {
	return &Runner{
		deps:      deps,
		observers: observers,
		logger:    deps.Logger.With(zap.String("component", "runner")),
	}
}

// Run executes a full coaching session for the engineer and returns the final
// merged state. Previously persisted outputs are loaded first; if a
// competency analysis exists the run resumes and skips regenerating it.
func (r *Runner) Run(ctx context.Context, profile state.Profile, documents map[string]string) (state.State, error) {
	st := state.State{
		Profile:      profile,
		Documents:    documents,
		Type:         state.FirstTime,
		WantsCourses: state.Unset,
	}

	for _, kind := range OutputKinds {
		content, ok, err := r.deps.Store.Load(ctx, profile.Name, kind)
		if err != nil {
			return st, fmt.Errorf("load previous %s: %w", kind, err)
		}
		if !ok {
			continue
		}
		switch kind {
		case KindCompetency:
			st.Competency = content
		case KindGap:
			st.Gap = content
		case KindOpportunity:
			st.Opportunity = content
		case KindPromotion:
			st.PromotionPackage = content
		}
	}
	if state.NonEmpty(st.Competency) {
		st.Type = state.WithExistingOutputs
	}

	r.logger.Info("starting coaching session",
		zap.String("engineer", profile.Name),
		zap.String("target_level", profile.TargetLevel),
		zap.String("workflow_type", string(st.Type)),
	)

	g := BuildGraph(r.deps)
	opts := make([]workflow.ExecutorOption, 0, len(r.observers))
	for _, obs := range r.observers {
		opts = append(opts, workflow.WithObserver(obs))
	}
	exec := workflow.NewExecutor(g, r.deps.Logger, opts...)
	return exec.Run(ctx, st)
}
