package coach

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// SaveStep is the join point of the two analysis branches. Both the promotion
// branch and the review branch route here, so it may run more than once per
// workflow; a readiness check makes every invocation before the last a no-op,
// and Store.Save is idempotent so a repeated final invocation is harmless.
type SaveStep struct {
	store  Store
	logger *zap.Logger
}

// NewSaveStep creates the terminal persistence step.
func NewSaveStep(store Store, logger *zap.Logger) *SaveStep {
	return &SaveStep{
		store:  store,
		logger: logger.With(zap.String("component", "save_step")),
	}
}

func (s *SaveStep) ID() workflow.StepID { return StepSave }

// ready reports whether every output this run is responsible for has arrived.
// A resumed run reuses the persisted competency and promotion outputs, so
// only the review branch has to finish.
func ready(st state.State) bool {
	if !state.NonEmpty(st.Opportunity) || !state.NonEmpty(st.HumanFeedback) {
		return false
	}
	if st.Type == state.WithExistingOutputs {
		return true
	}
	return state.NonEmpty(st.PromotionPackage)
}

func (s *SaveStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	if !ready(st) {
		s.logger.Debug("outputs not complete yet, waiting for the other branch")
		return workflow.Result{}, nil
	}

	contents := map[string]string{
		KindCompetency:  st.Competency,
		KindGap:         st.Gap,
		KindOpportunity: st.Opportunity,
		KindPromotion:   st.PromotionPackage,
	}
	saved := 0
	for _, kind := range OutputKinds {
		content := contents[kind]
		if !state.NonEmpty(content) {
			continue
		}
		if err := s.store.Save(ctx, st.Profile.Name, kind, content); err != nil {
			return workflow.Result{}, fmt.Errorf("save %s: %w", kind, err)
		}
		saved++
	}
	s.logger.Info("outputs saved",
		zap.String("engineer", st.Profile.Name),
		zap.Int("outputs", saved),
	)
	return workflow.Result{}, nil
}
