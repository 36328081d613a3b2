package coach

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// PreferencesStep asks the operator for learning preferences before the
// opportunity search. Collecting an answer flips WantsCourses off Unset, which
// is what tells the opportunity step to regenerate rather than reuse a prior
// output.
type PreferencesStep struct {
	source PreferenceSource
	logger *zap.Logger
}

// NewPreferencesStep creates the preference collection step.
func NewPreferencesStep(source PreferenceSource, logger *zap.Logger) *PreferencesStep {
	return &PreferencesStep{
		source: source,
		logger: logger.With(zap.String("component", "preferences_step")),
	}
}

func (s *PreferencesStep) ID() workflow.StepID { return StepPreferences }

func (s *PreferencesStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	prefs, wants, err := s.source.Collect(ctx, st.Profile.TargetLevel, st.Prefs, st.WantsCourses)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return workflow.Result{}, err
		}
		// Collection failed for a non-cancellation reason: proceed without
		// course search rather than stalling the run.
		s.logger.Warn("preference collection failed, proceeding without courses", zap.Error(err))
		return workflow.Result{
			Update: state.Update{WantsCourses: state.Tri(state.No)},
		}, nil
	}

	if wants == state.Unset {
		// The source declined to ask; leave the flag unarmed so the
		// opportunity step can reuse a prior output.
		s.logger.Debug("preference collection skipped")
		return workflow.Result{}, nil
	}

	u := state.Update{WantsCourses: state.Tri(wants)}
	if wants == state.Yes {
		u.Prefs = &prefs
	}
	s.logger.Info("preferences collected",
		zap.String("wants_courses", wants.String()),
	)
	return workflow.Result{Update: u}, nil
}
