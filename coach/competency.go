package coach

import (
	"context"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// CompetencyStep derives the competency framework for the target level from
// the company leveling document. It owns the competency output slot.
type CompetencyStep struct {
	gen analyst
}

// NewCompetencyStep creates the competency analysis step.
func NewCompetencyStep(provider llm.Provider, cfg Config, logger *zap.Logger) *CompetencyStep {
	return &CompetencyStep{gen: newAnalyst(provider, cfg, logger, "competency_step")}
}

func (s *CompetencyStep) ID() workflow.StepID { return StepCompetency }

func (s *CompetencyStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	vars := profileVars(st.Profile)
	vars[DocCompanyLeveling] = st.Document(DocCompanyLeveling)

	text, err := s.gen.generate(ctx, StepCompetency,
		competencySystemPrompt, renderPrompt(competencyUserPrompt, vars))
	if err != nil {
		s.gen.logger.Warn("competency generation failed", zap.Error(err))
		text = slotFailureText("Competency analysis", err)
	}
	return workflow.Result{Update: state.Update{Competency: state.Text(text)}}, nil
}
