package coach

import (
	"context"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// GapStep compares demonstrated performance against the competency framework.
// It consumes the most input of any step (five documents plus the competency
// output), so every text field is tail-truncated to a per-field budget before
// the call to stay inside the token quota.
type GapStep struct {
	gen      analyst
	maxChars int
}

// NewGapStep creates the gap analysis step.
func NewGapStep(provider llm.Provider, cfg Config, logger *zap.Logger) *GapStep {
	return &GapStep{
		gen:      newAnalyst(provider, cfg, logger, "gap_step"),
		maxChars: cfg.maxFieldChars(),
	}
}

func (s *GapStep) ID() workflow.StepID { return StepGap }

func (s *GapStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	if !state.NonEmpty(st.Competency) {
		// Upstream output missing; report it in our slot and let the run
		// continue. The other branch may still complete.
		msg := "Error: competency analysis output is missing. " +
			"Run the competency analysis first."
		return workflow.Result{Update: state.Update{Gap: state.Text(msg)}}, nil
	}

	vars := profileVars(st.Profile)
	vars["competency_analysis"] = st.Competency
	vars[DocManagerNotes] = st.Document(DocManagerNotes)
	vars[DocPerformanceReviews] = st.Document(DocPerformanceReviews)
	vars[DocPeerFeedback] = st.Document(DocPeerFeedback)
	vars[DocSelfAssessment] = st.Document(DocSelfAssessment)
	vars[DocProjectContributions] = st.Document(DocProjectContributions)
	vars = TruncateFields(vars, s.maxChars)

	user := renderPrompt(gapUserPrompt, vars)
	s.gen.logger.Debug("gap analysis prompt prepared",
		zap.Int("estimated_tokens", EstimateTokens(user)),
		zap.Int("max_field_chars", s.maxChars),
	)

	text, err := s.gen.generate(ctx, StepGap, gapSystemPrompt, user)
	if err != nil {
		s.gen.logger.Warn("gap generation failed",
			zap.String("code", string(llm.CodeOf(err))),
			zap.Error(err),
		)
		text = slotFailureText("Gap analysis", err)
	}
	return workflow.Result{Update: state.Update{Gap: state.Text(text)}}, nil
}
