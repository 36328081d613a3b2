package coach

import (
	"context"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// PromotionStep assembles the promotion package from the evidence documents
// and the competency framework. It runs concurrently with the gap branch.
type PromotionStep struct {
	gen analyst
}

// NewPromotionStep creates the promotion package step.
func NewPromotionStep(provider llm.Provider, cfg Config, logger *zap.Logger) *PromotionStep {
	return &PromotionStep{gen: newAnalyst(provider, cfg, logger, "promotion_step")}
}

func (s *PromotionStep) ID() workflow.StepID { return StepPromotion }

func (s *PromotionStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	if !state.NonEmpty(st.Competency) {
		msg := "Error: competency analysis output is missing. " +
			"The promotion package needs the competency framework as input."
		return workflow.Result{Update: state.Update{PromotionPackage: state.Text(msg)}}, nil
	}

	vars := profileVars(st.Profile)
	vars["competency_analysis"] = st.Competency
	vars[DocProjectContributions] = st.Document(DocProjectContributions)
	vars[DocManagerNotes] = st.Document(DocManagerNotes)
	vars[DocPerformanceReviews] = st.Document(DocPerformanceReviews)
	vars[DocPeerFeedback] = st.Document(DocPeerFeedback)
	vars[DocSelfAssessment] = st.Document(DocSelfAssessment)

	text, err := s.gen.generate(ctx, StepPromotion,
		promotionSystemPrompt, renderPrompt(promotionUserPrompt, vars))
	if err != nil {
		s.gen.logger.Warn("promotion package generation failed", zap.Error(err))
		text = slotFailureText("Promotion package", err)
	}
	return workflow.Result{Update: state.Update{PromotionPackage: state.Text(text)}}, nil
}
