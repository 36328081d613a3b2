package coach

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// HumanReviewStep presents the opportunity analysis to the operator and
// records the decision. "edit" loops the graph back here for another round;
// "edited" replaces the opportunity output with the operator's text.
type HumanReviewStep struct {
	reviewer Reviewer
	logger   *zap.Logger
}

// NewHumanReviewStep creates the human review step.
func NewHumanReviewStep(reviewer Reviewer, logger *zap.Logger) *HumanReviewStep {
	return &HumanReviewStep{
		reviewer: reviewer,
		logger:   logger.With(zap.String("component", "human_review_step")),
	}
}

func (s *HumanReviewStep) ID() workflow.StepID { return StepHumanReview }

func (s *HumanReviewStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	decision, err := s.reviewer.Review(ctx, st.Opportunity)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return workflow.Result{}, err
		}
		s.logger.Warn("review failed, recording skip", zap.Error(err))
		return workflow.Result{
			Update: state.Update{HumanFeedback: state.Text(state.FeedbackSkipped)},
		}, nil
	}

	feedback := decision.Feedback
	switch feedback {
	case state.FeedbackApproved, state.FeedbackEdited, state.FeedbackSkipped, state.FeedbackEdit:
	default:
		s.logger.Warn("unknown review feedback, treating as skip",
			zap.String("feedback", feedback),
		)
		feedback = state.FeedbackSkipped
	}

	u := state.Update{HumanFeedback: state.Text(feedback)}
	if feedback == state.FeedbackEdited && state.NonEmpty(decision.EditedText) {
		u.Opportunity = state.Text(decision.EditedText)
	}
	s.logger.Info("review recorded", zap.String("feedback", feedback))
	return workflow.Result{Update: u}, nil
}
