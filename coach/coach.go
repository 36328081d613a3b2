// Package coach implements the promotion-coaching workflow: the analysis
// steps, the graph that sequences them, and the runner that drives a session
// from seeded state to persisted outputs.
//
// Steps are pure with respect to workflow state: each consumes a snapshot and
// returns only the fields it changed. External collaborators (the model
// provider, the course-search tool, the human reviewer, the outputs store)
// are injected behind small interfaces so the control flow can be exercised
// without any of them.
package coach

import (
	"context"

	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// Step identifiers. Every lifecycle event names one of these.
const (
	StepEntry         workflow.StepID = "entry"
	StepCompetency    workflow.StepID = "competency_analysis"
	StepGap           workflow.StepID = "gap_analysis"
	StepPreferences   workflow.StepID = "preference_collection"
	StepOpportunity   workflow.StepID = "opportunity_finder"
	StepToolExecution workflow.StepID = "tool_execution"
	StepToolResults   workflow.StepID = "tool_result_processing"
	StepHumanReview   workflow.StepID = "human_review"
	StepPromotion     workflow.StepID = "promotion_package"
	StepSave          workflow.StepID = "save_outputs"
)

// Output kinds used as persistence keys.
const (
	KindCompetency  = "competency_analyzer"
	KindGap         = "gap_analyzer"
	KindOpportunity = "opportunity_finder"
	KindPromotion   = "promotion_package"
)

// OutputKinds lists every persisted output kind in save order.
var OutputKinds = []string{KindCompetency, KindGap, KindOpportunity, KindPromotion}

// ReviewDecision is the outcome of one human review round. Feedback is one of
// the state.Feedback* values; EditedText carries the replacement output when
// Feedback is "edited".
type ReviewDecision struct {
	Feedback   string
	EditedText string
}

// Reviewer is the interactive review boundary. Review blocks until the
// operator decides; there is no imposed deadline, cancellation comes only
// through the context.
type Reviewer interface {
	Review(ctx context.Context, output string) (ReviewDecision, error)
}

// PreferenceSource collects learning preferences from the operator. Returning
// Yes or No arms the opportunity step's forced refresh: an answered question
// means regenerate, even when an output already exists. Returning Unset
// leaves the flag unarmed (the source chose not to ask), so a resumed run can
// reuse its prior opportunity output.
type PreferenceSource interface {
	Collect(ctx context.Context, targetLevel string, prior state.Preferences, priorWants state.TriState) (state.Preferences, state.TriState, error)
}

// Store persists analysis outputs by (engineer, kind). Save must be
// idempotent: the terminal step may be invoked more than once per run and
// rewrites the same content.
type Store interface {
	Save(ctx context.Context, engineer, kind, content string) error
	Load(ctx context.Context, engineer, kind string) (content string, ok bool, err error)
}

// Config tunes the analysis steps.
type Config struct {
	// Model is the model name passed to the provider.
	Model string
	// Temperature for generation.
	Temperature float32
	// MaxFieldTokens is the per-field token budget for the gap analysis
	// inputs. Fields over budget are tail-truncated. Defaults to 1500.
	MaxFieldTokens int
}

// charsPerToken is the rough character-to-token ratio used to turn the token
// budget into a character budget.
const charsPerToken = 4

func (c Config) maxFieldChars() int {
	tokens := c.MaxFieldTokens
	if tokens <= 0 {
		tokens = 1500
	}
	return tokens * charsPerToken
}
