package coach

import (
	"go.uber.org/zap"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/tools"
	"github.com/promocoach/promocoach/workflow"
)

// Dependencies bundles every external collaborator the workflow needs.
type Dependencies struct {
	Provider    llm.Provider
	Registry    *tools.Registry
	Reviewer    Reviewer
	Preferences PreferenceSource
	Store       Store
	Logger      *zap.Logger
	Config      Config
}

// BuildGraph assembles the coaching workflow topology:
//
//	entry ─┬─ competency ─┬─ gap ── preferences ── opportunity ─┬─ review ⟲ ── save
//	       │              └─ promotion ───────────────────────────────────────┘
//	       └─ (resumed) ── gap ── ...
//
// A first-time run enters through the competency analysis, which fans out into
// the gap branch and the promotion branch; the two converge at the reentrant
// save step. A resumed run enters directly at the gap analysis. The
// opportunity step detours through the tool round when the model requested
// tool calls, and the review step loops on an "edit" decision.
func BuildGraph(deps Dependencies) *workflow.Graph {
	g := workflow.NewGraph()

	g.AddStep(&workflow.PassthroughStep{StepID: StepEntry})
	g.AddStep(NewCompetencyStep(deps.Provider, deps.Config, deps.Logger))
	g.AddStep(NewGapStep(deps.Provider, deps.Config, deps.Logger))
	g.AddStep(NewPreferencesStep(deps.Preferences, deps.Logger))
	g.AddStep(NewOpportunityStep(deps.Provider, deps.Registry, deps.Config, deps.Logger))
	g.AddStep(NewToolExecutionStep(deps.Registry, deps.Logger))
	g.AddStep(NewToolResultsStep(deps.Provider, deps.Config, deps.Logger))
	g.AddStep(NewHumanReviewStep(deps.Reviewer, deps.Logger))
	g.AddStep(NewPromotionStep(deps.Provider, deps.Config, deps.Logger))
	g.AddStep(NewSaveStep(deps.Store, deps.Logger))

	g.SetEntry(StepEntry)
	g.AddRouter(StepEntry, func(st state.State, _ workflow.Result) workflow.StepID {
		if st.Type == state.WithExistingOutputs {
			return StepGap
		}
		return StepCompetency
	})

	g.AddEdge(StepCompetency, StepGap)
	g.AddEdge(StepCompetency, StepPromotion)

	g.AddEdge(StepGap, StepPreferences)
	g.AddEdge(StepPreferences, StepOpportunity)

	g.AddRouter(StepOpportunity, func(_ state.State, res workflow.Result) workflow.StepID {
		if res.HasPending() {
			return StepToolExecution
		}
		return StepHumanReview
	})
	g.AddEdge(StepToolExecution, StepToolResults)
	g.AddEdge(StepToolResults, StepHumanReview)

	g.AddRouter(StepHumanReview, func(st state.State, _ workflow.Result) workflow.StepID {
		if st.HumanFeedback == state.FeedbackEdit {
			return StepHumanReview
		}
		return StepSave
	})

	g.AddEdge(StepPromotion, StepSave)
	g.AddEdge(StepSave, workflow.End)

	return g
}
