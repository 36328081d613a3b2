package coach

import (
	"context"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/tools"
	"github.com/promocoach/promocoach/workflow"
)

// OpportunityStep matches identified gaps with project opportunities and,
// when the operator opted in, asks the model to search for learning courses
// through the tool sub-protocol.
//
// The step is reached on two different paths. On a resumed run an opportunity
// output already exists and preferences were never re-asked, so it skips. A
// fresh preference answer (WantsCourses is Yes or No) forces regeneration even
// when a prior output is present.
type OpportunityStep struct {
	gen      analyst
	registry *tools.Registry
	maxChars int
}

// NewOpportunityStep creates the opportunity finder step.
func NewOpportunityStep(provider llm.Provider, registry *tools.Registry, cfg Config, logger *zap.Logger) *OpportunityStep {
	return &OpportunityStep{
		gen:      newAnalyst(provider, cfg, logger, "opportunity_step"),
		registry: registry,
		maxChars: cfg.maxFieldChars(),
	}
}

func (s *OpportunityStep) ID() workflow.StepID { return StepOpportunity }

func (s *OpportunityStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	if state.NonEmpty(st.Opportunity) && st.WantsCourses == state.Unset {
		s.gen.logger.Info("reusing existing opportunity output")
		return workflow.Result{}, nil
	}

	vars := opportunityVars(st, s.maxChars)
	if st.WantsCourses == state.Yes {
		vars["wants_courses_instructions"] = courseInstructions
		vars["wants_courses_output"] = courseOutputLine
	} else {
		vars["wants_courses_instructions"] = ""
		vars["wants_courses_output"] = ""
	}

	req := &llm.ChatRequest{
		Model:       s.gen.model,
		Temperature: s.gen.temp,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: opportunitySystemPrompt},
			{Role: llm.RoleUser, Content: renderPrompt(opportunityUserPrompt, vars)},
		},
	}
	if st.WantsCourses == state.Yes && s.registry != nil {
		req.Tools = s.registry.Schemas()
		req.ToolChoice = "auto"
	}

	workflow.EmitProgress(ctx, StepOpportunity)
	resp, err := s.gen.provider.Completion(ctx, req)
	if err != nil {
		s.gen.logger.Warn("opportunity generation failed", zap.Error(err))
		return workflow.Result{
			Update: state.Update{Opportunity: state.Text(slotFailureText("Opportunity analysis", err))},
		}, nil
	}

	msg := resp.First()
	if len(msg.ToolCalls) > 0 {
		// The model wants tool results before it can answer. Record the
		// request in the message log and defer the slot write to synthesis.
		s.gen.logger.Info("model requested tool calls",
			zap.Int("calls", len(msg.ToolCalls)),
		)
		return workflow.Result{
			Update:  state.Update{AppendMessages: []llm.Message{msg}},
			Pending: &workflow.PendingToolCalls{Calls: msg.ToolCalls},
		}, nil
	}

	text, err := llm.FirstContent(resp)
	if err != nil {
		text = slotFailureText("Opportunity analysis", err)
	}
	return workflow.Result{Update: state.Update{Opportunity: state.Text(text)}}, nil
}

// opportunityVars builds the substitution variables shared by the direct
// generation and synthesis prompts. The gap analysis is the only oversized
// input here, so it alone is tail-truncated.
func opportunityVars(st state.State, maxChars int) map[string]string {
	return map[string]string{
		"name":                st.Profile.Name,
		"gap_analysis":        TruncateTail(st.Gap, maxChars),
		"learning_budget":     st.Prefs.Budget,
		"learning_style":      st.Prefs.Style,
		"time_availability":   st.Prefs.TimeAvailability,
		DocProjectPipeline:    st.Document(DocProjectPipeline),
		DocCompanyInitiatives: st.Document(DocCompanyInitiatives),
		DocTeamRoadmap:        st.Document(DocTeamRoadmap),
	}
}
