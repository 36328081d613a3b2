package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/tools"
	"github.com/promocoach/promocoach/workflow"
)

// maxConcurrentTools bounds how many tool calls from one round run at once.
const maxConcurrentTools = 4

// ToolExecutionStep runs every pending tool call from the message log and
// appends one tool message per call, in request order. A failing tool becomes
// an error text in its result message; the round itself never fails.
type ToolExecutionStep struct {
	registry *tools.Registry
	logger   *zap.Logger
}

// NewToolExecutionStep creates the tool execution step.
func NewToolExecutionStep(registry *tools.Registry, logger *zap.Logger) *ToolExecutionStep {
	return &ToolExecutionStep{
		registry: registry,
		logger:   logger.With(zap.String("component", "tool_execution_step")),
	}
}

func (s *ToolExecutionStep) ID() workflow.StepID { return StepToolExecution }

func (s *ToolExecutionStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	calls := st.PendingToolCalls()
	if len(calls) == 0 {
		s.logger.Warn("tool execution step reached with no pending calls")
		return workflow.Result{}, nil
	}

	workflow.EmitProgress(ctx, StepToolExecution)

	outputs := make([]string, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTools)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			outputs[i] = s.execute(gctx, call)
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	msgs := make([]llm.Message, len(calls))
	for i, call := range calls {
		msgs[i] = llm.Message{
			Role:       llm.RoleTool,
			Content:    outputs[i],
			Name:       call.Name,
			ToolCallID: call.ID,
		}
	}
	return workflow.Result{Update: state.Update{AppendMessages: msgs}}, nil
}

func (s *ToolExecutionStep) execute(ctx context.Context, call llm.ToolCall) string {
	var params map[string]any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &params); err != nil {
			s.logger.Warn("malformed tool arguments",
				zap.String("tool", call.Name),
				zap.Error(err),
			)
			return fmt.Sprintf("tool error: malformed arguments: %v", err)
		}
	}
	out, err := s.registry.Execute(ctx, call.Name, params)
	if err != nil {
		s.logger.Warn("tool execution failed",
			zap.String("tool", call.Name),
			zap.Error(err),
		)
		return fmt.Sprintf("tool error: %v", err)
	}
	s.logger.Debug("tool executed",
		zap.String("tool", call.Name),
		zap.Int("result_bytes", len(out)),
	)
	return out
}

// ToolResultsStep synthesizes the final opportunity analysis from a completed
// tool round. It owns clearing the message log: once a round is consumed (or
// found stale), the log is reset so a later pass through the opportunity step
// starts clean.
type ToolResultsStep struct {
	gen      analyst
	maxChars int
}

// NewToolResultsStep creates the tool result processing step.
func NewToolResultsStep(provider llm.Provider, cfg Config, logger *zap.Logger) *ToolResultsStep {
	return &ToolResultsStep{
		gen:      newAnalyst(provider, cfg, logger, "tool_results_step"),
		maxChars: cfg.maxFieldChars(),
	}
}

func (s *ToolResultsStep) ID() workflow.StepID { return StepToolResults }

func (s *ToolResultsStep) Run(ctx context.Context, st state.State) (workflow.Result, error) {
	if len(st.Messages) == 0 {
		return workflow.Result{}, nil
	}

	_, results, ok := st.ToolRound()
	if !ok {
		// Half-finished round: the request is there but no results arrived.
		// Pass through unchanged rather than guessing.
		s.gen.logger.Warn("incomplete tool round, passing through")
		return workflow.Result{}, nil
	}

	courses := make([]string, 0, len(results))
	for _, m := range results {
		if strings.TrimSpace(m.Content) != "" {
			courses = append(courses, m.Content)
		}
	}

	vars := opportunityVars(st, s.maxChars)
	vars["course_results"] = strings.Join(courses, "\n\n")

	text, err := s.gen.generate(ctx, StepToolResults,
		opportunitySystemPrompt, renderPrompt(synthesisUserPrompt, vars))
	if err != nil {
		s.gen.logger.Warn("opportunity synthesis failed", zap.Error(err))
		text = slotFailureText("Opportunity analysis", err)
	}
	return workflow.Result{
		Update: state.Update{
			Opportunity:   state.Text(text),
			ResetMessages: true,
		},
	}, nil
}
