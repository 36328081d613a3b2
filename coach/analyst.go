package coach

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

// analyst bundles the provider plumbing the generation steps share.
type analyst struct {
	provider llm.Provider
	model    string
	temp     float32
	logger   *zap.Logger
}

func newAnalyst(provider llm.Provider, cfg Config, logger *zap.Logger, component string) analyst {
	return analyst{
		provider: provider,
		model:    cfg.Model,
		temp:     cfg.Temperature,
		logger:   logger.With(zap.String("component", component)),
	}
}

// generate renders a system+user call and returns the model's text. Empty
// output surfaces as llm.ErrEmptyResponse.
func (a analyst) generate(ctx context.Context, id workflow.StepID, system, user string) (string, error) {
	workflow.EmitProgress(ctx, id)
	return llm.Generate(ctx, a.provider, &llm.ChatRequest{
		Model:       a.model,
		Temperature: a.temp,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
	})
}

// profileVars returns the substitution variables every analyst shares.
func profileVars(p state.Profile) map[string]string {
	return map[string]string{
		"name":          p.Name,
		"current_level": p.CurrentLevel,
		"target_level":  p.TargetLevel,
		"discipline":    p.Discipline,
	}
}

// slotFailureText converts a collaborator failure into the human-readable
// message a step writes into its output slot. The workflow always runs to
// completion; failures are content, not control flow.
func slotFailureText(stage string, err error) string {
	switch {
	case llm.IsQuotaRelated(err):
		return fmt.Sprintf(
			"%s failed because the model's quota or rate limit was exceeded. "+
				"Inputs were already reduced to fit the budget; please try again later.", stage)
	case llm.IsEmptyResponse(err):
		return fmt.Sprintf(
			"%s could not be generated: the model returned an empty response. "+
				"Check the provider credentials and try again.", stage)
	default:
		return fmt.Sprintf("%s generation failed: %v", stage, err)
	}
}
