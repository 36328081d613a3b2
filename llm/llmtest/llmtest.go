// Package llmtest provides scripted Provider implementations for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/promocoach/promocoach/llm"
)

// ScriptedProvider answers Completion calls from a user-supplied function and
// records every request it sees.
type ScriptedProvider struct {
	// Respond produces the response for a request. When nil, the provider
	// echoes a fixed placeholder.
	Respond func(req *llm.ChatRequest) (*llm.ChatResponse, error)

	mu       sync.Mutex
	requests []*llm.ChatRequest
}

func (p *ScriptedProvider) Name() string { return "scripted" }

func (p *ScriptedProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.Respond != nil {
		return p.Respond(req)
	}
	return TextResponse("scripted output"), nil
}

// Requests returns a copy of every request seen so far.
func (p *ScriptedProvider) Requests() []*llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.ChatRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// CallCount returns how many Completion calls were made.
func (p *ScriptedProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// TextResponse builds a single-choice response with plain assistant text.
func TextResponse(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Provider: "scripted",
		Choices: []llm.ChatChoice{{
			Message: llm.Message{Role: llm.RoleAssistant, Content: text},
		}},
	}
}

// ToolCallResponse builds a response whose assistant message requests a tool
// invocation instead of answering directly.
func ToolCallResponse(callID, tool string, args map[string]any) *llm.ChatResponse {
	raw, _ := json.Marshal(args)
	return &llm.ChatResponse{
		Provider: "scripted",
		Choices: []llm.ChatChoice{{
			FinishReason: "tool_calls",
			Message: llm.Message{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{{
					ID:        callID,
					Name:      tool,
					Arguments: raw,
				}},
			},
		}},
	}
}
