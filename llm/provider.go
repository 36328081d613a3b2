package llm

import (
	"context"
	"strings"
)

// Provider is the unified model adapter interface. Tool calls are passed via
// ChatRequest.Tools; the model answers with Message.ToolCalls and tool
// execution happens outside the provider.
type Provider interface {
	// Completion issues a synchronous chat request and returns the full
	// response.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider's unique identifier.
	Name() string
}

// FirstContent returns the text content of the first choice. An otherwise
// successful response with no non-blank content yields an ErrEmptyResponse
// error, so callers can tell "the model said nothing" apart from a transport
// failure.
func FirstContent(resp *ChatResponse) (string, error) {
	msg := resp.First()
	if strings.TrimSpace(msg.Content) == "" {
		provider := ""
		if resp != nil {
			provider = resp.Provider
		}
		return "", &Error{
			Code:     ErrEmptyResponse,
			Message:  "model returned an empty response",
			Provider: provider,
		}
	}
	return msg.Content, nil
}

// Generate issues req and returns the first choice's content, mapping empty
// output to ErrEmptyResponse. Provider errors pass through unchanged so
// callers can inspect the error code.
func Generate(ctx context.Context, p Provider, req *ChatRequest) (string, error) {
	resp, err := p.Completion(ctx, req)
	if err != nil {
		return "", err
	}
	return FirstContent(resp)
}
