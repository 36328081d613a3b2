package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	resp *ChatResponse
	err  error
	got  *ChatRequest
}

func (s *stubProvider) Completion(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
	s.got = req
	return s.resp, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func TestGenerateReturnsFirstContent(t *testing.T) {
	p := &stubProvider{resp: &ChatResponse{Choices: []ChatChoice{{
		Message: Message{Role: RoleAssistant, Content: "analysis text"},
	}}}}

	req := &ChatRequest{
		Model: "test-model",
		Messages: []Message{
			{Role: RoleSystem, Content: "you are an analyst"},
			{Role: RoleUser, Content: "analyze"},
		},
	}
	content, err := Generate(context.Background(), p, req)

	require.NoError(t, err)
	assert.Equal(t, "analysis text", content)
	assert.Same(t, req, p.got)
}

func TestGeneratePassesProviderErrorThrough(t *testing.T) {
	p := &stubProvider{err: &Error{Code: ErrQuotaExceeded, Message: "quota"}}

	_, err := Generate(context.Background(), p, &ChatRequest{})

	require.Error(t, err)
	assert.True(t, IsQuotaRelated(err))
}

func TestGenerateMapsEmptyOutput(t *testing.T) {
	p := &stubProvider{resp: &ChatResponse{Choices: []ChatChoice{{
		Message: Message{Role: RoleAssistant, Content: "  "},
	}}}}

	_, err := Generate(context.Background(), p, &ChatRequest{})

	require.Error(t, err)
	assert.True(t, IsEmptyResponse(err))
}
