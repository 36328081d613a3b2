package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stubServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, baseURL string) *OpenAIProvider {
	t.Helper()
	return NewOpenAIProvider(OpenAIConfig{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		DefaultModel: "test-model",
	}, zap.NewNop())
}

func TestCompletionSuccess(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{
		"id": "cmpl-1",
		"model": "test-model",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": "hello there"}
		}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
	}`)

	resp, err := newTestProvider(t, srv.URL).Completion(context.Background(), &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.First().Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestCompletionParsesToolCalls(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{
		"choices": [{
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call-1",
					"type": "function",
					"function": {"name": "search_learning_courses", "arguments": "{\"skill_gap\":\"go\"}"}
				}]
			}
		}]
	}`)

	resp, err := newTestProvider(t, srv.URL).Completion(context.Background(), &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "find courses"}},
	})

	require.NoError(t, err)
	msg := resp.First()
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call-1", msg.ToolCalls[0].ID)
	assert.Equal(t, "search_learning_courses", msg.ToolCalls[0].Name)

	var args map[string]string
	require.NoError(t, json.Unmarshal(msg.ToolCalls[0].Arguments, &args))
	assert.Equal(t, "go", args["skill_gap"])
}

func TestCompletionErrorMapping(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		wantCode  ErrorCode
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, ErrUnauthorized, false},
		{"forbidden", http.StatusForbidden, `{"error":{"message":"forbidden"}}`, ErrUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrRateLimited, true},
		{"quota exhausted", http.StatusTooManyRequests, `{"error":{"message":"you exceeded your current quota"}}`, ErrQuotaExceeded, false},
		{"content filter", http.StatusBadRequest, `{"error":{"message":"blocked by content filter"}}`, ErrContentFiltered, false},
		{"invalid request", http.StatusBadRequest, `{"error":{"message":"unknown field"}}`, ErrInvalidRequest, false},
		{"server error", http.StatusBadGateway, `upstream exploded`, ErrUpstreamError, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := stubServer(t, tc.status, tc.body)

			_, err := newTestProvider(t, srv.URL).Completion(context.Background(), &ChatRequest{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})

			require.Error(t, err)
			var le *Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tc.wantCode, le.Code)
			assert.Equal(t, tc.retryable, le.Retryable)
			assert.Equal(t, tc.status, le.HTTPStatus)
		})
	}
}

func TestCompletionErrorBodyClamp(t *testing.T) {
	srv := stubServer(t, http.StatusBadGateway, strings.Repeat("配额已耗尽", 200))

	_, err := newTestProvider(t, srv.URL).Completion(context.Background(), &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.True(t, utf8.ValidString(le.Message))
	assert.Equal(t, 300, utf8.RuneCountInString(le.Message))
}

func TestFirstContentEmptyResponse(t *testing.T) {
	_, err := FirstContent(&ChatResponse{Choices: []ChatChoice{{
		Message: Message{Role: RoleAssistant, Content: "  \n "},
	}}})

	require.Error(t, err)
	assert.True(t, IsEmptyResponse(err))

	content, err := FirstContent(&ChatResponse{Choices: []ChatChoice{{
		Message: Message{Role: RoleAssistant, Content: "real content"},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "real content", content)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsQuotaRelated(&Error{Code: ErrQuotaExceeded}))
	assert.True(t, IsQuotaRelated(&Error{Code: ErrRateLimited}))
	assert.False(t, IsQuotaRelated(&Error{Code: ErrUpstreamError}))
	assert.False(t, IsQuotaRelated(nil))
	assert.Equal(t, ErrorCode(""), CodeOf(assert.AnError))
}
