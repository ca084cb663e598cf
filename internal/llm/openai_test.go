package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := openai.DefaultConfig("test-key")
	return newOpenAICompatible(conf, server.URL+"/v1", "gpt-4o-mini")
}

// chatReply answers every request with a single choice.
func chatReply(content, finishReason string, prompt, completion int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-test",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			}},
			"usage": map[string]any{
				"prompt_tokens":     prompt,
				"completion_tokens": completion,
				"total_tokens":      prompt + completion,
			},
		})
	}
}

func apiFailure(status int, errType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": errType, "message": errType},
		})
	}
}

func TestOpenAIProvider_InterviewTurn(t *testing.T) {
	var sent openai.ChatCompletionRequest
	reply := chatReply("Good start. SCORE|6/10\nHow do closures capture variables?", "stop", 40, 25)
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		reply(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "You are a technical interviewer.",
		Messages: []Message{
			{Role: RoleAssistant, Content: "What is a closure?"},
			{Role: RoleUser, Content: "A function with its environment."},
		},
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Contains(t, resp.Text(), "SCORE|6/10")

	require.Len(t, sent.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, sent.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, sent.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, sent.Messages[2].Role)
	assert.Equal(t, 256, sent.MaxCompletionTokens)
	assert.Nil(t, sent.ResponseFormat)
}

func TestOpenAIProvider_StructuredReply(t *testing.T) {
	var sent openai.ChatCompletionRequest
	reply := chatReply(`{"skills":["go","sql"]}`, "stop", 10, 5)
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		reply(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "resume text"}},
		Schema: &Schema{
			Name:       "openai-skills",
			Definition: map[string]any{"type": "object", "required": []any{"skills"}},
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":["go","sql"]}`, string(resp.Content))

	require.NotNil(t, sent.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, sent.ResponseFormat.Type)
	assert.Equal(t, "openai-skills", sent.ResponseFormat.JSONSchema.Name)
}

func TestOpenAIProvider_Errors(t *testing.T) {
	schema := &Schema{
		Name:       "openai-errors",
		Definition: map[string]any{"type": "object", "required": []any{"skills"}},
	}
	tests := []struct {
		name    string
		handler http.HandlerFunc
		schema  *Schema
		check   func(t *testing.T, err error)
	}{
		{
			name:    "rate limited",
			handler: apiFailure(http.StatusTooManyRequests, "rate_limit_exceeded"),
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				assert.True(t, errors.As(err, &rl), "got %T (%v)", err, err)
			},
		},
		{
			name:    "server error",
			handler: apiFailure(http.StatusInternalServerError, "server_error"),
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				assert.True(t, errors.As(err, &unavail), "got %T (%v)", err, err)
			},
		},
		{
			name:    "truncated structured reply",
			handler: chatReply(`{"skills": ["go",`, "length", 10, 8),
			schema:  schema,
			check: func(t *testing.T, err error) {
				var maxTok *ErrMaxTokensExceeded
				assert.True(t, errors.As(err, &maxTok), "got %T (%v)", err, err)
			},
		},
		{
			name:    "reply violates schema",
			handler: chatReply(`{"level":"mid"}`, "stop", 10, 4),
			schema:  schema,
			check: func(t *testing.T, err error) {
				var invalid *ErrInvalidResponse
				if assert.True(t, errors.As(err, &invalid), "got %T (%v)", err, err) {
					assert.JSONEq(t, `{"level":"mid"}`, string(invalid.Content))
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
				Schema:    tt.schema,
			})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-mini", BaseURL: "https://example.test/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", p.ModelID())
}
