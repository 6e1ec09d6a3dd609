package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gogwan-api/internal/config"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, content string, seen *openai.ChatCompletionRequest) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  "test-model",
		}
		if content != "" {
			resp.Choices = []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Interpretation.OpenAIAPIKey = "sk-test"
	cfg.Interpretation.OpenAIBaseURL = srv.URL + "/v1/"
	cfg.Interpretation.OpenAIModel = "test-model"
	return NewClient(cfg, "당신은 명리학 해설가입니다.")
}

func TestGenerateText(t *testing.T) {
	var seen openai.ChatCompletionRequest
	c := newTestClient(t, "  좋은 운세입니다  ", &seen)

	text, err := c.GenerateText(context.Background(), "사주를 풀이해 주세요")
	require.NoError(t, err)
	assert.Equal(t, "좋은 운세입니다", text)

	require.Len(t, seen.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, seen.Messages[0].Role)
	assert.Equal(t, "사주를 풀이해 주세요", seen.Messages[1].Content)
	assert.Equal(t, "test-model", seen.Model)
}

func TestGenerateTextEmpty(t *testing.T) {
	c := newTestClient(t, "", nil)

	_, err := c.GenerateText(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
