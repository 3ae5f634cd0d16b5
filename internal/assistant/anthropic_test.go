package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string   `json:"model"`
	MaxTokens   int64    `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newMessagesServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad request"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-test",
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"content":       []map[string]any{{"type": "text", "text": reply}},
			"usage":         map[string]any{"input_tokens": 12, "output_tokens": 34},
		})
	}))
}

func newTestGenerator(url string) *AnthropicGenerator {
	return NewAnthropicGenerator(AnthropicConfig{
		APIKey:    "test-key",
		Model:     "claude-test",
		BaseURL:   url,
		MaxTokens: 256,
		Timeout:   5 * time.Second,
	}, discardLogger())
}

func TestAnthropicGenerator_Explain(t *testing.T) {
	var req capturedRequest
	server := newMessagesServer(t, http.StatusOK, "**Context**\nWritten to Israel.", &req)
	defer server.Close()

	text, err := newTestGenerator(server.URL).Explain(context.Background(), "Genesis 1:1", "In the beginning")
	require.NoError(t, err)

	assert.Equal(t, "**Context**\nWritten to Israel.", text)
	assert.Equal(t, "claude-test", req.Model)
	assert.Equal(t, int64(256), req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.5, *req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content[0].Text, `"In the beginning" (Genesis 1:1)`)
}

func TestAnthropicGenerator_Answer(t *testing.T) {
	var req capturedRequest
	server := newMessagesServer(t, http.StatusOK, "Love your neighbour.", &req)
	defer server.Close()

	text, err := newTestGenerator(server.URL).Answer(context.Background(), "Who is my neighbour?")
	require.NoError(t, err)
	assert.Equal(t, "Love your neighbour.", text)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
}

func TestAnthropicGenerator_DailyVerse(t *testing.T) {
	var req capturedRequest
	server := newMessagesServer(t, http.StatusOK, `Here you go: {"reference": "Philippians 4:13", "text": "I can do all things through Christ which strengtheneth me."}`, &req)
	defer server.Close()

	v, err := newTestGenerator(server.URL).DailyVerse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Philippians 4:13", v.Reference)
	assert.Nil(t, req.Temperature)
}

func TestAnthropicGenerator_DailyVerseSchemaFailure(t *testing.T) {
	server := newMessagesServer(t, http.StatusOK, "Philippians 4:13", nil)
	defer server.Close()

	_, err := newTestGenerator(server.URL).DailyVerse(context.Background())
	assert.Error(t, err)
}

func TestAnthropicGenerator_APIError(t *testing.T) {
	server := newMessagesServer(t, http.StatusBadRequest, "", nil)
	defer server.Close()

	_, err := newTestGenerator(server.URL).Answer(context.Background(), "Why?")
	assert.ErrorContains(t, err, "llm api call")
}

func TestAnthropicGenerator_EmptyReply(t *testing.T) {
	server := newMessagesServer(t, http.StatusOK, "   ", nil)
	defer server.Close()

	_, err := newTestGenerator(server.URL).Explain(context.Background(), "John 11:35", "Jesus wept.")
	assert.ErrorContains(t, err, "empty response")
}
