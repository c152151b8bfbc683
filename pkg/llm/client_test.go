package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		APIKey:       "sk-test",
		DefaultModel: "gpt-5-mini",
		Timeout:      5 * time.Second,
		MaxRetries:   0,
		LogLevel:     "error",
	}
}

func completionJSON(content string) string {
	return `{
		"id":"chatcmpl-1",
		"object":"chat.completion",
		"created":1730366400,
		"model":"gpt-5-mini",
		"choices":[
			{
				"index":0,
				"message":{"role":"assistant","content":` + mustQuote(content) + `},
				"finish_reason":"stop"
			}
		],
		"usage":{"prompt_tokens":12,"completion_tokens":7,"total_tokens":19}
	}`
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestClientChat(t *testing.T) {
	var (
		mu       sync.Mutex
		lastBody []byte
		lastPath string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		lastPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		lastBody = body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("hello from the assistant")))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "you are terse"},
			{Role: "user", Content: "say hello"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "hello from the assistant", resp.Choices[0].Message.Content)
	require.Equal(t, 19, resp.Usage.TotalTokens)

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, lastPath, "/chat/completions")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &payload))
	require.Equal(t, "gpt-5-mini", payload["model"])
}

func TestClientChatRetriesRateLimit(t *testing.T) {
	var calls int32
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("recovered")))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	client, err := NewClient(cfg, WithRetryHandler(NewRetryHandler(RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
	})))
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "again"}},
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", resp.Choices[0].Message.Content)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, calls, int32(2))
}

func TestClientChatStructured(t *testing.T) {
	type verdict struct {
		Answer string `json:"answer"`
		Score  int    `json:"score"`
	}

	var lastBody []byte
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		lastBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON(`{"answer":"yes","score":9}`)))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	defer client.Close()

	var out verdict
	err = client.ChatStructured(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "verdict?"}},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "yes", out.Answer)
	require.Equal(t, 9, out.Score)

	mu.Lock()
	defer mu.Unlock()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &payload))
	format, ok := payload["response_format"].(map[string]any)
	require.True(t, ok, "request should carry a response_format")
	require.Equal(t, "json_schema", format["type"])
}

func TestClientChatStructuredRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("not json at all")))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	defer client.Close()

	var out struct {
		Answer string `json:"answer"`
	}
	err = client.ChatStructured(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "verdict?"}},
	}, &out)
	require.Error(t, err)
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&Config{})
	require.Error(t, err)
}
