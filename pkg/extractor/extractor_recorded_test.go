package extractor

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"

	"psyai-api/pkg/llm"
)

// This test uses go-vcr to record/replay a real extraction call.
// It skips by default if the cassette is absent and RECORD_CASSETTES != 1.
func TestExtract_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "extractor_chat.yaml")
	if _, err := os.Stat(cassette); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	apiKey := os.Getenv("AI_INTEGRATIONS_OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "recorded"
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	assert.NotNil(t, r, "recorder should not be nil")
	defer func() { _ = r.Stop() }()

	httpClient := &http.Client{Transport: r}
	client, err := llm.NewClient(&llm.Config{
		BaseURL:      "https://api.openai.com/v1",
		APIKey:       apiKey,
		DefaultModel: "gpt-5-mini",
		Timeout:      30 * time.Second,
	}, llm.WithHTTPClient(httpClient))
	assert.NoError(t, err, "llm.NewClient should not error")
	defer client.Close()

	ex, err := New(&Config{MaxCompletionTokens: 1024}, client)
	assert.NoError(t, err)

	prompt, err := ex.Extract(context.Background(),
		"We're deciding whether to expand to Europe or stay in North America. We could launch in 3 months or wait a year.")
	assert.NoError(t, err, "Extract should not error")
	if assert.NotNil(t, prompt, "prompt should not be nil") {
		assert.NotEmpty(t, prompt.Scenario)
		assert.GreaterOrEqual(t, len(prompt.Options), 2)
		assert.LessOrEqual(t, len(prompt.Options), 4)
	}
}
