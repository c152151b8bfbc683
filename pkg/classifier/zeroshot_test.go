package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"psyai-api/pkg/llm"
)

// fakeLLM satisfies llm.LLMClient with a canned structured payload.
type fakeLLM struct {
	payload string
	err     error
	lastReq *llm.ChatRequest
}

func (f *fakeLLM) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakeLLM) ChatStructured(ctx context.Context, req *llm.ChatRequest, target interface{}) error {
	f.lastReq = req
	if f.err != nil {
		return f.err
	}
	return llm.ParseStructured(f.payload, target)
}

func (f *fakeLLM) GetConfig() *llm.Config { return &llm.Config{} }
func (f *fakeLLM) Close() error           { return nil }

func newTestClassifier(t *testing.T, fake *fakeLLM) *ZeroShot {
	t.Helper()
	cfg := &Config{MaxCompletionTokens: 512}
	zs, err := NewZeroShot(cfg, fake)
	require.NoError(t, err)
	return zs
}

func TestClassifyRanksDescending(t *testing.T) {
	fake := &fakeLLM{payload: `{"scores":[
		{"label":"Launch in Q1","score":0.2},
		{"label":"Launch in Q2","score":0.6},
		{"label":"Cancel launch","score":0.2}
	]}`}
	zs := newTestClassifier(t, fake)

	result, err := zs.Classify(context.Background(), "when should we launch?", []string{
		"Launch in Q1", "Launch in Q2", "Cancel launch",
	})
	require.NoError(t, err)

	top, score := result.Top()
	require.Equal(t, "Launch in Q2", top)
	require.InDelta(t, 0.6, score, 0.0001)
	require.Len(t, result.Labels, 3)

	var sum float64
	for _, s := range result.Scores {
		sum += s
	}
	require.InDelta(t, 1.0, sum, 0.0001)

	// Prompt carries the scenario and every candidate label.
	require.NotNil(t, fake.lastReq)
	user := fake.lastReq.Messages[1].Content
	require.Contains(t, user, "when should we launch?")
	require.Contains(t, user, "Cancel launch")
}

func TestClassifyNormalisesUnboundedScores(t *testing.T) {
	fake := &fakeLLM{payload: `{"scores":[
		{"label":"A","score":3},
		{"label":"B","score":1}
	]}`}
	zs := newTestClassifier(t, fake)

	result, err := zs.Classify(context.Background(), "pick one", []string{"A", "B"})
	require.NoError(t, err)
	require.InDelta(t, 0.75, result.Scores[0], 0.0001)
	require.InDelta(t, 0.25, result.Scores[1], 0.0001)
}

func TestClassifySkippedLabelScoresZero(t *testing.T) {
	fake := &fakeLLM{payload: `{"scores":[{"label":"A","score":0.9}]}`}
	zs := newTestClassifier(t, fake)

	result, err := zs.Classify(context.Background(), "pick one", []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, result.Labels)
	require.InDelta(t, 1.0, result.Scores[0], 0.0001)
	require.InDelta(t, 0.0, result.Scores[1], 0.0001)
}

func TestClassifyInventedLabelsDropped(t *testing.T) {
	fake := &fakeLLM{payload: `{"scores":[
		{"label":"A","score":0.5},
		{"label":"made up option","score":0.5}
	]}`}
	zs := newTestClassifier(t, fake)

	result, err := zs.Classify(context.Background(), "pick one", []string{"A", "B"})
	require.NoError(t, err)
	require.NotContains(t, result.Labels, "made up option")
}

func TestClassifyAllLabelsUnmatchedFails(t *testing.T) {
	fake := &fakeLLM{payload: `{"scores":[{"label":"nothing relevant","score":1}]}`}
	zs := newTestClassifier(t, fake)

	_, err := zs.Classify(context.Background(), "pick one", []string{"A", "B"})
	require.Error(t, err)
}

func TestClassifyAllZeroScoresFallsBackToUniform(t *testing.T) {
	fake := &fakeLLM{payload: `{"scores":[
		{"label":"A","score":0},
		{"label":"B","score":0}
	]}`}
	zs := newTestClassifier(t, fake)

	result, err := zs.Classify(context.Background(), "pick one", []string{"A", "B"})
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.Scores[0], 0.0001)
	require.InDelta(t, 0.5, result.Scores[1], 0.0001)
}

func TestClassifyPropagatesLLMError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("boom")}
	zs := newTestClassifier(t, fake)

	_, err := zs.Classify(context.Background(), "pick one", []string{"A", "B"})
	require.Error(t, err)
}

func TestClassifyValidatesInput(t *testing.T) {
	zs := newTestClassifier(t, &fakeLLM{payload: `{"scores":[]}`})

	_, err := zs.Classify(context.Background(), "   ", []string{"A"})
	require.Error(t, err)

	_, err = zs.Classify(context.Background(), "pick", nil)
	require.Error(t, err)
}

func TestLoadConfigFromReader(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`
model: "fast"
temperature: 0.1
max_completion_tokens: 256
`))
	require.NoError(t, err)
	require.Equal(t, "fast", cfg.Model)
	require.Equal(t, 256, cfg.MaxCompletionTokens)
	require.NotNil(t, cfg.Temperature)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(``))
	require.NoError(t, err)
	require.Equal(t, defaultMaxCompletionTokens, cfg.MaxCompletionTokens)
	require.Empty(t, cfg.Model)
}
