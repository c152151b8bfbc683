package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/pkg/decision"
	"psyai-api/pkg/llm"
)

const systemPrompt = `You are a decision extraction assistant. Your job is to parse natural language descriptions into structured decision prompts.

Extract the following from the user's message:
1. scenario: A clear, concise description of the decision context
2. options: A list of 2-4 distinct choices or alternatives

Rules:
- If the user mentions specific options, extract them
- If options are implied but not explicit, infer reasonable alternatives
- Each option should be a short, actionable choice
- The scenario should be a question or statement of the decision problem

Return ONLY a JSON object with this exact structure:
{
    "scenario": "string describing the decision",
    "options": ["option 1", "option 2", ...]
}`

const userPromptFormat = `Parse this decision description:

%s

Extract the scenario and options as JSON.`

// DecisionPrompt is a structured scenario/options pair extracted from free
// text, ready to seed a workflow run.
type DecisionPrompt struct {
	Scenario string   `json:"scenario"`
	Options  []string `json:"options"`
}

// Extractor turns free-form text into a DecisionPrompt via a single LLM call.
// Malformed model output yields a nil result, never an error and never a
// partial structure; the caller treats nil as "ask the user to rephrase".
type Extractor struct {
	cfg    *Config
	client llm.LLMClient
}

// New constructs an Extractor.
func New(cfg *Config, client llm.LLMClient) (*Extractor, error) {
	if cfg == nil {
		return nil, errors.New("extractor: config is required")
	}
	if client == nil {
		return nil, errors.New("extractor: llm client is required")
	}
	return &Extractor{cfg: cfg, client: client}, nil
}

// Extract parses a natural language message into a DecisionPrompt. It returns
// (nil, nil) when the model output cannot be validated; transport errors that
// survive the client's retry policy propagate as hard errors.
func (e *Extractor) Extract(ctx context.Context, message string) (*DecisionPrompt, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("extractor: message is required")
	}

	req := &llm.ChatRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptFormat, message)},
		},
		MaxCompletionTokens: &e.cfg.MaxCompletionTokens,
		ResponseFormat:      &llm.ResponseFormat{Type: "json_object"},
	}

	resp, err := e.client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extractor: chat call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	prompt := parseResponse(ctx, resp.Choices[0].Message.Content)
	return prompt, nil
}

// parseResponse validates the raw completion. Both keys must be present,
// options must hold at least two entries, and the result is truncated to at
// most four options.
func parseResponse(ctx context.Context, content string) *DecisionPrompt {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		logx.WithContext(ctx).Errorf("extractor: non-JSON model output: %v", err)
		return nil
	}

	scenarioRaw, ok := raw["scenario"]
	if !ok {
		return nil
	}
	optionsRaw, ok := raw["options"]
	if !ok {
		return nil
	}

	var scenario string
	if err := json.Unmarshal(scenarioRaw, &scenario); err != nil {
		return nil
	}
	var options []string
	if err := json.Unmarshal(optionsRaw, &options); err != nil {
		return nil
	}

	if strings.TrimSpace(scenario) == "" || len(options) < decision.MinOptions {
		return nil
	}
	if len(options) > decision.MaxOptions {
		options = options[:decision.MaxOptions]
	}

	return &DecisionPrompt{Scenario: scenario, Options: options}
}
