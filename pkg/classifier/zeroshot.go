package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"psyai-api/pkg/llm"
)

const zeroShotSystemPrompt = `You are a zero-shot classifier. Given a scenario and a set of candidate labels, score how well each label fits the scenario as the best course of action.

Rules:
- Score every candidate label, and only the candidate labels given.
- Each score is a number between 0 and 1; higher means a better fit.
- Do not invent, merge or rephrase labels.

Return ONLY a JSON object with this exact structure:
{"scores": [{"label": "candidate label", "score": 0.0}, ...]}`

// labelScore is the structured-output contract returned by the model.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type scoreContract struct {
	Scores []labelScore `json:"scores"`
}

// ZeroShot ranks candidate labels with a single structured LLM call. It is the
// stand-in for an NLI-style zero-shot classification pipeline: one sequence,
// candidate labels, single-label softmax-like normalisation.
type ZeroShot struct {
	cfg    *Config
	client llm.LLMClient
}

// NewZeroShot constructs a zero-shot classifier over the given LLM client.
func NewZeroShot(cfg *Config, client llm.LLMClient) (*ZeroShot, error) {
	if cfg == nil {
		return nil, errors.New("classifier: config is required")
	}
	if client == nil {
		return nil, errors.New("classifier: llm client is required")
	}
	return &ZeroShot{cfg: cfg, client: client}, nil
}

// Classify scores each candidate label against the sequence and returns the
// labels ranked by descending normalised score.
func (z *ZeroShot) Classify(ctx context.Context, sequence string, labels []string) (*Result, error) {
	sequence = strings.TrimSpace(sequence)
	if sequence == "" {
		return nil, errors.New("classifier: sequence is required")
	}
	if len(labels) == 0 {
		return nil, errors.New("classifier: at least one candidate label is required")
	}

	var sb strings.Builder
	sb.WriteString("Scenario:\n")
	sb.WriteString(sequence)
	sb.WriteString("\n\nCandidate labels:\n")
	for i, label := range labels {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, label)
	}

	req := &llm.ChatRequest{
		Model: z.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: zeroShotSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
		Temperature:         z.cfg.Temperature,
		MaxCompletionTokens: &z.cfg.MaxCompletionTokens,
	}

	var out scoreContract
	if err := z.client.ChatStructured(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("classifier: scoring call failed: %w", err)
	}

	return rankScores(sequence, labels, out.Scores)
}

// rankScores maps model scores back onto the candidate labels, clamps and
// normalises them, and sorts descending. Labels the model skipped score zero;
// labels it invented are dropped.
func rankScores(sequence string, labels []string, scored []labelScore) (*Result, error) {
	byLabel := make(map[string]float64, len(scored))
	for _, s := range scored {
		key := canonical(s.Label)
		if key == "" {
			continue
		}
		score := s.Score
		if score < 0 {
			score = 0
		}
		byLabel[key] = score
	}

	type ranked struct {
		label string
		score float64
		pos   int
	}
	entries := make([]ranked, 0, len(labels))
	var total float64
	matched := 0
	for i, label := range labels {
		score, ok := byLabel[canonical(label)]
		if ok {
			matched++
		}
		entries = append(entries, ranked{label: label, score: score, pos: i})
		total += score
	}
	if matched == 0 {
		return nil, errors.New("classifier: model scored none of the candidate labels")
	}

	if total > 0 {
		for i := range entries {
			entries[i].score /= total
		}
	} else {
		// All zero scores: fall back to a uniform distribution so the result
		// still sums to 1 and preserves input order.
		uniform := 1.0 / float64(len(entries))
		for i := range entries {
			entries[i].score = uniform
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].pos < entries[j].pos
	})

	result := &Result{
		Sequence: sequence,
		Labels:   make([]string, len(entries)),
		Scores:   make([]float64, len(entries)),
	}
	for i, e := range entries {
		result.Labels[i] = e.label
		result.Scores[i] = e.score
	}
	return result, nil
}

func canonical(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
