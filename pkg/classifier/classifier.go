package classifier

import "context"

// Result holds ranked candidate labels. Labels and Scores are parallel slices
// sorted by descending score; Scores are normalised to sum to 1.
type Result struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Top returns the highest-scoring label and its score.
func (r *Result) Top() (string, float64) {
	if r == nil || len(r.Labels) == 0 {
		return "", 0
	}
	return r.Labels[0], r.Scores[0]
}

// Classifier ranks candidate labels by relevance to a sequence.
type Classifier interface {
	Classify(ctx context.Context, sequence string, labels []string) (*Result, error)
}
