package decision

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/pkg/classifier"
)

// Resolution carries the single human input that resumes a suspended record:
// either approval of the model's suggestion or an override picked from the
// presented options.
type Resolution struct {
	Approved bool
	Override string
}

// Workflow drives a record through collect, predict and review. All expensive
// collaborators are injected once at construction; the workflow itself holds
// no global state.
type Workflow struct {
	classifier classifier.Classifier
	store      Store
	nowFn      func() time.Time
}

// Option customises workflow construction.
type Option func(*Workflow)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		if now != nil {
			w.nowFn = now
		}
	}
}

// NewWorkflow constructs a workflow. The classifier may be nil, in which case
// every prediction lands in the error state with the no-model sentinel; the
// store is mandatory because suspension must be durable.
func NewWorkflow(cls classifier.Classifier, store Store, opts ...Option) (*Workflow, error) {
	if store == nil {
		return nil, errors.New("decision: store is required")
	}
	w := &Workflow{
		classifier: cls,
		store:      store,
		nowFn:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run executes the workflow synchronously up to the review gate: validate,
// collect the scenario, predict, then suspend at awaiting_human_review and
// checkpoint the record. It never advances past the review gate.
func (w *Workflow) Run(ctx context.Context, threadID, scenario string, options []string) (*Record, error) {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return nil, ErrScenarioRequired
	}
	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) < MinOptions {
		return nil, ErrTooFewOptions
	}
	if len(cleaned) > MaxOptions {
		cleaned = cleaned[:MaxOptions]
	}
	if threadID == "" {
		threadID = NewThreadID(w.nowFn())
	}

	rec := &Record{
		ThreadID: threadID,
		Scenario: scenario,
		Options:  cleaned,
		Status:   StatusInitialized,
	}

	w.collectScenario(rec)
	w.predict(ctx, rec)

	// Review gate: suspend indefinitely until Resolve supplies human input.
	rec.Status = StatusAwaitingHumanReview
	if err := w.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	logx.WithContext(ctx).Infof("decision %s suspended for review: prediction=%q confidence=%.3f",
		rec.ThreadID, rec.ModelPrediction, rec.Confidence)
	return rec.Clone(), nil
}

func (w *Workflow) collectScenario(rec *Record) {
	rec.Status = StatusScenarioCollected
	rec.Timestamp = w.nowFn().Format(time.RFC3339)
}

// predict ranks the options against the scenario. Failures are absorbed into
// the record as prediction_error with a sentinel prediction; no retry happens
// at this level.
func (w *Workflow) predict(ctx context.Context, rec *Record) {
	if w.classifier == nil || len(rec.Options) == 0 {
		rec.ModelPrediction = PredictionNoModel
		rec.Confidence = 0.0
		rec.Status = StatusPredictionError
		return
	}

	result, err := w.classifier.Classify(ctx, rec.Scenario, rec.Options)
	if err != nil {
		logx.WithContext(ctx).Errorf("decision %s prediction failed: %v", rec.ThreadID, err)
		rec.ModelPrediction = PredictionFailed
		rec.Confidence = 0.0
		rec.Status = StatusPredictionError
		return
	}

	top, score := result.Top()
	rec.ModelPrediction = top
	rec.Confidence = score
	rec.Status = StatusPredictionMade
}

// Pending returns the suspended record for display at the review gate.
func (w *Workflow) Pending(ctx context.Context, threadID string) (*Record, error) {
	return w.store.Load(ctx, threadID)
}

// ListPending returns every suspended record in the store.
func (w *Workflow) ListPending(ctx context.Context) ([]*Record, error) {
	return w.store.ListPending(ctx)
}

// Resolve applies the human decision to a suspended record and finalizes it.
// Approval overwrites the human decision with the model prediction, guarding
// against stale override values; an override must be one of the original
// options. Resolving an already-completed record returns ErrAlreadyResolved
// and leaves the record untouched.
func (w *Workflow) Resolve(ctx context.Context, threadID string, res Resolution) (*Record, error) {
	rec, err := w.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}

	switch rec.Status {
	case StatusCompleted:
		return nil, ErrAlreadyResolved
	case StatusAwaitingHumanReview:
	default:
		return nil, ErrNotSuspended
	}

	if res.Approved {
		rec.HumanApproved = true
		rec.HumanDecision = rec.ModelPrediction
	} else {
		override := strings.TrimSpace(res.Override)
		if override == "" {
			return nil, ErrOverrideRequired
		}
		if !rec.HasOption(override) {
			return nil, ErrInvalidOverride
		}
		rec.HumanApproved = false
		rec.HumanDecision = override
	}

	rec.Status = StatusCompleted
	// The completed record stays in the store so a second resolution attempt
	// is rejected rather than resurrected; cleanup is the owner's call.
	if err := w.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	logx.WithContext(ctx).Infof("decision %s completed: human=%q approved=%t",
		rec.ThreadID, rec.HumanDecision, rec.HumanApproved)
	return rec.Clone(), nil
}
