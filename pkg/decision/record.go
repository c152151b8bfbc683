package decision

import (
	"fmt"
	"time"
)

// Status tracks a record's forward-only progression through the workflow.
type Status string

const (
	StatusInitialized         Status = "initialized"
	StatusScenarioCollected   Status = "scenario_collected"
	StatusPredictionMade      Status = "prediction_made"
	StatusPredictionError     Status = "prediction_error"
	StatusAwaitingHumanReview Status = "awaiting_human_review"
	StatusCompleted           Status = "completed"
)

// Sentinel prediction values recorded in-band when the prediction step cannot
// produce a ranked option. They surface to the reviewer instead of aborting
// the run.
const (
	PredictionNoModel = "No model available"
	PredictionFailed  = "Error in prediction"
)

// Option count bounds enforced before a workflow starts.
const (
	MinOptions = 2
	MaxOptions = 4
)

// Record is the single mutable entity flowing through the workflow. Once
// Status reaches StatusCompleted no further mutation is permitted.
type Record struct {
	ThreadID        string   `json:"thread_id" msgpack:"thread_id"`
	Scenario        string   `json:"scenario" msgpack:"scenario"`
	Options         []string `json:"options" msgpack:"options"`
	ModelPrediction string   `json:"model_prediction" msgpack:"model_prediction"`
	Confidence      float64  `json:"confidence" msgpack:"confidence"`
	HumanDecision   string   `json:"human_decision" msgpack:"human_decision"`
	HumanApproved   bool     `json:"human_approved" msgpack:"human_approved"`
	Timestamp       string   `json:"timestamp" msgpack:"timestamp"`
	Status          Status   `json:"status" msgpack:"status"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Options != nil {
		cp.Options = append([]string(nil), r.Options...)
	}
	return &cp
}

// Completed reports whether the record reached its terminal status.
func (r *Record) Completed() bool {
	return r != nil && r.Status == StatusCompleted
}

// HasOption reports whether value is one of the record's original options.
func (r *Record) HasOption(value string) bool {
	for _, opt := range r.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// NewThreadID generates a workflow thread identifier. The prefix keeps the
// original decision_YYYYMMDD_HHMMSS shape; the nanosecond suffix guards
// against collisions within the same second.
func NewThreadID(now time.Time) string {
	return fmt.Sprintf("decision_%s_%04d", now.Format("20060102_150405"), now.Nanosecond()%10000)
}
