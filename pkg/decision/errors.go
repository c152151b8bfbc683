package decision

import "errors"

var (
	// ErrScenarioRequired rejects submissions with an empty scenario before
	// any record is created.
	ErrScenarioRequired = errors.New("decision: scenario is required")

	// ErrTooFewOptions rejects submissions with fewer than MinOptions options.
	ErrTooFewOptions = errors.New("decision: at least 2 options are required")

	// ErrThreadNotFound indicates no suspended record exists for a thread ID.
	ErrThreadNotFound = errors.New("decision: thread not found")

	// ErrAlreadyResolved rejects a second resolution of a completed record.
	ErrAlreadyResolved = errors.New("decision: record already completed")

	// ErrNotSuspended indicates the record is not awaiting human review.
	ErrNotSuspended = errors.New("decision: record is not awaiting human review")

	// ErrInvalidOverride rejects an override value outside the original options.
	ErrInvalidOverride = errors.New("decision: override must be one of the presented options")

	// ErrOverrideRequired rejects a non-approval resolution without an override.
	ErrOverrideRequired = errors.New("decision: override option is required when not approving")
)
