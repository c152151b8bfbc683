package cache

import (
	"strings"
	"time"

	"psyai-api/internal/config"
)

// Namespace is the Redis key prefix for the PsyAI application.
const Namespace = "psyai"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Decision Keys ----------------------------------------------------------

// DecisionRecordKey caches the checkpointed record for one workflow thread.
func DecisionRecordKey(threadID string) string {
	return formatKey("decision", "record", threadID)
}

// PendingReviewKey caches the list of threads suspended at the review gate.
func PendingReviewKey() string {
	return formatKey("decision", "pending")
}

// --- Session Keys -----------------------------------------------------------

// SessionHistoryKey caches the rendered recent-history view for a session.
func SessionHistoryKey(sessionID string) string {
	return formatKey("session", "history", sessionID)
}

// --- TTL Helpers ------------------------------------------------------------

// DecisionRecordTTL returns the TTL for cached decision records. Suspension is
// indefinite, so the cache only shields the store from repeated reads; the
// durable copy lives in Postgres.
func DecisionRecordTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// PendingReviewTTL returns the TTL for the pending-review listing.
func PendingReviewTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// SessionHistoryTTL returns the TTL for session history views.
func SessionHistoryTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// FormatCacheKey is exported for dynamic key construction when patterns
// are not covered by helpers.
func FormatCacheKey(parts ...string) string {
	return formatKey(parts...)
}
