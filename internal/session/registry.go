package session

import (
	"strings"
	"sync"
	"time"

	"psyai-api/pkg/decision"
)

// DefaultRecentLimit bounds how many history entries a session view returns.
const DefaultRecentLimit = 5

// Entry is one line of a session's decision history. History is append-only;
// resolving a decision appends a new entry rather than mutating an old one.
type Entry struct {
	ThreadID string    `json:"thread_id"`
	Scenario string    `json:"scenario"`
	Status   string    `json:"status"`
	Decision string    `json:"decision,omitempty"`
	At       time.Time `json:"at"`
}

// Registry maps chat session IDs to their active workflow thread and keeps the
// per-session decision history. It is process-local; durable decision state
// lives in the checkpoint store.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*state
	recentLimit int
	nowFn       func() time.Time
}

type state struct {
	activeThread string
	history      []Entry
}

// NewRegistry constructs a registry. recentLimit <= 0 falls back to the
// default of five entries.
func NewRegistry(recentLimit int) *Registry {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Registry{
		sessions:    make(map[string]*state),
		recentLimit: recentLimit,
		nowFn:       time.Now,
	}
}

// Bind marks threadID as the session's active decision thread.
func (r *Registry) Bind(sessionID, threadID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || threadID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(sessionID).activeThread = threadID
}

// Active returns the session's active thread ID, if any.
func (r *Registry) Active(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.sessions[strings.TrimSpace(sessionID)]
	if !ok || st.activeThread == "" {
		return "", false
	}
	return st.activeThread, true
}

// ClearActive drops the session's active thread binding, typically after the
// thread resolves.
func (r *Registry) ClearActive(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.sessions[strings.TrimSpace(sessionID)]; ok {
		st.activeThread = ""
	}
}

// Append records one history entry for the session.
func (r *Registry) Append(sessionID string, entry Entry) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	if entry.At.IsZero() {
		entry.At = r.nowFn()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.ensure(sessionID)
	st.history = append(st.history, entry)
}

// RecordSuspended appends a history entry for a freshly suspended record and
// binds it as the session's active thread.
func (r *Registry) RecordSuspended(sessionID string, rec *decision.Record) {
	if rec == nil {
		return
	}
	r.Append(sessionID, Entry{
		ThreadID: rec.ThreadID,
		Scenario: rec.Scenario,
		Status:   string(rec.Status),
		Decision: rec.ModelPrediction,
	})
	r.Bind(sessionID, rec.ThreadID)
}

// RecordResolved appends a history entry for a completed record and clears the
// active binding if it pointed at this thread.
func (r *Registry) RecordResolved(sessionID string, rec *decision.Record) {
	if rec == nil {
		return
	}
	r.Append(sessionID, Entry{
		ThreadID: rec.ThreadID,
		Scenario: rec.Scenario,
		Status:   string(rec.Status),
		Decision: rec.HumanDecision,
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.sessions[strings.TrimSpace(sessionID)]; ok && st.activeThread == rec.ThreadID {
		st.activeThread = ""
	}
}

// Recent returns up to the configured limit of history entries, newest first.
func (r *Registry) Recent(sessionID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.sessions[strings.TrimSpace(sessionID)]
	if !ok || len(st.history) == 0 {
		return nil
	}
	n := len(st.history)
	limit := r.recentLimit
	if limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, st.history[i])
	}
	return out
}

// HistoryLen reports how many entries the session has accumulated in total.
func (r *Registry) HistoryLen(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return 0
	}
	return len(st.history)
}

func (r *Registry) ensure(sessionID string) *state {
	st, ok := r.sessions[sessionID]
	if !ok {
		st = &state{}
		r.sessions[sessionID] = st
	}
	return st
}
