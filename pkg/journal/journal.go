package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry captures one completed decision for audit and later analysis.
type Entry struct {
	Timestamp       time.Time `json:"timestamp"`
	SessionID       string    `json:"session_id,omitempty"`
	ThreadID        string    `json:"thread_id"`
	Scenario        string    `json:"scenario"`
	Options         []string  `json:"options"`
	ModelPrediction string    `json:"model_prediction"`
	Confidence      float64   `json:"confidence"`
	HumanDecision   string    `json:"human_decision"`
	HumanApproved   bool      `json:"human_approved"`
}

// Writer persists decision entries to a directory as JSON files.
type Writer struct {
	dir   string
	nowFn func() time.Time

	mu  sync.Mutex
	seq int
}

// NewWriter constructs a journal writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteDecision writes an entry to a timestamped JSON file and returns its path.
func (w *Writer) WriteDecision(entry *Entry) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("journal: nil entry")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = w.nowFn()
	}

	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	name := fmt.Sprintf("decision_%s_%05d.json", entry.Timestamp.UTC().Format("20060102_150405"), seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
