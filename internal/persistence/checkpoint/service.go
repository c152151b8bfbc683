package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "psyai-api/internal/cache"
	"psyai-api/pkg/decision"
)

var _ decision.Store = (*Service)(nil)

const table = "decision_checkpoints"

// Service is the durable review-gate store: suspended records are encoded as
// msgpack blobs in Postgres so a human can resolve them after any delay,
// across restarts. Redis fronts reads when a cache is configured.
type Service struct {
	conn  sqlx.SqlConn
	cache gocache.Cache
	ttl   cachekeys.TTLSet
}

// NewService wires the checkpoint store. The cache is optional; pass nil to
// read through to Postgres every time.
func NewService(conn sqlx.SqlConn, cache gocache.Cache, ttl cachekeys.TTLSet) (*Service, error) {
	if conn == nil {
		return nil, errors.New("checkpoint: sql connection is required")
	}
	return &Service{conn: conn, cache: cache, ttl: ttl}, nil
}

type checkpointRow struct {
	ThreadID  string    `db:"thread_id"`
	Status    string    `db:"status"`
	Record    []byte    `db:"record"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Save upserts the record blob keyed by thread ID and refreshes the cache.
func (s *Service) Save(ctx context.Context, rec *decision.Record) error {
	if rec == nil || rec.ThreadID == "" {
		return decision.ErrThreadNotFound
	}
	blob, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("checkpoint: encode record %s: %w", rec.ThreadID, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (thread_id, status, record, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (thread_id) DO UPDATE
SET status = EXCLUDED.status, record = EXCLUDED.record, updated_at = now()`, table)
	if _, err := s.conn.ExecCtx(ctx, query, rec.ThreadID, string(rec.Status), blob); err != nil {
		return fmt.Errorf("checkpoint: save record %s: %w", rec.ThreadID, err)
	}

	if s.cache != nil {
		key := cachekeys.DecisionRecordKey(rec.ThreadID)
		if err := s.cache.SetWithExpireCtx(ctx, key, rec, cachekeys.DecisionRecordTTL(s.ttl)); err != nil {
			logx.WithContext(ctx).Errorf("checkpoint: cache set %s: %v", key, err)
		}
		if err := s.cache.DelCtx(ctx, cachekeys.PendingReviewKey()); err != nil {
			logx.WithContext(ctx).Errorf("checkpoint: cache invalidate pending: %v", err)
		}
	}
	return nil
}

// Load returns the record for the given thread ID, via cache when possible.
func (s *Service) Load(ctx context.Context, threadID string) (*decision.Record, error) {
	if threadID == "" {
		return nil, decision.ErrThreadNotFound
	}

	if s.cache != nil {
		var cached decision.Record
		if err := s.cache.GetCtx(ctx, cachekeys.DecisionRecordKey(threadID), &cached); err == nil && cached.ThreadID != "" {
			return &cached, nil
		}
	}

	rec, err := s.loadFromDB(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		key := cachekeys.DecisionRecordKey(threadID)
		if err := s.cache.SetWithExpireCtx(ctx, key, rec, cachekeys.DecisionRecordTTL(s.ttl)); err != nil {
			logx.WithContext(ctx).Errorf("checkpoint: cache set %s: %v", key, err)
		}
	}
	return rec, nil
}

func (s *Service) loadFromDB(ctx context.Context, threadID string) (*decision.Record, error) {
	var row checkpointRow
	query := fmt.Sprintf(`SELECT thread_id, status, record, updated_at FROM %s WHERE thread_id = $1`, table)
	err := s.conn.QueryRowCtx(ctx, &row, query, threadID)
	switch {
	case err == nil:
	case errors.Is(err, sqlx.ErrNotFound):
		return nil, decision.ErrThreadNotFound
	default:
		return nil, fmt.Errorf("checkpoint: load record %s: %w", threadID, err)
	}

	rec := &decision.Record{}
	if err := msgpack.Unmarshal(row.Record, rec); err != nil {
		return nil, fmt.Errorf("checkpoint: decode record %s: %w", threadID, err)
	}
	return rec, nil
}

// Delete removes the checkpoint and evicts the cache.
func (s *Service) Delete(ctx context.Context, threadID string) error {
	if threadID == "" {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE thread_id = $1`, table)
	if _, err := s.conn.ExecCtx(ctx, query, threadID); err != nil {
		return fmt.Errorf("checkpoint: delete record %s: %w", threadID, err)
	}
	if s.cache != nil {
		if err := s.cache.DelCtx(ctx, cachekeys.DecisionRecordKey(threadID), cachekeys.PendingReviewKey()); err != nil {
			logx.WithContext(ctx).Errorf("checkpoint: cache del %s: %v", threadID, err)
		}
	}
	return nil
}

// ListPending returns every record suspended at the review gate, ordered by
// thread ID.
func (s *Service) ListPending(ctx context.Context) ([]*decision.Record, error) {
	var rows []checkpointRow
	query := fmt.Sprintf(`SELECT thread_id, status, record, updated_at FROM %s WHERE status = $1 ORDER BY thread_id`, table)
	if err := s.conn.QueryRowsCtx(ctx, &rows, query, string(decision.StatusAwaitingHumanReview)); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint: list pending: %w", err)
	}

	pending := make([]*decision.Record, 0, len(rows))
	for i := range rows {
		rec := &decision.Record{}
		if err := msgpack.Unmarshal(rows[i].Record, rec); err != nil {
			logx.WithContext(ctx).Errorf("checkpoint: decode pending %s: %v", rows[i].ThreadID, err)
			continue
		}
		pending = append(pending, rec)
	}
	return pending, nil
}
