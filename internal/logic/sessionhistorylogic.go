package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/svc"
	"psyai-api/internal/types"
)

type SessionHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSessionHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SessionHistoryLogic {
	return &SessionHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// SessionHistory returns the session's recent decisions, newest first. The
// underlying history is append-only; only the view is capped.
func (l *SessionHistoryLogic) SessionHistory(req *types.SessionHistoryReq) (*types.SessionHistoryResp, error) {
	recent := l.svcCtx.Sessions.Recent(req.SessionID)
	entries := make([]types.SessionHistoryEntry, 0, len(recent))
	for _, e := range recent {
		entries = append(entries, types.SessionHistoryEntry{
			ThreadID: e.ThreadID,
			Scenario: e.Scenario,
			Status:   e.Status,
			Decision: e.Decision,
			At:       e.At.UTC().Format(time.RFC3339),
		})
	}
	return &types.SessionHistoryResp{SessionID: req.SessionID, Entries: entries}, nil
}
