package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/svc"
	"psyai-api/internal/types"
)

type PendingDecisionsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPendingDecisionsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PendingDecisionsLogic {
	return &PendingDecisionsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// PendingDecisions lists every record suspended at the review gate.
func (l *PendingDecisionsLogic) PendingDecisions() (*types.PendingDecisionsResp, error) {
	records, err := l.svcCtx.Workflow.ListPending(l.ctx)
	if err != nil {
		return nil, err
	}
	views := make([]types.DecisionView, 0, len(records))
	for _, rec := range records {
		views = append(views, viewFromRecord(rec))
	}
	return &types.PendingDecisionsResp{Decisions: views}, nil
}
