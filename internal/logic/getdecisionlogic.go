package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/svc"
	"psyai-api/internal/types"
)

type GetDecisionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetDecisionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetDecisionLogic {
	return &GetDecisionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetDecision returns one record by thread ID, suspended or completed.
func (l *GetDecisionLogic) GetDecision(req *types.GetDecisionReq) (*types.GetDecisionResp, error) {
	rec, err := l.svcCtx.Workflow.Pending(l.ctx, req.ThreadID)
	if err != nil {
		return nil, err
	}
	return &types.GetDecisionResp{Decision: viewFromRecord(rec)}, nil
}
