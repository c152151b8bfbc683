package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/svc"
	"psyai-api/internal/types"
)

type SubmitDecisionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSubmitDecisionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SubmitDecisionLogic {
	return &SubmitDecisionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// SubmitDecision runs the workflow up to the review gate and suspends there.
func (l *SubmitDecisionLogic) SubmitDecision(req *types.SubmitDecisionReq) (*types.SubmitDecisionResp, error) {
	rec, err := l.svcCtx.Workflow.Run(l.ctx, "", req.Scenario, req.Options)
	if err != nil {
		return nil, err
	}
	if req.SessionID != "" {
		l.svcCtx.Sessions.RecordSuspended(req.SessionID, rec)
	}
	return &types.SubmitDecisionResp{Decision: viewFromRecord(rec)}, nil
}
