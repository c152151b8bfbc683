package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/svc"
	"psyai-api/internal/types"
	"psyai-api/pkg/decision"
	"psyai-api/pkg/journal"
)

type ResolveDecisionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewResolveDecisionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ResolveDecisionLogic {
	return &ResolveDecisionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ResolveDecision applies the human verdict to a suspended record: either
// approval of the model's suggestion or an override drawn from the original
// options. The completed record is journalled for audit.
func (l *ResolveDecisionLogic) ResolveDecision(req *types.ResolveDecisionReq) (*types.ResolveDecisionResp, error) {
	rec, err := l.svcCtx.Workflow.Resolve(l.ctx, req.ThreadID, decision.Resolution{
		Approved: req.Approved,
		Override: req.Override,
	})
	if err != nil {
		return nil, err
	}

	if req.SessionID != "" {
		l.svcCtx.Sessions.RecordResolved(req.SessionID, rec)
	}
	if l.svcCtx.Journal != nil {
		if _, err := l.svcCtx.Journal.WriteDecision(&journal.Entry{
			SessionID:       req.SessionID,
			ThreadID:        rec.ThreadID,
			Scenario:        rec.Scenario,
			Options:         rec.Options,
			ModelPrediction: rec.ModelPrediction,
			Confidence:      rec.Confidence,
			HumanDecision:   rec.HumanDecision,
			HumanApproved:   rec.HumanApproved,
		}); err != nil {
			l.Errorf("journal decision %s: %v", rec.ThreadID, err)
		}
	}

	return &types.ResolveDecisionResp{Decision: viewFromRecord(rec)}, nil
}
