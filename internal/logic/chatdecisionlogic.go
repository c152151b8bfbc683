package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/svc"
	"psyai-api/internal/types"
)

type ChatDecisionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatDecisionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatDecisionLogic {
	return &ChatDecisionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ChatDecision extracts a scenario/options pair from free text and, when the
// extraction succeeds, starts a workflow run that suspends at the review gate.
// Unparseable messages return parsed=false so the caller can ask the user to
// rephrase; they are never an error.
func (l *ChatDecisionLogic) ChatDecision(req *types.ChatDecisionReq) (*types.ChatDecisionResp, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message is required")
	}
	if l.svcCtx.Extractor == nil {
		return nil, errors.New("no extraction model configured")
	}

	prompt, err := l.svcCtx.Extractor.Extract(l.ctx, req.Message)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		l.Infof("chat message did not parse into a decision prompt")
		return &types.ChatDecisionResp{Parsed: false}, nil
	}

	rec, err := l.svcCtx.Workflow.Run(l.ctx, "", prompt.Scenario, prompt.Options)
	if err != nil {
		return nil, err
	}
	if req.SessionID != "" {
		l.svcCtx.Sessions.RecordSuspended(req.SessionID, rec)
	}

	view := viewFromRecord(rec)
	return &types.ChatDecisionResp{
		Parsed:   true,
		Scenario: prompt.Scenario,
		Options:  prompt.Options,
		Decision: &view,
	}, nil
}
