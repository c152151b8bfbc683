package logic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"psyai-api/internal/session"
	"psyai-api/internal/svc"
	"psyai-api/internal/types"
	"psyai-api/pkg/classifier"
	"psyai-api/pkg/decision"
	"psyai-api/pkg/extractor"
	"psyai-api/pkg/journal"
	"psyai-api/pkg/llm"
)

// stubClassifier always picks the first label with a fixed confidence.
type stubClassifier struct {
	err error
}

func (s *stubClassifier) Classify(ctx context.Context, sequence string, labels []string) (*classifier.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	scores := make([]float64, len(labels))
	scores[0] = 0.8
	for i := 1; i < len(labels); i++ {
		scores[i] = 0.2 / float64(len(labels)-1)
	}
	return &classifier.Result{Sequence: sequence, Labels: labels, Scores: scores}, nil
}

// chatLLM returns a canned assistant message for the extractor.
type chatLLM struct {
	content string
}

func (c *chatLLM) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{
		Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: c.content}}},
	}, nil
}

func (c *chatLLM) ChatStructured(ctx context.Context, req *llm.ChatRequest, target interface{}) error {
	return errors.New("not used")
}

func (c *chatLLM) GetConfig() *llm.Config { return &llm.Config{} }
func (c *chatLLM) Close() error           { return nil }

func newTestServiceContext(t *testing.T, cls classifier.Classifier, extractorContent string) *svc.ServiceContext {
	t.Helper()

	store := decision.NewMemoryStore()
	wf, err := decision.NewWorkflow(cls, store)
	require.NoError(t, err)

	svcCtx := &svc.ServiceContext{
		Store:    store,
		Workflow: wf,
		Sessions: session.NewRegistry(5),
		Journal:  journal.NewWriter(t.TempDir()),
	}
	if extractorContent != "" {
		ex, err := extractor.New(&extractor.Config{MaxCompletionTokens: 1024}, &chatLLM{content: extractorContent})
		require.NoError(t, err)
		svcCtx.Extractor = ex
	}
	return svcCtx
}

func TestSubmitThenResolveApprove(t *testing.T) {
	svcCtx := newTestServiceContext(t, &stubClassifier{}, "")
	ctx := context.Background()

	submitted, err := NewSubmitDecisionLogic(ctx, svcCtx).SubmitDecision(&types.SubmitDecisionReq{
		SessionID: "s1",
		Scenario:  "ship this week or next",
		Options:   []string{"this week", "next week"},
	})
	require.NoError(t, err)
	require.Equal(t, string(decision.StatusAwaitingHumanReview), submitted.Decision.Status)
	require.Equal(t, "this week", submitted.Decision.ModelPrediction)

	pending, err := NewPendingDecisionsLogic(ctx, svcCtx).PendingDecisions()
	require.NoError(t, err)
	require.Len(t, pending.Decisions, 1)

	resolved, err := NewResolveDecisionLogic(ctx, svcCtx).ResolveDecision(&types.ResolveDecisionReq{
		ThreadID:  submitted.Decision.ThreadID,
		SessionID: "s1",
		Approved:  true,
	})
	require.NoError(t, err)
	require.Equal(t, string(decision.StatusCompleted), resolved.Decision.Status)
	require.Equal(t, "this week", resolved.Decision.HumanDecision)
	require.True(t, resolved.Decision.HumanApproved)

	// The gate empties and the session history holds both transitions.
	pending, err = NewPendingDecisionsLogic(ctx, svcCtx).PendingDecisions()
	require.NoError(t, err)
	require.Empty(t, pending.Decisions)

	history, err := NewSessionHistoryLogic(ctx, svcCtx).SessionHistory(&types.SessionHistoryReq{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, history.Entries, 2)
	require.Equal(t, string(decision.StatusCompleted), history.Entries[0].Status)
}

func TestResolveOverrideMustComeFromOptions(t *testing.T) {
	svcCtx := newTestServiceContext(t, &stubClassifier{}, "")
	ctx := context.Background()

	submitted, err := NewSubmitDecisionLogic(ctx, svcCtx).SubmitDecision(&types.SubmitDecisionReq{
		Scenario: "pick a datastore",
		Options:  []string{"postgres", "redis"},
	})
	require.NoError(t, err)

	_, err = NewResolveDecisionLogic(ctx, svcCtx).ResolveDecision(&types.ResolveDecisionReq{
		ThreadID: submitted.Decision.ThreadID,
		Override: "mongodb",
	})
	require.ErrorIs(t, err, decision.ErrInvalidOverride)

	resolved, err := NewResolveDecisionLogic(ctx, svcCtx).ResolveDecision(&types.ResolveDecisionReq{
		ThreadID: submitted.Decision.ThreadID,
		Override: "redis",
	})
	require.NoError(t, err)
	require.Equal(t, "redis", resolved.Decision.HumanDecision)
	require.False(t, resolved.Decision.HumanApproved)

	// A second verdict on a completed thread is rejected.
	_, err = NewResolveDecisionLogic(ctx, svcCtx).ResolveDecision(&types.ResolveDecisionReq{
		ThreadID: submitted.Decision.ThreadID,
		Approved: true,
	})
	require.ErrorIs(t, err, decision.ErrAlreadyResolved)
}

func TestSubmitSurvivesClassifierFailure(t *testing.T) {
	svcCtx := newTestServiceContext(t, &stubClassifier{err: errors.New("model offline")}, "")

	submitted, err := NewSubmitDecisionLogic(context.Background(), svcCtx).SubmitDecision(&types.SubmitDecisionReq{
		Scenario: "pick one",
		Options:  []string{"a", "b"},
	})
	require.NoError(t, err)
	require.Equal(t, decision.PredictionFailed, submitted.Decision.ModelPrediction)
	require.Equal(t, string(decision.StatusAwaitingHumanReview), submitted.Decision.Status)
}

func TestChatDecisionStartsWorkflow(t *testing.T) {
	svcCtx := newTestServiceContext(t, &stubClassifier{},
		`{"scenario":"expand to europe or stay","options":["expand","stay"]}`)

	resp, err := NewChatDecisionLogic(context.Background(), svcCtx).ChatDecision(&types.ChatDecisionReq{
		SessionID: "s1",
		Message:   "should we expand to europe or stay put?",
	})
	require.NoError(t, err)
	require.True(t, resp.Parsed)
	require.NotNil(t, resp.Decision)
	require.Equal(t, string(decision.StatusAwaitingHumanReview), resp.Decision.Status)

	thread, ok := svcCtx.Sessions.Active("s1")
	require.True(t, ok)
	require.Equal(t, resp.Decision.ThreadID, thread)
}

func TestChatDecisionUnparseableMessage(t *testing.T) {
	svcCtx := newTestServiceContext(t, &stubClassifier{}, `not even json`)

	resp, err := NewChatDecisionLogic(context.Background(), svcCtx).ChatDecision(&types.ChatDecisionReq{
		Message: "hello there",
	})
	require.NoError(t, err)
	require.False(t, resp.Parsed)
	require.Nil(t, resp.Decision)
}

func TestGetDecisionUnknownThread(t *testing.T) {
	svcCtx := newTestServiceContext(t, &stubClassifier{}, "")

	_, err := NewGetDecisionLogic(context.Background(), svcCtx).GetDecision(&types.GetDecisionReq{
		ThreadID: "decision_unknown",
	})
	require.ErrorIs(t, err, decision.ErrThreadNotFound)
}
