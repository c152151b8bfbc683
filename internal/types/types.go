// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

type DecisionView struct {
	ThreadID        string   `json:"thread_id"`
	Scenario        string   `json:"scenario"`
	Options         []string `json:"options"`
	ModelPrediction string   `json:"model_prediction"`
	Confidence      float64  `json:"confidence"`
	HumanDecision   string   `json:"human_decision,omitempty"`
	HumanApproved   bool     `json:"human_approved"`
	Timestamp       string   `json:"timestamp"`
	Status          string   `json:"status"`
}

type SubmitDecisionReq struct {
	SessionID string   `json:"session_id,optional"`
	Scenario  string   `json:"scenario"`
	Options   []string `json:"options"`
}

type SubmitDecisionResp struct {
	Decision DecisionView `json:"decision"`
}

type ChatDecisionReq struct {
	SessionID string `json:"session_id,optional"`
	Message   string `json:"message"`
}

type ChatDecisionResp struct {
	Parsed   bool          `json:"parsed"`
	Scenario string        `json:"scenario,omitempty"`
	Options  []string      `json:"options,omitempty"`
	Decision *DecisionView `json:"decision,omitempty"`
}

type PendingDecisionsResp struct {
	Decisions []DecisionView `json:"decisions"`
}

type GetDecisionReq struct {
	ThreadID string `path:"threadId"`
}

type GetDecisionResp struct {
	Decision DecisionView `json:"decision"`
}

type ResolveDecisionReq struct {
	ThreadID  string `path:"threadId"`
	SessionID string `json:"session_id,optional"`
	Approved  bool   `json:"approved"`
	Override  string `json:"override,optional"`
}

type ResolveDecisionResp struct {
	Decision DecisionView `json:"decision"`
}

type SessionHistoryReq struct {
	SessionID string `path:"sessionId"`
}

type SessionHistoryEntry struct {
	ThreadID string `json:"thread_id"`
	Scenario string `json:"scenario"`
	Status   string `json:"status"`
	Decision string `json:"decision,omitempty"`
	At       string `json:"at"`
}

type SessionHistoryResp struct {
	SessionID string                `json:"session_id"`
	Entries   []SessionHistoryEntry `json:"entries"`
}
