package logic

import (
	"psyai-api/internal/types"
	"psyai-api/pkg/decision"
)

func viewFromRecord(rec *decision.Record) types.DecisionView {
	if rec == nil {
		return types.DecisionView{}
	}
	return types.DecisionView{
		ThreadID:        rec.ThreadID,
		Scenario:        rec.Scenario,
		Options:         append([]string(nil), rec.Options...),
		ModelPrediction: rec.ModelPrediction,
		Confidence:      rec.Confidence,
		HumanDecision:   rec.HumanDecision,
		HumanApproved:   rec.HumanApproved,
		Timestamp:       rec.Timestamp,
		Status:          string(rec.Status),
	}
}
