// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"psyai-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/v1/decisions",
				Handler: SubmitDecisionHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/v1/decisions/chat",
				Handler: ChatDecisionHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/v1/decisions/pending",
				Handler: PendingDecisionsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/v1/decisions/:threadId",
				Handler: GetDecisionHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/v1/decisions/:threadId/resolve",
				Handler: ResolveDecisionHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/v1/sessions/:sessionId/history",
				Handler: SessionHistoryHandler(serverCtx),
			},
		},
	)
}
