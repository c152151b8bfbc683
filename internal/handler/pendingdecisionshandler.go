package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"psyai-api/internal/logic"
	"psyai-api/internal/svc"
)

func PendingDecisionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewPendingDecisionsLogic(r.Context(), svcCtx)
		resp, err := l.PendingDecisions()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
