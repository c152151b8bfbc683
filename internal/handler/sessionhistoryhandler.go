package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"psyai-api/internal/logic"
	"psyai-api/internal/svc"
	"psyai-api/internal/types"
)

func SessionHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SessionHistoryReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewSessionHistoryLogic(r.Context(), svcCtx)
		resp, err := l.SessionHistory(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
