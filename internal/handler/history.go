package handler

import (
	"net/http"

	"github.com/diego12655/cv-analyzer-pro/internal/store"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/gin-gonic/gin"
)

// HistoryHandler 负责查询会话的历史评分记录
type HistoryHandler struct {
	Sessions *store.SessionStore
}

func NewHistoryHandler(sessions *store.SessionStore) *HistoryHandler {
	return &HistoryHandler{Sessions: sessions}
}

// ListAnalyses 返回当前会话的全部评分记录，按时间倒序
func (h *HistoryHandler) ListAnalyses(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	analyses, err := h.Sessions.ListAnalyses(sess.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Query failed")
		return
	}

	items := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, gin.H{
			"id":             a.ID,
			"candidate_name": a.CandidateName,
			"overall_score":  a.OverallScore,
			"created_at":     a.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"analyses": items,
		"total":    len(items),
	})
}
