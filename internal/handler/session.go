package handler

import (
	"errors"
	"net/http"

	"github.com/diego12655/cv-analyzer-pro/internal/models"
	"github.com/diego12655/cv-analyzer-pro/internal/service"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责访问码兑换和会话查询接口
type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: svc}
}

// currentSession 从 context 取出 AuthMiddleware 放入的会话
func currentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get("currentSession")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized")
		return nil, false
	}
	sess, ok := v.(*models.Session)
	if !ok || sess == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized")
		return nil, false
	}
	return sess, true
}

type validateCodeReq struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCode 兑换访问码，换取会话凭证。
// 已兑换过的码返回原会话的余额和新凭证（恢复会话），不报错。
func (h *SessionHandler) ValidateCode(c *gin.Context) {
	var req validateCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request")
		return
	}

	res, err := h.Service.Redeem(req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			// 对客户端来说这不是服务错误，只是码无效
			util.Success(c, util.Response{
				"valid":   false,
				"message": "Invalid code",
			})
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Redeem failed")
		return
	}

	msg := "Code accepted"
	if res.Recovered {
		msg = "Session recovered"
	}
	util.Success(c, util.Response{
		"valid":   true,
		"token":   res.Token,
		"credits": res.Session.CreditsRemaining,
		"message": msg,
	})
}

// SessionInfo 返回当前会话的余额信息
func (h *SessionHandler) SessionInfo(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	util.Success(c, util.Response{
		"session_id":        sess.ID,
		"credits_remaining": sess.CreditsRemaining,
	})
}
