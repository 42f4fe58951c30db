package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/diego12655/cv-analyzer-pro/internal/service"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责访问码的后台生成接口。
// 用 X-Admin-Key 共享密钥做精确匹配鉴权，不走会话体系。
type AdminHandler struct {
	Service  *service.CodeService
	AdminKey string
}

func NewAdminHandler(svc *service.CodeService, adminKey string) *AdminHandler {
	return &AdminHandler{Service: svc, AdminKey: adminKey}
}

type generateCodesReq struct {
	Quantity int `json:"quantity"`
	Credits  int `json:"credits"`
}

// GenerateCodes 批量生成访问码
func (h *AdminHandler) GenerateCodes(c *gin.Context) {
	key := c.GetHeader("X-Admin-Key")
	if h.AdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.AdminKey)) != 1 {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Access denied: invalid admin key")
		return
	}

	req := generateCodesReq{Quantity: 1, Credits: 5}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request")
			return
		}
	}

	codes, err := h.Service.GenerateCodes(req.Quantity, req.Credits)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	util.Success(c, util.Response{
		"status": "success",
		"codes":  codes,
	})
}
