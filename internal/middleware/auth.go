package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diego12655/cv-analyzer-pro/internal/service"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验会话凭证，并在 context 里放入当前会话。
// 凭证只是能力令牌，会话记录才是最终依据：凭证有效但会话不存在同样按未认证处理。
func AuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL 查询参数 ?token=xxx（用于下载等无法自定义 Header 的场景）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized")
			c.Abort()
			return
		}

		sess, err := sessions.Authenticate(tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid or expired token")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Session lookup failed")
			}
			c.Abort()
			return
		}

		c.Set("currentSession", sess)
		c.Next()
	}
}
