package middleware

import (
	"github.com/diego12655/cv-analyzer-pro/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequestLogMiddleware 记录已认证请求的访问日志
func RequestLogMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 只记录已认证会话的操作
		v, ok := c.Get("currentSession")
		if !ok {
			return
		}
		sess, ok := v.(*models.Session)
		if !ok || sess == nil {
			return
		}

		entry := models.RequestLog{
			SessionID: sess.ID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}
