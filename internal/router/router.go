package router

import (
	"net/http"

	"github.com/diego12655/cv-analyzer-pro/internal/config"
	"github.com/diego12655/cv-analyzer-pro/internal/extract"
	"github.com/diego12655/cv-analyzer-pro/internal/handler"
	"github.com/diego12655/cv-analyzer-pro/internal/middleware"
	"github.com/diego12655/cv-analyzer-pro/internal/scorer"
	"github.com/diego12655/cv-analyzer-pro/internal/service"
	"github.com/diego12655/cv-analyzer-pro/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine, CORS and API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, sc scorer.Scorer) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS for the hosted frontend
	origins := cfg.CORS.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: true,
	}))

	// liveness
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "CV Analyzer B2B Engine Running",
			"version": "3.1.0",
		})
	})

	sessionSvc := service.NewSessionService(db, cfg.JWT.Secret, cfg.JWT.ExpireDays)
	codeSvc := service.NewCodeService(store.NewCodeStore(db))

	// ====== API ======
	api := r.Group("/api")

	sessionHandler := handler.NewSessionHandler(sessionSvc)
	api.POST("/validate-code", sessionHandler.ValidateCode)

	adminHandler := handler.NewAdminHandler(codeSvc, cfg.Admin.Key)
	api.POST("/admin/generate-codes", adminHandler.GenerateCodes)

	// 需要有效会话凭证的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(sessionSvc),
		middleware.RequestLogMiddleware(db),
	)

	protected.GET("/session-info", sessionHandler.SessionInfo)

	analyzeHandler := handler.NewAnalyzeHandler(sessionSvc, sc, extract.NewFileExtractor(), cfg.Upload)
	protected.POST("/analyze-batch", analyzeHandler.AnalyzeBatch)

	exportHandler := handler.NewExportHandler()
	protected.POST("/export-excel", exportHandler.ExportExcel)

	historyHandler := handler.NewHistoryHandler(store.NewSessionStore(db))
	protected.GET("/history", historyHandler.ListAnalyses)

	return r
}
