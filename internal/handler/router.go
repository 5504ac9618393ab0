package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/visit-log-api/api/swagger"
	"github.com/noah-isme/visit-log-api/internal/service"
	"github.com/noah-isme/visit-log-api/pkg/config"
	"github.com/noah-isme/visit-log-api/pkg/logger"
	"github.com/noah-isme/visit-log-api/pkg/middleware/cors"
	"github.com/noah-isme/visit-log-api/pkg/middleware/requestid"
)

const readyTimeout = 5 * time.Second

// Handlers groups everything the router mounts.
type Handlers struct {
	Submission *SubmissionHandler
	Edit       *EditHandler
	Approval   *ApprovalHandler
	Batch      *BatchHandler
	Ledger     *LedgerHandler
	Health     *HealthHandler
	Metrics    *service.MetricsService
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(logger.GinMiddleware(log))
	r.Use(metricsMiddleware(h.Metrics))

	root := r.Group(cfg.APIPrefix)

	root.GET("/health", h.Health.Health)
	root.GET("/ready", h.Health.Ready)
	root.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	root.POST("/submissions", h.Submission.Submit)
	root.POST("/edits", h.Edit.HandleEdit)
	root.GET("/approvals", h.Approval.ApprovePage)
	root.POST("/approvals", h.Approval.Approve)
	root.POST("/confirmations/run", h.Batch.RunConfirmations)
	root.POST("/digests/pending/run", h.Batch.RunPendingDigest)
	root.GET("/ledgers/:employee/:year/export", h.Ledger.Export)

	if cfg.Env != config.EnvProduction {
		root.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func metricsMiddleware(m *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
