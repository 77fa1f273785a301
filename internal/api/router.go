package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Engine *gin.Engine
}

// MQChecker reports broker connectivity for the readiness probe.
// *pkg/mq.Publisher satisfies it.
type MQChecker interface {
	IsConnected() bool
}

func NewRouter(
	authHandler *AuthHandler,
	emailHandler *EmailHandler,
	ingestHandler *IngestHandler,
	responseHandler *ResponseHandler,
	analyticsHandler *AnalyticsHandler,
	adminHandler *AdminHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	mqCheck MQChecker,
) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware())
	r.Use(MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}

		if mqCheck != nil && !mqCheck.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "AI-Powered Email Assistant API"})
	})

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/api")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/emails", emailHandler.GetEmails)
		auth.GET("/analytics", analyticsHandler.GetAnalytics)
		auth.POST("/load-emails", ingestHandler.LoadEmails)
		auth.POST("/upload-csv", ingestHandler.UploadCSV)

		auth.GET("/emails/:id/response", responseHandler.GetResponse)
		auth.POST("/emails/:id/generate-response", responseHandler.Generate)
		auth.POST("/emails/:id/resolve", emailHandler.Resolve)
		auth.POST("/emails/:id/send", responseHandler.Send)
		auth.POST("/emails/:id/save-draft", responseHandler.SaveDraft)

		auth.POST("/clear-database", AdminOnly(), emailHandler.ClearDatabase)

		auth.POST("/admin/outbox/:id/replay", AdminOnly(), adminHandler.ReplayOutboxEvent)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
