package delivery

import (
	"time"

	"adsboard/internal/delivery/middleware"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(30 * time.Second))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		bms := v1.Group("/business-managers")
		{
			bms.POST("", r.handlers.RegisterBusinessManager)
			bms.GET("", r.handlers.ListBusinessManagers)
			bms.DELETE("/:bm_id", r.handlers.DeleteBusinessManager)
		}

		v1.GET("/ad-accounts", r.handlers.ListAdAccounts)
		v1.GET("/campaigns", r.handlers.ListCampaigns)
		v1.GET("/ads", r.handlers.ListAds)

		insights := v1.Group("/insights")
		{
			insights.GET("/account", r.handlers.AccountInsights)
			insights.GET("/campaign", r.handlers.CampaignInsights)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("", r.handlers.ListReports)
			reports.POST("/pdf", r.handlers.GeneratePDF)
			reports.GET("/:id", r.handlers.GetReport)
		}

		shares := v1.Group("/share-links")
		{
			shares.POST("", r.handlers.CreateShareLink)
			shares.GET("/validate", r.handlers.ValidateShareLink)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
