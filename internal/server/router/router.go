package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/observability"
	"github.com/mamadbah2/farmperf/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Biogas  *handlers.BiogasHandler
	Grading *handlers.GradingHandler
	Reports *handlers.ReportHandler
	Lookups *handlers.LookupHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, m *observability.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(m.Middleware())

	api := r.Group("/api")

	biogas := api.Group("/biogas")
	biogas.GET("", h.Biogas.List)
	biogas.GET("/previous", h.Biogas.Previous)
	biogas.POST("/preview", h.Biogas.Preview)
	biogas.POST("", h.Biogas.Create)
	biogas.PUT("/:id", h.Biogas.Update)
	biogas.DELETE("/:id", h.Biogas.Delete)

	grading := api.Group("/grading")
	grading.GET("", h.Grading.List)
	grading.POST("/preview", h.Grading.Preview)
	grading.POST("", h.Grading.Create)
	grading.PUT("/:id", h.Grading.Update)
	grading.DELETE("/:id", h.Grading.Delete)

	reports := api.Group("/reports")
	reports.GET("/biogas", h.Reports.Biogas)
	reports.GET("/biogas/daily", h.Reports.BiogasDaily)
	reports.GET("/biogas/compare", h.Reports.CompareBiogas)
	reports.GET("/biogas/coverage", h.Reports.BiogasCoverage)
	reports.POST("/biogas/export", h.Reports.ExportBiogas)
	reports.GET("/grading", h.Reports.Grading)
	reports.GET("/grading/coverage", h.Reports.GradingCoverage)
	reports.GET("/energy", h.Reports.Energy)
	reports.GET("/energy/daily", h.Reports.EnergyDaily)
	reports.GET("/ghg", h.Reports.GHG)
	reports.GET("/water", h.Reports.Water)
	reports.GET("/snapshots", h.Reports.Snapshots)

	lookups := api.Group("/lookups")
	lookups.GET("/farms", h.Lookups.Farms)
	lookups.GET("/machines", h.Lookups.Machines)
	lookups.GET("/dropdown", h.Lookups.Dropdown)
	lookups.GET("/areas", h.Lookups.Areas)
	lookups.GET("/approvers", h.Lookups.Approvers)
	lookups.GET("/company-farms", h.Lookups.CompanyFarms)
	lookups.GET("/ghg-farms", h.Reports.GHGFarms)
	lookups.GET("/ghg-sources", h.Reports.GHGSources)

	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// requestIDMiddleware reuses an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
