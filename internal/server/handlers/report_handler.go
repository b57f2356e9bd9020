package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/reporting"
)

// ReportService produces the aggregated report views.
type ReportService interface {
	BiogasReport(ctx context.Context, window calendar.Window, period reporting.Period) (models.BiogasReport, error)
	BiogasDaily(ctx context.Context, window calendar.Window, farm string) ([]models.BiogasBucket, error)
	CompareBiogas(ctx context.Context, window calendar.Window) (models.Comparison, error)
	GradingReport(ctx context.Context, window calendar.Window, period reporting.Period) (models.GradingReport, error)
	BiogasCoverage(ctx context.Context, window calendar.Window) (models.CoverageMatrix, error)
	GradingCoverage(ctx context.Context, window calendar.Window) (models.CoverageMatrix, error)
	EnergyUsage(ctx context.Context, month string) ([]models.EnergyUsage, error)
	WaterSummary(ctx context.Context, farm, parameter string) ([]models.WaterSummary, error)
	ExportBiogas(ctx context.Context, window calendar.Window) (int, error)
	FarmEnergyDaily(ctx context.Context, window calendar.Window, farm, energyType string) ([]models.EnergyPoint, error)
	GHGReport(ctx context.Context, farm, source string) ([]models.GHGSummary, error)
	GHGFarms(ctx context.Context) ([]string, error)
	GHGSources(ctx context.Context) ([]string, error)
}

const defaultSnapshotLimit = 10

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	svc       ReportService
	snapshots repository.SnapshotStore
	now       func() time.Time
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter. snapshots may be nil
// when no archive is configured.
func NewReportHandler(svc ReportService, snapshots repository.SnapshotStore, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, snapshots: snapshots, now: time.Now, logger: logger}
}

func (h *ReportHandler) Biogas(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.svc.BiogasReport(c.Request.Context(), window, period)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// BiogasDaily returns the per-day series behind the biogas graph.
func (h *ReportHandler) BiogasDaily(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}

	buckets, err := h.svc.BiogasDaily(c.Request.Context(), window, c.Query("farm"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": calendar.DayKey(window.From), "to": calendar.DayKey(window.To), "buckets": buckets})
}

func (h *ReportHandler) CompareBiogas(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}

	comparison, err := h.svc.CompareBiogas(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (h *ReportHandler) Grading(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.svc.GradingReport(c.Request.Context(), window, period)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) BiogasCoverage(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}
	matrix, err := h.svc.BiogasCoverage(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

func (h *ReportHandler) GradingCoverage(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}
	matrix, err := h.svc.GradingCoverage(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

func (h *ReportHandler) Energy(c *gin.Context) {
	usage, err := h.svc.EnergyUsage(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

// EnergyDaily returns one farm's daily series of a single energy source.
// Both window bounds are required.
func (h *ReportHandler) EnergyDaily(c *gin.Context) {
	if c.Query("fromDate") == "" || c.Query("toDate") == "" {
		badRequest(c, "fromDate", "fromDate and toDate are required")
		return
	}
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}

	points, err := h.svc.FarmEnergyDaily(c.Request.Context(), window, c.Query("farm"), c.Query("energyType"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *ReportHandler) GHG(c *gin.Context) {
	summaries, err := h.svc.GHGReport(c.Request.Context(), c.Query("farm"), c.Query("source"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ReportHandler) GHGFarms(c *gin.Context)   { respondList(c, h.logger, h.svc.GHGFarms) }
func (h *ReportHandler) GHGSources(c *gin.Context) { respondList(c, h.logger, h.svc.GHGSources) }

func (h *ReportHandler) Water(c *gin.Context) {
	summaries, err := h.svc.WaterSummary(c.Request.Context(), c.Query("farm"), c.Query("parameter"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// ExportBiogas appends the per-farm report of the window to the spreadsheet.
func (h *ReportHandler) ExportBiogas(c *gin.Context) {
	window, ok := parseWindow(c, h.now())
	if !ok {
		return
	}

	written, err := h.svc.ExportBiogas(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("biogas report exported", zap.Int("rows", written))
	c.JSON(http.StatusOK, gin.H{"rows": written})
}

// Snapshots lists archived weekly summaries, newest first.
func (h *ReportHandler) Snapshots(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive is not configured"})
		return
	}

	limit := int64(defaultSnapshotLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			badRequest(c, "limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	kind := c.DefaultQuery("kind", models.SnapshotKindWeeklyBiogas)
	snapshots, err := h.snapshots.ListSnapshots(c.Request.Context(), kind, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func parsePeriod(c *gin.Context) (reporting.Period, bool) {
	switch c.DefaultQuery("bucket", "none") {
	case "none":
		return reporting.PeriodNone, true
	case "month":
		return reporting.PeriodMonth, true
	case "day":
		return reporting.PeriodDay, true
	default:
		badRequest(c, "bucket", "bucket must be none, month or day")
		return reporting.PeriodNone, false
	}
}
