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
	"github.com/mamadbah2/farmperf/internal/service/entry"
)

// EntryService is the entry workflow used by the biogas and grading handlers.
type EntryService interface {
	PreviousCounters(ctx context.Context, key models.CounterKey) (models.Counters, error)
	PreviewBiogas(ctx context.Context, in models.RawBiogasInput) (models.DerivedBiogasMetrics, error)
	SaveBiogas(ctx context.Context, in models.RawBiogasInput) (entry.BiogasResult, error)
	UpdateBiogas(ctx context.Context, id uint, in models.RawBiogasInput) (entry.BiogasResult, error)
	DeleteBiogas(ctx context.Context, id uint) error
	ListBiogas(ctx context.Context, filter models.BiogasFilter) ([]models.MeterReading, error)

	PreviewGrading(in models.RawGradingInput) models.DerivedGradingMetrics
	SaveGrading(ctx context.Context, in models.RawGradingInput) (entry.GradingResult, error)
	UpdateGrading(ctx context.Context, id uint, in models.RawGradingInput) (entry.GradingResult, error)
	DeleteGrading(ctx context.Context, id uint) error
	ListGrading(ctx context.Context, filter models.GradingFilter) ([]models.GradingSession, error)
}

// BiogasHandler serves the biogas meter reading endpoints.
type BiogasHandler struct {
	svc    EntryService
	now    func() time.Time
	logger *zap.Logger
}

// NewBiogasHandler constructs the HTTP handler adapter.
func NewBiogasHandler(svc EntryService, logger *zap.Logger) *BiogasHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BiogasHandler{svc: svc, now: time.Now, logger: logger}
}

type biogasView struct {
	models.MeterReading
	SaveDateLabel string `json:"saveDateLabel"`
}

// Previous returns the prior day's closing counters of a machine.
func (h *BiogasHandler) Previous(c *gin.Context) {
	date, err := calendar.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, "date", "date must be YYYY-MM-DD")
		return
	}
	machineType, err := strconv.ParseFloat(c.Query("machineType"), 64)
	if err != nil {
		badRequest(c, "machineType", "machineType must be a number")
		return
	}
	machineNo := 1
	if raw := c.Query("machineNo"); raw != "" {
		if machineNo, err = strconv.Atoi(raw); err != nil {
			badRequest(c, "machineNo", "machineNo must be an integer")
			return
		}
	}
	if c.Query("farm") == "" {
		badRequest(c, "farm", "farm is required")
		return
	}

	counters, err := h.svc.PreviousCounters(c.Request.Context(), models.CounterKey{
		Farm:        c.Query("farm"),
		MachineType: machineType,
		MachineNo:   machineNo,
		Date:        date,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, counters)
}

// Preview computes derived fields for a draft without saving it.
func (h *BiogasHandler) Preview(c *gin.Context) {
	var in models.RawBiogasInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid biogas draft", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	derived, err := h.svc.PreviewBiogas(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"derived": derived, "productValueDisplay": derived.DisplayValue()})
}

func (h *BiogasHandler) Create(c *gin.Context) {
	var in models.RawBiogasInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid biogas payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.SaveBiogas(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *BiogasHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in models.RawBiogasInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid biogas payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.UpdateBiogas(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BiogasHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBiogas(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BiogasHandler) List(c *gin.Context) {
	window, ok := optionalWindow(c, h.now())
	if !ok {
		return
	}
	rows, err := h.svc.ListBiogas(c.Request.Context(), models.BiogasFilter{From: window.From, To: window.To, Farm: c.Query("farm")})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]biogasView, 0, len(rows))
	for _, row := range rows {
		out = append(out, biogasView{MeterReading: row, SaveDateLabel: calendar.FormatThaiDate(row.SaveDate)})
	}
	c.JSON(http.StatusOK, out)
}
