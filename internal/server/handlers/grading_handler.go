package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
)

// GradingHandler serves the egg-grading run endpoints.
type GradingHandler struct {
	svc    EntryService
	now    func() time.Time
	logger *zap.Logger
}

// NewGradingHandler constructs the HTTP handler adapter.
func NewGradingHandler(svc EntryService, logger *zap.Logger) *GradingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingHandler{svc: svc, now: time.Now, logger: logger}
}

type gradingView struct {
	models.GradingSession
	InputDateLabel string `json:"inputDateLabel"`
}

func (h *GradingHandler) Preview(c *gin.Context) {
	var in models.RawGradingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"derived": h.svc.PreviewGrading(in)})
}

func (h *GradingHandler) Create(c *gin.Context) {
	var in models.RawGradingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid grading payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.SaveGrading(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *GradingHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in models.RawGradingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid grading payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.UpdateGrading(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *GradingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteGrading(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GradingHandler) List(c *gin.Context) {
	window, ok := optionalWindow(c, h.now())
	if !ok {
		return
	}
	rows, err := h.svc.ListGrading(c.Request.Context(), models.GradingFilter{From: window.From, To: window.To, ShortArea: c.Query("shortArea")})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]gradingView, 0, len(rows))
	for _, row := range rows {
		out = append(out, gradingView{GradingSession: row, InputDateLabel: calendar.FormatThaiDate(row.InputDate)})
	}
	c.JSON(http.StatusOK, out)
}
