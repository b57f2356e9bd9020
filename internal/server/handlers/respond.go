package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
	"github.com/mamadbah2/farmperf/internal/service/reporting"
)

// respondError maps service errors onto HTTP statuses. Only validation
// messages reach the client verbatim.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *metrics.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing to update or delete"})
	case errors.Is(err, reporting.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "spreadsheet export is not configured"})
	case errors.Is(err, repository.ErrUnavailable):
		logger.Error("data store unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, please retry later"})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": map[string]string{field: message}})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "id", "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parseWindow reads fromDate/toDate. A missing toDate means fromDate alone; a
// missing fromDate means the trailing week ending yesterday.
func parseWindow(c *gin.Context, now time.Time) (calendar.Window, bool) {
	fromRaw, toRaw := c.Query("fromDate"), c.Query("toDate")
	if fromRaw == "" && toRaw == "" {
		return calendar.TrailingWindow(calendar.PreviousDay(now), 7), true
	}

	from, err := calendar.ParseDate(fromRaw)
	if err != nil {
		badRequest(c, "fromDate", "fromDate must be YYYY-MM-DD")
		return calendar.Window{}, false
	}
	to := from
	if toRaw != "" {
		if to, err = calendar.ParseDate(toRaw); err != nil {
			badRequest(c, "toDate", "toDate must be YYYY-MM-DD")
			return calendar.Window{}, false
		}
	}
	return calendar.NewWindow(from, to), true
}

// optionalWindow is like parseWindow but leaves both bounds open when absent.
func optionalWindow(c *gin.Context, now time.Time) (calendar.Window, bool) {
	if c.Query("fromDate") == "" && c.Query("toDate") == "" {
		return calendar.Window{}, true
	}
	return parseWindow(c, now)
}
