package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/domain/models"
)

// CatalogService serves the dropdown and document reference data.
type CatalogService interface {
	Farms(ctx context.Context) ([]models.Farm, error)
	Machines(ctx context.Context) ([]models.Machine, error)
	Dropdown(ctx context.Context) (models.DropdownData, error)
	Areas(ctx context.Context) ([]models.Area, error)
	Approvers(ctx context.Context) ([]models.Approver, error)
	CompanyFarms(ctx context.Context) ([]models.CompanyFarm, error)
}

type LookupHandler struct {
	svc    CatalogService
	logger *zap.Logger
}

func NewLookupHandler(svc CatalogService, logger *zap.Logger) *LookupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupHandler{svc: svc, logger: logger}
}

func (h *LookupHandler) Farms(c *gin.Context)        { respondList(c, h.logger, h.svc.Farms) }
func (h *LookupHandler) Machines(c *gin.Context)     { respondList(c, h.logger, h.svc.Machines) }
func (h *LookupHandler) Dropdown(c *gin.Context)     { respondList(c, h.logger, h.svc.Dropdown) }
func (h *LookupHandler) Areas(c *gin.Context)        { respondList(c, h.logger, h.svc.Areas) }
func (h *LookupHandler) Approvers(c *gin.Context)    { respondList(c, h.logger, h.svc.Approvers) }
func (h *LookupHandler) CompanyFarms(c *gin.Context) { respondList(c, h.logger, h.svc.CompanyFarms) }

func respondList[T any](c *gin.Context, logger *zap.Logger, fetch func(context.Context) (T, error)) {
	out, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
