package entry

import (
	"context"
	"fmt"
	"sort"

	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

// Catalog serves the reference data behind the entry dropdowns and documents.
type Catalog struct {
	store repository.LookupStore
	table metrics.Table
}

// NewCatalog constructs a Catalog.
func NewCatalog(store repository.LookupStore, table metrics.Table) *Catalog {
	return &Catalog{store: store, table: table}
}

// Farms returns biogas farms in canonical order.
func (c *Catalog) Farms(ctx context.Context) ([]models.Farm, error) {
	farms, err := c.store.Farms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list farms: %w", err)
	}
	sort.SliceStable(farms, func(i, j int) bool {
		return c.table.FarmRank(farms[i].FarmShort) < c.table.FarmRank(farms[j].FarmShort)
	})
	return farms, nil
}

func (c *Catalog) Machines(ctx context.Context) ([]models.Machine, error) {
	machines, err := c.store.Machines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return machines, nil
}

// Dropdown bundles farms and machines for the biogas entry form.
func (c *Catalog) Dropdown(ctx context.Context) (models.DropdownData, error) {
	farms, err := c.Farms(ctx)
	if err != nil {
		return models.DropdownData{}, err
	}
	machines, err := c.Machines(ctx)
	if err != nil {
		return models.DropdownData{}, err
	}
	return models.DropdownData{Farms: farms, Machines: machines}, nil
}

// Areas returns grading sites in canonical order.
func (c *Catalog) Areas(ctx context.Context) ([]models.Area, error) {
	areas, err := c.store.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	sort.SliceStable(areas, func(i, j int) bool {
		return c.table.FarmRank(areas[i].AreaShort) < c.table.FarmRank(areas[j].AreaShort)
	})
	return areas, nil
}

func (c *Catalog) Approvers(ctx context.Context) ([]models.Approver, error) {
	approvers, err := c.store.Approvers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}
	return approvers, nil
}

func (c *Catalog) CompanyFarms(ctx context.Context) ([]models.CompanyFarm, error) {
	farms, err := c.store.CompanyFarms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list company farms: %w", err)
	}
	return farms, nil
}
