package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
)

var (
	_ repository.LookupStore = (*Store)(nil)
	_ repository.EnergyStore = (*Store)(nil)
	_ repository.WaterStore  = (*Store)(nil)
	_ repository.GHGStore    = (*Store)(nil)
)

func (s *Store) Farms(ctx context.Context) ([]models.Farm, error) {
	var rows []models.Farm
	if err := s.db.WithContext(ctx).Order(asc("farmShort")).Find(&rows).Error; err != nil {
		return nil, classify("list farms", err)
	}
	return rows, nil
}

func (s *Store) Machines(ctx context.Context) ([]models.Machine, error) {
	var rows []models.Machine
	if err := s.db.WithContext(ctx).Order(asc("machineType")).Find(&rows).Error; err != nil {
		return nil, classify("list machines", err)
	}
	return rows, nil
}

func (s *Store) Areas(ctx context.Context) ([]models.Area, error) {
	var rows []models.Area
	if err := s.db.WithContext(ctx).Order(asc("areaShort")).Find(&rows).Error; err != nil {
		return nil, classify("list areas", err)
	}
	return rows, nil
}

func (s *Store) Approvers(ctx context.Context) ([]models.Approver, error) {
	var rows []models.Approver
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, classify("list approvers", err)
	}
	return rows, nil
}

func (s *Store) CompanyFarms(ctx context.Context) ([]models.CompanyFarm, error) {
	var rows []models.CompanyFarm
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, classify("list company farms", err)
	}
	return rows, nil
}

// EnergyRows loads the three daily energy tables for the window. Monthly
// bucketing happens in the reporting service so it works on every driver.
func (s *Store) EnergyRows(ctx context.Context, window repository.EnergyWindow) (models.EnergyRows, error) {
	var out models.EnergyRows
	db := s.db.WithContext(ctx)

	scope := func(q *gorm.DB) *gorm.DB {
		q = dateRange(q, "dataDate", window.From, window.To)
		if window.Farm != "" {
			q = q.Where(eq("farm", window.Farm))
		}
		return q.Order(asc("dataDate"))
	}

	if window.Includes(repository.SourceBiogas) {
		if err := scope(db.Model(&models.BiogasEnergyRow{})).Find(&out.Biogas).Error; err != nil {
			return models.EnergyRows{}, classify("load biogas energy", err)
		}
	}
	if window.Includes(repository.SourceSolar) {
		if err := scope(db.Model(&models.SolarEnergyRow{})).Find(&out.Solar).Error; err != nil {
			return models.EnergyRows{}, classify("load solar energy", err)
		}
	}
	if window.Includes(repository.SourcePEA) {
		if err := scope(db.Model(&models.GridEnergyRow{})).Find(&out.Grid).Error; err != nil {
			return models.EnergyRows{}, classify("load grid energy", err)
		}
	}
	return out, nil
}

func (s *Store) WaterSamples(ctx context.Context, farm string) ([]models.WaterSample, error) {
	var rows []models.WaterSample
	q := s.db.WithContext(ctx).Model(&models.WaterSample{})
	if farm != "" {
		q = q.Where(eq("farm", farm))
	}
	if err := q.Order(asc("dataDate")).Order(asc("pool")).Find(&rows).Error; err != nil {
		return nil, classify("load water samples", err)
	}
	return rows, nil
}

// GHGRows returns the greenhouse-gas records of one farm in date order.
func (s *Store) GHGRows(ctx context.Context, farm string) ([]models.GHGRow, error) {
	var rows []models.GHGRow
	err := s.db.WithContext(ctx).
		Where(eq("farm", farm)).
		Order(asc("dataDate")).Order(asc("source")).
		Find(&rows).Error
	if err != nil {
		return nil, classify("load ghg rows", err)
	}
	return rows, nil
}

func (s *Store) GHGFarms(ctx context.Context) ([]string, error) {
	return s.distinctGHG(ctx, "farm")
}

func (s *Store) GHGSources(ctx context.Context) ([]string, error) {
	return s.distinctGHG(ctx, "source")
}

func (s *Store) distinctGHG(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).Model(&models.GHGRow{}).
		Distinct().
		Order(asc(column)).
		Pluck(column, &values).Error
	if err != nil {
		return nil, classify("list ghg "+column, err)
	}
	return values, nil
}
