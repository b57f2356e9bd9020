package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/farmperf/internal/domain/models"
)

var (
	// ErrNotFound is returned when an update or delete references a row that
	// does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable wraps connectivity and query failures of a backing store.
	ErrUnavailable = errors.New("data store unavailable")
)

// BiogasStore persists generator meter readings.
type BiogasStore interface {
	List(ctx context.Context, filter models.BiogasFilter) ([]models.MeterReading, error)
	Get(ctx context.Context, id uint) (models.MeterReading, error)
	// PreviousCounters returns the closing counters recorded for the machine
	// on the day before key.Date. ok is false when there is no such row.
	PreviousCounters(ctx context.Context, key models.CounterKey) (counters models.Counters, ok bool, err error)
	Insert(ctx context.Context, row *models.MeterReading) error
	Update(ctx context.Context, row *models.MeterReading) error
	Delete(ctx context.Context, id uint) error
}

// GradingStore persists egg-grading runs.
type GradingStore interface {
	List(ctx context.Context, filter models.GradingFilter) ([]models.GradingSession, error)
	Get(ctx context.Context, id uint) (models.GradingSession, error)
	Insert(ctx context.Context, row *models.GradingSession) error
	Update(ctx context.Context, row *models.GradingSession) error
	Delete(ctx context.Context, id uint) error
}

// LookupStore serves dropdown and document reference data.
type LookupStore interface {
	Farms(ctx context.Context) ([]models.Farm, error)
	Machines(ctx context.Context) ([]models.Machine, error)
	Areas(ctx context.Context) ([]models.Area, error)
	Approvers(ctx context.Context) ([]models.Approver, error)
	CompanyFarms(ctx context.Context) ([]models.CompanyFarm, error)
}

// EnergyStore reads the daily energy tables.
type EnergyStore interface {
	EnergyRows(ctx context.Context, window EnergyWindow) (models.EnergyRows, error)
}

// EnergyWindow limits energy rows to a date range; zero bounds are open.
// Sources restricts which tables are read; empty reads all of them.
type EnergyWindow struct {
	From    time.Time
	To      time.Time
	Farm    string
	Sources []string
}

// Energy sources as stored in the daily energy tables.
const (
	SourceBiogas = "Biogas"
	SourceSolar  = "Solar"
	SourcePEA    = "PEA"
)

// Includes reports whether source should be loaded.
func (w EnergyWindow) Includes(source string) bool {
	if len(w.Sources) == 0 {
		return true
	}
	for _, s := range w.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// GHGStore reads the greenhouse-gas records.
type GHGStore interface {
	GHGRows(ctx context.Context, farm string) ([]models.GHGRow, error)
	GHGFarms(ctx context.Context) ([]string, error)
	GHGSources(ctx context.Context) ([]string, error)
}

// WaterStore reads water-quality samples.
type WaterStore interface {
	WaterSamples(ctx context.Context, farm string) ([]models.WaterSample, error)
}

// SnapshotStore archives generated report snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
	ListSnapshots(ctx context.Context, kind string, limit int64) ([]models.ReportSnapshot, error)
}
