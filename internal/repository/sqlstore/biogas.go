package sqlstore

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
)

// BiogasStore is the gorm-backed repository.BiogasStore.
type BiogasStore struct{ *Store }

var _ repository.BiogasStore = BiogasStore{}

// Biogas returns the meter reading repository.
func (s *Store) Biogas() BiogasStore { return BiogasStore{s} }

// List returns readings inside the filter window ordered by date.
func (r BiogasStore) List(ctx context.Context, filter models.BiogasFilter) ([]models.MeterReading, error) {
	q := r.db.WithContext(ctx).Model(&models.MeterReading{})
	q = dateRange(q, "saveDate", filter.From, filter.To)
	if filter.Farm != "" {
		q = q.Where(eq("farm", filter.Farm))
	}

	var rows []models.MeterReading
	if err := q.Order(asc("saveDate")).Order(asc("inputId")).Find(&rows).Error; err != nil {
		return nil, classify("list biogas readings", err)
	}
	return rows, nil
}

// Get loads one reading by id.
func (r BiogasStore) Get(ctx context.Context, id uint) (models.MeterReading, error) {
	var row models.MeterReading
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return models.MeterReading{}, classify("get biogas reading", err)
	}
	return row, nil
}

// PreviousCounters looks up the machine's reading of the previous day.
func (r BiogasStore) PreviousCounters(ctx context.Context, key models.CounterKey) (models.Counters, bool, error) {
	prev := calendar.PreviousDay(key.Date)

	var row models.MeterReading
	err := r.db.WithContext(ctx).
		Where(clause.And(
			eq("farm", key.Farm),
			eq("machineType", key.MachineType),
			eq("machineNo", key.MachineNo),
			eq("saveDate", prev),
		)).
		Order(desc("inputId")).
		Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return models.Counters{}, false, nil
		}
		return models.Counters{}, false, classify("previous biogas counters", err)
	}
	return models.Counters{HrAfter: row.HrAfter, KwAfter: row.KwAfter}, true, nil
}

// Insert stores a new reading and fills its id.
func (r BiogasStore) Insert(ctx context.Context, row *models.MeterReading) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return classify("insert biogas reading", err)
	}
	r.logger.Debug("biogas reading inserted", zap.Uint("id", row.InputID), zap.String("farm", row.Farm))
	return nil
}

// Update overwrites every column of an existing reading.
func (r BiogasStore) Update(ctx context.Context, row *models.MeterReading) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MeterReading
		if err := tx.Select("inputId").First(&existing, row.InputID).Error; err != nil {
			return err
		}
		return tx.Save(row).Error
	})
	return classify("update biogas reading", err)
}

// Delete removes a reading; a missing id yields repository.ErrNotFound.
func (r BiogasStore) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.MeterReading{}, id)
	if res.Error != nil {
		return classify("delete biogas reading", res.Error)
	}
	if res.RowsAffected == 0 {
		return classify("delete biogas reading", gorm.ErrRecordNotFound)
	}
	return nil
}
