package sqlstore

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
)

// GradingStore is the gorm-backed repository.GradingStore.
type GradingStore struct{ *Store }

var _ repository.GradingStore = GradingStore{}

// Grading returns the grading run repository.
func (s *Store) Grading() GradingStore { return GradingStore{s} }

func (r GradingStore) List(ctx context.Context, filter models.GradingFilter) ([]models.GradingSession, error) {
	q := r.db.WithContext(ctx).Model(&models.GradingSession{})
	q = dateRange(q, "inputDate", filter.From, filter.To)
	if filter.ShortArea != "" {
		q = q.Where(eq("shortArea", filter.ShortArea))
	}

	var rows []models.GradingSession
	if err := q.Order(asc("inputDate")).Order(asc("inputId")).Find(&rows).Error; err != nil {
		return nil, classify("list grading runs", err)
	}
	return rows, nil
}

func (r GradingStore) Get(ctx context.Context, id uint) (models.GradingSession, error) {
	var row models.GradingSession
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return models.GradingSession{}, classify("get grading run", err)
	}
	return row, nil
}

func (r GradingStore) Insert(ctx context.Context, row *models.GradingSession) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return classify("insert grading run", err)
	}
	r.logger.Debug("grading run inserted", zap.Uint("id", row.InputID), zap.String("site", row.ShortArea))
	return nil
}

// Update replaces the whole row, including null breakdown fields.
func (r GradingStore) Update(ctx context.Context, row *models.GradingSession) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GradingSession
		if err := tx.Select("inputId").First(&existing, row.InputID).Error; err != nil {
			return err
		}
		return tx.Save(row).Error
	})
	return classify("update grading run", err)
}

func (r GradingStore) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.GradingSession{}, id)
	if res.Error != nil {
		return classify("delete grading run", res.Error)
	}
	if res.RowsAffected == 0 {
		return classify("delete grading run", gorm.ErrRecordNotFound)
	}
	return nil
}
