package entry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

const (
	KindBiogas  = "biogas"
	KindGrading = "grading"

	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Recorder counts entry outcomes.
type Recorder interface {
	RecordEntry(kind, op, result string)
}

// BiogasResult is a persisted reading together with its derived fields.
type BiogasResult struct {
	ID      uint                        `json:"inputId"`
	Input   models.RawBiogasInput       `json:"input"`
	Derived models.DerivedBiogasMetrics `json:"derived"`
}

// GradingResult is a persisted grading run together with its derived fields.
type GradingResult struct {
	ID      uint                         `json:"inputId"`
	Derived models.DerivedGradingMetrics `json:"derived"`
}

// Service runs the validate, compute and persist workflow for both entry forms.
type Service struct {
	biogas   repository.BiogasStore
	grading  repository.GradingStore
	engine   *metrics.Engine
	recorder Recorder
	logger   *zap.Logger
}

// NewService constructs an entry service.
func NewService(biogas repository.BiogasStore, grading repository.GradingStore, engine *metrics.Engine, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		biogas:   biogas,
		grading:  grading,
		engine:   engine,
		recorder: recorder,
		logger:   logger,
	}
}

// PreviousCounters returns yesterday's closing counters for the machine, or
// zeros when the machine has no reading that day.
func (s *Service) PreviousCounters(ctx context.Context, key models.CounterKey) (models.Counters, error) {
	key.Farm = metrics.NormalizeCode(key.Farm)
	if key.MachineNo == 0 {
		key.MachineNo = 1
	}
	counters, ok, err := s.biogas.PreviousCounters(ctx, key)
	if err != nil {
		return models.Counters{}, fmt.Errorf("previous counters: %w", err)
	}
	if !ok {
		s.logger.Debug("no previous reading, starting from zero",
			zap.String("farm", key.Farm), zap.Float64("machineType", key.MachineType), zap.Int("machineNo", key.MachineNo))
		return models.Counters{}, nil
	}
	return counters, nil
}

// PreviewBiogas computes the read-only fields shown on the entry form. Drafts
// are not validated; missing opening counters are carried forward when the
// draft identifies a machine and day.
func (s *Service) PreviewBiogas(ctx context.Context, in models.RawBiogasInput) (models.DerivedBiogasMetrics, error) {
	in = normalizeBiogas(in)
	in, err := s.carryForward(ctx, in)
	if err != nil {
		return models.DerivedBiogasMetrics{}, err
	}
	return s.engine.ComputeBiogas(in), nil
}

// SaveBiogas validates, computes and stores a new reading.
func (s *Service) SaveBiogas(ctx context.Context, in models.RawBiogasInput) (result BiogasResult, err error) {
	defer func() { s.record(KindBiogas, OpCreate, err) }()

	in = normalizeBiogas(in)
	in, err = s.carryForward(ctx, in)
	if err != nil {
		return BiogasResult{}, err
	}
	if err = metrics.ValidateBiogas(in); err != nil {
		return BiogasResult{}, err
	}

	derived := s.engine.ComputeBiogas(in)
	row := models.MeterReading{}
	row.SaveDate, _ = calendar.ParseDate(in.SaveDate)
	metrics.ApplyBiogas(&row, in, derived)

	if err = s.biogas.Insert(ctx, &row); err != nil {
		s.logger.Error("failed to save biogas reading", zap.String("farm", row.Farm), zap.Error(err))
		return BiogasResult{}, fmt.Errorf("save biogas reading: %w", err)
	}

	s.logger.Info("biogas reading saved",
		zap.Uint("id", row.InputID), zap.String("farm", row.Farm), zap.Float64("productKw", derived.ProductKw))
	return BiogasResult{ID: row.InputID, Input: in, Derived: derived}, nil
}

// UpdateBiogas replaces a stored reading with the new inputs and recomputed
// derived fields.
func (s *Service) UpdateBiogas(ctx context.Context, id uint, in models.RawBiogasInput) (result BiogasResult, err error) {
	defer func() { s.record(KindBiogas, OpUpdate, err) }()

	existing, err := s.biogas.Get(ctx, id)
	if err != nil {
		return BiogasResult{}, fmt.Errorf("load biogas reading %d: %w", id, err)
	}

	in = normalizeBiogas(in)
	// An edit keeps the stored opening counters unless new ones are given.
	in = in.WithOpeningCounters(models.Counters{HrAfter: existing.HrBefore, KwAfter: existing.KwBefore})
	if err = metrics.ValidateBiogas(in); err != nil {
		return BiogasResult{}, err
	}

	derived := s.engine.ComputeBiogas(in)
	row := models.MeterReading{InputID: existing.InputID}
	row.SaveDate, _ = calendar.ParseDate(in.SaveDate)
	metrics.ApplyBiogas(&row, in, derived)

	if err = s.biogas.Update(ctx, &row); err != nil {
		return BiogasResult{}, fmt.Errorf("update biogas reading %d: %w", id, err)
	}
	s.logger.Info("biogas reading updated", zap.Uint("id", id))
	return BiogasResult{ID: id, Input: in, Derived: derived}, nil
}

// DeleteBiogas removes a stored reading.
func (s *Service) DeleteBiogas(ctx context.Context, id uint) (err error) {
	defer func() { s.record(KindBiogas, OpDelete, err) }()

	if err = s.biogas.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete biogas reading %d: %w", id, err)
	}
	s.logger.Info("biogas reading deleted", zap.Uint("id", id))
	return nil
}

// ListBiogas returns stored readings.
func (s *Service) ListBiogas(ctx context.Context, filter models.BiogasFilter) ([]models.MeterReading, error) {
	filter.Farm = metrics.NormalizeCode(filter.Farm)
	rows, err := s.biogas.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list biogas readings: %w", err)
	}
	return rows, nil
}

// PreviewGrading computes the read-only fields of a grading draft.
func (s *Service) PreviewGrading(in models.RawGradingInput) models.DerivedGradingMetrics {
	return s.engine.ComputeGrading(in)
}

// SaveGrading validates, computes and stores a new grading run.
func (s *Service) SaveGrading(ctx context.Context, in models.RawGradingInput) (result GradingResult, err error) {
	defer func() { s.record(KindGrading, OpCreate, err) }()

	if err = metrics.ValidateGrading(in); err != nil {
		return GradingResult{}, err
	}

	derived := s.engine.ComputeGrading(in)
	row := models.GradingSession{}
	row.InputDate, _ = calendar.ParseDate(in.InputDate)
	metrics.ApplyGrading(&row, in, derived)

	if err = s.grading.Insert(ctx, &row); err != nil {
		s.logger.Error("failed to save grading run", zap.String("site", row.ShortArea), zap.Error(err))
		return GradingResult{}, fmt.Errorf("save grading run: %w", err)
	}

	s.logger.Info("grading run saved",
		zap.Uint("id", row.InputID), zap.String("site", row.ShortArea), zap.Float64("performance", derived.ProductPerformance))
	return GradingResult{ID: row.InputID, Derived: derived}, nil
}

// UpdateGrading re-validates and recomputes a stored run from the new inputs.
// Previously stored derived values are discarded.
func (s *Service) UpdateGrading(ctx context.Context, id uint, in models.RawGradingInput) (result GradingResult, err error) {
	defer func() { s.record(KindGrading, OpUpdate, err) }()

	if _, err = s.grading.Get(ctx, id); err != nil {
		return GradingResult{}, fmt.Errorf("load grading run %d: %w", id, err)
	}
	if err = metrics.ValidateGrading(in); err != nil {
		return GradingResult{}, err
	}

	derived := s.engine.ComputeGrading(in)
	row := models.GradingSession{InputID: id}
	row.InputDate, _ = calendar.ParseDate(in.InputDate)
	metrics.ApplyGrading(&row, in, derived)

	if err = s.grading.Update(ctx, &row); err != nil {
		return GradingResult{}, fmt.Errorf("update grading run %d: %w", id, err)
	}
	s.logger.Info("grading run updated", zap.Uint("id", id))
	return GradingResult{ID: id, Derived: derived}, nil
}

// DeleteGrading removes a stored grading run.
func (s *Service) DeleteGrading(ctx context.Context, id uint) (err error) {
	defer func() { s.record(KindGrading, OpDelete, err) }()

	if err = s.grading.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete grading run %d: %w", id, err)
	}
	s.logger.Info("grading run deleted", zap.Uint("id", id))
	return nil
}

// ListGrading returns stored grading runs.
func (s *Service) ListGrading(ctx context.Context, filter models.GradingFilter) ([]models.GradingSession, error) {
	filter.ShortArea = metrics.NormalizeCode(filter.ShortArea)
	rows, err := s.grading.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list grading runs: %w", err)
	}
	return rows, nil
}

func (s *Service) carryForward(ctx context.Context, in models.RawBiogasInput) (models.RawBiogasInput, error) {
	if in.HrBefore != nil && in.KwBefore != nil {
		return in, nil
	}
	date, err := calendar.ParseDate(in.SaveDate)
	if err != nil || in.Farm == "" || in.MachineType <= 0 {
		// Not enough to identify the machine; validation reports what is missing.
		return in, nil
	}

	prev, err := s.PreviousCounters(ctx, models.CounterKey{
		Farm:        in.Farm,
		MachineType: in.MachineType,
		MachineNo:   in.MachineNo,
		Date:        date,
	})
	if err != nil {
		return in, err
	}
	return in.WithOpeningCounters(prev), nil
}

func (s *Service) record(kind, op string, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordEntry(kind, op, Result(err))
}

// Result classifies an operation outcome for metrics.
func Result(err error) string {
	var verr *metrics.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func normalizeBiogas(in models.RawBiogasInput) models.RawBiogasInput {
	in.Farm = metrics.NormalizeCode(in.Farm)
	if in.MachineNo == 0 {
		in.MachineNo = 1
	}
	return in
}
