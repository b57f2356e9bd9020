package entry

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

type memBiogas struct {
	rows     map[uint]models.MeterReading
	nextID   uint
	counters map[string]models.Counters
	keys     []models.CounterKey
	failList error
}

func newMemBiogas() *memBiogas {
	return &memBiogas{rows: map[uint]models.MeterReading{}, counters: map[string]models.Counters{}}
}

func (m *memBiogas) List(context.Context, models.BiogasFilter) ([]models.MeterReading, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	var out []models.MeterReading
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *memBiogas) Get(_ context.Context, id uint) (models.MeterReading, error) {
	row, ok := m.rows[id]
	if !ok {
		return models.MeterReading{}, repository.ErrNotFound
	}
	return row, nil
}

func (m *memBiogas) PreviousCounters(_ context.Context, key models.CounterKey) (models.Counters, bool, error) {
	m.keys = append(m.keys, key)
	c, ok := m.counters[key.Farm]
	return c, ok, nil
}

func (m *memBiogas) Insert(_ context.Context, row *models.MeterReading) error {
	m.nextID++
	row.InputID = m.nextID
	m.rows[row.InputID] = *row
	return nil
}

func (m *memBiogas) Update(_ context.Context, row *models.MeterReading) error {
	if _, ok := m.rows[row.InputID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[row.InputID] = *row
	return nil
}

func (m *memBiogas) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memGrading struct {
	rows   map[uint]models.GradingSession
	nextID uint
}

func newMemGrading() *memGrading {
	return &memGrading{rows: map[uint]models.GradingSession{}}
}

func (m *memGrading) List(context.Context, models.GradingFilter) ([]models.GradingSession, error) {
	var out []models.GradingSession
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *memGrading) Get(_ context.Context, id uint) (models.GradingSession, error) {
	row, ok := m.rows[id]
	if !ok {
		return models.GradingSession{}, repository.ErrNotFound
	}
	return row, nil
}

func (m *memGrading) Insert(_ context.Context, row *models.GradingSession) error {
	m.nextID++
	row.InputID = m.nextID
	m.rows[row.InputID] = *row
	return nil
}

func (m *memGrading) Update(_ context.Context, row *models.GradingSession) error {
	if _, ok := m.rows[row.InputID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[row.InputID] = *row
	return nil
}

func (m *memGrading) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type countingRecorder map[string]int

func (c countingRecorder) RecordEntry(kind, op, result string) {
	c[kind+"/"+op+"/"+result]++
}

func ptr(v float64) *float64 { return &v }

func newTestService() (*Service, *memBiogas, *memGrading, countingRecorder) {
	biogas, grading, rec := newMemBiogas(), newMemGrading(), countingRecorder{}
	svc := NewService(biogas, grading, metrics.NewEngine(metrics.DefaultTable()), rec, nil)
	return svc, biogas, grading, rec
}

func validReading() models.RawBiogasInput {
	return models.RawBiogasInput{
		SaveDate:    "2024-06-02",
		Farm:        "sk",
		MachineType: 550,
		HrBefore:    ptr(100),
		HrAfter:     150,
		KwBefore:    ptr(1000),
		KwAfter:     1300,
		PeaUnit:     4.5,
		HrStd:       24,
	}
}

func TestSaveBiogasStoresDerivedFields(t *testing.T) {
	svc, store, _, rec := newTestService()

	res, err := svc.SaveBiogas(context.Background(), validReading())
	if err != nil {
		t.Fatalf("SaveBiogas returned error: %v", err)
	}
	row := store.rows[res.ID]
	if row.Farm != "SK" || row.MachineNo != 1 {
		t.Fatalf("expected normalized farm and default machine number, got %q/%d", row.Farm, row.MachineNo)
	}
	if row.ProductKw != 300 || row.ProductValue != 1350 || row.HrBreakdown != 0 {
		t.Fatalf("unexpected derived fields %+v", row)
	}
	if row.SaveDate.Format("2006-01-02") != "2024-06-02" {
		t.Fatalf("unexpected save date %v", row.SaveDate)
	}
	if rec["biogas/create/ok"] != 1 {
		t.Fatalf("expected one recorded create, got %v", rec)
	}
}

func TestSaveBiogasCarriesForwardCounters(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.counters["SK"] = models.Counters{HrAfter: 120, KwAfter: 1100}

	in := validReading()
	in.HrBefore, in.KwBefore = nil, nil

	res, err := svc.SaveBiogas(context.Background(), in)
	if err != nil {
		t.Fatalf("SaveBiogas returned error: %v", err)
	}
	if res.Derived.ProductHr != 30 || res.Derived.ProductKw != 200 {
		t.Fatalf("expected deltas from carried counters, got %+v", res.Derived)
	}
	if len(store.keys) != 1 || store.keys[0].Date.Format("2006-01-02") != "2024-06-02" || store.keys[0].MachineNo != 1 {
		t.Fatalf("unexpected lookup keys %+v", store.keys)
	}
}

func TestSaveBiogasNewMachineStartsAtZero(t *testing.T) {
	svc, _, _, _ := newTestService()

	in := validReading()
	in.Farm = "WT"
	in.HrBefore, in.KwBefore = nil, nil

	res, err := svc.SaveBiogas(context.Background(), in)
	if err != nil {
		t.Fatalf("SaveBiogas returned error: %v", err)
	}
	if res.Derived.ProductHr != 150 || res.Derived.ProductKw != 1300 {
		t.Fatalf("expected full counters as production, got %+v", res.Derived)
	}
}

func TestSaveBiogasRejectsInvalidInput(t *testing.T) {
	svc, store, _, rec := newTestService()

	in := validReading()
	in.PeaUnit = 0

	_, err := svc.SaveBiogas(context.Background(), in)
	var verr *metrics.ValidationError
	if !errors.As(err, &verr) || verr.Fields["peaUnit"] == "" {
		t.Fatalf("expected peaUnit validation error, got %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatalf("invalid reading must not be written")
	}
	if rec["biogas/create/invalid"] != 1 {
		t.Fatalf("expected invalid outcome to be recorded, got %v", rec)
	}
}

func TestUpdateAndDeleteBiogas(t *testing.T) {
	svc, store, _, rec := newTestService()
	ctx := context.Background()

	saved, err := svc.SaveBiogas(ctx, validReading())
	if err != nil {
		t.Fatalf("SaveBiogas returned error: %v", err)
	}

	edit := validReading()
	edit.HrBefore, edit.KwBefore = nil, nil
	edit.KwAfter = 1500
	updated, err := svc.UpdateBiogas(ctx, saved.ID, edit)
	if err != nil {
		t.Fatalf("UpdateBiogas returned error: %v", err)
	}
	if updated.Derived.ProductKw != 500 || store.rows[saved.ID].ProductValue != 2250 {
		t.Fatalf("expected recomputed value from stored opening counters, got %+v", updated.Derived)
	}

	if _, err := svc.UpdateBiogas(ctx, 99, validReading()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing update, got %v", err)
	}

	if err := svc.DeleteBiogas(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteBiogas returned error: %v", err)
	}
	if err := svc.DeleteBiogas(ctx, saved.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if rec["biogas/delete/not_found"] != 1 || rec["biogas/update/not_found"] != 1 {
		t.Fatalf("unexpected recorded outcomes %v", rec)
	}
}

func TestPreviewBiogasDoesNotPersist(t *testing.T) {
	svc, store, _, _ := newTestService()

	got, err := svc.PreviewBiogas(context.Background(), models.RawBiogasInput{Farm: "CHN", MachineType: 100, HrBefore: ptr(0), HrAfter: 5})
	if err != nil {
		t.Fatalf("PreviewBiogas returned error: %v", err)
	}
	if got.HrStd != 8 || got.HrBreakdown != 3 {
		t.Fatalf("unexpected preview %+v", got)
	}
	if len(store.rows) != 0 {
		t.Fatalf("preview must not write")
	}
}

func TestSaveAndUpdateGrading(t *testing.T) {
	svc, _, store, _ := newTestService()
	ctx := context.Background()

	saved, err := svc.SaveGrading(ctx, models.RawGradingInput{
		InputDate: "2024-06-02", ShortArea: "chn", WorkTime: 480, Product: 1000000,
		Breakdown: false, BreakdownList: "stray", FixTime: ptr(20),
	})
	if err != nil {
		t.Fatalf("SaveGrading returned error: %v", err)
	}
	row := store.rows[saved.ID]
	if row.MachineCap != 1152000 || row.ProductPerformance != 86.81 {
		t.Fatalf("unexpected derived fields %+v", row)
	}
	if row.BreakdownList != nil || row.FixTime != 0 {
		t.Fatalf("breakdown fields must be cleared when breakdown is false")
	}

	updated, err := svc.UpdateGrading(ctx, saved.ID, models.RawGradingInput{
		InputDate: "2024-06-02", ShortArea: "BN", WorkTime: 60, Product: 60000,
		Breakdown: true, BreakdownList: "belt", LostTime: ptr(15),
	})
	if err != nil {
		t.Fatalf("UpdateGrading returned error: %v", err)
	}
	row = store.rows[saved.ID]
	if updated.Derived.MachineCap != 120000 || row.ProductPerformance != 50 || row.ShortArea != "BN" {
		t.Fatalf("expected recompute from new inputs, got %+v", row)
	}
	if row.BreakdownList == nil || *row.BreakdownList != "belt" || row.LostTime != 15 {
		t.Fatalf("unexpected breakdown record %+v", row)
	}

	if err := svc.DeleteGrading(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteGrading returned error: %v", err)
	}
	if _, err := svc.UpdateGrading(ctx, saved.ID, models.RawGradingInput{InputDate: "2024-06-02", ShortArea: "BN", WorkTime: 1, Product: 1}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListBiogasPropagatesUnavailable(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.failList = repository.ErrUnavailable

	if _, err := svc.ListBiogas(context.Background(), models.BiogasFilter{}); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
