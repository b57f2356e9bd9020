package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/entry"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
	"github.com/mamadbah2/farmperf/internal/service/reporting"
)

type stubEntry struct {
	EntryService
	saveErr   error
	deleteErr error
	saved     models.RawBiogasInput
	key       models.CounterKey
	filter    models.BiogasFilter
}

func (s *stubEntry) SaveBiogas(_ context.Context, in models.RawBiogasInput) (entry.BiogasResult, error) {
	s.saved = in
	if s.saveErr != nil {
		return entry.BiogasResult{}, s.saveErr
	}
	return entry.BiogasResult{ID: 7, Input: in, Derived: models.DerivedBiogasMetrics{ProductKw: 300}}, nil
}

func (s *stubEntry) DeleteBiogas(context.Context, uint) error { return s.deleteErr }

func (s *stubEntry) PreviousCounters(_ context.Context, key models.CounterKey) (models.Counters, error) {
	s.key = key
	return models.Counters{HrAfter: 120, KwAfter: 1100}, nil
}

func (s *stubEntry) ListBiogas(_ context.Context, filter models.BiogasFilter) ([]models.MeterReading, error) {
	s.filter = filter
	return []models.MeterReading{{InputID: 1, Farm: "SK", SaveDate: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)}}, nil
}

type stubReports struct {
	ReportService
	window    calendar.Window
	period    reporting.Period
	exportErr error
	waterErr  error
	energy    []string
	ghgFarm   string
}

func (s *stubReports) BiogasReport(_ context.Context, w calendar.Window, p reporting.Period) (models.BiogasReport, error) {
	s.window, s.period = w, p
	return models.BiogasReport{From: calendar.DayKey(w.From), To: calendar.DayKey(w.To)}, nil
}

func (s *stubReports) CompareBiogas(_ context.Context, w calendar.Window) (models.Comparison, error) {
	s.window = w
	return models.Comparison{}, nil
}

func (s *stubReports) ExportBiogas(context.Context, calendar.Window) (int, error) {
	return 3, s.exportErr
}

func (s *stubReports) WaterSummary(context.Context, string, string) ([]models.WaterSummary, error) {
	return nil, s.waterErr
}

func (s *stubReports) FarmEnergyDaily(_ context.Context, w calendar.Window, farm, energyType string) ([]models.EnergyPoint, error) {
	s.window = w
	s.energy = []string{farm, energyType}
	return []models.EnergyPoint{{Date: "2024-06-01", Value: 12.5}}, nil
}

func (s *stubReports) GHGReport(_ context.Context, farm, _ string) ([]models.GHGSummary, error) {
	s.ghgFarm = farm
	return []models.GHGSummary{}, nil
}

func (s *stubReports) GHGFarms(context.Context) ([]string, error) {
	return []string{"จันทบุรี"}, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func fixedNow() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }

func TestCreateBiogas(t *testing.T) {
	svc := &stubEntry{}
	h := NewBiogasHandler(svc, nil)
	r := newEngine()
	r.POST("/api/biogas", h.Create)

	rec := serve(r, http.MethodPost, "/api/biogas", `{"saveDate":"2024-06-02","farm":"sk","machineType":550,"hrAfter":150,"kwAfter":1300,"peaUnit":4.5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.saved.HrBefore != nil {
		t.Fatalf("omitted opening counters must stay nil for carry-forward")
	}

	var res entry.BiogasResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.ID != 7 || res.Derived.ProductKw != 300 {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &metrics.ValidationError{Fields: map[string]string{"peaUnit": "required"}}, http.StatusBadRequest},
		{"not found", fmt.Errorf("delete: %w", repository.ErrNotFound), http.StatusNotFound},
		{"unavailable", fmt.Errorf("save: %w", repository.ErrUnavailable), http.StatusServiceUnavailable},
		{"export disabled", reporting.ErrExportDisabled, http.StatusServiceUnavailable},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine()
			r.GET("/", func(c *gin.Context) { respondError(c, zap.NewNop(), tc.err) })

			rec := serve(r, http.MethodGet, "/", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if strings.Contains(rec.Body.String(), "boom") {
				t.Fatalf("internal error text must not leak: %s", rec.Body.String())
			}
		})
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	h := NewBiogasHandler(&stubEntry{saveErr: &metrics.ValidationError{Fields: map[string]string{"peaUnit": "peaUnit must be greater than 0"}}}, nil)
	r := newEngine()
	r.POST("/api/biogas", h.Create)

	rec := serve(r, http.MethodPost, "/api/biogas", `{"farm":"SK"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Fields["peaUnit"] == "" {
		t.Fatalf("expected peaUnit field error, got %v", body.Fields)
	}
}

func TestDeleteBiogasStatuses(t *testing.T) {
	svc := &stubEntry{}
	h := NewBiogasHandler(svc, nil)
	r := newEngine()
	r.DELETE("/api/biogas/:id", h.Delete)

	if rec := serve(r, http.MethodDelete, "/api/biogas/3", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodDelete, "/api/biogas/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
	svc.deleteErr = repository.ErrNotFound
	if rec := serve(r, http.MethodDelete, "/api/biogas/3", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPreviousCountersQuery(t *testing.T) {
	svc := &stubEntry{}
	h := NewBiogasHandler(svc, nil)
	r := newEngine()
	r.GET("/api/biogas/previous", h.Previous)

	rec := serve(r, http.MethodGet, "/api/biogas/previous?farm=SK&machineType=550&date=2024-06-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.key.MachineNo != 1 || calendar.DayKey(svc.key.Date) != "2024-06-02" {
		t.Fatalf("unexpected key %+v", svc.key)
	}

	if rec := serve(r, http.MethodGet, "/api/biogas/previous?farm=SK&machineType=550&date=06/02/2024", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestListBiogasAddsThaiLabel(t *testing.T) {
	svc := &stubEntry{}
	h := NewBiogasHandler(svc, nil)
	r := newEngine()
	r.GET("/api/biogas", h.List)

	rec := serve(r, http.MethodGet, "/api/biogas?fromDate=2024-06-01&toDate=2024-06-30&farm=sk", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"saveDateLabel":"02/06/67"`) {
		t.Fatalf("expected BE label in %s", rec.Body.String())
	}
	if calendar.DayKey(svc.filter.To) != "2024-06-30" || svc.filter.Farm != "sk" {
		t.Fatalf("unexpected filter %+v", svc.filter)
	}
}

func TestBiogasReportWindowAndBucket(t *testing.T) {
	svc := &stubReports{}
	h := NewReportHandler(svc, nil, nil)
	h.now = fixedNow
	r := newEngine()
	r.GET("/api/reports/biogas", h.Biogas)

	if rec := serve(r, http.MethodGet, "/api/reports/biogas?bucket=month", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.period != reporting.PeriodMonth {
		t.Fatalf("expected month bucket, got %v", svc.period)
	}
	if calendar.DayKey(svc.window.From) != "2024-06-03" || calendar.DayKey(svc.window.To) != "2024-06-09" {
		t.Fatalf("expected trailing week ending yesterday, got %v..%v", svc.window.From, svc.window.To)
	}

	if rec := serve(r, http.MethodGet, "/api/reports/biogas?bucket=year", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown bucket, got %d", rec.Code)
	}
}

func TestCompareSingleDay(t *testing.T) {
	svc := &stubReports{}
	h := NewReportHandler(svc, nil, nil)
	r := newEngine()
	r.GET("/api/reports/biogas/compare", h.CompareBiogas)

	if rec := serve(r, http.MethodGet, "/api/reports/biogas/compare?fromDate=2024-06-05", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.window.From.Equal(svc.window.To) {
		t.Fatalf("fromDate alone should give a one-day window, got %+v", svc.window)
	}
}

func TestExportAndWaterErrors(t *testing.T) {
	svc := &stubReports{
		exportErr: reporting.ErrExportDisabled,
		waterErr:  &metrics.ValidationError{Fields: map[string]string{"parameter": "unknown"}},
	}
	h := NewReportHandler(svc, nil, nil)
	r := newEngine()
	r.POST("/api/reports/biogas/export", h.ExportBiogas)
	r.GET("/api/reports/water", h.Water)
	r.GET("/api/reports/snapshots", h.Snapshots)

	if rec := serve(r, http.MethodPost, "/api/reports/biogas/export?fromDate=2024-06-01&toDate=2024-06-07", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when export disabled, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/api/reports/water?farm=SK&parameter=DROP", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown parameter, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/api/reports/snapshots", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without archive, got %d", rec.Code)
	}
}

func TestEnergyDailyRequiresWindow(t *testing.T) {
	svc := &stubReports{}
	h := NewReportHandler(svc, nil, nil)
	r := newEngine()
	r.GET("/api/reports/energy/daily", h.EnergyDaily)

	if rec := serve(r, http.MethodGet, "/api/reports/energy/daily?farm=SK&energyType=PEA&fromDate=2024-06-01", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without toDate, got %d", rec.Code)
	}
	if svc.energy != nil {
		t.Fatalf("service should not be called, got %v", svc.energy)
	}

	rec := serve(r, http.MethodGet, "/api/reports/energy/daily?farm=SK&energyType=PEA&fromDate=2024-06-01&toDate=2024-06-07", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.energy[0] != "SK" || svc.energy[1] != "PEA" {
		t.Fatalf("unexpected farm/energyType %v", svc.energy)
	}
	if calendar.DayKey(svc.window.From) != "2024-06-01" || calendar.DayKey(svc.window.To) != "2024-06-07" {
		t.Fatalf("unexpected window %+v", svc.window)
	}
	var points []models.EnergyPoint
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil || len(points) != 1 || points[0].Value != 12.5 {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

func TestGHGEndpoints(t *testing.T) {
	svc := &stubReports{}
	h := NewReportHandler(svc, nil, nil)
	r := newEngine()
	r.GET("/api/reports/ghg", h.GHG)
	r.GET("/api/lookups/ghg-farms", h.GHGFarms)

	if rec := serve(r, http.MethodGet, "/api/reports/ghg?farm=SK", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.ghgFarm != "SK" {
		t.Fatalf("farm not forwarded, got %q", svc.ghgFarm)
	}

	rec := serve(r, http.MethodGet, "/api/lookups/ghg-farms", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "จันทบุรี") {
		t.Fatalf("unexpected ghg farms response %d %s", rec.Code, rec.Body.String())
	}
}
