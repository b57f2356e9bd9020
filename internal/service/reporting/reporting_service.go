package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	repo "github.com/mamadbah2/farmperf/internal/repository/sheets"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

// ErrExportDisabled is returned by export operations when no spreadsheet is configured.
var ErrExportDisabled = errors.New("spreadsheet export is not configured")

// Stores bundles the data-access collaborators the reports read from.
type Stores struct {
	Biogas  repository.BiogasStore
	Grading repository.GradingStore
	Energy  repository.EnergyStore
	Water   repository.WaterStore
	GHG     repository.GHGStore
}

// Service fetches raw rows and turns them into report aggregates.
type Service struct {
	stores      Stores
	table       metrics.Table
	sheet       repo.Repository
	exportRange string
	now         func() time.Time
	logger      *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithSheetExport enables appending aggregates to a spreadsheet range.
func WithSheetExport(sheet repo.Repository, sheetRange string) Option {
	return func(s *Service) {
		s.sheet = sheet
		s.exportRange = sheetRange
	}
}

// WithClock overrides the time source used for trailing windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires a new reporting service instance.
func NewService(stores Stores, table metrics.Table, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{stores: stores, table: table, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BiogasReport aggregates readings per farm, optionally per month.
func (s *Service) BiogasReport(ctx context.Context, window calendar.Window, period Period) (models.BiogasReport, error) {
	rows, err := s.biogasRows(ctx, window, "")
	if err != nil {
		return models.BiogasReport{}, err
	}
	buckets := AggregateBiogas(rows, period, s.table)
	return models.BiogasReport{
		From:    calendar.DayKey(window.From),
		To:      calendar.DayKey(window.To),
		Buckets: buckets,
		Totals:  BiogasTotalsOf(buckets),
	}, nil
}

// BiogasDaily aggregates readings per farm and day, for graphs.
func (s *Service) BiogasDaily(ctx context.Context, window calendar.Window, farm string) ([]models.BiogasBucket, error) {
	rows, err := s.biogasRows(ctx, window, farm)
	if err != nil {
		return nil, err
	}
	return AggregateBiogas(rows, PeriodDay, s.table), nil
}

// CompareBiogas contrasts window with the window of the same length ending
// the day before it starts.
func (s *Service) CompareBiogas(ctx context.Context, window calendar.Window) (models.Comparison, error) {
	previous := window.PreviousWindow(window.Days())

	currentRows, err := s.biogasRows(ctx, window, "")
	if err != nil {
		return models.Comparison{}, err
	}
	previousRows, err := s.biogasRows(ctx, previous, "")
	if err != nil {
		return models.Comparison{}, err
	}

	return Compare(
		Summarize(currentRows, window, s.table),
		Summarize(previousRows, previous, s.table),
	), nil
}

// WeeklyComparison compares the trailing window ending yesterday with the one before it.
func (s *Service) WeeklyComparison(ctx context.Context) (models.Comparison, error) {
	window := calendar.TrailingWindow(calendar.PreviousDay(s.now()), s.table.ComparisonWindowDays)
	return s.CompareBiogas(ctx, window)
}

// GradingReport aggregates grading runs per site, optionally per month.
func (s *Service) GradingReport(ctx context.Context, window calendar.Window, period Period) (models.GradingReport, error) {
	rows, err := s.gradingRows(ctx, window)
	if err != nil {
		return models.GradingReport{}, err
	}
	buckets := AggregateGrading(rows, period, s.table)
	return models.GradingReport{
		From:    calendar.DayKey(window.From),
		To:      calendar.DayKey(window.To),
		Buckets: buckets,
		Totals:  GradingTotalsOf(buckets),
	}, nil
}

// BiogasCoverage returns the data-entry grid of biogas readings.
func (s *Service) BiogasCoverage(ctx context.Context, window calendar.Window) (models.CoverageMatrix, error) {
	rows, err := s.biogasRows(ctx, window, "")
	if err != nil {
		return models.CoverageMatrix{}, err
	}
	return BiogasCoverage(rows, s.table), nil
}

// GradingCoverage returns the data-entry grid of grading runs.
func (s *Service) GradingCoverage(ctx context.Context, window calendar.Window) (models.CoverageMatrix, error) {
	rows, err := s.gradingRows(ctx, window)
	if err != nil {
		return models.CoverageMatrix{}, err
	}
	return GradingCoverage(rows, s.table), nil
}

// EnergyUsage returns the per-farm energy mix of one month, or the all-farm
// mix of every month when month is empty.
func (s *Service) EnergyUsage(ctx context.Context, month string) ([]models.EnergyUsage, error) {
	var window repository.EnergyWindow
	byFarm := false
	if month != "" {
		start, err := calendar.ParseMonth(month)
		if err != nil {
			return nil, &metrics.ValidationError{Fields: map[string]string{"month": "month must be YYYY-MM"}}
		}
		window.From = start
		window.To = start.AddDate(0, 1, -1)
		byFarm = true
	}

	rows, err := s.stores.Energy.EnergyRows(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("load energy rows: %w", err)
	}
	return EnergyMix(rows, byFarm, s.table), nil
}

// FarmEnergyDaily returns the daily series of one energy source for a farm.
func (s *Service) FarmEnergyDaily(ctx context.Context, window calendar.Window, farm, energyType string) ([]models.EnergyPoint, error) {
	source, err := ParseEnergySource(energyType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(farm) == "" {
		return nil, &metrics.ValidationError{Fields: map[string]string{"farm": "farm is required"}}
	}

	rows, err := s.stores.Energy.EnergyRows(ctx, repository.EnergyWindow{
		From:    window.From,
		To:      window.To,
		Farm:    metrics.NormalizeCode(farm),
		Sources: []string{source},
	})
	if err != nil {
		return nil, fmt.Errorf("load %s energy rows: %w", source, err)
	}
	return DailyEnergy(rows, source), nil
}

// GHGReport returns the monthly greenhouse-gas summary of a farm, optionally
// limited to one source. GHG farms are stored by name, not by short code.
func (s *Service) GHGReport(ctx context.Context, farm, source string) ([]models.GHGSummary, error) {
	farm = strings.TrimSpace(farm)
	if farm == "" {
		return nil, &metrics.ValidationError{Fields: map[string]string{"farm": "farm is required"}}
	}

	rows, err := s.stores.GHG.GHGRows(ctx, farm)
	if err != nil {
		return nil, fmt.Errorf("load ghg rows: %w", err)
	}
	return GHGMonthly(rows, strings.TrimSpace(source)), nil
}

// GHGFarms lists the farms that have greenhouse-gas records.
func (s *Service) GHGFarms(ctx context.Context) ([]string, error) {
	farms, err := s.stores.GHG.GHGFarms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ghg farms: %w", err)
	}
	return farms, nil
}

// GHGSources lists the sources that have greenhouse-gas records.
func (s *Service) GHGSources(ctx context.Context) ([]string, error) {
	sources, err := s.stores.GHG.GHGSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ghg sources: %w", err)
	}
	return sources, nil
}

// WaterSummary returns monthly sums of one parameter for the pools of a farm.
func (s *Service) WaterSummary(ctx context.Context, farm, parameter string) ([]models.WaterSummary, error) {
	param, err := ParseWaterParameter(parameter)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(farm) == "" {
		return nil, &metrics.ValidationError{Fields: map[string]string{"farm": "farm is required"}}
	}

	samples, err := s.stores.Water.WaterSamples(ctx, metrics.NormalizeCode(farm))
	if err != nil {
		return nil, fmt.Errorf("load water samples: %w", err)
	}
	return WaterSummaries(samples, param)
}

// ExportBiogas appends the per-farm report of window to the export sheet and
// returns the number of rows written.
func (s *Service) ExportBiogas(ctx context.Context, window calendar.Window) (int, error) {
	if s.sheet == nil {
		return 0, ErrExportDisabled
	}
	report, err := s.BiogasReport(ctx, window, PeriodNone)
	if err != nil {
		return 0, err
	}
	return s.writeBuckets(ctx, report.From, report.To, report.Buckets)
}

// ExportComparison appends the current side of a comparison to the export sheet.
func (s *Service) ExportComparison(ctx context.Context, c models.Comparison) (int, error) {
	if s.sheet == nil {
		return 0, ErrExportDisabled
	}
	return s.writeBuckets(ctx, c.Current.From, c.Current.To, c.Current.Buckets)
}

func (s *Service) writeBuckets(ctx context.Context, from, to string, buckets []models.BiogasBucket) (int, error) {
	fromLabel, toLabel := beLabel(from), beLabel(to)
	rows := make([][]interface{}, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []interface{}{
			fromLabel,
			toLabel,
			b.Group,
			metrics.Round2(b.ProductHr),
			metrics.Round2(b.ProductKw),
			metrics.Round2(b.KwSTD),
			metrics.Round2(b.ProductValue),
			metrics.Round2(b.HrBreakdown),
			b.PeaUnit,
		})
	}
	if err := s.sheet.AppendRows(ctx, s.exportRange, rows); err != nil {
		return 0, fmt.Errorf("export biogas buckets: %w", err)
	}
	s.logger.Info("biogas report exported", zap.String("from", from), zap.String("to", to), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// FormatWeeklySummary renders a comparison as a short chat message.
func FormatWeeklySummary(c models.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Biogas summary %s - %s\n", beLabel(c.Current.From), beLabel(c.Current.To))
	if len(c.Current.Buckets) == 0 {
		b.WriteString("No readings recorded.\n")
	}
	for _, bucket := range c.Current.Buckets {
		fmt.Fprintf(&b, "%s: %.2f kWh, %.2f h run, %.2f h breakdown, %.2f THB\n",
			bucket.Group, bucket.ProductKw, bucket.ProductHr, bucket.HrBreakdown, bucket.ProductValue)
	}
	fmt.Fprintf(&b, "Total %.2f kWh (%.2f THB)\n", c.Current.Totals.ProductKw, c.Current.Totals.ProductValue)
	fmt.Fprintf(&b, "Previous %s - %s: %.2f kWh, change %+.2f%%",
		beLabel(c.Previous.From), beLabel(c.Previous.To), c.Previous.Totals.ProductKw, c.PercentageChange)
	return b.String()
}

func (s *Service) biogasRows(ctx context.Context, window calendar.Window, farm string) ([]models.MeterReading, error) {
	rows, err := s.stores.Biogas.List(ctx, models.BiogasFilter{From: window.From, To: window.To, Farm: metrics.NormalizeCode(farm)})
	if err != nil {
		return nil, fmt.Errorf("load biogas readings: %w", err)
	}
	s.logger.Debug("biogas readings loaded", zap.Int("rows", len(rows)), zap.String("from", calendar.DayKey(window.From)))
	return rows, nil
}

func (s *Service) gradingRows(ctx context.Context, window calendar.Window) ([]models.GradingSession, error) {
	rows, err := s.stores.Grading.List(ctx, models.GradingFilter{From: window.From, To: window.To})
	if err != nil {
		return nil, fmt.Errorf("load grading runs: %w", err)
	}
	return rows, nil
}

func beLabel(day string) string {
	t, err := calendar.ParseDate(day)
	if err != nil {
		return day
	}
	return calendar.FormatThaiDate(t)
}
