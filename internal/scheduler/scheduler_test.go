package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mamadbah2/farmperf/internal/config"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/service/reporting"
)

type stubReporter struct {
	comparison models.Comparison
	exportErr  error
	exported   int
}

func (s *stubReporter) WeeklyComparison(context.Context) (models.Comparison, error) {
	return s.comparison, nil
}

func (s *stubReporter) ExportComparison(context.Context, models.Comparison) (int, error) {
	if s.exportErr != nil {
		return 0, s.exportErr
	}
	s.exported++
	return 1, nil
}

type memArchive struct {
	saved []models.ReportSnapshot
	err   error
}

func (m *memArchive) SaveSnapshot(_ context.Context, snapshot models.ReportSnapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, snapshot)
	return nil
}

func (m *memArchive) ListSnapshots(context.Context, string, int64) ([]models.ReportSnapshot, error) {
	return m.saved, nil
}

type memNotifier struct {
	to, text string
}

func (m *memNotifier) PushText(_ context.Context, to, text string) error {
	m.to, m.text = to, text
	return nil
}

func weekly() models.Comparison {
	return models.Comparison{
		Current:  models.PeriodSummary{From: "2024-06-10", To: "2024-06-16", Totals: models.BiogasTotals{ProductKw: 1800}},
		Previous: models.PeriodSummary{From: "2024-06-03", To: "2024-06-09", Totals: models.BiogasTotals{ProductKw: 1500}},
	}
}

func reportingConfig() config.ReportingConfig {
	return config.ReportingConfig{CronSchedule: "0 8 * * 1", Timezone: "Asia/Bangkok"}
}

func TestRunWeeklySummaryFansOut(t *testing.T) {
	reporter := &stubReporter{comparison: weekly()}
	archive := &memArchive{}
	notifier := &memNotifier{}

	s, err := NewScheduler(reportingConfig(), reporter, nil, WithArchive(archive), WithNotifier(notifier, "C123"))
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}
	if err := s.RunWeeklySummary(context.Background()); err != nil {
		t.Fatalf("RunWeeklySummary returned error: %v", err)
	}

	if len(archive.saved) != 1 || archive.saved[0].Kind != models.SnapshotKindWeeklyBiogas || archive.saved[0].ID == "" {
		t.Fatalf("unexpected archive %+v", archive.saved)
	}
	if reporter.exported != 1 {
		t.Fatalf("expected export to run")
	}
	if notifier.to != "C123" || !strings.Contains(notifier.text, "10/06/67 - 16/06/67") {
		t.Fatalf("unexpected notification to=%s text=%q", notifier.to, notifier.text)
	}
}

func TestRunWeeklySummaryContinuesPastFailingSink(t *testing.T) {
	reporter := &stubReporter{comparison: weekly()}
	archive := &memArchive{err: errors.New("mongo down")}
	notifier := &memNotifier{}

	s, err := NewScheduler(reportingConfig(), reporter, nil, WithArchive(archive), WithNotifier(notifier, "C123"))
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	err = s.RunWeeklySummary(context.Background())
	if err == nil || !strings.Contains(err.Error(), "mongo down") {
		t.Fatalf("expected archive failure to be reported, got %v", err)
	}
	if notifier.text == "" || reporter.exported != 1 {
		t.Fatalf("other sinks must still run")
	}
}

func TestRunWeeklySummaryIgnoresDisabledExport(t *testing.T) {
	reporter := &stubReporter{comparison: weekly(), exportErr: reporting.ErrExportDisabled}

	s, err := NewScheduler(reportingConfig(), reporter, nil)
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}
	if err := s.RunWeeklySummary(context.Background()); err != nil {
		t.Fatalf("disabled export must not fail the job, got %v", err)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := reportingConfig()
	cfg.CronSchedule = "every monday"

	s, err := NewScheduler(cfg, &stubReporter{}, nil)
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatalf("expected invalid cron expression to fail")
	}
}
