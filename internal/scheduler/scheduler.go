package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/config"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/reporting"
	"github.com/mamadbah2/farmperf/pkg/clients/line"
)

// Reporter produces the weekly comparison and exports it.
type Reporter interface {
	WeeklyComparison(ctx context.Context) (models.Comparison, error)
	ExportComparison(ctx context.Context, c models.Comparison) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reporter Reporter
	archive  repository.SnapshotStore
	notifier line.Client
	target   string
	now      func() time.Time
	logger   *zap.Logger
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithArchive stores every weekly comparison as a snapshot.
func WithArchive(store repository.SnapshotStore) Option {
	return func(s *Scheduler) { s.archive = store }
}

// WithNotifier pushes the weekly summary text to a LINE chat.
func WithNotifier(client line.Client, target string) Option {
	return func(s *Scheduler) {
		s.notifier = client
		s.target = target
	}
}

// NewScheduler creates a new scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		reporter: reporter,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start registers the weekly summary and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.RunWeeklySummary(ctx); err != nil {
			s.logger.Error("weekly summary failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule weekly summary %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunWeeklySummary computes the trailing comparison and hands it to every
// configured sink. A failing sink does not stop the others; their errors are
// joined in the result.
func (s *Scheduler) RunWeeklySummary(ctx context.Context) error {
	s.logger.Info("generating weekly summary")

	comparison, err := s.reporter.WeeklyComparison(ctx)
	if err != nil {
		return fmt.Errorf("weekly comparison: %w", err)
	}
	text := reporting.FormatWeeklySummary(comparison)

	var errs []error

	if s.archive != nil {
		snapshot := models.ReportSnapshot{
			ID:         uuid.NewString(),
			Kind:       models.SnapshotKindWeeklyBiogas,
			Comparison: comparison,
			Summary:    text,
			CreatedAt:  s.now().UTC(),
		}
		if err := s.archive.SaveSnapshot(ctx, snapshot); err != nil {
			s.logger.Error("failed to archive weekly summary", zap.Error(err))
			errs = append(errs, err)
		} else {
			s.logger.Info("weekly summary archived", zap.String("id", snapshot.ID))
		}
	}

	if _, err := s.reporter.ExportComparison(ctx, comparison); err != nil && !errors.Is(err, reporting.ErrExportDisabled) {
		s.logger.Error("failed to export weekly summary", zap.Error(err))
		errs = append(errs, err)
	}

	if s.notifier != nil {
		if err := s.notifier.PushText(ctx, s.target, text); err != nil {
			s.logger.Error("failed to send weekly summary", zap.Error(err))
			errs = append(errs, err)
		} else {
			s.logger.Info("weekly summary sent successfully")
		}
	}

	return errors.Join(errs...)
}
