package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmperf/internal/config"
	"github.com/mamadbah2/farmperf/internal/observability"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/repository/mongodb"
	"github.com/mamadbah2/farmperf/internal/repository/sheets"
	"github.com/mamadbah2/farmperf/internal/repository/sqlstore"
	"github.com/mamadbah2/farmperf/internal/scheduler"
	"github.com/mamadbah2/farmperf/internal/server/handlers"
	"github.com/mamadbah2/farmperf/internal/server/router"
	entrysvc "github.com/mamadbah2/farmperf/internal/service/entry"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
	reportingsvc "github.com/mamadbah2/farmperf/internal/service/reporting"
	"github.com/mamadbah2/farmperf/pkg/clients/line"
	"github.com/mamadbah2/farmperf/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	table, err := config.LoadMetricsTable(cfg.MetricsTablePath)
	if err != nil {
		baseLogger.Fatal("failed to load metrics table", zap.Error(err))
	}

	promMetrics := observability.NewMetrics()
	engine := metrics.NewEngine(table, metrics.WithObserver(promMetrics.RecordDegenerate))

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	store, err := sqlstore.Connect(startupCtx, cfg.Database, baseLogger.Named("repo.sql"))
	if err != nil {
		baseLogger.Fatal("failed to init sql store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close sql connection", zap.Error(err))
		}
	}()

	var archive repository.SnapshotStore
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoRepo
		baseLogger.Info("report archive enabled", zap.String("db", cfg.MongoDB.DBName))
	} else {
		baseLogger.Warn("mongodb uri missing, weekly summaries will not be archived")
	}

	var reportOpts []reportingsvc.Option
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportOpts = append(reportOpts, reportingsvc.WithSheetExport(sheetsRepo, cfg.Sheets.ExportRange))
		baseLogger.Info("spreadsheet export enabled", zap.String("range", cfg.Sheets.ExportRange))
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet export disabled")
	}

	biogasStore, gradingStore := store.Biogas(), store.Grading()
	reportingSvc := reportingsvc.NewService(reportingsvc.Stores{
		Biogas:  biogasStore,
		Grading: gradingStore,
		Energy:  store,
		Water:   store,
		GHG:     store,
	}, table, baseLogger.Named("svc.reporting"), reportOpts...)
	entrySvc := entrysvc.NewService(biogasStore, gradingStore, engine, promMetrics, baseLogger.Named("svc.entry"))
	catalog := entrysvc.NewCatalog(store, table)

	httpEngine := router.New(router.Handlers{
		Biogas:  handlers.NewBiogasHandler(entrySvc, baseLogger.Named("handlers.biogas")),
		Grading: handlers.NewGradingHandler(entrySvc, baseLogger.Named("handlers.grading")),
		Reports: handlers.NewReportHandler(reportingSvc, archive, baseLogger.Named("handlers.reports")),
		Lookups: handlers.NewLookupHandler(catalog, baseLogger.Named("handlers.lookups")),
	}, promMetrics, baseLogger.Named("router"))

	schedOpts := []scheduler.Option{}
	if archive != nil {
		schedOpts = append(schedOpts, scheduler.WithArchive(archive))
	}
	if cfg.Line.Enabled() {
		schedOpts = append(schedOpts, scheduler.WithNotifier(line.NewClient(cfg.Line), cfg.Line.TargetID))
		baseLogger.Info("line notifications enabled")
	} else {
		baseLogger.Warn("line channel token missing, weekly summaries will not be pushed")
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"), schedOpts...)
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
