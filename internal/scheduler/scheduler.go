package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"agave/internal/catalog"
	"agave/internal/format"
	"agave/internal/model"
	"agave/internal/pricing"
	"agave/internal/recorder"
)

// Sender delivers report text to the chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks and the chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Source   catalog.Source
	Repricer *catalog.Repricer
	Pricing  *pricing.Service
	Notifier Sender
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, src catalog.Source, svc *pricing.Service, n Sender, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	st := svc.Settings
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Source:   src,
		Repricer: catalog.NewRepricer(st.Table, st.Refs, st.Target, logger),
		Pricing:  svc,
		Notifier: n,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
	}
}

// RegisterAll registers the catalog report task.
func (s *Scheduler) RegisterAll(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.catalogTask); err != nil {
		return fmt.Errorf("register catalog task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunCatalogNow executes the catalog task immediately (for RUN_ON_START).
func (s *Scheduler) RunCatalogNow() {
	s.catalogTask()
}

func (s *Scheduler) catalogTask() {
	s.Logger.Info("running catalog task")
	report, err := s.CatalogReport(s.Ctx)
	if err != nil {
		s.Logger.Error("catalog task", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Error al cargar el catálogo: %v", err))
		return
	}
	s.trySend(report)
}

// CatalogReport runs RepriceCatalog and returns the rendered report.
func (s *Scheduler) CatalogReport(ctx context.Context) (string, error) {
	reports, err := s.RepriceCatalog(ctx)
	if err != nil {
		return "", err
	}
	return format.CatalogReport(reports, s.Pricing.Settings.Currency), nil
}

// RepriceCatalog loads and reprices the catalog and records the run under a
// fresh run ID.
func (s *Scheduler) RepriceCatalog(ctx context.Context) ([]model.ProductReport, error) {
	if s.Source == nil {
		return nil, fmt.Errorf("no catalog source configured")
	}
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	products, err := s.Source.Load(loadCtx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", s.Source.Name(), err)
	}

	reports := s.Repricer.Reprice(products)
	summary := catalog.Summarize(reports)
	runID := uuid.NewString()
	s.Logger.Info("catalog repriced",
		zap.String("run_id", runID),
		zap.String("source", s.Source.Name()),
		zap.Int("loaded", len(products)),
		zap.Int("repriced", summary.Products),
		zap.Int("below_minimum", len(summary.BelowMinimum)))

	if err := s.Recorder.RecordCatalogRun(&recorder.CatalogRun{
		RunID:        runID,
		SourceName:   s.Source.Name(),
		Products:     summary.Products,
		Priced:       summary.Priced,
		BelowMinimum: len(summary.BelowMinimum),
		Reports:      reports,
	}); err != nil {
		s.Logger.Error("record catalog run", zap.Error(err))
	}
	return reports, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}

