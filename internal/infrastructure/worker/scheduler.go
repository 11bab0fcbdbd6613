package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

var _ application.Worker = (*Scheduler)(nil)

// CycleRunner is the slice of the updater the scheduler drives.
type CycleRunner interface {
	RunCycle(ctx context.Context, target string) (application.CycleReport, error)
	Maintenance(ctx context.Context) error
}

// Scheduler drives periodic update cycles. Market classes and news run on
// independent tickers so a slow news provider never delays rate refreshes.
type Scheduler struct {
	Updater CycleRunner

	MarketEvery      time.Duration
	NewsEvery        time.Duration
	MaintenanceEvery time.Duration
	RunOnStart       bool
	Log              *zap.Logger
}

func (s *Scheduler) Start(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.MarketEvery <= 0 {
		s.MarketEvery = time.Hour
	}
	if s.NewsEvery <= 0 {
		s.NewsEvery = time.Hour
	}
	if s.MaintenanceEvery <= 0 {
		s.MaintenanceEvery = 24 * time.Hour
	}

	market := time.NewTicker(s.MarketEvery)
	defer market.Stop()
	news := time.NewTicker(s.NewsEvery)
	defer news.Stop()
	maintenance := time.NewTicker(s.MaintenanceEvery)
	defer maintenance.Stop()

	log.Info("scheduler_started",
		zap.Duration("market_every", s.MarketEvery),
		zap.Duration("news_every", s.NewsEvery),
		zap.Duration("maintenance_every", s.MaintenanceEvery))

	if s.RunOnStart {
		s.runMarket(ctx, log)
		s.runNews(ctx, log)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler_stopped")
			return
		case <-market.C:
			s.runMarket(ctx, log)
		case <-news.C:
			s.runNews(ctx, log)
		case <-maintenance.C:
			s.runMaintenance(ctx, log)
		}
	}
}

func (s *Scheduler) runMarket(ctx context.Context, log *zap.Logger) {
	for _, class := range domain.NumericClasses {
		report, err := s.Updater.RunCycle(ctx, string(class))
		if err != nil {
			log.Warn("market_cycle_failed", zap.String("class", string(class)), zap.Error(err))
			continue
		}
		log.Info("market_cycle_done",
			zap.String("class", string(class)),
			zap.Bool("succeeded", report.Succeeded()))
	}
}

func (s *Scheduler) runNews(ctx context.Context, log *zap.Logger) {
	report, err := s.Updater.RunCycle(ctx, string(domain.ClassNews))
	if err != nil {
		log.Warn("news_cycle_failed", zap.Error(err))
		return
	}
	log.Info("news_cycle_done", zap.Bool("succeeded", report.Succeeded()))
}

func (s *Scheduler) runMaintenance(ctx context.Context, log *zap.Logger) {
	if err := s.Updater.Maintenance(ctx); err != nil {
		log.Warn("maintenance_failed", zap.Error(err))
		return
	}
	log.Info("maintenance_done")
}
