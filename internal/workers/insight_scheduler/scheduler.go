package insightscheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	"github.com/wisdomindex/wealth_service/internal/domain/services/insights"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/config"
)

// Scheduler pre-generates insights for every known client on a cron schedule,
// so dashboard loads serve a stored narrative instead of waiting on the AI
// provider.
type Scheduler struct {
	insights *insights.Service
	facts    repositories.FactRepository
	config   config.InsightsConfig
	logger   *zap.Logger
	cron     *cron.Cron
	metrics  *schedulerMetrics
}

// schedulerMetrics holds the batch-level instruments.
type schedulerMetrics struct {
	batchesTotal  metric.Int64Counter
	batchDuration metric.Float64Histogram
	clientsOK     metric.Int64Counter
	clientsFailed metric.Int64Counter
}

func initSchedulerMetrics(meter metric.Meter) (*schedulerMetrics, error) {
	batchesTotal, err := meter.Int64Counter("insight_scheduler_batches_total",
		metric.WithDescription("Number of scheduled insight batches started"))
	if err != nil {
		return nil, err
	}
	batchDuration, err := meter.Float64Histogram("insight_scheduler_batch_duration_seconds",
		metric.WithDescription("Wall time of one insight batch"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	clientsOK, err := meter.Int64Counter("insight_scheduler_clients_generated_total",
		metric.WithDescription("Clients whose insight was regenerated"))
	if err != nil {
		return nil, err
	}
	clientsFailed, err := meter.Int64Counter("insight_scheduler_clients_failed_total",
		metric.WithDescription("Clients skipped because generation failed"))
	if err != nil {
		return nil, err
	}

	return &schedulerMetrics{
		batchesTotal:  batchesTotal,
		batchDuration: batchDuration,
		clientsOK:     clientsOK,
		clientsFailed: clientsFailed,
	}, nil
}

// NewScheduler creates the insight pre-generation scheduler.
func NewScheduler(svc *insights.Service, facts repositories.FactRepository, cfg config.InsightsConfig, logger *zap.Logger) (*Scheduler, error) {
	metrics, err := initSchedulerMetrics(otel.Meter("insight-scheduler"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler metrics: %w", err)
	}

	return &Scheduler{
		insights: svc,
		facts:    facts,
		config:   cfg,
		logger:   logger,
		cron:     cron.New(),
		metrics:  metrics,
	}, nil
}

// Start registers the cron entry and begins running. No-op when the feature
// is disabled.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("insight scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.CronSchedule, s.runBatch)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("insight scheduler started",
		zap.String("schedule", s.config.CronSchedule),
		zap.Int("batch_size", s.config.BatchSize))
	return nil
}

// Stop halts the cron runner and waits for an in-flight batch to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("insight scheduler stopped")
}

// runBatch walks every client and regenerates their insight. Failures are
// logged and skipped; one bad client never aborts the sweep.
func (s *Scheduler) runBatch() {
	ctx := context.Background()
	start := time.Now()
	s.metrics.batchesTotal.Add(ctx, 1)

	clientIDs, err := s.facts.ListClientIDs(ctx)
	if err != nil {
		s.logger.Error("insight batch aborted, failed to list clients", zap.Error(err))
		return
	}

	asOf := time.Now().UTC()
	generated, failed := 0, 0
	for i, clientID := range clientIDs {
		if s.config.BatchSize > 0 && i > 0 && i%s.config.BatchSize == 0 {
			// Breather between batches to stay inside provider rate limits.
			time.Sleep(5 * time.Second)
		}

		if _, err := s.insights.Generate(ctx, clientID, asOf, insights.TriggerScheduled); err != nil {
			failed++
			s.metrics.clientsFailed.Add(ctx, 1)
			s.logger.Warn("scheduled insight generation failed",
				zap.Int64("client_id", clientID),
				zap.Error(err))
			continue
		}
		generated++
		s.metrics.clientsOK.Add(ctx, 1)
	}

	s.metrics.batchDuration.Record(ctx, time.Since(start).Seconds())
	s.logger.Info("insight batch complete",
		zap.Int("clients", len(clientIDs)),
		zap.Int("generated", generated),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}
