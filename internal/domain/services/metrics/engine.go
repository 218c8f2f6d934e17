package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
	obs "github.com/wisdomindex/wealth_service/pkg/metrics"
)

// Engine computes catalog metrics for one client per invocation. Stateless:
// every call fetches fresh facts and recomputes, so results are never stale.
type Engine struct {
	facts  repositories.FactRepository
	logger *zap.Logger
	tracer trace.Tracer
}

// NewEngine creates a metric engine
func NewEngine(facts repositories.FactRepository, logger *zap.Logger) *Engine {
	return &Engine{
		facts:  facts,
		logger: logger,
		tracer: otel.Tracer("metric-engine"),
	}
}

// ComputeMetric evaluates a single named metric as of the given date.
func (e *Engine) ComputeMetric(ctx context.Context, clientID int64, name string, asOf time.Time) (entities.MetricValue, error) {
	ctx, span := e.tracer.Start(ctx, "engine.compute_metric", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
		attribute.String("metric", name),
	))
	defer span.End()

	def, ok := Lookup(name)
	if !ok {
		obs.RecordMetricComputation(name, "error")
		return entities.MetricValue{}, apperrors.ErrUnknownMetric.WithDetail("metric", name)
	}

	start := time.Now()
	facts, err := e.facts.GetFacts(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		obs.RecordMetricComputation(name, "error")
		return entities.MetricValue{}, err
	}

	result := def.Compute(facts, asOf).Round2()
	obs.MetricComputationDuration.WithLabelValues("single").Observe(time.Since(start).Seconds())
	if result.Valid() {
		obs.RecordMetricComputation(name, "ok")
	} else {
		obs.RecordMetricComputation(name, "not_applicable")
	}
	return result, nil
}

// ComputeAllMetrics evaluates the whole catalog over one fact fetch. Every
// catalog name is present in the result, nil value meaning not applicable.
func (e *Engine) ComputeAllMetrics(ctx context.Context, clientID int64, asOf time.Time) (map[string]entities.MetricValue, error) {
	ctx, span := e.tracer.Start(ctx, "engine.compute_all_metrics", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
	))
	defer span.End()

	start := time.Now()
	facts, err := e.facts.GetFacts(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results := make(map[string]entities.MetricValue, len(catalog))
	for _, def := range catalog {
		results[def.Name] = def.Compute(facts, asOf).Round2()
	}

	obs.MetricComputationDuration.WithLabelValues("all").Observe(time.Since(start).Seconds())
	e.logger.Debug("Computed full metric catalog",
		zap.Int64("client_id", clientID),
		zap.Int("metrics", len(results)))

	return results, nil
}

// ComputeByCategory groups a full catalog evaluation by metric category,
// the shape the UI and the insight generator both consume.
func (e *Engine) ComputeByCategory(ctx context.Context, clientID int64, asOf time.Time) (entities.MetricsByCategory, error) {
	values, err := e.ComputeAllMetrics(ctx, clientID, asOf)
	if err != nil {
		return nil, err
	}

	grouped := make(entities.MetricsByCategory)
	for _, def := range catalog {
		if grouped[def.Category] == nil {
			grouped[def.Category] = make(map[string]*float64)
		}
		grouped[def.Category][def.Name] = values[def.Name].Float()
	}
	return grouped, nil
}
