package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/ai"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
	obs "github.com/wisdomindex/wealth_service/pkg/metrics"
)

const systemPrompt = `You are a financial planning assistant for a household wealth dashboard.
You receive a JSON object of computed household metrics. Amounts are annual USD
unless the name says ratio; ratios are plain fractions (1.0 means fully funded);
null means the metric could not be computed from the available data.
Write a short narrative (3 to 5 paragraphs) for the household: summarize their
overall position, call out strengths, and name the two or three areas most
worth attention. Be concrete, reference the numbers, and avoid jargon.
Never give trade-level investment advice or recommend specific products.`

// Trigger labels how a generation was initiated, for metrics.
const (
	TriggerOnDemand  = "on_demand"
	TriggerScheduled = "scheduled"
)

// Service generates and serves AI narratives over a client's metric set.
// Provider calls run behind a circuit breaker so a degraded upstream fails
// fast instead of stalling request handlers.
type Service struct {
	engine   *metrics.Engine
	provider ai.Provider
	repo     repositories.InsightRepository
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewService creates the insight service.
func NewService(engine *metrics.Engine, provider ai.Provider, repo repositories.InsightRepository, logger *zap.Logger) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai_provider",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			obs.UpdateCircuitBreakerState(name, breakerStateValue(to))
		},
	})

	return &Service{
		engine:   engine,
		provider: provider,
		repo:     repo,
		breaker:  breaker,
		logger:   logger,
		tracer:   otel.Tracer("service.insights"),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// GetLatest returns the most recently generated insight for a client, or nil
// when none has been generated yet.
func (s *Service) GetLatest(ctx context.Context, clientID int64) (*entities.Insight, error) {
	ctx, span := s.tracer.Start(ctx, "insights.get_latest",
		trace.WithAttributes(attribute.Int64("client.id", clientID)))
	defer span.End()

	return s.repo.GetLatest(ctx, clientID)
}

// Generate computes the full metric set, asks the AI provider for a narrative,
// persists it, and returns the stored insight. trigger labels the initiator
// for observability.
func (s *Service) Generate(ctx context.Context, clientID int64, asOf time.Time, trigger string) (*entities.Insight, error) {
	ctx, span := s.tracer.Start(ctx, "insights.generate",
		trace.WithAttributes(
			attribute.Int64("client.id", clientID),
			attribute.String("insight.trigger", trigger),
		))
	defer span.End()

	payload, err := s.buildPayload(ctx, clientID, asOf)
	if err != nil {
		obs.RecordInsightGeneration(trigger, "metrics_failed")
		return nil, err
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.provider.ChatCompletion(ctx, &ai.ChatRequest{
			SystemPrompt: systemPrompt,
			Messages: []ai.Message{
				{Role: "user", Content: string(payload)},
			},
		})
	})
	if err != nil {
		obs.RecordInsightGeneration(trigger, "provider_failed")
		s.logger.Error("insight generation failed",
			zap.Int64("client_id", clientID),
			zap.String("trigger", trigger),
			zap.Error(err))
		return nil, apperrors.ErrInsightUnavailable.Wrap(err)
	}

	resp := result.(*ai.ChatResponse)
	insight := &entities.Insight{
		ID:          uuid.New(),
		ClientID:    clientID,
		Narrative:   resp.Content,
		Model:       resp.Model,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, insight); err != nil {
		obs.RecordInsightGeneration(trigger, "persist_failed")
		return nil, fmt.Errorf("failed to persist insight: %w", err)
	}

	obs.RecordInsightGeneration(trigger, "success")
	s.logger.Info("insight generated",
		zap.Int64("client_id", clientID),
		zap.String("trigger", trigger),
		zap.String("model", resp.Model),
		zap.Int("tokens_used", resp.TokensUsed))

	return insight, nil
}

// buildPayload serializes the complete metric set as a flat JSON object.
// Every catalog metric appears as a key; metrics that could not be computed
// are emitted as null rather than omitted, so the model sees the full shape.
func (s *Service) buildPayload(ctx context.Context, clientID int64, asOf time.Time) ([]byte, error) {
	values, err := s.engine.ComputeAllMetrics(ctx, clientID, asOf)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]*float64, len(values))
	for _, name := range metrics.MetricNames() {
		flat[name] = values[name].Float()
	}

	payload, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metric payload: %w", err)
	}
	return payload, nil
}
