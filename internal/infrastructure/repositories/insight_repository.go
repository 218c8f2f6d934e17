package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// InsightRepository persists generated narrative insights in PostgreSQL.
type InsightRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *sqlx.DB, logger *zap.Logger) *InsightRepository {
	return &InsightRepository{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("insight-repository"),
	}
}

// GetLatest returns the newest insight for a client, nil when none exists.
func (r *InsightRepository) GetLatest(ctx context.Context, clientID int64) (*entities.Insight, error) {
	ctx, span := r.tracer.Start(ctx, "insight_repo.get_latest", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
	))
	defer span.End()

	query := `
		SELECT id, client_id, narrative, model, generated_at
		FROM ai_insights
		WHERE client_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var insight entities.Insight
	if err := r.db.GetContext(ctx, &insight, query, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return &insight, nil
}

// Create inserts a generated insight.
func (r *InsightRepository) Create(ctx context.Context, insight *entities.Insight) error {
	ctx, span := r.tracer.Start(ctx, "insight_repo.create", trace.WithAttributes(
		attribute.Int64("client_id", insight.ClientID),
	))
	defer span.End()

	query := `
		INSERT INTO ai_insights (id, client_id, narrative, model, generated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query,
		insight.ID,
		insight.ClientID,
		insight.Narrative,
		insight.Model,
		insight.GeneratedAt,
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save insight: %w", err)
	}

	r.logger.Info("Insight saved",
		zap.Int64("client_id", insight.ClientID),
		zap.String("model", insight.Model))

	return nil
}
