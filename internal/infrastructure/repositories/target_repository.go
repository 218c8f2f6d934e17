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

// TargetRepository persists metric targets in PostgreSQL. The table is
// insert-only; reads resolve the most recent row per metric.
type TargetRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewTargetRepository creates a new target repository
func NewTargetRepository(db *sqlx.DB, logger *zap.Logger) *TargetRepository {
	return &TargetRepository{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("target-repository"),
	}
}

// GetLatest returns the most recent target for one metric, nil when unset.
func (r *TargetRepository) GetLatest(ctx context.Context, clientID int64, metricName string) (*entities.MetricTarget, error) {
	ctx, span := r.tracer.Start(ctx, "target_repo.get_latest", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
		attribute.String("metric", metricName),
	))
	defer span.End()

	query := `
		SELECT target_id, client_id, metric_name, target_value, category, created_at
		FROM metric_targets
		WHERE client_id = $1 AND metric_name = $2
		ORDER BY created_at DESC, target_id DESC
		LIMIT 1
	`

	var target entities.MetricTarget
	if err := r.db.GetContext(ctx, &target, query, clientID, metricName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get target for %s: %w", metricName, err)
	}
	return &target, nil
}

// GetAllLatest returns the effective target per metric, keyed by metric name.
func (r *TargetRepository) GetAllLatest(ctx context.Context, clientID int64) (map[string]*entities.MetricTarget, error) {
	ctx, span := r.tracer.Start(ctx, "target_repo.get_all_latest", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
	))
	defer span.End()

	query := `
		SELECT DISTINCT ON (metric_name)
		       target_id, client_id, metric_name, target_value, category, created_at
		FROM metric_targets
		WHERE client_id = $1
		ORDER BY metric_name, created_at DESC, target_id DESC
	`

	var rows []entities.MetricTarget
	if err := r.db.SelectContext(ctx, &rows, query, clientID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get targets: %w", err)
	}

	targets := make(map[string]*entities.MetricTarget, len(rows))
	for i := range rows {
		targets[rows[i].MetricName] = &rows[i]
	}
	return targets, nil
}

// Insert appends a new target row. Existing rows for the metric are kept as
// history.
func (r *TargetRepository) Insert(ctx context.Context, target *entities.MetricTarget) error {
	ctx, span := r.tracer.Start(ctx, "target_repo.insert", trace.WithAttributes(
		attribute.Int64("client_id", target.ClientID),
		attribute.String("metric", target.MetricName),
	))
	defer span.End()

	query := `
		INSERT INTO metric_targets (client_id, metric_name, target_value, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING target_id
	`

	if err := r.db.QueryRowContext(ctx, query,
		target.ClientID,
		target.MetricName,
		target.TargetValue,
		target.Category,
		target.CreatedAt,
	).Scan(&target.TargetID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert target: %w", err)
	}

	r.logger.Info("Metric target saved",
		zap.Int64("client_id", target.ClientID),
		zap.String("metric", target.MetricName))

	return nil
}

// DeleteLatest removes only the most recent row for one metric, exposing the
// previous target if any. Returns false when the client never set this target.
func (r *TargetRepository) DeleteLatest(ctx context.Context, clientID int64, metricName string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "target_repo.delete_latest", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
		attribute.String("metric", metricName),
	))
	defer span.End()

	query := `
		DELETE FROM metric_targets
		WHERE target_id = (
			SELECT target_id FROM metric_targets
			WHERE client_id = $1 AND metric_name = $2
			ORDER BY created_at DESC, target_id DESC
			LIMIT 1
		)
	`

	result, err := r.db.ExecContext(ctx, query, clientID, metricName)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to delete target: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// DeleteAll removes every target row for the client, history included.
func (r *TargetRepository) DeleteAll(ctx context.Context, clientID int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "target_repo.delete_all", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
	))
	defer span.End()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM metric_targets WHERE client_id = $1`, clientID)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete targets: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	r.logger.Info("All metric targets deleted",
		zap.Int64("client_id", clientID),
		zap.Int64("rows", affected))

	return affected, nil
}
