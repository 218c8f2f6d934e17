package targets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
	obs "github.com/wisdomindex/wealth_service/pkg/metrics"
)

// Service manages user-set metric targets and derives target status for
// computed metric values. Writes are insert-only so target history survives;
// the most recent row per metric is the effective one.
type Service struct {
	targets repositories.TargetRepository
	logger  *zap.Logger
}

// NewService creates a target service
func NewService(targets repositories.TargetRepository, logger *zap.Logger) *Service {
	return &Service{
		targets: targets,
		logger:  logger,
	}
}

// Get returns the effective target for one metric, nil when unset.
func (s *Service) Get(ctx context.Context, clientID int64, metricName string) (*entities.MetricTarget, error) {
	if _, ok := metrics.Lookup(metricName); !ok {
		return nil, apperrors.ErrUnknownMetric.WithDetail("metric", metricName)
	}
	return s.targets.GetLatest(ctx, clientID, metricName)
}

// GetAll returns the effective target for every metric the client has set.
func (s *Service) GetAll(ctx context.Context, clientID int64) (map[string]*entities.MetricTarget, error) {
	return s.targets.GetAllLatest(ctx, clientID)
}

// Set records a new target for one metric. The previous target stays in the
// table as history.
func (s *Service) Set(ctx context.Context, clientID int64, update entities.TargetUpdate) (*entities.MetricTarget, error) {
	def, ok := metrics.Lookup(update.MetricName)
	if !ok {
		return nil, apperrors.ErrUnknownMetric.WithDetail("metric", update.MetricName)
	}

	target := &entities.MetricTarget{
		ClientID:    clientID,
		MetricName:  update.MetricName,
		TargetValue: update.TargetValue,
		Category:    def.Category,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.targets.Insert(ctx, target); err != nil {
		return nil, err
	}

	obs.RecordTargetWrite(update.MetricName, "created")
	return target, nil
}

// SetMany records targets in bulk, skipping metrics whose effective target
// already equals the requested value. Returns the number of rows written.
func (s *Service) SetMany(ctx context.Context, clientID int64, updates []entities.TargetUpdate) (int, error) {
	current, err := s.targets.GetAllLatest(ctx, clientID)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, update := range updates {
		if _, ok := metrics.Lookup(update.MetricName); !ok {
			return written, apperrors.ErrUnknownMetric.WithDetail("metric", update.MetricName)
		}
		if existing, ok := current[update.MetricName]; ok && existing.TargetValue.Equal(update.TargetValue) {
			obs.RecordTargetWrite(update.MetricName, "unchanged")
			continue
		}
		if _, err := s.Set(ctx, clientID, update); err != nil {
			return written, err
		}
		written++
	}

	s.logger.Info("Bulk target update",
		zap.Int64("client_id", clientID),
		zap.Int("requested", len(updates)),
		zap.Int("written", written))

	return written, nil
}

// Delete removes the most recent target row for one metric, exposing any
// earlier target underneath it.
func (s *Service) Delete(ctx context.Context, clientID int64, metricName string) error {
	if _, ok := metrics.Lookup(metricName); !ok {
		return apperrors.ErrUnknownMetric.WithDetail("metric", metricName)
	}

	deleted, err := s.targets.DeleteLatest(ctx, clientID, metricName)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrTargetNotFound.WithDetail("metric", metricName)
	}

	obs.RecordTargetWrite(metricName, "deleted")
	return nil
}

// DeleteAll removes every target row for the client and returns the count.
func (s *Service) DeleteAll(ctx context.Context, clientID int64) (int64, error) {
	return s.targets.DeleteAll(ctx, clientID)
}

// Compare derives the qualitative status of a computed value against a
// target. Polarity decides the comparison direction; a lower-is-better
// metric is met when the value is at or under the target.
func Compare(value *float64, target *entities.MetricTarget, polarity entities.Polarity) entities.TargetStatus {
	if target == nil || value == nil {
		return entities.StatusNoTarget
	}

	v := decimal.NewFromFloat(*value)
	switch polarity {
	case entities.LowerIsBetter:
		if v.LessThanOrEqual(target.TargetValue) {
			return entities.StatusMet
		}
	default:
		if v.GreaterThanOrEqual(target.TargetValue) {
			return entities.StatusMet
		}
	}
	return entities.StatusUnmet
}

// Annotate merges a computed metric with its target and status. Used by the
// HTTP layer to build the per-metric response shape.
func Annotate(metric *entities.ComputedMetric, target *entities.MetricTarget, polarity entities.Polarity) {
	if target == nil {
		metric.Status = entities.StatusNoTarget
		return
	}
	tv, _ := target.TargetValue.Round(2).Float64()
	metric.Target = &tv
	metric.Status = Compare(metric.Value, target, polarity)
}
