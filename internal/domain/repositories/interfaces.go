package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// FactRepository loads the financial facts the metric engine computes over.
// All reads are scoped to a single client.
type FactRepository interface {
	// GetFacts fetches the complete fact bundle for one client in a single
	// pass. Missing rows come back as empty slices, never nil errors.
	GetFacts(ctx context.Context, clientID int64) (*entities.Facts, error)

	// GetProfile fetches just the client profile.
	GetProfile(ctx context.Context, clientID int64) (*entities.ClientProfile, error)

	// ListClientIDs returns every client id that has a profile row. Used by
	// the insight scheduler to walk the book of business.
	ListClientIDs(ctx context.Context) ([]int64, error)
}

// TargetRepository persists user-set metric targets. Writes are insert-only;
// the most recent row per metric wins on read.
type TargetRepository interface {
	// GetLatest returns the effective target for one metric, or nil when the
	// client has never set one.
	GetLatest(ctx context.Context, clientID int64, metricName string) (*entities.MetricTarget, error)

	// GetAllLatest returns the effective target for every metric the client
	// has ever set, keyed by metric name.
	GetAllLatest(ctx context.Context, clientID int64) (map[string]*entities.MetricTarget, error)

	// Insert appends a new target row.
	Insert(ctx context.Context, target *entities.MetricTarget) error

	// DeleteLatest removes only the most recent row for one metric and
	// reports whether a row existed.
	DeleteLatest(ctx context.Context, clientID int64, metricName string) (bool, error)

	// DeleteAll removes every target row for the client and returns the
	// number of rows removed.
	DeleteAll(ctx context.Context, clientID int64) (int64, error)
}

// UserRepository persists authentication accounts.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// InsightRepository persists generated narrative insights.
type InsightRepository interface {
	// GetLatest returns the most recent insight for a client, or nil when
	// none has been generated yet.
	GetLatest(ctx context.Context, clientID int64) (*entities.Insight, error)

	Create(ctx context.Context, insight *entities.Insight) error
}
