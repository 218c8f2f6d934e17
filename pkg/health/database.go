package health

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// DatabaseChecker probes PostgreSQL connectivity and pool pressure.
type DatabaseChecker struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewDatabaseChecker creates a database health checker.
func NewDatabaseChecker(db *sqlx.DB, timeout time.Duration) *DatabaseChecker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &DatabaseChecker{db: db, timeout: timeout}
}

// Check pings the database and runs a trivial query.
func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return Unhealthy("database", err).WithDuration(time.Since(start))
	}

	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return Unhealthy("database", err).WithDuration(time.Since(start))
	}

	stats := c.db.Stats()
	result := Healthy("database", "connected").
		WithDuration(time.Since(start)).
		WithMetadata("open_connections", stats.OpenConnections).
		WithMetadata("in_use", stats.InUse).
		WithMetadata("idle", stats.Idle)

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections)
		result = result.WithMetadata("pool_utilization", utilization)
		if utilization > 0.8 {
			result.Status = StatusDegraded
			result.Message = "high connection pool utilization"
		}
	}

	return result
}

// Name returns the checker name.
func (c *DatabaseChecker) Name() string {
	return "database"
}
