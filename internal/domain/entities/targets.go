package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricTarget is a user-set desired value for a metric. Rows are insert-only
// so target history is preserved; the most recent row by created_at wins on
// read, and delete-by-name removes only that row.
type MetricTarget struct {
	TargetID    int64           `json:"target_id" db:"target_id"`
	ClientID    int64           `json:"client_id" db:"client_id"`
	MetricName  string          `json:"metric_name" db:"metric_name"`
	TargetValue decimal.Decimal `json:"target_value" db:"target_value"`
	Category    MetricCategory  `json:"category" db:"category"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// TargetUpdate is the write shape for a single target upsert.
type TargetUpdate struct {
	MetricName  string          `json:"metric_name" binding:"required"`
	TargetValue decimal.Decimal `json:"target_value" binding:"required"`
}
