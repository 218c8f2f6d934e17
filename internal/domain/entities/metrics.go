package entities

import (
	"github.com/shopspring/decimal"
)

// MetricCategory groups related metrics for presentation and insight payloads.
type MetricCategory string

const (
	CategoryAssetsLiabilities MetricCategory = "assets_and_liabilities"
	CategoryIncome            MetricCategory = "income_analysis"
	CategoryExpenses          MetricCategory = "expense_tracking"
	CategoryInsurance         MetricCategory = "insurance_coverage"
	CategoryFuturePlanning    MetricCategory = "future_planning_ratios"
	CategoryWisdomIndex       MetricCategory = "wisdom_index"
)

// Polarity states which direction of a metric is desirable, so target
// comparison can run the right way for each metric.
type Polarity int

const (
	// HigherIsBetter means the target is met when value >= target.
	HigherIsBetter Polarity = iota
	// LowerIsBetter means the target is met when value <= target.
	LowerIsBetter
)

// TargetStatus is the qualitative result of comparing a metric against its
// user-set target.
type TargetStatus string

const (
	StatusMet      TargetStatus = "met"
	StatusUnmet    TargetStatus = "unmet"
	StatusNoTarget TargetStatus = "no_target"
)

// MetricValue is a computed metric amount. Nil Decimal means "not applicable"
// (a ratio whose denominator was zero), which is distinct from a zero amount.
type MetricValue struct {
	Decimal *decimal.Decimal
}

// NewMetricValue wraps a concrete decimal amount.
func NewMetricValue(d decimal.Decimal) MetricValue {
	return MetricValue{Decimal: &d}
}

// NotApplicable is the degenerate-ratio value.
func NotApplicable() MetricValue {
	return MetricValue{}
}

// Valid reports whether the metric resolved to a concrete amount.
func (v MetricValue) Valid() bool {
	return v.Decimal != nil
}

// Round2 returns the value rounded to 2 decimal places, preserving nil.
func (v MetricValue) Round2() MetricValue {
	if v.Decimal == nil {
		return v
	}
	r := v.Decimal.Round(2)
	return MetricValue{Decimal: &r}
}

// Float returns the rounded amount as *float64 for JSON emission (nil when
// not applicable).
func (v MetricValue) Float() *float64 {
	if v.Decimal == nil {
		return nil
	}
	f, _ := v.Decimal.Round(2).Float64()
	return &f
}

// ComputedMetric is the transient per-request result shape consumed by the
// HTTP layer. It is never persisted.
type ComputedMetric struct {
	Metric   string         `json:"metric"`
	Value    *float64       `json:"value"`
	Category MetricCategory `json:"category"`
	ClientID int64          `json:"user_id"`
	Target   *float64       `json:"target,omitempty"`
	Status   TargetStatus   `json:"status,omitempty"`
}

// MetricsByCategory is the grouped shape returned by the all-metrics endpoint
// and fed to the insight generator.
type MetricsByCategory map[MetricCategory]map[string]*float64

// ChartSlice is one labeled slice of a category-breakdown chart.
type ChartSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
