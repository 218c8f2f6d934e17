package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// Aggregation primitives shared by the metric catalog. All of them are total:
// empty input yields zero or an empty map, never an error.

// SumWhere sums amount(row) over rows matching keep.
func SumWhere[T any](rows []T, keep func(T) bool, amount func(T) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range rows {
		if keep(row) {
			sum = sum.Add(amount(row))
		}
	}
	return sum
}

// SumAll sums amount(row) over every row.
func SumAll[T any](rows []T, amount func(T) decimal.Decimal) decimal.Decimal {
	return SumWhere(rows, func(T) bool { return true }, amount)
}

// GroupSum buckets amount(row) by key(row). Rows with an empty key still get
// a bucket; the caller decides how to label it.
func GroupSum[T any](rows []T, key func(T) string, amount func(T) decimal.Decimal) map[string]decimal.Decimal {
	groups := make(map[string]decimal.Decimal)
	for _, row := range rows {
		k := key(row)
		groups[k] = groups[k].Add(amount(row))
	}
	return groups
}

// MaxWhere returns the largest amount among rows matching keep, and whether
// any row matched.
func MaxWhere[T any](rows []T, keep func(T) bool, amount func(T) decimal.Decimal) (decimal.Decimal, bool) {
	var max decimal.Decimal
	found := false
	for _, row := range rows {
		if !keep(row) {
			continue
		}
		v := amount(row)
		if !found || v.GreaterThan(max) {
			max = v
			found = true
		}
	}
	return max, found
}

// activeInYear reports whether a start/end date window intersects the
// calendar year of asOf. Comparison is by year, matching the source ledger
// convention: a row started in March still counts for the whole year.
func activeInYear(start, end *time.Time, asOf time.Time) bool {
	year := asOf.Year()
	if start == nil || start.Year() > year {
		return false
	}
	if end != nil {
		if end.Year() < year {
			return false
		}
		// Reject inverted windows.
		if end.Before(*start) {
			return false
		}
	}
	return true
}

// ratioOf divides numerator by denominator, reporting not-applicable when the
// denominator is zero. This is the single division guard every ratio metric
// goes through.
func ratioOf(numerator, denominator decimal.Decimal) entities.MetricValue {
	if denominator.IsZero() {
		return entities.NotApplicable()
	}
	return entities.NewMetricValue(numerator.Div(denominator))
}
