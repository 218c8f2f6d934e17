package metrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// Chart breakdowns for the dashboard. Each chart reuses the catalog's
// aggregation helpers over one fact fetch; labels are emitted verbatim by the
// HTTP layer.

func slice(label string, amount decimal.Decimal) entities.ChartSlice {
	v, _ := amount.Round(2).Float64()
	return entities.ChartSlice{Label: label, Value: v}
}

// IncomeChart returns the per-type income breakdown for a bar chart.
func (e *Engine) IncomeChart(ctx context.Context, clientID int64, asOf time.Time) ([]entities.ChartSlice, error) {
	facts, err := e.facts.GetFacts(ctx, clientID)
	if err != nil {
		return nil, err
	}

	byType := func(t entities.IncomeType) decimal.Decimal {
		return SumWhere(facts.Incomes,
			func(i entities.IncomeStream) bool { return !i.Deleted && i.IncomeType == t },
			func(i entities.IncomeStream) decimal.Decimal { return i.CurrentYearAmount })
	}

	return []entities.ChartSlice{
		slice("Earned Income", byType(entities.IncomeSalary)),
		slice("Social Security", byType(entities.IncomeSocialSecurity)),
		slice("Pension", byType(entities.IncomePension)),
		slice("Real Estate", byType(entities.IncomeRealEstate)),
		slice("Business", byType(entities.IncomeBusiness)),
	}, nil
}

// ExpenseChart returns the per-category expense breakdown for a pie chart.
func (e *Engine) ExpenseChart(ctx context.Context, clientID int64, asOf time.Time) ([]entities.ChartSlice, error) {
	facts, err := e.facts.GetFacts(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return []entities.ChartSlice{
		slice("Giving", currentYearGiving(facts, asOf)),
		slice("Savings", currentYearSavings(facts)),
		slice("Debt", currentYearDebt(facts, asOf)),
		slice("Taxes", currentYearTaxes(facts)),
		slice("Living", currentYearLiving(facts, asOf)),
	}, nil
}

// AllocationChart returns the asset-class treemap breakdown.
func (e *Engine) AllocationChart(ctx context.Context, clientID int64, asOf time.Time) ([]entities.ChartSlice, error) {
	facts, err := e.facts.GetFacts(ctx, clientID)
	if err != nil {
		return nil, err
	}

	equity := SumWhere(facts.Holdings,
		func(h entities.Holding) bool { return h.AssetClass.IsEquity() },
		func(h entities.Holding) decimal.Decimal { return h.Value }).
		Add(SumWhere(facts.InvestmentAccounts,
			func(a entities.InvestmentAccount) bool { return a.AccountType.IsEquityAccount() },
			func(a entities.InvestmentAccount) decimal.Decimal { return a.HoldingsValue }))

	fixedIncome := SumWhere(facts.Holdings,
		func(h entities.Holding) bool { return h.AssetClass.IsFixedIncome() },
		func(h entities.Holding) decimal.Decimal { return h.Value })

	realEstate := SumAll(facts.RealEstate,
		func(a entities.RealEstateAsset) decimal.Decimal { return a.TotalValue })

	return []entities.ChartSlice{
		slice("Cash", cashTotal(facts)),
		slice("Equity", equity),
		slice("Fixed Income", fixedIncome),
		slice("Real Estate", realEstate),
	}, nil
}
