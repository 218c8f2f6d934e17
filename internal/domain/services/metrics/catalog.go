package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// ComputeFunc evaluates one metric over a fetched fact bundle as of a given
// date. Pure; no I/O.
type ComputeFunc func(f *entities.Facts, asOf time.Time) entities.MetricValue

// Definition is one catalog entry.
type Definition struct {
	Name     string
	Category entities.MetricCategory
	Polarity entities.Polarity
	Compute  ComputeFunc
}

// value wraps a plain sum as a metric result.
func value(d decimal.Decimal) entities.MetricValue {
	return entities.NewMetricValue(d)
}

// taxRate is the flat estimate applied to total income.
var taxRate = decimal.NewFromFloat(0.15)

// reservesWeight halves the raw cash-to-living-expenses ratio.
var reservesWeight = decimal.NewFromFloat(0.5)

// catalog is the closed registry of every metric the engine can compute, in
// presentation order.
var catalog = []Definition{
	// Assets & liabilities
	{"net_worth", entities.CategoryAssetsLiabilities, entities.HigherIsBetter, netWorth},
	{"portfolio_value", entities.CategoryAssetsLiabilities, entities.HigherIsBetter, portfolioValue},
	{"real_estate_value", entities.CategoryAssetsLiabilities, entities.HigherIsBetter, realEstateValue},
	{"debt", entities.CategoryAssetsLiabilities, entities.LowerIsBetter, totalDebt},
	{"equity", entities.CategoryAssetsLiabilities, entities.HigherIsBetter, equityValue},
	{"fixed_income", entities.CategoryAssetsLiabilities, entities.HigherIsBetter, fixedIncomeValue},
	{"cash", entities.CategoryAssetsLiabilities, entities.HigherIsBetter, cashValue},

	// Income
	{"earned_income", entities.CategoryIncome, entities.HigherIsBetter, incomeByType(entities.IncomeSalary)},
	{"social_security_income", entities.CategoryIncome, entities.HigherIsBetter, incomeByType(entities.IncomeSocialSecurity)},
	{"pension_income", entities.CategoryIncome, entities.HigherIsBetter, incomeByType(entities.IncomePension)},
	{"real_estate_income", entities.CategoryIncome, entities.HigherIsBetter, incomeByType(entities.IncomeRealEstate)},
	{"business_income", entities.CategoryIncome, entities.HigherIsBetter, incomeByType(entities.IncomeBusiness)},
	{"total_income", entities.CategoryIncome, entities.HigherIsBetter, totalIncomeMetric},

	// Expenses
	{"current_year_giving", entities.CategoryExpenses, entities.HigherIsBetter, currentYearGivingMetric},
	{"current_year_savings", entities.CategoryExpenses, entities.HigherIsBetter, currentYearSavingsMetric},
	{"current_year_debt", entities.CategoryExpenses, entities.LowerIsBetter, currentYearDebtMetric},
	{"current_year_taxes", entities.CategoryExpenses, entities.LowerIsBetter, currentYearTaxesMetric},
	{"current_year_living_expenses", entities.CategoryExpenses, entities.LowerIsBetter, currentYearLivingMetric},
	{"total_expenses", entities.CategoryExpenses, entities.LowerIsBetter, totalExpensesMetric},
	{"margin", entities.CategoryExpenses, entities.HigherIsBetter, marginMetric},

	// Insurance
	{"life_insurance", entities.CategoryInsurance, entities.HigherIsBetter, lifeInsuranceMetric},
	{"disability", entities.CategoryInsurance, entities.HigherIsBetter, disabilityMetric},
	{"ltc", entities.CategoryInsurance, entities.HigherIsBetter, ltcMetric},
	{"umbrella", entities.CategoryInsurance, entities.HigherIsBetter, umbrellaMetric},
	{"business_insurance", entities.CategoryInsurance, entities.HigherIsBetter, businessInsuranceMetric},
	{"flood_insurance", entities.CategoryInsurance, entities.HigherIsBetter, floodInsuranceMetric},
	{"at_risk", entities.CategoryInsurance, entities.LowerIsBetter, atRiskMetric},

	// Future planning
	{"retirement_ratio", entities.CategoryFuturePlanning, entities.HigherIsBetter, retirementRatio},
	{"survivor_ratio", entities.CategoryFuturePlanning, entities.HigherIsBetter, survivorRatio},
	{"education_ratio", entities.CategoryFuturePlanning, entities.HigherIsBetter, educationRatio},
	{"new_cars_ratio", entities.CategoryFuturePlanning, entities.HigherIsBetter, newCarsRatio},
	{"ltc_ratio", entities.CategoryFuturePlanning, entities.HigherIsBetter, ltcRatio},
	{"ltd_ratio", entities.CategoryFuturePlanning, entities.HigherIsBetter, ltdRatio},

	// Wisdom Index composites
	{"savings_ratio", entities.CategoryWisdomIndex, entities.HigherIsBetter, savingsRatioMetric},
	{"giving_ratio", entities.CategoryWisdomIndex, entities.HigherIsBetter, givingRatioMetric},
	{"reserves_ratio", entities.CategoryWisdomIndex, entities.HigherIsBetter, reservesRatioMetric},
	{"debt_ratio", entities.CategoryWisdomIndex, entities.HigherIsBetter, debtRatioMetric},
	{"diversification", entities.CategoryWisdomIndex, entities.HigherIsBetter, diversificationMetric},
}

var catalogByName = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, def := range catalog {
		m[def.Name] = def
	}
	return m
}()

// Lookup returns the catalog entry for a metric name.
func Lookup(name string) (Definition, bool) {
	def, ok := catalogByName[name]
	return def, ok
}

// Catalog returns every definition in presentation order.
func Catalog() []Definition {
	return catalog
}

// MetricNames returns every metric name in presentation order.
func MetricNames() []string {
	names := make([]string, len(catalog))
	for i, def := range catalog {
		names[i] = def.Name
	}
	return names
}

// --- Assets & liabilities ---

func totalAssets(f *entities.Facts) decimal.Decimal {
	sum := SumAll(f.Holdings, func(h entities.Holding) decimal.Decimal { return h.Value })
	sum = sum.Add(SumAll(f.RealEstate, func(a entities.RealEstateAsset) decimal.Decimal { return a.TotalValue }))
	sum = sum.Add(SumAll(f.Businesses, func(b entities.BusinessInterest) decimal.Decimal { return b.Amount }))
	sum = sum.Add(SumAll(f.InvestmentAccounts, func(a entities.InvestmentAccount) decimal.Decimal { return a.TotalValue }))
	return sum.Add(SumAll(f.PersonalProperty, func(a entities.PersonalPropertyAccount) decimal.Decimal { return a.TotalValue }))
}

func netWorth(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(totalAssets(f).Sub(totalLiabilities(f)))
}

func portfolioTotal(f *entities.Facts) decimal.Decimal {
	sum := SumAll(f.Holdings, func(h entities.Holding) decimal.Decimal { return h.Value })
	return sum.Add(SumAll(f.InvestmentAccounts, func(a entities.InvestmentAccount) decimal.Decimal { return a.TotalValue }))
}

func portfolioValue(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(portfolioTotal(f))
}

func realEstateValue(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumAll(f.RealEstate, func(a entities.RealEstateAsset) decimal.Decimal { return a.TotalValue }))
}

func totalDebt(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(totalLiabilities(f))
}

func equityValue(f *entities.Facts, _ time.Time) entities.MetricValue {
	holdings := SumWhere(f.Holdings,
		func(h entities.Holding) bool { return h.AssetClass.IsEquity() },
		func(h entities.Holding) decimal.Decimal { return h.Value })
	accounts := SumWhere(f.InvestmentAccounts,
		func(a entities.InvestmentAccount) bool { return a.AccountType.IsEquityAccount() },
		func(a entities.InvestmentAccount) decimal.Decimal { return a.HoldingsValue })
	return value(holdings.Add(accounts))
}

func fixedIncomeValue(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumWhere(f.Holdings,
		func(h entities.Holding) bool { return h.AssetClass.IsFixedIncome() },
		func(h entities.Holding) decimal.Decimal { return h.Value }))
}

func cashTotal(f *entities.Facts) decimal.Decimal {
	holdings := SumWhere(f.Holdings,
		func(h entities.Holding) bool { return h.AssetClass == entities.AssetClassCash },
		func(h entities.Holding) decimal.Decimal { return h.Value })
	accounts := SumWhere(f.InvestmentAccounts,
		func(a entities.InvestmentAccount) bool { return a.AccountType == entities.AccountCashAlternative },
		func(a entities.InvestmentAccount) decimal.Decimal { return a.CashBalance })
	return holdings.Add(accounts)
}

func cashValue(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(cashTotal(f))
}

// --- Income ---

func incomeByType(incomeType entities.IncomeType) ComputeFunc {
	return func(f *entities.Facts, _ time.Time) entities.MetricValue {
		return value(SumWhere(f.Incomes,
			func(i entities.IncomeStream) bool { return !i.Deleted && i.IncomeType == incomeType },
			func(i entities.IncomeStream) decimal.Decimal { return i.CurrentYearAmount }))
	}
}

func totalIncome(f *entities.Facts) decimal.Decimal {
	return SumWhere(f.Incomes,
		func(i entities.IncomeStream) bool { return !i.Deleted },
		func(i entities.IncomeStream) decimal.Decimal { return i.CurrentYearAmount })
}

func totalIncomeMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(totalIncome(f))
}

// --- Expenses ---

func currentYearGiving(f *entities.Facts, asOf time.Time) decimal.Decimal {
	return SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			return e.Type == entities.ExpenseSpending &&
				e.SubType == entities.SubTypeGivingAndPhilanthropy &&
				e.AnnualAmount.IsPositive() &&
				activeInYear(e.StartActualDate, e.EndActualDate, asOf)
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount })
}

func currentYearGivingMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	return value(currentYearGiving(f, asOf))
}

func currentYearSavings(f *entities.Facts) decimal.Decimal {
	return SumWhere(f.SavingsPlans,
		func(s entities.SavingsPlan) bool { return s.StartType == entities.SavingsActive },
		func(s entities.SavingsPlan) decimal.Decimal { return s.CalculatedAnnualAmount })
}

func currentYearSavingsMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(currentYearSavings(f))
}

// annualDebtPayment estimates one loan's yearly payment. With rate and term
// present it uses the standard amortization formula; otherwise it assumes the
// balance is repaid within twelve months.
func annualDebtPayment(l entities.Liability) decimal.Decimal {
	balance := l.Outstanding()
	if l.InterestRate == nil || l.LoanTermYears == nil {
		return balance.Div(decimal.NewFromInt(12))
	}
	monthlyRate := l.InterestRate.Div(decimal.NewFromInt(12))
	months := int64(*l.LoanTermYears) * 12
	compound := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(-months))
	denominator := decimal.NewFromInt(1).Sub(compound)
	if denominator.IsZero() {
		return balance.Div(decimal.NewFromInt(12))
	}
	return balance.Mul(monthlyRate).Div(denominator).Mul(decimal.NewFromInt(12))
}

// loanActiveInYear reports whether a serviced loan's repayment window covers
// the asOf year.
func loanActiveInYear(l entities.Liability, asOf time.Time) bool {
	if l.LoanDate == nil || l.LoanDate.Year() > asOf.Year() {
		return false
	}
	if l.LoanTermYears != nil && l.LoanDate.Year()+*l.LoanTermYears < asOf.Year() {
		return false
	}
	return true
}

func currentYearDebt(f *entities.Facts, asOf time.Time) decimal.Decimal {
	return SumWhere(f.Liabilities,
		func(l entities.Liability) bool {
			return l.TotalValue.IsNegative() &&
				l.RepaymentType == entities.RepaymentPrincipalAndInterest &&
				loanActiveInYear(l, asOf)
		},
		annualDebtPayment)
}

func currentYearDebtMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	return value(currentYearDebt(f, asOf))
}

func currentYearTaxes(f *entities.Facts) decimal.Decimal {
	return totalIncome(f).Mul(taxRate).Round(2)
}

func currentYearTaxesMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(currentYearTaxes(f))
}

func currentYearLiving(f *entities.Facts, asOf time.Time) decimal.Decimal {
	return SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			return e.Type == entities.ExpenseLiving &&
				e.AnnualAmount.IsPositive() &&
				activeInYear(e.StartActualDate, e.EndActualDate, asOf)
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount })
}

func currentYearLivingMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	return value(currentYearLiving(f, asOf))
}

func totalExpenses(f *entities.Facts, asOf time.Time) decimal.Decimal {
	return currentYearGiving(f, asOf).
		Add(currentYearSavings(f)).
		Add(currentYearDebt(f, asOf)).
		Add(currentYearTaxes(f)).
		Add(currentYearLiving(f, asOf))
}

func totalExpensesMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	return value(totalExpenses(f, asOf))
}

// marginMetric is signed: a negative margin is a valid shortfall, not an error.
func marginMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	return value(totalIncome(f).Sub(totalExpenses(f, asOf)))
}

// --- Insurance ---

func lifeInsuranceMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumAll(f.LifePolicies,
		func(p entities.LifeInsurancePolicy) decimal.Decimal { return p.DeathBenefit }))
}

func disabilityMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumWhere(f.DisabilityPolicies,
		func(p entities.DisabilityLTCPolicy) bool { return p.SubType.IsDisability() },
		func(p entities.DisabilityLTCPolicy) decimal.Decimal { return p.BenefitAmount }))
}

func ltcMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumWhere(f.DisabilityPolicies,
		func(p entities.DisabilityLTCPolicy) bool { return p.SubType == entities.PolicyPersonalLTC },
		func(p entities.DisabilityLTCPolicy) decimal.Decimal { return p.BenefitAmount }))
}

func umbrellaCoverage(f *entities.Facts) decimal.Decimal {
	return SumWhere(f.PropertyPolicies,
		func(p entities.PropertyCasualtyPolicy) bool { return p.SubType == entities.PolicyUmbrella },
		func(p entities.PropertyCasualtyPolicy) decimal.Decimal { return p.MaximumAnnualBenefit })
}

func umbrellaMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(umbrellaCoverage(f))
}

func businessInsuranceMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumWhere(f.DisabilityPolicies,
		func(p entities.DisabilityLTCPolicy) bool { return p.SubType == entities.PolicyBusinessReducingTerm },
		func(p entities.DisabilityLTCPolicy) decimal.Decimal { return p.BenefitAmount }))
}

func floodInsuranceMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return value(SumWhere(f.PropertyPolicies,
		func(p entities.PropertyCasualtyPolicy) bool { return p.SubType == entities.PolicyFlood },
		func(p entities.PropertyCasualtyPolicy) decimal.Decimal { return p.MaximumAnnualBenefit }))
}

// atRiskMetric is the liability exposure not covered by umbrella insurance:
// taxable investment balances minus umbrella coverage, clamped at zero.
func atRiskMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	taxable := SumWhere(f.InvestmentAccounts,
		func(a entities.InvestmentAccount) bool { return a.AccountType == entities.AccountTaxableInvestment },
		func(a entities.InvestmentAccount) decimal.Decimal { return a.TotalValue })
	gap := taxable.Sub(umbrellaCoverage(f))
	if gap.IsNegative() {
		return value(decimal.Zero)
	}
	return value(gap)
}

// --- Wisdom Index composites ---

func savingsRatioMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	return ratioOf(currentYearSavings(f), totalIncome(f))
}

func givingRatioMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	return ratioOf(currentYearGiving(f, asOf), totalIncome(f))
}

func reservesRatioMetric(f *entities.Facts, asOf time.Time) entities.MetricValue {
	living := currentYearLiving(f, asOf)
	if living.IsZero() {
		return entities.NotApplicable()
	}
	return value(cashTotal(f).Div(living).Mul(reservesWeight))
}

// debtRatioMetric is residence equity over residence value. Mortgages are
// linked to their property through real_estate_id.
func debtRatioMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	houseValue := decimal.Zero
	mortgages := decimal.Zero
	for _, asset := range f.RealEstate {
		if asset.SubType != entities.RealEstateResidence {
			continue
		}
		houseValue = houseValue.Add(asset.TotalValue)
		for _, l := range f.Liabilities {
			if l.SubType == entities.LiabilityMortgage &&
				l.RealEstateID != nil && *l.RealEstateID == asset.AssetID {
				mortgages = mortgages.Add(l.Outstanding())
			}
		}
	}
	return ratioOf(houseValue.Sub(mortgages), houseValue)
}

// diversificationMetric is 1 minus the portfolio share of the largest
// positive holding. Not applicable without positive holdings.
func diversificationMetric(f *entities.Facts, _ time.Time) entities.MetricValue {
	largest, ok := MaxWhere(f.Holdings,
		func(h entities.Holding) bool { return h.Value.IsPositive() },
		func(h entities.Holding) decimal.Decimal { return h.Value })
	if !ok {
		return entities.NotApplicable()
	}
	portfolio := portfolioTotal(f)
	if portfolio.IsZero() {
		return entities.NotApplicable()
	}
	return value(decimal.NewFromInt(1).Sub(largest.Div(portfolio)))
}
