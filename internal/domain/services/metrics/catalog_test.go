package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decF(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func emptyFacts() *entities.Facts {
	return &entities.Facts{
		Profile: &entities.ClientProfile{ClientID: 1, ClientName: "Test Household"},
	}
}

// ratio metrics resolve to null when their denominators are empty; every
// other metric resolves to a plain zero.
var nullOnEmpty = map[string]bool{
	"retirement_ratio": true,
	"survivor_ratio":   true,
	"education_ratio":  true,
	"new_cars_ratio":   true,
	"ltc_ratio":        true,
	"ltd_ratio":        true,
	"savings_ratio":    true,
	"giving_ratio":     true,
	"reserves_ratio":   true,
	"debt_ratio":       true,
	"diversification":  true,
}

func TestCatalogCoversAllCategories(t *testing.T) {
	counts := make(map[entities.MetricCategory]int)
	for _, def := range Catalog() {
		counts[def.Category]++
	}

	assert.Equal(t, 7, counts[entities.CategoryAssetsLiabilities])
	assert.Equal(t, 6, counts[entities.CategoryIncome])
	assert.Equal(t, 7, counts[entities.CategoryExpenses])
	assert.Equal(t, 7, counts[entities.CategoryInsurance])
	assert.Equal(t, 6, counts[entities.CategoryFuturePlanning])
	assert.Equal(t, 5, counts[entities.CategoryWisdomIndex])
	assert.Len(t, Catalog(), 38)
}

func TestEmptyFactsYieldZeroOrNull(t *testing.T) {
	facts := emptyFacts()
	asOf := date(2025, time.June, 1)

	for _, def := range Catalog() {
		t.Run(def.Name, func(t *testing.T) {
			result := def.Compute(facts, asOf)
			if nullOnEmpty[def.Name] {
				assert.False(t, result.Valid(), "expected null for %s", def.Name)
			} else {
				require.True(t, result.Valid(), "expected a value for %s", def.Name)
				assert.True(t, result.Decimal.IsZero(), "expected zero for %s, got %s", def.Name, result.Decimal)
			}
		})
	}
}

func TestNetWorthSubtractsAbsoluteLiabilities(t *testing.T) {
	facts := emptyFacts()
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassLargeCap, Value: dec(100000)},
	}
	facts.RealEstate = []entities.RealEstateAsset{
		{SubType: entities.RealEstateResidence, TotalValue: dec(400000)},
	}
	facts.Liabilities = []entities.Liability{
		{TotalValue: dec(-250000)},
	}

	result := netWorth(facts, date(2025, time.June, 1))
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(dec(250000)), "got %s", result.Decimal)
}

func TestPortfolioIncludesAccountsAndHoldings(t *testing.T) {
	facts := emptyFacts()
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassCash, Value: dec(5000)},
	}
	facts.InvestmentAccounts = []entities.InvestmentAccount{
		{AccountType: entities.AccountTaxableInvestment, TotalValue: dec(95000)},
	}

	result := portfolioValue(facts, date(2025, time.June, 1))
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(dec(100000)))
}

func TestIncomeExcludesDeletedStreams(t *testing.T) {
	facts := emptyFacts()
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: dec(120000)},
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: dec(50000), Deleted: true},
		{IncomeType: entities.IncomePension, CurrentYearAmount: dec(20000)},
	}

	earned := incomeByType(entities.IncomeSalary)(facts, date(2025, time.June, 1))
	require.True(t, earned.Valid())
	assert.True(t, earned.Decimal.Equal(dec(120000)))

	total := totalIncomeMetric(facts, date(2025, time.June, 1))
	require.True(t, total.Valid())
	assert.True(t, total.Decimal.Equal(dec(140000)))
}

func TestCurrentYearSavingsUsesCalculatedAmountOnly(t *testing.T) {
	facts := emptyFacts()
	facts.SavingsPlans = []entities.SavingsPlan{
		{StartType: entities.SavingsActive, CalculatedAnnualAmount: dec(12000), FixedAmount: dec(99999)},
		{StartType: entities.SavingsDeferred, CalculatedAnnualAmount: dec(6000)},
	}

	result := currentYearSavingsMetric(facts, date(2025, time.June, 1))
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(dec(12000)))
}

func TestAnnualDebtPaymentAmortization(t *testing.T) {
	rate := decF(0.06)
	term := 30
	loan := entities.Liability{
		TotalValue:    dec(-300000),
		InterestRate:  &rate,
		LoanTermYears: &term,
		RepaymentType: entities.RepaymentPrincipalAndInterest,
	}

	payment, _ := annualDebtPayment(loan).Round(2).Float64()
	// 300000 at 6% over 30 years: about 1798.65/month.
	assert.InDelta(t, 21583.82, payment, 1.0)
}

func TestAnnualDebtPaymentFallsBackWithoutTerms(t *testing.T) {
	loan := entities.Liability{TotalValue: dec(-24000)}
	assert.True(t, annualDebtPayment(loan).Equal(dec(2000)))
}

func TestCurrentYearDebtFiltersLoans(t *testing.T) {
	asOf := date(2025, time.June, 1)
	rate := decF(0.05)
	term := 10

	facts := emptyFacts()
	facts.Liabilities = []entities.Liability{
		// Interest-only loans excluded.
		{TotalValue: dec(-50000), RepaymentType: entities.RepaymentInterestOnly,
			LoanDate: datePtr(2020, time.January, 1)},
		// Positive balances excluded.
		{TotalValue: dec(1000), RepaymentType: entities.RepaymentPrincipalAndInterest,
			LoanDate: datePtr(2020, time.January, 1)},
		// Expired loan excluded: 2005 + 10 < 2025.
		{TotalValue: dec(-80000), InterestRate: &rate, LoanTermYears: &term,
			RepaymentType: entities.RepaymentPrincipalAndInterest,
			LoanDate:      datePtr(2005, time.January, 1)},
		// Active serviced loan without rate: 24000 / 12 * 12.
		{TotalValue: dec(-24000), RepaymentType: entities.RepaymentPrincipalAndInterest,
			LoanDate: datePtr(2024, time.March, 1)},
	}

	result := currentYearDebtMetric(facts, asOf)
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(dec(2000)), "got %s", result.Decimal)
}

func TestCurrentYearTaxesIsFlatRateOfIncome(t *testing.T) {
	facts := emptyFacts()
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: dec(100000)},
	}

	result := currentYearTaxesMetric(facts, date(2025, time.June, 1))
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(dec(15000)))
}

func TestExpenseAdditivityAndMargin(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := emptyFacts()
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: dec(200000)},
	}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseSpending, SubType: entities.SubTypeGivingAndPhilanthropy,
			AnnualAmount: dec(10000), StartActualDate: datePtr(2020, time.January, 1)},
		{Type: entities.ExpenseLiving, AnnualAmount: dec(60000),
			StartActualDate: datePtr(2020, time.January, 1)},
	}
	facts.SavingsPlans = []entities.SavingsPlan{
		{StartType: entities.SavingsActive, CalculatedAnnualAmount: dec(24000)},
	}
	facts.Liabilities = []entities.Liability{
		{TotalValue: dec(-12000), RepaymentType: entities.RepaymentPrincipalAndInterest,
			LoanDate: datePtr(2024, time.June, 1)},
	}

	giving := currentYearGiving(facts, asOf)
	savings := currentYearSavings(facts)
	debt := currentYearDebt(facts, asOf)
	taxes := currentYearTaxes(facts)
	living := currentYearLiving(facts, asOf)

	total := totalExpensesMetric(facts, asOf)
	require.True(t, total.Valid())
	expected := giving.Add(savings).Add(debt).Add(taxes).Add(living)
	assert.True(t, total.Decimal.Equal(expected))

	// 10000 + 24000 + 1000 + 30000 + 60000
	assert.True(t, total.Decimal.Equal(dec(125000)), "got %s", total.Decimal)

	margin := marginMetric(facts, asOf)
	require.True(t, margin.Valid())
	assert.True(t, margin.Decimal.Equal(dec(75000)))
}

func TestMarginCanBeNegative(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := emptyFacts()
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseLiving, AnnualAmount: dec(50000),
			StartActualDate: datePtr(2020, time.January, 1)},
	}

	margin := marginMetric(facts, asOf)
	require.True(t, margin.Valid())
	assert.True(t, margin.Decimal.Equal(dec(-50000)))
}

func TestExpenseWindowExcludesInactiveRows(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := emptyFacts()
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseLiving, AnnualAmount: dec(40000),
			StartActualDate: datePtr(2020, time.January, 1)},
		// Ended two years ago.
		{Type: entities.ExpenseLiving, AnnualAmount: dec(10000),
			StartActualDate: datePtr(2018, time.January, 1),
			EndActualDate:   datePtr(2023, time.December, 31)},
		// Negative amounts never count.
		{Type: entities.ExpenseLiving, AnnualAmount: dec(-5000),
			StartActualDate: datePtr(2020, time.January, 1)},
	}

	result := currentYearLivingMetric(facts, asOf)
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(dec(40000)))
}

func TestAtRiskClampsAtZero(t *testing.T) {
	facts := emptyFacts()
	facts.InvestmentAccounts = []entities.InvestmentAccount{
		{AccountType: entities.AccountTaxableInvestment, TotalValue: dec(500000)},
	}
	facts.PropertyPolicies = []entities.PropertyCasualtyPolicy{
		{SubType: entities.PolicyUmbrella, MaximumAnnualBenefit: dec(1000000)},
	}

	covered := atRiskMetric(facts, date(2025, time.June, 1))
	require.True(t, covered.Valid())
	assert.True(t, covered.Decimal.IsZero())

	facts.PropertyPolicies[0].MaximumAnnualBenefit = dec(200000)
	exposed := atRiskMetric(facts, date(2025, time.June, 1))
	require.True(t, exposed.Valid())
	assert.True(t, exposed.Decimal.Equal(dec(300000)))
}

func TestDisabilitySplitsBySubType(t *testing.T) {
	facts := emptyFacts()
	facts.DisabilityPolicies = []entities.DisabilityLTCPolicy{
		{SubType: entities.PolicyPersonalDisability, BenefitAmount: dec(60000)},
		{SubType: entities.PolicyBusinessDisability, BenefitAmount: dec(40000)},
		{SubType: entities.PolicyPersonalLTC, BenefitAmount: dec(90000)},
		{SubType: entities.PolicyBusinessReducingTerm, BenefitAmount: dec(250000)},
	}
	asOf := date(2025, time.June, 1)

	disability := disabilityMetric(facts, asOf)
	require.True(t, disability.Valid())
	assert.True(t, disability.Decimal.Equal(dec(100000)))

	ltc := ltcMetric(facts, asOf)
	require.True(t, ltc.Valid())
	assert.True(t, ltc.Decimal.Equal(dec(90000)))

	business := businessInsuranceMetric(facts, asOf)
	require.True(t, business.Valid())
	assert.True(t, business.Decimal.Equal(dec(250000)))
}

func TestReservesRatioHalvesCashCoverage(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := emptyFacts()
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassCash, Value: dec(10000)},
	}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseLiving, AnnualAmount: dec(20000),
			StartActualDate: datePtr(2020, time.January, 1)},
	}

	result := reservesRatioMetric(facts, asOf)
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(decF(0.25)), "got %s", result.Decimal)

	// No living expenses: not applicable, not an error.
	assert.False(t, reservesRatioMetric(emptyFacts(), asOf).Valid())
}

func TestDebtRatioUsesLinkedMortgages(t *testing.T) {
	facts := emptyFacts()
	facts.RealEstate = []entities.RealEstateAsset{
		{AssetID: 1, SubType: entities.RealEstateResidence, TotalValue: dec(500000)},
		{AssetID: 2, SubType: entities.RealEstateInvestment, TotalValue: dec(300000)},
	}
	linked := int64(1)
	unlinked := int64(2)
	facts.Liabilities = []entities.Liability{
		{SubType: entities.LiabilityMortgage, TotalValue: dec(-300000), RealEstateID: &linked},
		// Mortgage on the investment property must not count.
		{SubType: entities.LiabilityMortgage, TotalValue: dec(-100000), RealEstateID: &unlinked},
	}

	result := debtRatioMetric(facts, date(2025, time.June, 1))
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(decF(0.4)), "got %s", result.Decimal)
}

func TestDiversification(t *testing.T) {
	facts := emptyFacts()
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassLargeCap, Value: dec(600)},
		{AssetClass: entities.AssetClassInvestBond, Value: dec(400)},
	}

	result := diversificationMetric(facts, date(2025, time.June, 1))
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(decF(0.4)), "got %s", result.Decimal)

	// Only negative holdings: no positive position to measure.
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassLargeCap, Value: dec(-100)},
	}
	assert.False(t, diversificationMetric(facts, date(2025, time.June, 1)).Valid())
}

func TestEquityCombinesHoldingsAndAccounts(t *testing.T) {
	facts := emptyFacts()
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassLargeCap, Value: dec(50000)},
		{AssetClass: entities.AssetClassInvestBond, Value: dec(30000)},
	}
	facts.InvestmentAccounts = []entities.InvestmentAccount{
		{AccountType: entities.AccountRothIRA, HoldingsValue: dec(25000), TotalValue: dec(26000)},
		{AccountType: entities.AccountCashAlternative, HoldingsValue: dec(9000), CashBalance: dec(1000)},
	}

	equity := equityValue(facts, date(2025, time.June, 1))
	require.True(t, equity.Valid())
	assert.True(t, equity.Decimal.Equal(dec(75000)), "got %s", equity.Decimal)

	fixed := fixedIncomeValue(facts, date(2025, time.June, 1))
	require.True(t, fixed.Valid())
	assert.True(t, fixed.Decimal.Equal(dec(30000)))

	cash := cashValue(facts, date(2025, time.June, 1))
	require.True(t, cash.Valid())
	assert.True(t, cash.Decimal.Equal(dec(1000)))
}
