package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

func TestAnnuityFactor(t *testing.T) {
	assert.True(t, annuityFactor(0).IsZero())
	assert.True(t, annuityFactor(-3).IsZero())

	one, _ := annuityFactor(1).Float64()
	assert.InDelta(t, 0.9615, one, 0.0001)

	ten, _ := annuityFactor(10).Float64()
	assert.InDelta(t, 8.1109, ten, 0.0001)

	twenty, _ := annuityFactor(20).Float64()
	assert.InDelta(t, 13.5903, twenty, 0.0001)
}

func TestAnnuityFactorMonotonic(t *testing.T) {
	prev := annuityFactor(0)
	for years := 1; years <= 30; years++ {
		current := annuityFactor(years)
		assert.True(t, current.GreaterThan(prev), "factor must grow with horizon at %d years", years)
		prev = current
	}
}

func TestAgeAt(t *testing.T) {
	asOf := date(2025, time.June, 15)

	assert.Equal(t, -1, ageAt(nil, asOf))
	assert.Equal(t, 40, ageAt(datePtr(1985, time.January, 10), asOf))
	// Birthday later this year: still 39.
	assert.Equal(t, 39, ageAt(datePtr(1985, time.December, 10), asOf))
	// Birthday today counts.
	assert.Equal(t, 40, ageAt(datePtr(1985, time.June, 15), asOf))
}

func TestYearsToRetirementClampedToPlanningHorizon(t *testing.T) {
	assert.Equal(t, 20, yearsToRetirement(30)) // 35 remaining, capped
	assert.Equal(t, 15, yearsToRetirement(50))
	assert.Equal(t, 0, yearsToRetirement(65))
	assert.Equal(t, -5, yearsToRetirement(70))
}

func retirementFixture(dob *time.Time) *entities.Facts {
	facts := &entities.Facts{
		Profile: &entities.ClientProfile{ClientID: 1, DateOfBirth: dob},
	}
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, AnnualAmount: dec(100000), CurrentYearAmount: dec(100000)},
	}
	facts.InvestmentAccounts = []entities.InvestmentAccount{
		{AccountType: entities.AccountQualifiedRetirement, TotalValue: dec(400000)},
	}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseLiving, AnnualAmount: dec(80000),
			StartActualDate: datePtr(2020, time.January, 1)},
	}
	facts.Liabilities = []entities.Liability{
		{TotalValue: dec(-100000)},
	}
	return facts
}

func TestRetirementRatioNullWhenAgeUnknownOrRetired(t *testing.T) {
	asOf := date(2025, time.June, 1)

	assert.False(t, retirementRatio(retirementFixture(nil), asOf).Valid())
	assert.False(t, retirementRatio(retirementFixture(datePtr(1955, time.January, 1)), asOf).Valid())
}

func TestRetirementRatioComposition(t *testing.T) {
	asOf := date(2025, time.June, 1)
	facts := retirementFixture(datePtr(1975, time.March, 1)) // age 50, 15 years out

	result := retirementRatio(facts, asOf)
	require.True(t, result.Valid())

	// resources = 100000 * af(15) + 400000; needs = 80000 * af(15) + 100000
	factor, _ := annuityFactor(15).Float64()
	expected := (100000*factor + 400000) / (80000*factor + 100000)
	got, _ := result.Decimal.Float64()
	assert.InDelta(t, expected, got, 0.0001)
}

func TestRetirementRatioDeterministic(t *testing.T) {
	asOf := date(2025, time.June, 1)
	facts := retirementFixture(datePtr(1975, time.March, 1))

	first := retirementRatio(facts, asOf)
	second := retirementRatio(facts, asOf)
	require.True(t, first.Valid())
	require.True(t, second.Valid())
	assert.True(t, first.Decimal.Equal(*second.Decimal))
}

func TestRetirementRatioMonotonicInResources(t *testing.T) {
	asOf := date(2025, time.June, 1)

	base := retirementFixture(datePtr(1975, time.March, 1))
	richer := retirementFixture(datePtr(1975, time.March, 1))
	richer.InvestmentAccounts[0].TotalValue = dec(800000)

	baseRatio := retirementRatio(base, asOf)
	richerRatio := retirementRatio(richer, asOf)
	require.True(t, baseRatio.Valid())
	require.True(t, richerRatio.Valid())
	assert.True(t, richerRatio.Decimal.GreaterThan(*baseRatio.Decimal))
}

func TestSurvivorRatioCountsDeathBenefits(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := &entities.Facts{Profile: &entities.ClientProfile{ClientID: 1}}
	facts.LifePolicies = []entities.LifeInsurancePolicy{
		{DeathBenefit: dec(1000000)},
	}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseLiving, AnnualAmount: dec(60000),
			StartActualDate: datePtr(2020, time.January, 1)},
	}

	result := survivorRatio(facts, asOf)
	require.True(t, result.Valid())

	factor, _ := annuityFactor(survivorHorizon).Float64()
	expected := 1000000 / (60000 * factor)
	got, _ := result.Decimal.Float64()
	assert.InDelta(t, expected, got, 0.0001)
}

func TestSurvivorRatioDropsExpensesEndingAtSecondDeath(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := &entities.Facts{Profile: &entities.ClientProfile{ClientID: 1}}
	facts.LifePolicies = []entities.LifeInsurancePolicy{{DeathBenefit: dec(500000)}}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseLiving, AnnualAmount: dec(60000),
			EndType: entities.EndTypeAtSecondDeath},
	}

	// The only expense ends at second death, so needs are just liabilities (zero).
	assert.False(t, survivorRatio(facts, asOf).Valid())
}

func TestEducationRatio(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := &entities.Facts{Profile: &entities.ClientProfile{ClientID: 1}}
	facts.InvestmentAccounts = []entities.InvestmentAccount{
		{AccountType: entities.AccountEducation, TotalValue: dec(50000)},
	}
	facts.SavingsPlans = []entities.SavingsPlan{
		{Destination: "Education Fund", CalculatedAnnualAmount: dec(5000)},
	}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseSpending, SubType: entities.SubTypeEducation, AnnualAmount: dec(20000)},
	}

	result := educationRatio(facts, asOf)
	require.True(t, result.Valid())

	factor, _ := annuityFactor(educationHorizon).Float64()
	expected := (5000*factor + 50000) / (20000 * factor)
	got, _ := result.Decimal.Float64()
	assert.InDelta(t, expected, got, 0.0001)
}

func TestNewCarsRatioKeywordMatching(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := &entities.Facts{Profile: &entities.ClientProfile{ClientID: 1}}
	facts.InvestmentAccounts = []entities.InvestmentAccount{
		{AccountType: entities.AccountOther, AccountName: "Joint Brokerage", TotalValue: dec(40000)},
	}
	facts.Expenses = []entities.ExpenseItem{
		{Type: entities.ExpenseSpending, ExpenseItem: "New Car Replacement", AnnualAmount: dec(8000)},
	}

	result := newCarsRatio(facts, asOf)
	require.True(t, result.Valid())

	factor, _ := annuityFactor(newCarsHorizon).Float64()
	expected := 40000 / (8000 * factor)
	got, _ := result.Decimal.Float64()
	assert.InDelta(t, expected, got, 0.0001)
}

func TestLtdRatio(t *testing.T) {
	asOf := date(2025, time.June, 1)

	facts := &entities.Facts{Profile: &entities.ClientProfile{ClientID: 1}}
	facts.DisabilityPolicies = []entities.DisabilityLTCPolicy{
		{SubType: entities.PolicyPersonalDisability, BenefitAmount: dec(60000)},
	}
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: dec(100000)},
	}

	result := ltdRatio(facts, asOf)
	require.True(t, result.Valid())
	assert.True(t, result.Decimal.Equal(decF(0.6)), "got %s", result.Decimal)

	// No salary: coverage ratio is undefined, not infinite.
	facts.Incomes = nil
	assert.False(t, ltdRatio(facts, asOf).Valid())
}
