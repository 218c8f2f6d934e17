package metrics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// Present-value projection for the future-planning ratios. Pure arithmetic
// over an already-fetched fact bundle; asOf is injected so identical inputs
// always produce identical outputs.

const (
	retirementAge   = 65
	planningHorizon = 20 // year ceiling on every projection

	survivorHorizon  = 20
	educationHorizon = 10
	newCarsHorizon   = 5
	ltcHorizon       = 20
)

var (
	discountBase = decimal.NewFromFloat(1.04)
	discountRate = decimal.NewFromFloat(0.04)
)

// annuityFactor returns the present value of a level annual payment of 1 over
// n years at the 4% discount rate: (1 - 1.04^-n) / 0.04. Zero or negative
// horizons produce a zero factor.
func annuityFactor(years int) decimal.Decimal {
	if years <= 0 {
		return decimal.Zero
	}
	inv := decimal.NewFromInt(1).Div(discountBase)
	return decimal.NewFromInt(1).Sub(inv.Pow(decimal.NewFromInt(int64(years)))).Div(discountRate)
}

// ageAt returns whole years of age at asOf, or -1 when the date of birth is
// unknown.
func ageAt(dob *time.Time, asOf time.Time) int {
	if dob == nil {
		return -1
	}
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() ||
		(asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return age
}

// yearsToRetirement clamps the remaining working years to the planning
// horizon ceiling. Negative when already past retirement age.
func yearsToRetirement(age int) int {
	years := retirementAge - age
	if years > planningHorizon {
		years = planningHorizon
	}
	return years
}

// currentAssets sums investment, real-estate and personal-property balances;
// the asset base every whole-life projection draws on.
func currentAssets(f *entities.Facts) decimal.Decimal {
	sum := SumAll(f.InvestmentAccounts, func(a entities.InvestmentAccount) decimal.Decimal { return a.TotalValue })
	sum = sum.Add(SumAll(f.RealEstate, func(a entities.RealEstateAsset) decimal.Decimal { return a.TotalValue }))
	return sum.Add(SumAll(f.PersonalProperty, func(a entities.PersonalPropertyAccount) decimal.Decimal { return a.TotalValue }))
}

func totalLiabilities(f *entities.Facts) decimal.Decimal {
	return SumAll(f.Liabilities, func(l entities.Liability) decimal.Decimal { return l.TotalValue }).Abs()
}

// retirementRatio compares retirement resources (future income until 65,
// current assets, retirement-directed savings) with needs (future expenses
// until 65, outstanding liabilities). Not applicable once the client is at or
// past retirement age, or when the date of birth is unknown.
func retirementRatio(f *entities.Facts, asOf time.Time) entities.MetricValue {
	age := ageAt(f.Profile.DateOfBirth, asOf)
	if age < 0 || age >= retirementAge {
		return entities.NotApplicable()
	}
	years := yearsToRetirement(age)
	factor := annuityFactor(years)

	incomePV := SumWhere(f.Incomes,
		func(i entities.IncomeStream) bool {
			if i.Deleted {
				return false
			}
			// Streams ending by age count only when they outlast retirement.
			if i.EndType == entities.EndTypeAge && (i.EndValue == nil || *i.EndValue <= retirementAge) {
				return false
			}
			return true
		},
		func(i entities.IncomeStream) decimal.Decimal { return i.AnnualAmount.Mul(factor) })

	retirementSavings := SumWhere(f.SavingsPlans,
		func(s entities.SavingsPlan) bool {
			return matchesAny(retirementKeywords, s.Destination, s.AccountName)
		},
		func(s entities.SavingsPlan) decimal.Decimal { return s.AnnualAmount() })

	resources := incomePV.Add(currentAssets(f)).Add(retirementSavings)

	expensePV := SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			if e.EndType != entities.EndTypeAge {
				return true
			}
			// Age-bounded expenses count only when their window outlasts the
			// remaining working years.
			if e.StartActualDate == nil || e.EndActualDate == nil {
				return false
			}
			return e.EndActualDate.Year()-e.StartActualDate.Year() > years
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount.Mul(factor) })

	needs := expensePV.Add(totalLiabilities(f))
	return ratioOf(resources, needs)
}

// survivorRatio compares post-death resources (death benefits, surviving
// income streams, current assets) with post-death needs (continuing expenses,
// outstanding liabilities) over a fixed 20-year horizon.
func survivorRatio(f *entities.Facts, asOf time.Time) entities.MetricValue {
	factor := annuityFactor(survivorHorizon)

	survivingIncomePV := SumWhere(f.Incomes,
		func(i entities.IncomeStream) bool {
			if i.Deleted {
				return false
			}
			survives := i.EndType == entities.EndTypeSpousesDeath || i.OwnerType == entities.OwnerSpouse
			if !survives {
				return false
			}
			return i.EndValue == nil || *i.EndValue > asOf.Year()
		},
		func(i entities.IncomeStream) decimal.Decimal { return i.AnnualAmount.Mul(factor) })

	deathBenefits := SumWhere(f.LifePolicies,
		func(p entities.LifeInsurancePolicy) bool { return p.DeathBenefit.IsPositive() },
		func(p entities.LifeInsurancePolicy) decimal.Decimal { return p.DeathBenefit })

	resources := deathBenefits.Add(survivingIncomePV).Add(currentAssets(f))

	continuingExpensePV := SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			if e.EndType == entities.EndTypeAtSecondDeath {
				return false
			}
			return e.EndActualDate == nil || e.EndActualDate.After(asOf)
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount.Mul(factor) })

	needs := continuingExpensePV.Add(totalLiabilities(f))
	return ratioOf(resources, needs)
}

// educationRatio compares education-directed savings and account balances
// with projected education expenses over a 10-year horizon.
func educationRatio(f *entities.Facts, asOf time.Time) entities.MetricValue {
	factor := annuityFactor(educationHorizon)

	savingsPV := SumWhere(f.SavingsPlans,
		func(s entities.SavingsPlan) bool { return containsFold(s.Destination, "education") },
		func(s entities.SavingsPlan) decimal.Decimal { return s.AnnualAmount().Mul(factor) })

	accountBalances := SumWhere(f.InvestmentAccounts,
		func(a entities.InvestmentAccount) bool { return a.AccountType == entities.AccountEducation },
		func(a entities.InvestmentAccount) decimal.Decimal { return a.TotalValue })
	accountBalances = accountBalances.Add(
		SumAll(f.PersonalProperty, func(a entities.PersonalPropertyAccount) decimal.Decimal { return a.TotalValue }))

	resources := savingsPV.Add(accountBalances)

	needs := SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			return e.SubType == entities.SubTypeEducation ||
				containsFold(string(e.Type), "education") ||
				containsFold(e.ExpenseItem, "education")
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount.Mul(factor) })

	return ratioOf(resources, needs)
}

// newCarsRatio compares taxable account balances and unrestricted savings
// with projected vehicle-replacement expenses over a 5-year horizon.
func newCarsRatio(f *entities.Facts, asOf time.Time) entities.MetricValue {
	factor := annuityFactor(newCarsHorizon)

	taxableBalances := SumWhere(f.InvestmentAccounts,
		func(a entities.InvestmentAccount) bool {
			return a.AccountType == entities.AccountTaxableInvestment ||
				matchesAny(taxableKeywords, a.AccountName)
		},
		func(a entities.InvestmentAccount) decimal.Decimal { return a.TotalValue })

	unrestrictedSavingsPV := SumWhere(f.SavingsPlans,
		func(s entities.SavingsPlan) bool {
			return !containsFold(s.Destination, "retirement") && !containsFold(s.Destination, "education")
		},
		func(s entities.SavingsPlan) decimal.Decimal { return s.AnnualAmount().Mul(factor) })

	resources := taxableBalances.Add(unrestrictedSavingsPV)

	needs := SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			return e.SubType == entities.SubTypeVehicle ||
				matchesAny(vehicleKeywords, e.ExpenseItem, string(e.Type), string(e.SubType))
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount.Mul(factor) })

	return ratioOf(resources, needs)
}

// ltcRatio compares whole-life resources (all future income, current assets)
// with projected non-LTC expenses plus LTC premiums over a 20-year horizon.
func ltcRatio(f *entities.Facts, asOf time.Time) entities.MetricValue {
	factor := annuityFactor(ltcHorizon)

	incomePV := SumWhere(f.Incomes,
		func(i entities.IncomeStream) bool { return !i.Deleted },
		func(i entities.IncomeStream) decimal.Decimal { return i.AnnualAmount.Mul(factor) })

	resources := incomePV.Add(currentAssets(f))

	regularExpensePV := SumWhere(f.Expenses,
		func(e entities.ExpenseItem) bool {
			return e.SubType != entities.SubTypeLongTermCare &&
				!containsFold(e.ExpenseItem, "long term care")
		},
		func(e entities.ExpenseItem) decimal.Decimal { return e.AnnualAmount.Mul(factor) })

	premiumPV := SumWhere(f.DisabilityPolicies,
		func(p entities.DisabilityLTCPolicy) bool { return p.SubType == entities.PolicyPersonalLTC },
		func(p entities.DisabilityLTCPolicy) decimal.Decimal { return p.AnnualPremium.Mul(factor) })

	needs := regularExpensePV.Add(premiumPV)
	return ratioOf(resources, needs)
}

// ltdRatio compares disability benefits with current earned income. A pure
// coverage ratio; no discounting involved.
func ltdRatio(f *entities.Facts, asOf time.Time) entities.MetricValue {
	benefits := SumWhere(f.DisabilityPolicies,
		func(p entities.DisabilityLTCPolicy) bool { return p.SubType.IsDisability() },
		func(p entities.DisabilityLTCPolicy) decimal.Decimal { return p.BenefitAmount })

	earned := SumWhere(f.Incomes,
		func(i entities.IncomeStream) bool {
			return !i.Deleted && i.IncomeType == entities.IncomeSalary
		},
		func(i entities.IncomeStream) decimal.Decimal { return i.CurrentYearAmount })

	return ratioOf(benefits, earned)
}

var (
	retirementKeywords = []string{"retirement", "401k", "ira"}
	taxableKeywords    = []string{"taxable", "brokerage"}
	vehicleKeywords    = []string{"car", "vehicle", "auto"}
)

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func matchesAny(keywords []string, values ...string) bool {
	for _, value := range values {
		for _, keyword := range keywords {
			if containsFold(value, keyword) {
				return true
			}
		}
	}
	return false
}
