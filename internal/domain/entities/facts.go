package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientProfile holds the household-level attributes that drive age-based
// projections. Every other fact hangs off the client by foreign key.
type ClientProfile struct {
	ClientID    int64      `json:"client_id" db:"client_id"`
	ClientName  string     `json:"client_name" db:"client_name"`
	DateOfBirth *time.Time `json:"date_of_birth" db:"date_of_birth"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// AssetClass classifies a holding. The set is closed so category sums can
// switch exhaustively instead of matching raw strings from the database.
type AssetClass string

const (
	AssetClassLargeCap      AssetClass = "largecap"
	AssetClassSmallCap      AssetClass = "smallcap"
	AssetClassLargeValue    AssetClass = "largevalue"
	AssetClassSmallValue    AssetClass = "smallvalue"
	AssetClassInternational AssetClass = "internat"
	AssetClassEmerging      AssetClass = "emerging"
	AssetClassIPS           AssetClass = "ips"
	AssetClassHighYieldBond AssetClass = "highyldbond"
	AssetClassIntTermMuni   AssetClass = "inttermmun"
	AssetClassInvestBond    AssetClass = "investbond"
	AssetClassShortTermBond AssetClass = "shortermbond"
	AssetClassShortTermMuni AssetClass = "shortermmun"
	AssetClassCash          AssetClass = "cash"
	AssetClassOther         AssetClass = "other"
)

// IsEquity reports whether the class counts toward the equity metric.
func (a AssetClass) IsEquity() bool {
	switch a {
	case AssetClassLargeCap, AssetClassSmallCap, AssetClassLargeValue,
		AssetClassSmallValue, AssetClassInternational, AssetClassEmerging, AssetClassIPS:
		return true
	}
	return false
}

// IsFixedIncome reports whether the class counts toward the fixed-income metric.
func (a AssetClass) IsFixedIncome() bool {
	switch a {
	case AssetClassHighYieldBond, AssetClassIntTermMuni, AssetClassInvestBond,
		AssetClassShortTermBond, AssetClassShortTermMuni:
		return true
	}
	return false
}

// Holding is a single position in the client's portfolio.
type Holding struct {
	HoldingID  int64           `json:"holding_id" db:"holding_id"`
	ClientID   int64           `json:"client_id" db:"client_id"`
	Name       string          `json:"name" db:"name"`
	AssetClass AssetClass      `json:"asset_class" db:"asset_class"`
	Value      decimal.Decimal `json:"value" db:"value"`
}

// RealEstateSubType discriminates real-estate assets.
type RealEstateSubType string

const (
	RealEstateResidence  RealEstateSubType = "residence"
	RealEstateInvestment RealEstateSubType = "investment"
	RealEstateOther      RealEstateSubType = "other"
)

// RealEstateAsset is a property owned by the client.
type RealEstateAsset struct {
	AssetID    int64             `json:"asset_id" db:"asset_id"`
	ClientID   int64             `json:"client_id" db:"client_id"`
	Name       string            `json:"name" db:"name"`
	SubType    RealEstateSubType `json:"sub_type" db:"sub_type"`
	TotalValue decimal.Decimal   `json:"total_value" db:"total_value"`
}

// BusinessInterest is an ownership stake in a business.
type BusinessInterest struct {
	BusinessID int64           `json:"business_id" db:"business_id"`
	ClientID   int64           `json:"client_id" db:"client_id"`
	Name       string          `json:"name" db:"name"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
}

// InvestmentAccountType discriminates investment/deposit accounts.
type InvestmentAccountType string

const (
	AccountTaxableInvestment   InvestmentAccountType = "taxable_investment"
	AccountRothIRA             InvestmentAccountType = "roth_ira"
	AccountQualifiedRetirement InvestmentAccountType = "qualified_retirement"
	AccountCashAlternative     InvestmentAccountType = "cash_alternative"
	AccountEducation           InvestmentAccountType = "education"
	AccountOther               InvestmentAccountType = "other"
)

// IsEquityAccount reports whether the account's holdings count toward equity.
func (t InvestmentAccountType) IsEquityAccount() bool {
	switch t {
	case AccountTaxableInvestment, AccountRothIRA, AccountQualifiedRetirement:
		return true
	}
	return false
}

// InvestmentAccount is an investment or deposit account.
type InvestmentAccount struct {
	AccountID     int64                 `json:"account_id" db:"account_id"`
	ClientID      int64                 `json:"client_id" db:"client_id"`
	AccountName   string                `json:"account_name" db:"account_name"`
	AccountType   InvestmentAccountType `json:"account_type" db:"account_type"`
	TotalValue    decimal.Decimal       `json:"total_value" db:"total_value"`
	HoldingsValue decimal.Decimal       `json:"holdings_value" db:"holdings_value"`
	CashBalance   decimal.Decimal       `json:"cash_balance" db:"cash_balance"`
}

// PersonalPropertyAccount is a personal-property line item (vehicles,
// collectibles, household goods).
type PersonalPropertyAccount struct {
	AccountID  int64           `json:"account_id" db:"account_id"`
	ClientID   int64           `json:"client_id" db:"client_id"`
	Name       string          `json:"name" db:"name"`
	TotalValue decimal.Decimal `json:"total_value" db:"total_value"`
}

// LiabilitySubType discriminates liability accounts.
type LiabilitySubType string

const (
	LiabilityMortgage LiabilitySubType = "mortgage"
	LiabilityNote     LiabilitySubType = "note"
	LiabilityOther    LiabilitySubType = "other"
)

// RepaymentType describes how a loan is being serviced.
type RepaymentType string

const (
	RepaymentPrincipalAndInterest RepaymentType = "principal_and_interest"
	RepaymentInterestOnly         RepaymentType = "interest_only"
)

// Liability is an outstanding loan or note. TotalValue is stored negative for
// actual debt, matching the source ledger convention.
type Liability struct {
	LiabilityID   int64            `json:"liability_id" db:"liability_id"`
	ClientID      int64            `json:"client_id" db:"client_id"`
	AccountName   string           `json:"account_name" db:"account_name"`
	SubType       LiabilitySubType `json:"sub_type" db:"sub_type"`
	TotalValue    decimal.Decimal  `json:"total_value" db:"total_value"`
	InterestRate  *decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	LoanTermYears *int             `json:"loan_term_years" db:"loan_term_years"`
	RepaymentType RepaymentType    `json:"repayment_type" db:"repayment_type"`
	LoanDate      *time.Time       `json:"loan_date" db:"loan_date"`
	RealEstateID  *int64           `json:"real_estate_id" db:"real_estate_id"`
}

// Outstanding returns the positive outstanding balance.
func (l Liability) Outstanding() decimal.Decimal {
	return l.TotalValue.Abs()
}

// IncomeType classifies an income stream.
type IncomeType string

const (
	IncomeSalary         IncomeType = "salary"
	IncomeSocialSecurity IncomeType = "social_security"
	IncomePension        IncomeType = "pension"
	IncomeRealEstate     IncomeType = "real_estate"
	IncomeBusiness       IncomeType = "business"
	IncomeOther          IncomeType = "other"
)

// StreamEndType describes how an income or expense stream terminates.
type StreamEndType string

const (
	EndTypeNone          StreamEndType = ""
	EndTypeAge           StreamEndType = "age"
	EndTypeYear          StreamEndType = "year"
	EndTypeSpousesDeath  StreamEndType = "spouses_death"
	EndTypeAtSecondDeath StreamEndType = "at_second_death"
)

// OwnerType identifies which household member owns a stream.
type OwnerType string

const (
	OwnerClient OwnerType = "client"
	OwnerSpouse OwnerType = "spouse"
	OwnerJoint  OwnerType = "joint"
)

// IncomeStream is a recurring income source. Soft-deleted rows are excluded
// from every aggregation.
type IncomeStream struct {
	IncomeID          int64           `json:"income_id" db:"income_id"`
	ClientID          int64           `json:"client_id" db:"client_id"`
	Name              string          `json:"name" db:"name"`
	IncomeType        IncomeType      `json:"income_type" db:"income_type"`
	CurrentYearAmount decimal.Decimal `json:"current_year_amount" db:"current_year_amount"`
	AnnualAmount      decimal.Decimal `json:"annual_amount" db:"annual_amount"`
	EndType           StreamEndType   `json:"end_type" db:"end_type"`
	EndValue          *int            `json:"end_value" db:"end_value"`
	OwnerType         OwnerType       `json:"owner_type" db:"owner_type"`
	Deleted           bool            `json:"deleted" db:"deleted"`
}

// ExpenseType classifies an expense row.
type ExpenseType string

const (
	ExpenseLiving   ExpenseType = "living"
	ExpenseSpending ExpenseType = "spending"
	ExpenseOther    ExpenseType = "other"
)

// ExpenseSubType refines the expense classification.
type ExpenseSubType string

const (
	SubTypeGivingAndPhilanthropy ExpenseSubType = "giving_and_philanthropy"
	SubTypeEducation             ExpenseSubType = "education"
	SubTypeVehicle               ExpenseSubType = "vehicle"
	SubTypeLongTermCare          ExpenseSubType = "long_term_care"
	SubTypeGeneral               ExpenseSubType = "general"
)

// ExpenseItem is a recurring expense with an active-date window. A row counts
// toward a calendar year only when its window intersects that year.
type ExpenseItem struct {
	ExpenseID       int64           `json:"expense_id" db:"expense_id"`
	ClientID        int64           `json:"client_id" db:"client_id"`
	ExpenseItem     string          `json:"expense_item" db:"expense_item"`
	Type            ExpenseType     `json:"type" db:"type"`
	SubType         ExpenseSubType  `json:"sub_type" db:"sub_type"`
	AnnualAmount    decimal.Decimal `json:"annual_amount" db:"annual_amount"`
	StartActualDate *time.Time      `json:"start_actual_date" db:"start_actual_date"`
	EndActualDate   *time.Time      `json:"end_actual_date" db:"end_actual_date"`
	EndType         StreamEndType   `json:"end_type" db:"end_type"`
}

// SavingsStartType describes the activation state of a savings plan.
type SavingsStartType string

const (
	SavingsActive   SavingsStartType = "active"
	SavingsDeferred SavingsStartType = "deferred"
)

// SavingsPlan is a recurring contribution toward a destination account.
type SavingsPlan struct {
	SavingsID              int64            `json:"savings_id" db:"savings_id"`
	ClientID               int64            `json:"client_id" db:"client_id"`
	Destination            string           `json:"destination" db:"destination"`
	AccountName            string           `json:"account_name" db:"account_name"`
	StartType              SavingsStartType `json:"start_type" db:"start_type"`
	CalculatedAnnualAmount decimal.Decimal  `json:"calculated_annual_amount" db:"calculated_annual_amount"`
	FixedAmount            decimal.Decimal  `json:"fixed_amount" db:"fixed_amount"`
}

// AnnualAmount prefers the calculated contribution and falls back to the
// fixed amount when no calculation exists.
func (s SavingsPlan) AnnualAmount() decimal.Decimal {
	if !s.CalculatedAnnualAmount.IsZero() {
		return s.CalculatedAnnualAmount
	}
	return s.FixedAmount
}

// LifeInsurancePolicy carries a death benefit.
type LifeInsurancePolicy struct {
	PolicyID     int64           `json:"policy_id" db:"policy_id"`
	ClientID     int64           `json:"client_id" db:"client_id"`
	PolicyName   string          `json:"policy_name" db:"policy_name"`
	DeathBenefit decimal.Decimal `json:"death_benefit" db:"death_benefit"`
}

// DisabilityLTCSubType discriminates disability and long-term-care policies.
type DisabilityLTCSubType string

const (
	PolicyPersonalDisability   DisabilityLTCSubType = "personal_disability"
	PolicyBusinessDisability   DisabilityLTCSubType = "business_disability"
	PolicyPersonalLTC          DisabilityLTCSubType = "personal_ltc"
	PolicyBusinessReducingTerm DisabilityLTCSubType = "business_reducing_term"
)

// IsDisability reports whether the policy counts toward the disability metric.
func (t DisabilityLTCSubType) IsDisability() bool {
	return t == PolicyPersonalDisability || t == PolicyBusinessDisability
}

// DisabilityLTCPolicy is a disability or long-term-care policy.
type DisabilityLTCPolicy struct {
	PolicyID      int64                `json:"policy_id" db:"policy_id"`
	ClientID      int64                `json:"client_id" db:"client_id"`
	PolicyName    string               `json:"policy_name" db:"policy_name"`
	SubType       DisabilityLTCSubType `json:"sub_type" db:"sub_type"`
	BenefitAmount decimal.Decimal      `json:"benefit_amount" db:"benefit_amount"`
	AnnualPremium decimal.Decimal      `json:"annual_premium" db:"annual_premium"`
}

// PropertyCasualtySubType discriminates property & casualty policies.
type PropertyCasualtySubType string

const (
	PolicyUmbrella PropertyCasualtySubType = "umbrella"
	PolicyFlood    PropertyCasualtySubType = "flood"
	PolicyHome     PropertyCasualtySubType = "home"
	PolicyAuto     PropertyCasualtySubType = "auto"
)

// PropertyCasualtyPolicy is a property & casualty policy.
type PropertyCasualtyPolicy struct {
	PolicyID             int64                   `json:"policy_id" db:"policy_id"`
	ClientID             int64                   `json:"client_id" db:"client_id"`
	PolicyName           string                  `json:"policy_name" db:"policy_name"`
	SubType              PropertyCasualtySubType `json:"sub_type" db:"sub_type"`
	MaximumAnnualBenefit decimal.Decimal         `json:"maximum_annual_benefit" db:"maximum_annual_benefit"`
}

// Facts bundles every fact kind for one client, fetched once per engine
// invocation. The engine never touches storage after the bundle is built.
type Facts struct {
	Profile            *ClientProfile
	Holdings           []Holding
	RealEstate         []RealEstateAsset
	Businesses         []BusinessInterest
	InvestmentAccounts []InvestmentAccount
	PersonalProperty   []PersonalPropertyAccount
	Liabilities        []Liability
	Incomes            []IncomeStream
	Expenses           []ExpenseItem
	SavingsPlans       []SavingsPlan
	LifePolicies       []LifeInsurancePolicy
	DisabilityPolicies []DisabilityLTCPolicy
	PropertyPolicies   []PropertyCasualtyPolicy
}
