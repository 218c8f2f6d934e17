package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
	obs "github.com/wisdomindex/wealth_service/pkg/metrics"
)

// FactRepository loads client financial facts from PostgreSQL.
type FactRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewFactRepository creates a new fact repository
func NewFactRepository(db *sqlx.DB, logger *zap.Logger) *FactRepository {
	return &FactRepository{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("fact-repository"),
	}
}

// GetProfile retrieves the profile row for one client.
func (r *FactRepository) GetProfile(ctx context.Context, clientID int64) (*entities.ClientProfile, error) {
	ctx, span := r.tracer.Start(ctx, "fact_repo.get_profile", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
	))
	defer span.End()

	query := `
		SELECT client_id, client_name, date_of_birth, created_at, updated_at
		FROM client_profiles
		WHERE client_id = $1
	`

	var profile entities.ClientProfile
	start := time.Now()
	err := r.db.GetContext(ctx, &profile, query, clientID)
	obs.RecordDatabaseQuery("select", "client_profiles", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrClientNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get client profile: %w", err)
	}

	return &profile, nil
}

// ListClientIDs returns every client id with a profile row.
func (r *FactRepository) ListClientIDs(ctx context.Context) ([]int64, error) {
	ctx, span := r.tracer.Start(ctx, "fact_repo.list_client_ids")
	defer span.End()

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT client_id FROM client_profiles ORDER BY client_id`); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list client ids: %w", err)
	}
	return ids, nil
}

// GetFacts fetches the full fact bundle for one client. Numeric columns are
// coerced to zero at the query boundary so the engine never sees NULL amounts.
func (r *FactRepository) GetFacts(ctx context.Context, clientID int64) (*entities.Facts, error) {
	ctx, span := r.tracer.Start(ctx, "fact_repo.get_facts", trace.WithAttributes(
		attribute.Int64("client_id", clientID),
	))
	defer span.End()

	profile, err := r.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	facts := &entities.Facts{Profile: profile}

	loaders := []struct {
		name string
		load func(context.Context, int64, *entities.Facts) error
	}{
		{"holdings", r.loadHoldings},
		{"real_estate", r.loadRealEstate},
		{"businesses", r.loadBusinesses},
		{"investment_accounts", r.loadInvestmentAccounts},
		{"personal_property", r.loadPersonalProperty},
		{"liabilities", r.loadLiabilities},
		{"incomes", r.loadIncomes},
		{"expenses", r.loadExpenses},
		{"savings_plans", r.loadSavingsPlans},
		{"life_policies", r.loadLifePolicies},
		{"disability_policies", r.loadDisabilityPolicies},
		{"property_policies", r.loadPropertyPolicies},
	}

	for _, loader := range loaders {
		start := time.Now()
		err := loader.load(ctx, clientID, facts)
		obs.RecordDatabaseQuery("select", loader.name, time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			r.logger.Error("Failed to load fact set",
				zap.String("fact_set", loader.name),
				zap.Int64("client_id", clientID),
				zap.Error(err))
			return nil, apperrors.ErrDataAccess.Wrap(err)
		}
	}

	return facts, nil
}

func (r *FactRepository) loadHoldings(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT holding_id, client_id, name, asset_class, COALESCE(value, 0) AS value
		FROM holdings
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.Holdings, query, clientID)
}

func (r *FactRepository) loadRealEstate(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT asset_id, client_id, name, sub_type, COALESCE(total_value, 0) AS total_value
		FROM real_estate_assets
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.RealEstate, query, clientID)
}

func (r *FactRepository) loadBusinesses(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT business_id, client_id, name, COALESCE(amount, 0) AS amount
		FROM business_interests
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.Businesses, query, clientID)
}

func (r *FactRepository) loadInvestmentAccounts(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT account_id, client_id, account_name, account_type,
		       COALESCE(total_value, 0) AS total_value,
		       COALESCE(holdings_value, 0) AS holdings_value,
		       COALESCE(cash_balance, 0) AS cash_balance
		FROM investment_accounts
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.InvestmentAccounts, query, clientID)
}

func (r *FactRepository) loadPersonalProperty(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT account_id, client_id, name, COALESCE(total_value, 0) AS total_value
		FROM personal_property_accounts
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.PersonalProperty, query, clientID)
}

func (r *FactRepository) loadLiabilities(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT liability_id, client_id, account_name, sub_type,
		       COALESCE(total_value, 0) AS total_value,
		       interest_rate, loan_term_years, repayment_type, loan_date, real_estate_id
		FROM liabilities
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.Liabilities, query, clientID)
}

func (r *FactRepository) loadIncomes(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT income_id, client_id, name, income_type,
		       COALESCE(current_year_amount, 0) AS current_year_amount,
		       COALESCE(annual_amount, 0) AS annual_amount,
		       COALESCE(end_type, '') AS end_type, end_value,
		       COALESCE(owner_type, 'client') AS owner_type,
		       COALESCE(deleted, FALSE) AS deleted
		FROM income_streams
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.Incomes, query, clientID)
}

func (r *FactRepository) loadExpenses(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT expense_id, client_id, expense_item, type, sub_type,
		       COALESCE(annual_amount, 0) AS annual_amount,
		       start_actual_date, end_actual_date,
		       COALESCE(end_type, '') AS end_type
		FROM expense_items
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.Expenses, query, clientID)
}

func (r *FactRepository) loadSavingsPlans(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT savings_id, client_id, destination, account_name, start_type,
		       COALESCE(calculated_annual_amount, 0) AS calculated_annual_amount,
		       COALESCE(fixed_amount, 0) AS fixed_amount
		FROM savings_plans
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.SavingsPlans, query, clientID)
}

func (r *FactRepository) loadLifePolicies(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT policy_id, client_id, policy_name, COALESCE(death_benefit, 0) AS death_benefit
		FROM life_insurance_policies
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.LifePolicies, query, clientID)
}

func (r *FactRepository) loadDisabilityPolicies(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT policy_id, client_id, policy_name, sub_type,
		       COALESCE(benefit_amount, 0) AS benefit_amount,
		       COALESCE(annual_premium, 0) AS annual_premium
		FROM disability_ltc_policies
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.DisabilityPolicies, query, clientID)
}

func (r *FactRepository) loadPropertyPolicies(ctx context.Context, clientID int64, facts *entities.Facts) error {
	query := `
		SELECT policy_id, client_id, policy_name, sub_type,
		       COALESCE(maximum_annual_benefit, 0) AS maximum_annual_benefit
		FROM property_casualty_policies
		WHERE client_id = $1
	`
	return r.db.SelectContext(ctx, &facts.PropertyPolicies, query, clientID)
}
