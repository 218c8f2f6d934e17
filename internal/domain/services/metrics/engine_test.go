package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
)

type mockFactRepository struct {
	mock.Mock
}

func (m *mockFactRepository) GetFacts(ctx context.Context, clientID int64) (*entities.Facts, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facts), args.Error(1)
}

func (m *mockFactRepository) GetProfile(ctx context.Context, clientID int64) (*entities.ClientProfile, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClientProfile), args.Error(1)
}

func (m *mockFactRepository) ListClientIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func TestComputeMetricUnknownName(t *testing.T) {
	repo := new(mockFactRepository)
	engine := NewEngine(repo, zap.NewNop())

	_, err := engine.ComputeMetric(context.Background(), 1, "no_such_metric", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownMetric)

	// The catalog is checked before any storage access.
	repo.AssertNotCalled(t, "GetFacts", mock.Anything, mock.Anything)
}

func TestComputeMetricRoundsToTwoPlaces(t *testing.T) {
	facts := emptyFacts()
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: decF(1234.5678)},
	}

	repo := new(mockFactRepository)
	repo.On("GetFacts", mock.Anything, int64(1)).Return(facts, nil)
	engine := NewEngine(repo, zap.NewNop())

	value, err := engine.ComputeMetric(context.Background(), 1, "earned_income", date(2025, time.June, 1))
	require.NoError(t, err)
	require.True(t, value.Valid())
	assert.True(t, value.Decimal.Equal(decF(1234.57)), "got %s", value.Decimal)
}

func TestComputeMetricPropagatesRepositoryError(t *testing.T) {
	repo := new(mockFactRepository)
	repo.On("GetFacts", mock.Anything, int64(7)).
		Return(nil, apperrors.ErrClientNotFound)
	engine := NewEngine(repo, zap.NewNop())

	_, err := engine.ComputeMetric(context.Background(), 7, "net_worth", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrClientNotFound)
}

func TestComputeAllMetricsCoversCatalog(t *testing.T) {
	repo := new(mockFactRepository)
	repo.On("GetFacts", mock.Anything, int64(1)).Return(emptyFacts(), nil)
	engine := NewEngine(repo, zap.NewNop())

	results, err := engine.ComputeAllMetrics(context.Background(), 1, date(2025, time.June, 1))
	require.NoError(t, err)
	require.Len(t, results, 38)
	for _, name := range MetricNames() {
		_, present := results[name]
		assert.True(t, present, "missing %s", name)
	}

	// One fetch for the whole catalog.
	repo.AssertNumberOfCalls(t, "GetFacts", 1)
}

func TestComputeByCategoryGroupsEveryMetric(t *testing.T) {
	repo := new(mockFactRepository)
	repo.On("GetFacts", mock.Anything, int64(1)).Return(emptyFacts(), nil)
	engine := NewEngine(repo, zap.NewNop())

	grouped, err := engine.ComputeByCategory(context.Background(), 1, date(2025, time.June, 1))
	require.NoError(t, err)
	require.Len(t, grouped, 6)

	total := 0
	for _, metrics := range grouped {
		total += len(metrics)
	}
	assert.Equal(t, 38, total)

	// Null ratios survive grouping as nil entries, not missing keys.
	wisdom := grouped[entities.CategoryWisdomIndex]
	require.Contains(t, wisdom, "diversification")
	assert.Nil(t, wisdom["diversification"])
}

func TestChartsFromOneFixture(t *testing.T) {
	facts := emptyFacts()
	facts.Incomes = []entities.IncomeStream{
		{IncomeType: entities.IncomeSalary, CurrentYearAmount: dec(90000)},
		{IncomeType: entities.IncomePension, CurrentYearAmount: dec(10000)},
	}
	facts.Holdings = []entities.Holding{
		{AssetClass: entities.AssetClassLargeCap, Value: dec(60000)},
		{AssetClass: entities.AssetClassInvestBond, Value: dec(25000)},
		{AssetClass: entities.AssetClassCash, Value: dec(15000)},
	}

	repo := new(mockFactRepository)
	repo.On("GetFacts", mock.Anything, int64(1)).Return(facts, nil)
	engine := NewEngine(repo, zap.NewNop())

	income, err := engine.IncomeChart(context.Background(), 1, date(2025, time.June, 1))
	require.NoError(t, err)
	require.Len(t, income, 5)
	assert.Equal(t, "Earned Income", income[0].Label)
	assert.Equal(t, 90000.0, income[0].Value)
	assert.Equal(t, "Pension", income[2].Label)
	assert.Equal(t, 10000.0, income[2].Value)

	allocation, err := engine.AllocationChart(context.Background(), 1, date(2025, time.June, 1))
	require.NoError(t, err)
	byLabel := make(map[string]float64, len(allocation))
	for _, s := range allocation {
		byLabel[s.Label] = s.Value
	}
	assert.Equal(t, 60000.0, byLabel["Equity"])
	assert.Equal(t, 25000.0, byLabel["Fixed Income"])
	assert.Equal(t, 15000.0, byLabel["Cash"])
}
