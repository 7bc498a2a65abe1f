package reports

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersight/ordersight/internal/shared"
)

// mockRepo is shared across the service's concurrent aggregate calls, so its
// bookkeeping is guarded.
type mockRepo struct {
	mu sync.Mutex

	metrics          *GeneralMetrics
	metricsErr       error
	topProducts      []ProductRank
	topCities        []CityRank
	categoryShares   []CategoryShare
	trend            []TrendPoint
	trendShares      []TrendShare
	productSummary   *ProductSummary
	warehouseShares  []WarehouseShare
	cityShares       []CityShare
	cityShareTotal   int
	citySummary      *CitySummary
	cityWarehouses   []CityWarehouse
	warehouseSummary *WarehouseSummary
	whCategoryShares []WarehouseCategoryShare
	whTopCities      []TopCity
	warehouseRows    []WarehouseProductRow
	movements        []Movement

	calls       int
	lastFilter  Filter
	lastPage    shared.PageRequest
	categoryCap int
}

func (m *mockRepo) GeneralMetrics(ctx context.Context, f Filter) (*GeneralMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	return m.metrics, m.metricsErr
}

func (m *mockRepo) TopProducts(ctx context.Context, f Filter, limit int) ([]ProductRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.topProducts, nil
}

func (m *mockRepo) TopCities(ctx context.Context, f Filter, limit int) ([]CityRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.topCities, nil
}

func (m *mockRepo) CategoryShares(ctx context.Context, f Filter, limit int) ([]CategoryShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.categoryCap = limit
	return m.categoryShares, nil
}

func (m *mockRepo) MonthlyTrend(ctx context.Context, f Filter) ([]TrendPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.trend, nil
}

func (m *mockRepo) MonthlyShares(ctx context.Context, f Filter) ([]TrendShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.trendShares, nil
}

func (m *mockRepo) ProductSummary(ctx context.Context, f Filter) (*ProductSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	return m.productSummary, nil
}

func (m *mockRepo) ProductWarehouseShares(ctx context.Context, f Filter) ([]WarehouseShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.warehouseShares, nil
}

func (m *mockRepo) CityShares(ctx context.Context, f Filter, page shared.PageRequest) ([]CityShare, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	m.lastPage = page
	return m.cityShares, m.cityShareTotal, nil
}

func (m *mockRepo) CitySummary(ctx context.Context, f Filter) (*CitySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	return m.citySummary, nil
}

func (m *mockRepo) CityWarehouses(ctx context.Context, f Filter, page shared.PageRequest) ([]CityWarehouse, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	m.lastPage = page
	return m.cityWarehouses, len(m.cityWarehouses), nil
}

func (m *mockRepo) WarehouseSummary(ctx context.Context, f Filter) (*WarehouseSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	return m.warehouseSummary, nil
}

func (m *mockRepo) WarehouseCategoryShares(ctx context.Context, f Filter) ([]WarehouseCategoryShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.whCategoryShares, nil
}

func (m *mockRepo) WarehouseTopCities(ctx context.Context, f Filter, limit int) ([]TopCity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.whTopCities, nil
}

func (m *mockRepo) WarehouseProducts(ctx context.Context, f Filter, page shared.PageRequest) ([]WarehouseProductRow, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	m.lastPage = page
	return m.warehouseRows, len(m.warehouseRows), nil
}

func (m *mockRepo) Movements(ctx context.Context, f Filter, page shared.PageRequest) ([]Movement, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = f
	m.lastPage = page
	return m.movements, len(m.movements), nil
}

func TestDashboardAssemblesAllAggregates(t *testing.T) {
	repo := &mockRepo{
		metrics:        &GeneralMetrics{TotalOrders: 12, TotalValue: 48000},
		topProducts:    []ProductRank{{ID: "p-1", Name: "Grinder"}},
		topCities:      []CityRank{{City: "Bogota"}},
		categoryShares: []CategoryShare{{Category: "Coffee Gear", Percentage: 100}},
		trend:          []TrendPoint{{TotalOrders: 12}},
	}
	svc := NewService(repo)

	report, err := svc.Dashboard(context.Background(), Filter{})
	require.NoError(t, err)
	require.NotNil(t, report.GeneralMetrics)
	assert.Equal(t, int64(12), report.GeneralMetrics.TotalOrders)
	assert.Len(t, report.TopProducts, 1)
	assert.Len(t, report.TopCities, 1)
	assert.Len(t, report.CategoryDistribution, 1)
	assert.Len(t, report.TemporalTrends, 1)
	assert.Equal(t, 5, repo.calls)
	// Dashboard distribution is never cut to top-N.
	assert.Equal(t, 0, repo.categoryCap)
}

func TestDashboardEmptyPopulation(t *testing.T) {
	svc := NewService(&mockRepo{})

	report, err := svc.Dashboard(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Nil(t, report.GeneralMetrics)
	assert.NotNil(t, report.TopProducts)
	assert.Empty(t, report.TopProducts)
	assert.NotNil(t, report.CategoryDistribution)
	assert.NotNil(t, report.TemporalTrends)
}

func TestDashboardPropagatesError(t *testing.T) {
	repo := &mockRepo{metricsErr: errors.New("boom")}
	svc := NewService(repo)

	_, err := svc.Dashboard(context.Background(), Filter{})
	require.Error(t, err)
}

func TestProductDistributionScopesFilter(t *testing.T) {
	repo := &mockRepo{productSummary: &ProductSummary{Name: "Grinder"}}
	svc := NewService(repo)

	report, err := svc.ProductDistribution(context.Background(), "p-7", Filter{})
	require.NoError(t, err)
	require.NotNil(t, report.GeneralStats)
	assert.Equal(t, "p-7", repo.lastFilter.ProductID)
	assert.NotNil(t, report.WarehouseStats)
	assert.NotNil(t, report.TemporalStats)
}

func TestProductDestinationsPaginates(t *testing.T) {
	repo := &mockRepo{
		cityShares:     []CityShare{{City: "Bogota", Percentage: 60}, {City: "Cali", Percentage: 40}},
		cityShareTotal: 12,
	}
	svc := NewService(repo)

	cities, pagination, err := svc.ProductDestinations(context.Background(), "p-1", Filter{}, shared.PageRequest{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, cities, 2)
	assert.Equal(t, 12, pagination.TotalItems)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 2, pagination.CurrentPage)
	assert.Equal(t, "p-1", repo.lastFilter.ProductID)
}

func TestCityStatsEmptyKeySkipsStore(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	report, err := svc.CityStats(context.Background(), "", Filter{})
	require.NoError(t, err)
	assert.Nil(t, report.GeneralStats)
	assert.NotNil(t, report.CategoryStats)
	assert.Empty(t, report.CategoryStats)
	assert.Equal(t, 0, repo.calls)
}

func TestCityStatsScopesFilter(t *testing.T) {
	repo := &mockRepo{citySummary: &CitySummary{City: "Bogota"}}
	svc := NewService(repo)

	report, err := svc.CityStats(context.Background(), "bogota", Filter{})
	require.NoError(t, err)
	require.NotNil(t, report.GeneralStats)
	assert.Equal(t, "bogota", repo.lastFilter.CityKey)
}

func TestCityWarehousesEmptyKey(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	warehouses, pagination, err := svc.CityWarehouses(context.Background(), "", Filter{}, shared.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, warehouses)
	assert.Equal(t, 0, pagination.TotalItems)
	assert.Equal(t, 0, repo.calls)
}

func TestWarehouseStatsScopesFilter(t *testing.T) {
	repo := &mockRepo{warehouseSummary: &WarehouseSummary{TotalOrders: 3}}
	svc := NewService(repo)

	report, err := svc.WarehouseStats(context.Background(), "wh-1", Filter{})
	require.NoError(t, err)
	require.NotNil(t, report.GeneralStats)
	assert.Equal(t, "wh-1", repo.lastFilter.WarehouseID)
	assert.NotNil(t, report.TopCities)
	assert.NotNil(t, report.CategoryStats)
}

func TestMovementsNeverReturnsNilSlice(t *testing.T) {
	svc := NewService(&mockRepo{})

	rows, pagination, err := svc.Movements(context.Background(), Filter{}, shared.PageRequest{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, 0, pagination.TotalItems)
}
