package reports

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ordersight/ordersight/internal/shared"
)

const topN = 5

// Repository exposes the aggregation queries the service composes.
type Repository interface {
	GeneralMetrics(ctx context.Context, f Filter) (*GeneralMetrics, error)
	TopProducts(ctx context.Context, f Filter, limit int) ([]ProductRank, error)
	TopCities(ctx context.Context, f Filter, limit int) ([]CityRank, error)
	CategoryShares(ctx context.Context, f Filter, limit int) ([]CategoryShare, error)
	MonthlyTrend(ctx context.Context, f Filter) ([]TrendPoint, error)
	MonthlyShares(ctx context.Context, f Filter) ([]TrendShare, error)
	ProductSummary(ctx context.Context, f Filter) (*ProductSummary, error)
	ProductWarehouseShares(ctx context.Context, f Filter) ([]WarehouseShare, error)
	CityShares(ctx context.Context, f Filter, page shared.PageRequest) ([]CityShare, int, error)
	CitySummary(ctx context.Context, f Filter) (*CitySummary, error)
	CityWarehouses(ctx context.Context, f Filter, page shared.PageRequest) ([]CityWarehouse, int, error)
	WarehouseSummary(ctx context.Context, f Filter) (*WarehouseSummary, error)
	WarehouseCategoryShares(ctx context.Context, f Filter) ([]WarehouseCategoryShare, error)
	WarehouseTopCities(ctx context.Context, f Filter, limit int) ([]TopCity, error)
	WarehouseProducts(ctx context.Context, f Filter, page shared.PageRequest) ([]WarehouseProductRow, int, error)
	Movements(ctx context.Context, f Filter, page shared.PageRequest) ([]Movement, int, error)
}

// Service composes the per-family aggregates. Independent aggregates of one
// report run concurrently; any failure fails the whole report.
type Service struct {
	repo Repository
}

// NewService wires the aggregation repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard assembles the overview report.
func (s *Service) Dashboard(ctx context.Context, f Filter) (DashboardReport, error) {
	var report DashboardReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.GeneralMetrics, err = s.repo.GeneralMetrics(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		report.TopProducts, err = s.repo.TopProducts(ctx, f, topN)
		return err
	})
	g.Go(func() error {
		var err error
		report.TopCities, err = s.repo.TopCities(ctx, f, topN)
		return err
	})
	g.Go(func() error {
		var err error
		report.CategoryDistribution, err = s.repo.CategoryShares(ctx, f, 0)
		return err
	})
	g.Go(func() error {
		var err error
		report.TemporalTrends, err = s.repo.MonthlyTrend(ctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardReport{}, err
	}

	report.fillEmpty()
	return report, nil
}

// ProductDistribution assembles the per-product distribution report.
func (s *Service) ProductDistribution(ctx context.Context, productID string, f Filter) (ProductDistributionReport, error) {
	f.ProductID = productID
	var report ProductDistributionReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.GeneralStats, err = s.repo.ProductSummary(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		report.WarehouseStats, err = s.repo.ProductWarehouseShares(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		report.TemporalStats, err = s.repo.MonthlyShares(ctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProductDistributionReport{}, err
	}

	report.fillEmpty()
	return report, nil
}

// ProductDestinations lists the destination cities of one product.
func (s *Service) ProductDestinations(ctx context.Context, productID string, f Filter, page shared.PageRequest) ([]CityShare, shared.Pagination, error) {
	f.ProductID = productID
	cities, total, err := s.repo.CityShares(ctx, f, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if cities == nil {
		cities = []CityShare{}
	}
	return cities, shared.NewPagination(page, total), nil
}

// CityStats assembles the per-city report. An empty normalized key matches
// nothing: the report comes back empty without touching the store.
func (s *Service) CityStats(ctx context.Context, cityKey string, f Filter) (CityStatsReport, error) {
	var report CityStatsReport
	if cityKey == "" {
		report.fillEmpty()
		return report, nil
	}
	f.CityKey = cityKey

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.GeneralStats, err = s.repo.CitySummary(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		report.CategoryStats, err = s.repo.CategoryShares(ctx, f, topN)
		return err
	})
	g.Go(func() error {
		var err error
		report.TemporalStats, err = s.repo.MonthlyShares(ctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return CityStatsReport{}, err
	}

	report.fillEmpty()
	return report, nil
}

// CityWarehouses lists the warehouses shipping into one city.
func (s *Service) CityWarehouses(ctx context.Context, cityKey string, f Filter, page shared.PageRequest) ([]CityWarehouse, shared.Pagination, error) {
	if cityKey == "" {
		return []CityWarehouse{}, shared.NewPagination(page, 0), nil
	}
	f.CityKey = cityKey
	warehouses, total, err := s.repo.CityWarehouses(ctx, f, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if warehouses == nil {
		warehouses = []CityWarehouse{}
	}
	return warehouses, shared.NewPagination(page, total), nil
}

// WarehouseStats assembles the per-warehouse report.
func (s *Service) WarehouseStats(ctx context.Context, warehouseID string, f Filter) (WarehouseStatsReport, error) {
	f.WarehouseID = warehouseID
	var report WarehouseStatsReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.GeneralStats, err = s.repo.WarehouseSummary(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		report.CategoryStats, err = s.repo.WarehouseCategoryShares(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		report.TopCities, err = s.repo.WarehouseTopCities(ctx, f, topN)
		return err
	})
	if err := g.Wait(); err != nil {
		return WarehouseStatsReport{}, err
	}

	report.fillEmpty()
	return report, nil
}

// WarehouseProducts lists the raw product lines of one warehouse.
func (s *Service) WarehouseProducts(ctx context.Context, warehouseID string, f Filter, page shared.PageRequest) ([]WarehouseProductRow, shared.Pagination, error) {
	f.WarehouseID = warehouseID
	rows, total, err := s.repo.WarehouseProducts(ctx, f, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if rows == nil {
		rows = []WarehouseProductRow{}
	}
	return rows, shared.NewPagination(page, total), nil
}

// Movements lists grouped movement rows for the mandatory date range.
func (s *Service) Movements(ctx context.Context, f Filter, page shared.PageRequest) ([]Movement, shared.Pagination, error) {
	rows, total, err := s.repo.Movements(ctx, f, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if rows == nil {
		rows = []Movement{}
	}
	return rows, shared.NewPagination(page, total), nil
}

// fillEmpty replaces nil breakdown slices with empty ones so an empty
// population serialises as [] rather than null.
func (r *DashboardReport) fillEmpty() {
	if r.TopProducts == nil {
		r.TopProducts = []ProductRank{}
	}
	if r.TopCities == nil {
		r.TopCities = []CityRank{}
	}
	if r.CategoryDistribution == nil {
		r.CategoryDistribution = []CategoryShare{}
	}
	if r.TemporalTrends == nil {
		r.TemporalTrends = []TrendPoint{}
	}
}

func (r *ProductDistributionReport) fillEmpty() {
	if r.WarehouseStats == nil {
		r.WarehouseStats = []WarehouseShare{}
	}
	if r.TemporalStats == nil {
		r.TemporalStats = []TrendShare{}
	}
}

func (r *CityStatsReport) fillEmpty() {
	if r.CategoryStats == nil {
		r.CategoryStats = []CategoryShare{}
	}
	if r.TemporalStats == nil {
		r.TemporalStats = []TrendShare{}
	}
}

func (r *WarehouseStatsReport) fillEmpty() {
	if r.TopCities == nil {
		r.TopCities = []TopCity{}
	}
	if r.CategoryStats == nil {
		r.CategoryStats = []WarehouseCategoryShare{}
	}
}
