package reports

import "time"

// GeneralMetrics is the dashboard-wide summary row. Counts of orders are
// distinct order counts; quantity and value are line-item sums. Monetary
// values stay in integer minor units throughout this layer.
type GeneralMetrics struct {
	TotalOrders     int64 `json:"totalOrders"`
	TotalProducts   int64 `json:"totalProducts"`
	TotalValue      int64 `json:"totalValue"`
	TotalWarehouses int64 `json:"totalWarehouses"`
	TotalCities     int64 `json:"totalCities"`
}

// ProductRank is one row of the top-products breakdown.
type ProductRank struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	TotalOrders   int64  `json:"totalOrders"`
	TotalQuantity int64  `json:"totalQuantity"`
	TotalValue    int64  `json:"totalValue"`
}

// CityRank is one row of the top-cities breakdown.
type CityRank struct {
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	TotalOrders   int64  `json:"totalOrders"`
	TotalQuantity int64  `json:"totalQuantity"`
	TotalValue    int64  `json:"totalValue"`
}

// CategoryShare is a category bucket with its percentage of the filtered
// population's distinct orders.
type CategoryShare struct {
	Category      string  `json:"category"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalQuantity int64   `json:"totalQuantity"`
	Percentage    float64 `json:"percentage"`
}

// TrendPoint is one month bucket of the dashboard trend.
type TrendPoint struct {
	Month         time.Time `json:"month"`
	TotalOrders   int64     `json:"totalOrders"`
	TotalQuantity int64     `json:"totalQuantity"`
	TotalValue    int64     `json:"totalValue"`
}

// TrendShare is one month bucket carrying the bucket's share of the filtered
// population.
type TrendShare struct {
	Month         time.Time `json:"month"`
	TotalOrders   int64     `json:"totalOrders"`
	TotalQuantity int64     `json:"totalQuantity"`
	Percentage    float64   `json:"percentage"`
}

// ProductSummary is the single-product general aggregate.
type ProductSummary struct {
	Name            string  `json:"name"`
	BrandName       string  `json:"brandName"`
	CategoryName    string  `json:"categoryName"`
	TotalOrders     int64   `json:"totalOrders"`
	TotalQuantity   int64   `json:"totalQuantity"`
	TotalValue      int64   `json:"totalValue"`
	AvgPrice        float64 `json:"avgPrice"`
	TotalCities     int64   `json:"totalCities"`
	TotalWarehouses int64   `json:"totalWarehouses"`
}

// WarehouseShare is one warehouse bucket of a product's distribution.
type WarehouseShare struct {
	WarehouseID   string  `json:"warehouseId"`
	WarehouseName string  `json:"warehouseName"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalQuantity int64   `json:"totalQuantity"`
	Percentage    float64 `json:"percentage"`
}

// CityShare is one destination-city bucket of a product's distribution.
type CityShare struct {
	City          string  `json:"city"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalQuantity int64   `json:"totalQuantity"`
	Percentage    float64 `json:"percentage"`
}

// CitySummary is the single-city general aggregate.
type CitySummary struct {
	City            string `json:"city"`
	State           string `json:"state"`
	Country         string `json:"country"`
	TotalOrders     int64  `json:"totalOrders"`
	TotalQuantity   int64  `json:"totalQuantity"`
	TotalValue      int64  `json:"totalValue"`
	TotalWarehouses int64  `json:"totalWarehouses"`
	TotalProducts   int64  `json:"totalProducts"`
}

// Address is a warehouse postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// CityWarehouse is one warehouse serving a destination city.
type CityWarehouse struct {
	WarehouseID   string  `json:"warehouseId"`
	WarehouseName string  `json:"warehouseName"`
	Address       Address `json:"address"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalQuantity int64   `json:"totalQuantity"`
	Percentage    float64 `json:"percentage"`
}

// WarehouseSummary is the single-warehouse general aggregate. TotalProducts
// counts line items, intentionally multi-counting at the item level.
type WarehouseSummary struct {
	TotalOrders         int64   `json:"totalOrders"`
	TotalProducts       int64   `json:"totalProducts"`
	TotalQuantity       int64   `json:"totalQuantity"`
	TotalValue          int64   `json:"totalValue"`
	AvgProductsPerOrder float64 `json:"avgProductsPerOrder"`
}

// WarehouseCategoryShare is a category bucket of a warehouse's item flow.
type WarehouseCategoryShare struct {
	Category      string  `json:"category"`
	ProductCount  int64   `json:"productCount"`
	TotalQuantity int64   `json:"totalQuantity"`
	Percentage    float64 `json:"percentage"`
}

// TopCity is a destination bucket of a warehouse's order flow.
type TopCity struct {
	City       string  `json:"city"`
	OrderCount int64   `json:"orderCount"`
	Percentage float64 `json:"percentage"`
}

// MovementProduct identifies the product side of a movement row.
type MovementProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// MovementWarehouse identifies the warehouse side of a movement row.
type MovementWarehouse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MovementDestination identifies the destination side of a movement row.
type MovementDestination struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// MovementFacts carries the aggregated movement figures.
type MovementFacts struct {
	Quantity int64     `json:"quantity"`
	Value    int64     `json:"value"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
}

// Movement is one (product, warehouse, destination, date, status) row of the
// raw movement listing.
type Movement struct {
	Product     MovementProduct     `json:"product"`
	Warehouse   MovementWarehouse   `json:"warehouse"`
	Destination MovementDestination `json:"destination"`
	Movement    MovementFacts       `json:"movement"`
}

// WarehouseProductRow is one raw line of a warehouse's product listing.
// Destination fields are nil when the shipment had no recorded destination.
type WarehouseProductRow struct {
	ProductID          string    `json:"productId"`
	Name               string    `json:"name"`
	BrandName          string    `json:"brandName"`
	CategoryName       string    `json:"categoryName"`
	Quantity           int64     `json:"quantity"`
	UnitPrice          int64     `json:"unitPrice"`
	InvoicedDate       time.Time `json:"invoicedDate"`
	DestinationCity    *string   `json:"destinationCity"`
	DestinationState   *string   `json:"destinationState"`
	DestinationCountry *string   `json:"destinationCountry"`
}

// DashboardReport groups the overview aggregates.
type DashboardReport struct {
	GeneralMetrics       *GeneralMetrics `json:"generalMetrics"`
	TopProducts          []ProductRank   `json:"topProducts"`
	TopCities            []CityRank      `json:"topCities"`
	CategoryDistribution []CategoryShare `json:"categoryDistribution"`
	TemporalTrends       []TrendPoint    `json:"temporalTrends"`
}

// ProductDistributionReport groups the per-product aggregates.
type ProductDistributionReport struct {
	GeneralStats   *ProductSummary  `json:"generalStats"`
	WarehouseStats []WarehouseShare `json:"warehouseStats"`
	TemporalStats  []TrendShare     `json:"temporalStats"`
}

// CityStatsReport groups the per-city aggregates.
type CityStatsReport struct {
	GeneralStats  *CitySummary    `json:"generalStats"`
	CategoryStats []CategoryShare `json:"categoryStats"`
	TemporalStats []TrendShare    `json:"temporalStats"`
}

// WarehouseStatsReport groups the per-warehouse aggregates.
type WarehouseStatsReport struct {
	GeneralStats  *WarehouseSummary        `json:"generalStats"`
	CategoryStats []WarehouseCategoryShare `json:"categoryStats"`
	TopCities     []TopCity                `json:"topCities"`
}
