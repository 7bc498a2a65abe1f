package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordersight/ordersight/internal/normalize"
	"github.com/ordersight/ordersight/internal/shared"
)

// normalizedCityExpr canonicalises a stored destination city the same way
// normalize.City canonicalises the request parameter.
var normalizedCityExpr = fmt.Sprintf(normalize.CitySQL, "d.city")

// normalizedCitiesCTE maps destination ids to their canonical city key.
var normalizedCitiesCTE = `WITH normalized_cities AS (
	SELECT d.destination_id, d.city, ` + normalizedCityExpr + ` AS normalized_city
	FROM destinations d
)
`

// Repository runs the aggregation queries against the fact store.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository over the given pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func cityCTE(f Filter) string {
	if f.needsCityJoin() {
		return normalizedCitiesCTE
	}
	return ""
}

func cityJoin(f Filter, items, cte string) string {
	if !f.needsCityJoin() {
		return ""
	}
	return fmt.Sprintf("JOIN normalized_cities %[2]s ON %[1]s.destination_id = %[2]s.destination_id\n\t\t", items, cte)
}

// distinctOrdersDenom renders the same-population denominator for percentage
// columns: the distinct-order count under exactly the predicates of the outer
// query, sharing its positional arguments.
func distinctOrdersDenom(f Filter, b *whereBuilder) string {
	return fmt.Sprintf(`(SELECT COUNT(DISTINCT o2.order_id)
		FROM order_items oi2
		JOIN orders o2 ON oi2.order_id = o2.order_id
		%s%s)`, cityJoin(f, "oi2", "nc2"), b.Where(denomAliases))
}

// pctOfDistinctOrders renders the rounded percentage column with an explicit
// zero-denominator guard.
func pctOfDistinctOrders(f Filter, b *whereBuilder) string {
	return fmt.Sprintf(`ROUND(COUNT(DISTINCT o.order_id)::numeric / NULLIF(%s, 0) * 100, 2)::float8`, distinctOrdersDenom(f, b))
}

// GeneralMetrics returns the dashboard-wide summary, or nil when the filtered
// population is empty.
func (r *repository) GeneralMetrics(ctx context.Context, f Filter) (*GeneralMetrics, error) {
	b := f.build()
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		COUNT(DISTINCT o.order_id),
		COALESCE(SUM(oi.quantity), 0),
		COALESCE(SUM(oi.quantity * oi.unit_price), 0),
		COUNT(DISTINCT oi.warehouse_id),
		COUNT(DISTINCT oi.destination_id)
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	%s%s`, cityJoin(f, "oi", "nc"), b.Where(outerAliases))

	var m GeneralMetrics
	err := r.pool.QueryRow(ctx, query, b.Args()...).Scan(
		&m.TotalOrders, &m.TotalProducts, &m.TotalValue, &m.TotalWarehouses, &m.TotalCities,
	)
	if err != nil {
		return nil, fmt.Errorf("reports: general metrics: %w", err)
	}
	if m.TotalOrders == 0 {
		return nil, nil
	}
	return &m, nil
}

// TopProducts returns the highest-quantity products under the filter.
func (r *repository) TopProducts(ctx context.Context, f Filter, limit int) ([]ProductRank, error) {
	b := f.build()
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		p.product_id, p.name, p.category_name,
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		SUM(oi.quantity * oi.unit_price)
	FROM order_items oi
	JOIN products p ON oi.product_id = p.product_id
	JOIN orders o ON oi.order_id = o.order_id
	%s%s
	GROUP BY p.product_id, p.name, p.category_name
	ORDER BY SUM(oi.quantity) DESC
	LIMIT $%d`, cityJoin(f, "oi", "nc"), b.Where(outerAliases), b.NextIndex())

	rows, err := r.pool.Query(ctx, query, append(b.Args(), limit)...)
	if err != nil {
		return nil, fmt.Errorf("reports: top products: %w", err)
	}
	defer rows.Close()

	var out []ProductRank
	for rows.Next() {
		var p ProductRank
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.TotalOrders, &p.TotalQuantity, &p.TotalValue); err != nil {
			return nil, fmt.Errorf("reports: top products scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TopCities returns the destinations with the most distinct orders.
func (r *repository) TopCities(ctx context.Context, f Filter, limit int) ([]CityRank, error) {
	b := f.build()
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		d.city, d.state, d.country,
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		SUM(oi.quantity * oi.unit_price)
	FROM order_items oi
	JOIN destinations d ON oi.destination_id = d.destination_id
	JOIN orders o ON oi.order_id = o.order_id
	%s%s
	GROUP BY d.city, d.state, d.country
	ORDER BY COUNT(DISTINCT o.order_id) DESC
	LIMIT $%d`, cityJoin(f, "oi", "nc"), b.Where(outerAliases), b.NextIndex())

	rows, err := r.pool.Query(ctx, query, append(b.Args(), limit)...)
	if err != nil {
		return nil, fmt.Errorf("reports: top cities: %w", err)
	}
	defer rows.Close()

	var out []CityRank
	for rows.Next() {
		var c CityRank
		if err := rows.Scan(&c.City, &c.State, &c.Country, &c.TotalOrders, &c.TotalQuantity, &c.TotalValue); err != nil {
			return nil, fmt.Errorf("reports: top cities scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryShares returns the per-category distinct-order breakdown with each
// bucket's share of the filtered population. A limit of zero returns every
// category.
func (r *repository) CategoryShares(ctx context.Context, f Filter, limit int) ([]CategoryShare, error) {
	b := f.build()
	limitClause := ""
	args := b.Args()
	if limit > 0 {
		limitClause = fmt.Sprintf("\n\tLIMIT $%d", b.NextIndex())
		args = append(args, limit)
	}
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		p.category_name,
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		%s
	FROM order_items oi
	JOIN products p ON oi.product_id = p.product_id
	JOIN orders o ON oi.order_id = o.order_id
	%s%s
	GROUP BY p.category_name
	ORDER BY COUNT(DISTINCT o.order_id) DESC%s`,
		pctOfDistinctOrders(f, b), cityJoin(f, "oi", "nc"), b.Where(outerAliases), limitClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: category shares: %w", err)
	}
	defer rows.Close()

	var out []CategoryShare
	for rows.Next() {
		var s CategoryShare
		var pct *float64
		if err := rows.Scan(&s.Category, &s.TotalOrders, &s.TotalQuantity, &pct); err != nil {
			return nil, fmt.Errorf("reports: category shares scan: %w", err)
		}
		if pct != nil {
			s.Percentage = *pct
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MonthlyTrend returns the month-bucketed order, quantity, and value sums,
// most recent month first.
func (r *repository) MonthlyTrend(ctx context.Context, f Filter) ([]TrendPoint, error) {
	b := f.build()
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		DATE_TRUNC('month', o.invoiced_date),
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		SUM(oi.quantity * oi.unit_price)
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	%s%s
	GROUP BY DATE_TRUNC('month', o.invoiced_date)
	ORDER BY DATE_TRUNC('month', o.invoiced_date) DESC`, cityJoin(f, "oi", "nc"), b.Where(outerAliases))

	rows, err := r.pool.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("reports: monthly trend: %w", err)
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var t TrendPoint
		if err := rows.Scan(&t.Month, &t.TotalOrders, &t.TotalQuantity, &t.TotalValue); err != nil {
			return nil, fmt.Errorf("reports: monthly trend scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MonthlyShares returns the month-bucketed breakdown with each month's share
// of the filtered population, most recent month first.
func (r *repository) MonthlyShares(ctx context.Context, f Filter) ([]TrendShare, error) {
	b := f.build()
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		DATE_TRUNC('month', o.invoiced_date),
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		%s
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	%s%s
	GROUP BY DATE_TRUNC('month', o.invoiced_date)
	ORDER BY DATE_TRUNC('month', o.invoiced_date) DESC`,
		pctOfDistinctOrders(f, b), cityJoin(f, "oi", "nc"), b.Where(outerAliases))

	rows, err := r.pool.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("reports: monthly shares: %w", err)
	}
	defer rows.Close()

	var out []TrendShare
	for rows.Next() {
		var t TrendShare
		var pct *float64
		if err := rows.Scan(&t.Month, &t.TotalOrders, &t.TotalQuantity, &pct); err != nil {
			return nil, fmt.Errorf("reports: monthly shares scan: %w", err)
		}
		if pct != nil {
			t.Percentage = *pct
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ProductSummary returns the general aggregate for the product scoped by the
// filter, or nil when it has no matching line items.
func (r *repository) ProductSummary(ctx context.Context, f Filter) (*ProductSummary, error) {
	b := f.build()
	query := fmt.Sprintf(`SELECT
		p.name, COALESCE(p.brand_name, ''), COALESCE(p.category_name, ''),
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		SUM(oi.quantity * oi.unit_price),
		AVG(oi.unit_price)::float8,
		COUNT(DISTINCT d.city),
		COUNT(DISTINCT oi.warehouse_id)
	FROM order_items oi
	JOIN products p ON oi.product_id = p.product_id
	JOIN orders o ON oi.order_id = o.order_id
	LEFT JOIN destinations d ON oi.destination_id = d.destination_id
	%s
	GROUP BY p.name, p.brand_name, p.category_name`, b.Where(outerAliases))

	rows, err := r.pool.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("reports: product summary: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var s ProductSummary
	if err := rows.Scan(
		&s.Name, &s.BrandName, &s.CategoryName,
		&s.TotalOrders, &s.TotalQuantity, &s.TotalValue, &s.AvgPrice,
		&s.TotalCities, &s.TotalWarehouses,
	); err != nil {
		return nil, fmt.Errorf("reports: product summary scan: %w", err)
	}
	return &s, rows.Err()
}

// ProductWarehouseShares returns every warehouse shipping the product, by
// distinct order count descending, with percentage of the product's orders.
func (r *repository) ProductWarehouseShares(ctx context.Context, f Filter) ([]WarehouseShare, error) {
	b := f.build()
	query := fmt.Sprintf(`SELECT
		w.warehouse_id, w.warehouse_name,
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		%s
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN warehouses w ON oi.warehouse_id = w.warehouse_id
	%s
	GROUP BY w.warehouse_id, w.warehouse_name
	ORDER BY COUNT(DISTINCT o.order_id) DESC`, pctOfDistinctOrders(f, b), b.Where(outerAliases))

	rows, err := r.pool.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("reports: product warehouse shares: %w", err)
	}
	defer rows.Close()

	var out []WarehouseShare
	for rows.Next() {
		var s WarehouseShare
		var pct *float64
		if err := rows.Scan(&s.WarehouseID, &s.WarehouseName, &s.TotalOrders, &s.TotalQuantity, &pct); err != nil {
			return nil, fmt.Errorf("reports: product warehouse shares scan: %w", err)
		}
		if pct != nil {
			s.Percentage = *pct
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CityShares returns the windowed destination-city breakdown plus the exact
// total number of cities under the same filter.
func (r *repository) CityShares(ctx context.Context, f Filter, page shared.PageRequest) ([]CityShare, int, error) {
	b := f.build()
	query := fmt.Sprintf(`SELECT
		d.city, d.state, d.country,
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		%s
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN destinations d ON oi.destination_id = d.destination_id
	%s
	GROUP BY d.city, d.state, d.country
	ORDER BY COUNT(DISTINCT o.order_id) DESC
	LIMIT $%d OFFSET $%d`,
		pctOfDistinctOrders(f, b), b.Where(outerAliases), b.NextIndex(), b.NextIndex()+1)

	countQuery := fmt.Sprintf(`SELECT COUNT(DISTINCT d.city)
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN destinations d ON oi.destination_id = d.destination_id
	%s`, b.Where(outerAliases))

	n := page.Normalize()
	rows, err := r.pool.Query(ctx, query, append(b.Args(), n.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("reports: city shares: %w", err)
	}
	defer rows.Close()

	var out []CityShare
	for rows.Next() {
		var s CityShare
		var pct *float64
		if err := rows.Scan(&s.City, &s.State, &s.Country, &s.TotalOrders, &s.TotalQuantity, &pct); err != nil {
			return nil, 0, fmt.Errorf("reports: city shares scan: %w", err)
		}
		if pct != nil {
			s.Percentage = *pct
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reports: city shares count: %w", err)
	}
	return out, total, nil
}

// CitySummary returns the general aggregate for the city scoped by the
// filter's normalized key, or nil when nothing matches.
func (r *repository) CitySummary(ctx context.Context, f Filter) (*CitySummary, error) {
	b := f.build()
	query := normalizedCitiesCTE + fmt.Sprintf(`SELECT
		d.city, d.state, d.country,
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		SUM(oi.quantity * oi.unit_price),
		COUNT(DISTINCT oi.warehouse_id),
		COUNT(DISTINCT oi.product_id)
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN normalized_cities nc ON oi.destination_id = nc.destination_id
	JOIN destinations d ON oi.destination_id = d.destination_id
	%s
	GROUP BY d.city, d.state, d.country`, b.Where(outerAliases))

	rows, err := r.pool.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("reports: city summary: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var s CitySummary
	if err := rows.Scan(
		&s.City, &s.State, &s.Country,
		&s.TotalOrders, &s.TotalQuantity, &s.TotalValue,
		&s.TotalWarehouses, &s.TotalProducts,
	); err != nil {
		return nil, fmt.Errorf("reports: city summary scan: %w", err)
	}
	return &s, rows.Err()
}

// CityWarehouses returns the windowed list of warehouses shipping into the
// filter's city plus the exact total warehouse count under the same filter.
func (r *repository) CityWarehouses(ctx context.Context, f Filter, page shared.PageRequest) ([]CityWarehouse, int, error) {
	b := f.build()
	query := normalizedCitiesCTE + fmt.Sprintf(`SELECT
		w.warehouse_id, w.warehouse_name,
		COALESCE(w.address_street, ''), COALESCE(w.address_city, ''),
		COALESCE(w.address_state, ''), COALESCE(w.address_country, ''),
		COUNT(DISTINCT o.order_id),
		SUM(oi.quantity),
		%s
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN warehouses w ON oi.warehouse_id = w.warehouse_id
	JOIN normalized_cities nc ON oi.destination_id = nc.destination_id
	%s
	GROUP BY w.warehouse_id, w.warehouse_name, w.address_street, w.address_city, w.address_state, w.address_country
	ORDER BY COUNT(DISTINCT o.order_id) DESC
	LIMIT $%d OFFSET $%d`,
		pctOfDistinctOrders(f, b), b.Where(outerAliases), b.NextIndex(), b.NextIndex()+1)

	countQuery := normalizedCitiesCTE + fmt.Sprintf(`SELECT COUNT(DISTINCT w.warehouse_id)
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN warehouses w ON oi.warehouse_id = w.warehouse_id
	JOIN normalized_cities nc ON oi.destination_id = nc.destination_id
	%s`, b.Where(outerAliases))

	n := page.Normalize()
	rows, err := r.pool.Query(ctx, query, append(b.Args(), n.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("reports: city warehouses: %w", err)
	}
	defer rows.Close()

	var out []CityWarehouse
	for rows.Next() {
		var w CityWarehouse
		var pct *float64
		if err := rows.Scan(
			&w.WarehouseID, &w.WarehouseName,
			&w.Address.Street, &w.Address.City, &w.Address.State, &w.Address.Country,
			&w.TotalOrders, &w.TotalQuantity, &pct,
		); err != nil {
			return nil, 0, fmt.Errorf("reports: city warehouses scan: %w", err)
		}
		if pct != nil {
			w.Percentage = *pct
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reports: city warehouses count: %w", err)
	}
	return out, total, nil
}

// WarehouseSummary returns the general aggregate for the warehouse scoped by
// the filter, or nil when the filtered population is empty.
func (r *repository) WarehouseSummary(ctx context.Context, f Filter) (*WarehouseSummary, error) {
	b := f.build()
	query := fmt.Sprintf(`SELECT
		COUNT(DISTINCT o.order_id),
		COUNT(oi.product_id),
		COALESCE(SUM(oi.quantity), 0),
		COALESCE(SUM(oi.quantity * oi.unit_price), 0),
		COALESCE(AVG(oi.quantity), 0)::float8
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	%s`, b.Where(outerAliases))

	var s WarehouseSummary
	err := r.pool.QueryRow(ctx, query, b.Args()...).Scan(
		&s.TotalOrders, &s.TotalProducts, &s.TotalQuantity, &s.TotalValue, &s.AvgProductsPerOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("reports: warehouse summary: %w", err)
	}
	if s.TotalOrders == 0 {
		return nil, nil
	}
	return &s, nil
}

// WarehouseCategoryShares returns the full category breakdown of a
// warehouse's line items, with each category's share of the item count.
func (r *repository) WarehouseCategoryShares(ctx context.Context, f Filter) ([]WarehouseCategoryShare, error) {
	b := f.build()
	denom := fmt.Sprintf(`(SELECT COUNT(*)
		FROM order_items oi2
		JOIN orders o2 ON oi2.order_id = o2.order_id
		%s)`, b.Where(denomAliases))
	query := fmt.Sprintf(`SELECT
		p.category_name,
		COUNT(oi.product_id),
		SUM(oi.quantity),
		ROUND(COUNT(oi.product_id)::numeric / NULLIF(%s, 0) * 100, 2)::float8
	FROM order_items oi
	JOIN products p ON oi.product_id = p.product_id
	JOIN orders o ON oi.order_id = o.order_id
	%s
	GROUP BY p.category_name
	ORDER BY COUNT(oi.product_id) DESC`, denom, b.Where(outerAliases))

	rows, err := r.pool.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("reports: warehouse category shares: %w", err)
	}
	defer rows.Close()

	var out []WarehouseCategoryShare
	for rows.Next() {
		var s WarehouseCategoryShare
		var pct *float64
		if err := rows.Scan(&s.Category, &s.ProductCount, &s.TotalQuantity, &pct); err != nil {
			return nil, fmt.Errorf("reports: warehouse category shares scan: %w", err)
		}
		if pct != nil {
			s.Percentage = *pct
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// WarehouseTopCities returns the destinations a warehouse ships to most, by
// distinct order count, with percentage of the warehouse's orders.
func (r *repository) WarehouseTopCities(ctx context.Context, f Filter, limit int) ([]TopCity, error) {
	b := f.build()
	query := fmt.Sprintf(`SELECT
		d.city,
		COUNT(DISTINCT o.order_id),
		%s
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	JOIN destinations d ON oi.destination_id = d.destination_id
	%s
	GROUP BY d.city
	ORDER BY COUNT(DISTINCT o.order_id) DESC
	LIMIT $%d`, pctOfDistinctOrders(f, b), b.Where(outerAliases), b.NextIndex())

	rows, err := r.pool.Query(ctx, query, append(b.Args(), limit)...)
	if err != nil {
		return nil, fmt.Errorf("reports: warehouse top cities: %w", err)
	}
	defer rows.Close()

	var out []TopCity
	for rows.Next() {
		var c TopCity
		var pct *float64
		if err := rows.Scan(&c.City, &c.OrderCount, &pct); err != nil {
			return nil, fmt.Errorf("reports: warehouse top cities scan: %w", err)
		}
		if pct != nil {
			c.Percentage = *pct
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// WarehouseProducts returns the windowed raw line listing for a warehouse,
// newest invoiced date first, plus the exact line count under the same filter.
func (r *repository) WarehouseProducts(ctx context.Context, f Filter, page shared.PageRequest) ([]WarehouseProductRow, int, error) {
	b := f.build()
	query := fmt.Sprintf(`SELECT
		p.product_id, p.name, COALESCE(p.brand_name, ''), COALESCE(p.category_name, ''),
		oi.quantity, oi.unit_price, o.invoiced_date,
		d.city, d.state, d.country
	FROM order_items oi
	JOIN products p ON oi.product_id = p.product_id
	JOIN orders o ON oi.order_id = o.order_id
	LEFT JOIN destinations d ON oi.destination_id = d.destination_id
	%s
	ORDER BY o.invoiced_date DESC
	LIMIT $%d OFFSET $%d`, b.Where(outerAliases), b.NextIndex(), b.NextIndex()+1)

	countQuery := fmt.Sprintf(`SELECT COUNT(*)
	FROM order_items oi
	JOIN orders o ON oi.order_id = o.order_id
	%s`, b.Where(outerAliases))

	n := page.Normalize()
	rows, err := r.pool.Query(ctx, query, append(b.Args(), n.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("reports: warehouse products: %w", err)
	}
	defer rows.Close()

	var out []WarehouseProductRow
	for rows.Next() {
		var row WarehouseProductRow
		if err := rows.Scan(
			&row.ProductID, &row.Name, &row.BrandName, &row.CategoryName,
			&row.Quantity, &row.UnitPrice, &row.InvoicedDate,
			&row.DestinationCity, &row.DestinationState, &row.DestinationCountry,
		); err != nil {
			return nil, 0, fmt.Errorf("reports: warehouse products scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reports: warehouse products count: %w", err)
	}
	return out, total, nil
}

// Movements returns the windowed movement listing grouped by (product,
// warehouse, destination, date, status), newest first, plus the exact count
// of grouped rows under the same filter.
func (r *repository) Movements(ctx context.Context, f Filter, page shared.PageRequest) ([]Movement, int, error) {
	b := f.build()
	query := cityCTE(f) + fmt.Sprintf(`SELECT
		p.product_id, p.name, COALESCE(p.category_name, ''),
		w.warehouse_id, w.warehouse_name,
		d.city, d.state, d.country,
		SUM(oi.quantity),
		SUM(oi.quantity * oi.unit_price),
		o.invoiced_date,
		o.status
	FROM order_items oi
	JOIN products p ON oi.product_id = p.product_id
	JOIN orders o ON oi.order_id = o.order_id
	JOIN warehouses w ON oi.warehouse_id = w.warehouse_id
	JOIN destinations d ON oi.destination_id = d.destination_id
	%s%s
	GROUP BY p.product_id, p.name, p.category_name,
		w.warehouse_id, w.warehouse_name,
		d.city, d.state, d.country,
		o.invoiced_date, o.status
	ORDER BY o.invoiced_date DESC
	LIMIT $%d OFFSET $%d`,
		cityJoin(f, "oi", "nc"), b.Where(outerAliases), b.NextIndex(), b.NextIndex()+1)

	// The count scans the same grouped grain as the data query so that the
	// windowed rows across all pages always sum to totalItems.
	countQuery := cityCTE(f) + fmt.Sprintf(`SELECT COUNT(*) FROM (
		SELECT 1
		FROM order_items oi
		JOIN products p ON oi.product_id = p.product_id
		JOIN orders o ON oi.order_id = o.order_id
		JOIN warehouses w ON oi.warehouse_id = w.warehouse_id
		JOIN destinations d ON oi.destination_id = d.destination_id
		%s%s
		GROUP BY p.product_id, p.name, p.category_name,
			w.warehouse_id, w.warehouse_name,
			d.city, d.state, d.country,
			o.invoiced_date, o.status
	) grouped`, cityJoin(f, "oi", "nc"), b.Where(outerAliases))

	n := page.Normalize()
	rows, err := r.pool.Query(ctx, query, append(b.Args(), n.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("reports: movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(
			&m.Product.ID, &m.Product.Name, &m.Product.Category,
			&m.Warehouse.ID, &m.Warehouse.Name,
			&m.Destination.City, &m.Destination.State, &m.Destination.Country,
			&m.Movement.Quantity, &m.Movement.Value,
			&m.Movement.Date, &m.Movement.Status,
		); err != nil {
			return nil, 0, fmt.Errorf("reports: movements scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reports: movements count: %w", err)
	}
	return out, total, nil
}
