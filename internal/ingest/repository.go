package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordersight/ordersight/internal/platform/db"
)

// Repository persists fetched orders.
type Repository interface {
	SaveOrder(ctx context.Context, order OrderDetail) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires the ingestion store against the shared pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// SaveOrder writes one order and its line items in a single transaction.
// Every entity insert ignores conflicts on its natural key, so replaying an
// already-stored order is a no-op and first-seen values win.
func (r *repository) SaveOrder(ctx context.Context, order OrderDetail) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO orders (order_id, invoiced_date, total_value, currency_code, status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (order_id) DO NOTHING`,
			order.OrderID, order.InvoicedDate, order.Value, order.currencyCode(), order.Status,
		); err != nil {
			return fmt.Errorf("insert order %s: %w", order.OrderID, err)
		}

		warehouseID := order.warehouseID()
		if warehouseID != "" {
			if err := r.saveWarehouse(ctx, tx, warehouseID, order.warehouseInfo()); err != nil {
				return err
			}
		}

		destinationID, err := r.saveDestination(ctx, tx, order.destination())
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := r.saveItem(ctx, tx, order.OrderID, warehouseID, destinationID, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) saveWarehouse(ctx context.Context, tx pgx.Tx, warehouseID string, info *PickupStoreInfo) error {
	var name string
	var addr Address
	if info != nil {
		name = info.FriendlyName
		if info.Address != nil {
			addr = *info.Address
		}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO warehouses (warehouse_id, warehouse_name, address_street, address_city, address_state, address_country)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (warehouse_id) DO NOTHING`,
		warehouseID, name, addr.Street, addr.City, addr.State, addr.Country,
	); err != nil {
		return fmt.Errorf("insert warehouse %s: %w", warehouseID, err)
	}
	return nil
}

// saveDestination resolves the destination row id for the shipping address.
// The conditional insert returns no row when the destination already exists,
// so a lookup by the natural key recovers the id in that case.
func (r *repository) saveDestination(ctx context.Context, tx pgx.Tx, addr *Address) (*int64, error) {
	if addr == nil {
		return nil, nil
	}
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO destinations (city, state, country)
		VALUES ($1, $2, $3)
		ON CONFLICT (city, state, country) DO NOTHING
		RETURNING destination_id`,
		addr.City, addr.State, addr.Country,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, `
			SELECT destination_id FROM destinations
			WHERE city = $1 AND state = $2 AND country = $3`,
			addr.City, addr.State, addr.Country,
		).Scan(&id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve destination %s/%s/%s: %w", addr.City, addr.State, addr.Country, err)
	}
	return &id, nil
}

func (r *repository) saveItem(ctx context.Context, tx pgx.Tx, orderID, warehouseID string, destinationID *int64, item OrderItem) error {
	category := item.category()
	if _, err := tx.Exec(ctx, `
		INSERT INTO products (product_id, name, brand_name, category_id, category_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id) DO NOTHING`,
		item.ProductID, item.Name, item.brandName(), category.ID, category.Name,
	); err != nil {
		return fmt.Errorf("insert product %s: %w", item.ProductID, err)
	}

	var warehouseRef *string
	if warehouseID != "" {
		warehouseRef = &warehouseID
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, warehouse_id, destination_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id, product_id) DO NOTHING`,
		orderID, item.ProductID, warehouseRef, destinationID, item.Quantity, item.Price,
	); err != nil {
		return fmt.Errorf("insert order item %s/%s: %w", orderID, item.ProductID, err)
	}
	return nil
}
