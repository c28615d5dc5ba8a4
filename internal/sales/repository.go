package sales

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/colombiang/sales-mcp/internal/platform/db"
)

const saleColumns = `id, product_id, product_name, sku, quantity, unit_price, total_amount, customer_phone, customer_address, created_at`

// Repository provides PostgreSQL backed persistence for product sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a sale and returns the persisted row.
func (r *Repository) Insert(ctx context.Context, sale *ProductSale) (ProductSale, error) {
	var out ProductSale
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO product_sales
				(product_id, product_name, sku, quantity, unit_price, total_amount, customer_phone, customer_address)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+saleColumns,
			sale.ProductID, sale.ProductName, sale.SKU, sale.Quantity,
			sale.UnitPrice.InexactFloat64(), sale.TotalAmount.InexactFloat64(),
			sale.CustomerPhone, sale.CustomerAddress)
		return scanSale(row, &out)
	})
	if err != nil {
		return ProductSale{}, err
	}
	return out, nil
}

// ListRecent returns the newest sales first.
func (r *Repository) ListRecent(ctx context.Context, limit, offset int) ([]ProductSale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM product_sales ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ProductSale{}
	for rows.Next() {
		var s ProductSale
		if err := scanSale(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSale(row scannable, s *ProductSale) error {
	var unitPrice, total float64
	if err := row.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.SKU, &s.Quantity,
		&unitPrice, &total, &s.CustomerPhone, &s.CustomerAddress, &s.CreatedAt); err != nil {
		return err
	}
	s.UnitPrice = decimal.NewFromFloat(unitPrice)
	s.TotalAmount = decimal.NewFromFloat(total)
	return nil
}
