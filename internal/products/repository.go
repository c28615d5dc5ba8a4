package products

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/colombiang/sales-mcp/internal/shared"
)

const productColumns = `id, name, description, sku, category, price, stock_quantity, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed catalog access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetBySKU returns the product with the given SKU. SKUs are stored
// upper-case; lookup normalizes before matching.
func (r *Repository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = $1`,
		strings.ToUpper(strings.TrimSpace(sku)))
	return scanProduct(row)
}

// GetByID returns the product with the given id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListActive returns active products ordered by id, for listing and
// index rebuilds.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price float64
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Category,
		&price, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Price = decimal.NewFromFloat(price)
	return &p, nil
}
