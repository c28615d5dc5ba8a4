package purchases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/colombiang/sales-mcp/internal/platform/db"
)

// Repository provides storage access for tenant purchase tables.
type Repository interface {
	Insert(ctx context.Context, binding StoreBinding, purchase *ValidatedPurchase) (Record, error)
	List(ctx context.Context, binding StoreBinding, limit, offset int) ([]Record, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Insert writes the purchase inside a transaction and returns the stored
// row via INSERT ... RETURNING, so the persisted identity is the one this
// call created even under concurrent writers on the same table.
//
// The table name is interpolated into the SQL text, but it only ever
// comes from the static registry: caller-supplied identifiers never reach
// this function. All values are bound as parameters.
func (r *repository) Insert(ctx context.Context, binding StoreBinding, purchase *ValidatedPurchase) (Record, error) {
	now := time.Now().UTC()
	record := Record{}

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		switch binding.Shape {
		case ShapeClientDetail:
			clientJSON, err := json.Marshal(purchase.Client)
			if err != nil {
				return fmt.Errorf("encode client: %w", err)
			}
			query := fmt.Sprintf(`
				INSERT INTO %s (client_phone, created_at, updated_at, total_amount, products, client_json)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, client_phone, created_at, updated_at, total_amount, products, client_json`,
				binding.Table)
			row := tx.QueryRow(ctx, query,
				purchase.ClientPhone, now, now, purchase.TotalAmount.InexactFloat64(),
				purchase.Products, json.RawMessage(clientJSON))
			return scanClientDetail(row, &record)

		case ShapeFlatCustomer:
			query := fmt.Sprintf(`
				INSERT INTO %s (customer_phone, customer_address, created_at, updated_at, total_amount, products)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, customer_phone, customer_address, created_at, updated_at, total_amount, products`,
				binding.Table)
			row := tx.QueryRow(ctx, query,
				purchase.CustomerPhone, purchase.CustomerAddress, now, now,
				purchase.TotalAmount.InexactFloat64(), purchase.Products)
			return scanFlatCustomer(row, &record)

		default:
			return fmt.Errorf("unknown shape %q", binding.Shape)
		}
	})
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

// List returns purchases ordered by id descending. Limit and offset are
// assumed to be clamped by the caller.
func (r *repository) List(ctx context.Context, binding StoreBinding, limit, offset int) ([]Record, error) {
	var query string
	switch binding.Shape {
	case ShapeClientDetail:
		query = fmt.Sprintf(`
			SELECT id, client_phone, created_at, updated_at, total_amount, products, client_json
			FROM %s
			ORDER BY id DESC
			LIMIT $1 OFFSET $2`, binding.Table)
	case ShapeFlatCustomer:
		query = fmt.Sprintf(`
			SELECT id, customer_phone, customer_address, created_at, updated_at, total_amount, products
			FROM %s
			ORDER BY id DESC
			LIMIT $1 OFFSET $2`, binding.Table)
	default:
		return nil, fmt.Errorf("unknown shape %q", binding.Shape)
	}

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if binding.Shape == ShapeClientDetail {
			err = scanClientDetail(rows, &rec)
		} else {
			err = scanFlatCustomer(rows, &rec)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ErrNoRow reports that an insert's RETURNING clause produced no row.
var ErrNoRow = errors.New("no row returned")

func scanClientDetail(row pgx.Row, rec *Record) error {
	var total float64
	err := row.Scan(&rec.ID, &rec.ClientPhone, &rec.CreatedAt, &rec.UpdatedAt, &total, &rec.Products, &rec.ClientJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRow
	}
	if err != nil {
		return err
	}
	rec.TotalAmount = decimal.NewFromFloat(total)
	return nil
}

func scanFlatCustomer(row pgx.Row, rec *Record) error {
	var total float64
	err := row.Scan(&rec.ID, &rec.CustomerPhone, &rec.CustomerAddress, &rec.CreatedAt, &rec.UpdatedAt, &total, &rec.Products)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRow
	}
	if err != nil {
		return err
	}
	rec.TotalAmount = decimal.NewFromFloat(total)
	return nil
}
