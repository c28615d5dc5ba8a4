package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/colombiang/sales-mcp/internal/shared"
)

const userColumns = `id, name, phone, email, is_active, checkpointer, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByPhone returns the user with the given digits-only phone.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// UpdateByPhone applies the non-nil fields and returns the updated row.
func (r *Repository) UpdateByPhone(ctx context.Context, input UpdateByPhoneInput) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    updated_at = now()
		WHERE phone = $1
		RETURNING `+userColumns,
		input.Phone, input.NewName, input.NewEmail)
	return scanUser(row)
}

// Create inserts a new user and returns the stored row.
func (r *Repository) Create(ctx context.Context, name, phone string, email *string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, phone, email, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING `+userColumns,
		name, phone, email)
	return scanUser(row)
}

// List returns users ordered by id.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.IsActive,
			&u.Checkpointer, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.IsActive,
		&u.Checkpointer, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
