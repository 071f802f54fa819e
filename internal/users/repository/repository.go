package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserOption is the minimal projection used by assignment pickers.
type UserOption struct {
	ID       uuid.UUID
	FullName string
	Email    string
	Roles    []string
}

// ListActive returns all active users with their roles, ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]UserOption, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.full_name, u.email,
		       COALESCE(array_agg(ur.role ORDER BY ur.role) FILTER (WHERE ur.role IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.is_active = true
		GROUP BY u.id, u.full_name, u.email
		ORDER BY u.full_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserOption
	for rows.Next() {
		var u UserOption
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Roles); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
