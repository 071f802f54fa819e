// Package repository persists marketing campaigns.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("campaign not found")

type Campaign struct {
	ID        uuid.UUID
	Name      string
	Source    *string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  bool
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `id, name, source, start_date, end_date, is_active, created_at`

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Source, &c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	return c, err
}

type CreateParams struct {
	Name      string
	Source    *string
	StartDate *time.Time
	EndDate   *time.Time
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (name, source, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING `+campaignColumns,
		params.Name, params.Source, params.StartDate, params.EndDate,
	)
	return scanCampaign(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	return scanCampaign(row)
}

// ListActive returns campaigns usable on new leads. A campaign with an
// end date in the past is excluded even when its flag was never flipped.
func (r *Repository) ListActive(ctx context.Context) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE is_active = true
		  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
		ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
