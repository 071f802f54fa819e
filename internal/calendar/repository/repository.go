// Package repository persists follow-up calendar events.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("calendar event not found")

// Event is a single all-day entry. At most one event exists per lead,
// tracking that lead's next follow-up.
type Event struct {
	ID         uuid.UUID
	LeadID     *uuid.UUID
	Title      string
	Notes      *string
	Phone      *string
	Email      *string
	LeadStatus *string
	EventDate  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, lead_id, title, notes, phone, email, lead_status, event_date, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.LeadID, &e.Title, &e.Notes, &e.Phone, &e.Email,
		&e.LeadStatus, &e.EventDate, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

type UpsertForLeadParams struct {
	LeadID     uuid.UUID
	Title      string
	Phone      *string
	Email      *string
	LeadStatus *string
	EventDate  time.Time
}

// UpsertForLead creates or moves the lead's follow-up event. The unique
// index on lead_id keeps it one row per lead.
func (r *Repository) UpsertForLead(ctx context.Context, params UpsertForLeadParams) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO calendar_events (lead_id, title, phone, email, lead_status, event_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lead_id) WHERE lead_id IS NOT NULL
		DO UPDATE SET
			title = EXCLUDED.title,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			lead_status = EXCLUDED.lead_status,
			event_date = EXCLUDED.event_date,
			updated_at = now()
		RETURNING `+eventColumns,
		params.LeadID, params.Title, params.Phone, params.Email, params.LeadStatus, params.EventDate,
	)
	return scanEvent(row)
}

// DeleteByLeadID removes the lead's event if one exists. Missing events
// are not an error so callers can clear unconditionally.
func (r *Repository) DeleteByLeadID(ctx context.Context, leadID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE lead_id = $1`, leadID)
	return err
}

type CreateParams struct {
	Title     string
	Notes     *string
	EventDate time.Time
}

// Create adds a standalone event not tied to any lead.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO calendar_events (title, notes, event_date)
		VALUES ($1, $2, $3)
		RETURNING `+eventColumns,
		params.Title, params.Notes, params.EventDate,
	)
	return scanEvent(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *Repository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE lead_id = $1`, leadID)
	return scanEvent(row)
}

// ListRange returns events with event_date inside [from, to] inclusive.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM calendar_events
		WHERE event_date >= $1 AND event_date <= $2
		ORDER BY event_date ASC, created_at ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type UpdateParams struct {
	Title     *string
	Notes     *string
	NotesSet  bool
	EventDate *time.Time
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Event, error) {
	var setClauses []string
	args := []interface{}{id}
	argIdx := 2

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Title != nil, "title", params.Title},
		{params.NotesSet, "notes", params.Notes},
		{params.EventDate != nil, "event_date", params.EventDate},
	}
	for _, f := range fields {
		if !f.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", f.column, argIdx))
		args = append(args, f.value)
		argIdx++
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(
		`UPDATE calendar_events SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(setClauses, ", "), eventColumns,
	)
	row := r.pool.QueryRow(ctx, query, args...)
	return scanEvent(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
