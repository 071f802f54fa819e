// Package repository provides PostgreSQL persistence for the call list.
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

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Entry struct {
	ID           uuid.UUID
	Name         *string
	Phone        *string
	SocialHandle *string
	Source       *string
	Purpose      *string
	Status       string
	AssignedToID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Remark struct {
	ID        uuid.UUID
	Text      string
	HandledBy string
	Status    string
	IsUnread  bool
	CreatedAt time.Time
}

const entryColumns = `id, name, phone, social_handle, source, purpose, status, assigned_to_id, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.Name, &e.Phone, &e.SocialHandle, &e.Source, &e.Purpose,
		&e.Status, &e.AssignedToID, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

type CreateEntryParams struct {
	Name         *string
	Phone        *string
	SocialHandle *string
	Source       *string
	Purpose      *string
	Status       string
	AssignedToID *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateEntryParams) (Entry, error) {
	query := fmt.Sprintf(`
		INSERT INTO call_list_entries (name, phone, social_handle, source, purpose, status, assigned_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, entryColumns)

	return scanEntry(r.pool.QueryRow(ctx, query,
		params.Name, params.Phone, params.SocialHandle, params.Source, params.Purpose,
		params.Status, params.AssignedToID,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM call_list_entries WHERE id = $1`, entryColumns)
	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

type UpdateEntryParams struct {
	Name            *string
	NameSet         bool
	Phone           *string
	PhoneSet        bool
	SocialHandle    *string
	SocialHandleSet bool
	Source          *string
	SourceSet       bool
	Purpose         *string
	PurposeSet      bool
	Status          *string
	AssignedToID    *uuid.UUID
	AssignedToIDSet bool

	Remark *RemarkInsert
}

type RemarkInsert struct {
	Text      string
	HandledBy string
	Status    string
	IsUnread  bool
}

// Update applies field changes and appends the optional ledger entry in one
// transaction.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateEntryParams) (Entry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Entry{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.NameSet, "name", params.Name},
		{params.PhoneSet, "phone", params.Phone},
		{params.SocialHandleSet, "social_handle", params.SocialHandle},
		{params.SourceSet, "source", params.Source},
		{params.PurposeSet, "purpose", params.Purpose},
		{params.Status != nil, "status", params.Status},
		{params.AssignedToIDSet, "assigned_to_id", params.AssignedToID},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	var entry Entry
	if len(setClauses) == 0 {
		entry, err = scanEntry(tx.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM call_list_entries WHERE id = $1`, entryColumns), id))
	} else {
		setClauses = append(setClauses, "updated_at = now()")
		args = append(args, id)
		query := fmt.Sprintf(`
			UPDATE call_list_entries SET %s
			WHERE id = $%d
			RETURNING %s
		`, strings.Join(setClauses, ", "), argIdx, entryColumns)
		entry, err = scanEntry(tx.QueryRow(ctx, query, args...))
	}
	if err != nil {
		return Entry{}, err
	}

	if params.Remark != nil {
		if _, err = tx.Exec(ctx, `
			INSERT INTO call_list_remarks (entry_id, text, handled_by, status, is_unread)
			VALUES ($1, $2, $3, $4, $5)
		`, id, params.Remark.Text, params.Remark.HandledBy, params.Remark.Status, params.Remark.IsUnread); err != nil {
			return Entry{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM call_list_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type ListParams struct {
	VisibleToUserID *uuid.UUID
	Status          *string
	Search          string
	Offset          int
	Limit           int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Entry, int, error) {
	whereClauses := []string{"true"}
	args := []interface{}{}
	argIdx := 1

	if params.VisibleToUserID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("assigned_to_id = $%d", argIdx))
		args = append(args, *params.VisibleToUserID)
		argIdx++
	}
	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR phone ILIKE $%d OR social_handle ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM call_list_entries WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM call_list_entries
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, entryColumns, where, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

// ListRemarks returns an entry's ledger oldest first.
func (r *Repository) ListRemarks(ctx context.Context, entryID uuid.UUID) ([]Remark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, text, handled_by, status, is_unread, created_at
		FROM call_list_remarks
		WHERE entry_id = $1
		ORDER BY created_at ASC, id ASC
	`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var remarks []Remark
	for rows.Next() {
		var remark Remark
		if err := rows.Scan(&remark.ID, &remark.Text, &remark.HandledBy, &remark.Status,
			&remark.IsUnread, &remark.CreatedAt); err != nil {
			return nil, err
		}
		remarks = append(remarks, remark)
	}
	return remarks, rows.Err()
}

// MarkRemarkRead flips one entry's unread flag by ledger position.
// Repeated calls are no-op successes.
func (r *Repository) MarkRemarkRead(ctx context.Context, entryID uuid.UUID, index int) error {
	if index < 0 {
		return ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE call_list_remarks SET is_unread = false
		WHERE id = (
			SELECT id FROM call_list_remarks
			WHERE entry_id = $1
			ORDER BY created_at ASC, id ASC
			OFFSET $2 LIMIT 1
		)
	`, entryID, index)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
