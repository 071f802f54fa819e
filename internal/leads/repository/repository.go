// Package repository provides PostgreSQL persistence for the leads bounded context.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"enrollhub_backend/internal/leads/domain"

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

type Lead struct {
	ID                uuid.UUID
	FullName          string
	Phone             string
	AltPhone          *string
	Email             *string
	Place             *string
	OtherPlace        *string
	Gender            *string
	DateOfBirth       *time.Time
	LeadStatus        string
	LeadPotential     *string
	Occupation        *string
	EducationLevel    *string
	CoursePreferences []string
	ContactPoint      *string
	CampaignID        *uuid.UUID
	AssignedToID      *uuid.UUID
	AssignmentRemark  *string
	HandledBy         *string
	FollowUpDate      *time.Time
	IsAdmissionTaken  bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const leadColumns = `id, full_name, phone, alt_phone, email, place, other_place, gender, date_of_birth,
		lead_status, lead_potential, occupation, education_level, course_preferences, contact_point,
		campaign_id, assigned_to_id, assignment_remark, handled_by, follow_up_date, is_admission_taken,
		created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FullName, &l.Phone, &l.AltPhone, &l.Email, &l.Place, &l.OtherPlace, &l.Gender, &l.DateOfBirth,
		&l.LeadStatus, &l.LeadPotential, &l.Occupation, &l.EducationLevel, &l.CoursePreferences, &l.ContactPoint,
		&l.CampaignID, &l.AssignedToID, &l.AssignmentRemark, &l.HandledBy, &l.FollowUpDate, &l.IsAdmissionTaken,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

type CreateLeadParams struct {
	FullName          string
	Phone             string
	AltPhone          *string
	Email             *string
	Place             *string
	OtherPlace        *string
	Gender            *string
	DateOfBirth       *time.Time
	LeadStatus        string
	LeadPotential     *string
	Occupation        *string
	EducationLevel    *string
	CoursePreferences []string
	ContactPoint      *string
	CampaignID        *uuid.UUID
	AssignedToID      *uuid.UUID
	HandledBy         *string
	FollowUpDate      *time.Time
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	query := fmt.Sprintf(`
		INSERT INTO leads (full_name, phone, alt_phone, email, place, other_place, gender, date_of_birth,
			lead_status, lead_potential, occupation, education_level, course_preferences, contact_point,
			campaign_id, assigned_to_id, handled_by, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING %s
	`, leadColumns)

	return scanLead(r.pool.QueryRow(ctx, query,
		params.FullName, params.Phone, params.AltPhone, params.Email, params.Place, params.OtherPlace,
		params.Gender, params.DateOfBirth, params.LeadStatus, params.LeadPotential, params.Occupation,
		params.EducationLevel, params.CoursePreferences, params.ContactPoint, params.CampaignID,
		params.AssignedToID, params.HandledBy, params.FollowUpDate,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)
	return scanLead(r.pool.QueryRow(ctx, query, id))
}

// RemarkInsert is one ledger entry to append inside a transaction.
type RemarkInsert struct {
	Kind               string
	Text               string
	HandledBy          string
	LeadStatus         string
	NextFollowUpDate   *time.Time
	AssignedFromUserID *uuid.UUID
	AssignedToUserID   *uuid.UUID
	IsUnread           bool
}

// SaveChangesParams carries the field changes and the optional ledger entry
// persisted together by SaveChanges. Nullable columns use a Set flag so a
// caller can distinguish "clear this" from "leave untouched".
type SaveChangesParams struct {
	FullName          *string
	Phone             *string
	AltPhone          *string
	AltPhoneSet       bool
	Email             *string
	EmailSet          bool
	Place             *string
	PlaceSet          bool
	OtherPlace        *string
	OtherPlaceSet     bool
	Gender            *string
	GenderSet         bool
	DateOfBirth       *time.Time
	DateOfBirthSet    bool
	LeadStatus        *string
	LeadPotential     *string
	Occupation        *string
	OccupationSet     bool
	EducationLevel    *string
	EducationLevelSet bool
	CoursePreferences []string
	CoursePrefsSet    bool
	ContactPoint      *string
	ContactPointSet   bool
	CampaignID        *uuid.UUID
	CampaignIDSet     bool
	HandledBy         *string
	FollowUpDate      *time.Time
	FollowUpDateSet   bool
	IsAdmissionTaken  *bool

	Remark *RemarkInsert
}

// SaveChanges applies field updates and appends the ledger entry in one
// transaction, so a crash can never leave the ledger and the record
// disagreeing about what happened.
func (r *Repository) SaveChanges(ctx context.Context, id uuid.UUID, params SaveChangesParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var lead Lead
	lead, err = updateLeadTx(ctx, tx, id, params)
	if err != nil {
		return Lead{}, err
	}

	if params.Remark != nil {
		if err = insertRemarkTx(ctx, tx, id, *params.Remark); err != nil {
			return Lead{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func updateLeadTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, params SaveChangesParams) (Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.FullName != nil, "full_name", params.FullName},
		{params.Phone != nil, "phone", params.Phone},
		{params.AltPhoneSet, "alt_phone", params.AltPhone},
		{params.EmailSet, "email", params.Email},
		{params.PlaceSet, "place", params.Place},
		{params.OtherPlaceSet, "other_place", params.OtherPlace},
		{params.GenderSet, "gender", params.Gender},
		{params.DateOfBirthSet, "date_of_birth", params.DateOfBirth},
		{params.LeadStatus != nil, "lead_status", params.LeadStatus},
		{params.LeadPotential != nil, "lead_potential", params.LeadPotential},
		{params.OccupationSet, "occupation", params.Occupation},
		{params.EducationLevelSet, "education_level", params.EducationLevel},
		{params.CoursePrefsSet, "course_preferences", params.CoursePreferences},
		{params.ContactPointSet, "contact_point", params.ContactPoint},
		{params.CampaignIDSet, "campaign_id", params.CampaignID},
		{params.HandledBy != nil, "handled_by", params.HandledBy},
		{params.FollowUpDateSet, "follow_up_date", params.FollowUpDate},
		{params.IsAdmissionTaken != nil, "is_admission_taken", params.IsAdmissionTaken},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)
		return scanLead(tx.QueryRow(ctx, query, id))
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, leadColumns)

	return scanLead(tx.QueryRow(ctx, query, args...))
}

func insertRemarkTx(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, remark RemarkInsert) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO lead_remarks (lead_id, kind, text, handled_by, lead_status, next_follow_up_date,
			assigned_from_user_id, assigned_to_user_id, is_unread)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, leadID, remark.Kind, remark.Text, remark.HandledBy, remark.LeadStatus, remark.NextFollowUpDate,
		remark.AssignedFromUserID, remark.AssignedToUserID, remark.IsUnread)
	return err
}

// AssignParams reassigns a lead and records the transfer as a ledger event.
type AssignParams struct {
	NewUserID        uuid.UUID
	AssignmentRemark *string
	HandledBy        string
	LedgerText       string
}

func (r *Repository) Assign(ctx context.Context, id uuid.UUID, params AssignParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var previous Lead
	previous, err = scanLead(tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1 FOR UPDATE`, leadColumns), id))
	if err != nil {
		return Lead{}, err
	}

	query := fmt.Sprintf(`
		UPDATE leads SET assigned_to_id = $2, assignment_remark = $3, updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, leadColumns)

	var lead Lead
	lead, err = scanLead(tx.QueryRow(ctx, query, id, params.NewUserID, params.AssignmentRemark))
	if err != nil {
		return Lead{}, err
	}

	err = insertRemarkTx(ctx, tx, id, RemarkInsert{
		Kind:               domain.RemarkKindAssignment,
		Text:               params.LedgerText,
		HandledBy:          params.HandledBy,
		LeadStatus:         lead.LeadStatus,
		AssignedFromUserID: previous.AssignedToID,
		AssignedToUserID:   &params.NewUserID,
		IsUnread:           true,
	})
	if err != nil {
		return Lead{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type ListParams struct {
	// VisibleToUserID restricts results to leads assigned to this user.
	// Left nil for elevated callers, who see everything.
	VisibleToUserID *uuid.UUID
	AssignedToID    *uuid.UUID
	Unassigned      bool
	Status          *string
	Potential       *string
	CampaignID      *uuid.UUID
	Search          string
	FollowUpFrom    *time.Time
	FollowUpTo      *time.Time
	Offset          int
	Limit           int
	SortBy          string
	SortOrder       string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn := mapLeadSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY %s %s NULLS LAST
		LIMIT $%d OFFSET $%d
	`, prefixColumns("l"), whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func prefixColumns(alias string) string {
	cols := strings.Split(leadColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"true"}
	args := []interface{}{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.VisibleToUserID != nil {
		addEquals("l.assigned_to_id", *params.VisibleToUserID)
	} else if params.Unassigned {
		whereClauses = append(whereClauses, "l.assigned_to_id IS NULL")
	} else if params.AssignedToID != nil {
		addEquals("l.assigned_to_id", *params.AssignedToID)
	}

	if params.Status != nil {
		addEquals("l.lead_status", *params.Status)
	}
	if params.Potential != nil {
		addEquals("l.lead_potential", *params.Potential)
	}
	if params.CampaignID != nil {
		addEquals("l.campaign_id", *params.CampaignID)
	}
	if params.Search != "" {
		searchPattern := "%" + params.Search + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.full_name ILIKE $%d OR l.phone ILIKE $%d OR l.email ILIKE $%d OR l.place ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, searchPattern)
		argIdx++
	}
	if params.FollowUpFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.follow_up_date >= $%d", argIdx))
		args = append(args, *params.FollowUpFrom)
		argIdx++
	}
	if params.FollowUpTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.follow_up_date < $%d", argIdx))
		args = append(args, *params.FollowUpTo)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "fullName":
		return "l.full_name"
	case "phone":
		return "l.phone"
	case "leadStatus":
		return "l.lead_status"
	case "leadPotential":
		return "l.lead_potential"
	case "followUpDate":
		return "l.follow_up_date"
	case "assignedTo":
		return "l.assigned_to_id"
	default:
		return "l.created_at"
	}
}
