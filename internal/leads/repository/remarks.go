package repository

import (
	"context"

	"enrollhub_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ListRemarks returns a lead's ledger entries oldest first. Ordering is
// what makes "last entry = newest" hold everywhere else.
func (r *Repository) ListRemarks(ctx context.Context, leadID uuid.UUID) ([]domain.Remark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, text, handled_by, lead_status, next_follow_up_date,
			assigned_from_user_id, assigned_to_user_id, is_unread, created_at
		FROM lead_remarks
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var remarks []domain.Remark
	for rows.Next() {
		var remark domain.Remark
		if err := rows.Scan(
			&remark.ID, &remark.Kind, &remark.Text, &remark.HandledBy, &remark.LeadStatus,
			&remark.NextFollowUpDate, &remark.AssignedFromUserID, &remark.AssignedToUserID,
			&remark.IsUnread, &remark.CreatedAt,
		); err != nil {
			return nil, err
		}
		remarks = append(remarks, remark)
	}
	return remarks, rows.Err()
}

// MarkRemarkRead flips one entry's unread flag by its position in the
// ledger (oldest first). Flipping an already-read entry is a no-op, so
// the call is safe to repeat.
func (r *Repository) MarkRemarkRead(ctx context.Context, leadID uuid.UUID, index int) error {
	if index < 0 {
		return ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_remarks SET is_unread = false
		WHERE id = (
			SELECT id FROM lead_remarks
			WHERE lead_id = $1
			ORDER BY created_at ASC, id ASC
			OFFSET $2 LIMIT 1
		)
	`, leadID, index)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread returns the number of unread ledger entries for a lead.
func (r *Repository) CountUnread(ctx context.Context, leadID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM lead_remarks WHERE lead_id = $1 AND is_unread = true
	`, leadID).Scan(&count)
	return count, err
}
