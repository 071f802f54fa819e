package domain

import (
	"time"

	"github.com/google/uuid"
)

// Remark entry kinds. Assignment changes are first-class ledger events,
// not silent field overwrites.
const (
	RemarkKindNote         = "note"
	RemarkKindStatusChange = "statusChange"
	RemarkKindAssignment   = "assignment"
)

// Remark is one immutable entry in a lead's append-only history ledger.
// Only IsUnread may change after creation.
type Remark struct {
	ID                 uuid.UUID
	Kind               string
	Text               string
	HandledBy          string
	LeadStatus         string
	NextFollowUpDate   *time.Time
	AssignedFromUserID *uuid.UUID
	AssignedToUserID   *uuid.UUID
	IsUnread           bool
	CreatedAt          time.Time
}

// NoRemarksSentinel is shown when a lead has no history yet.
const NoRemarksSentinel = "No remarks yet"

// LatestRemark returns the newest entry's text. Entries are ordered oldest
// first, so the last element is the newest.
func LatestRemark(remarks []Remark) string {
	if len(remarks) == 0 {
		return NoRemarksSentinel
	}
	return remarks[len(remarks)-1].Text
}

// HasUnread reports whether any entry is still unread.
func HasUnread(remarks []Remark) bool {
	return CountUnread(remarks) > 0
}

// CountUnread returns how many entries are still unread.
func CountUnread(remarks []Remark) int {
	count := 0
	for _, r := range remarks {
		if r.IsUnread {
			count++
		}
	}
	return count
}

// StatusChangeText synthesizes the ledger text recorded when a status
// transition happens without an accompanying note.
func StatusChangeText(newStatus string) string {
	return "Status changed to " + StatusLabel(newStatus)
}
