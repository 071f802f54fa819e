// Package domain provides business rules for the cold-call list.
package domain

const (
	StatusPending       = "pending"
	StatusCalled        = "called"
	StatusWrongNumber   = "wrongNumber"
	StatusNotPicked     = "notPicked"
	StatusBusy          = "busy"
	StatusInterested    = "interested"
	StatusNotInterested = "notInterested"
	StatusCopiedToLeads = "copiedToLeads"
)

var knownStatuses = map[string]struct{}{
	StatusPending:       {},
	StatusCalled:        {},
	StatusWrongNumber:   {},
	StatusNotPicked:     {},
	StatusBusy:          {},
	StatusInterested:    {},
	StatusNotInterested: {},
	StatusCopiedToLeads: {},
}

func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

var statusLabels = map[string]string{
	StatusPending:       "Pending",
	StatusCalled:        "Called",
	StatusWrongNumber:   "Wrong Number",
	StatusNotPicked:     "Not Picked",
	StatusBusy:          "Busy",
	StatusInterested:    "Interested",
	StatusNotInterested: "Not Interested",
	StatusCopiedToLeads: "Copied to Leads",
}

// StatusLabel maps a call outcome to its display label, passing unknown
// codes through unchanged.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// HasContactHandle reports whether an entry carries at least one way to
// reach the prospect. Entries without any are rejected.
func HasContactHandle(name, phone, socialHandle string) bool {
	return name != "" || phone != "" || socialHandle != ""
}
