// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"enrollhub_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead record is created.
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	FullName     string     `json:"fullName"`
	Phone        string     `json:"phone"`
	LeadStatus   string     `json:"leadStatus"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedByID  uuid.UUID  `json:"createdById"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadStatusChanged is published when a lead transitions between statuses.
type LeadStatusChanged struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	FullName       string    `json:"fullName"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	ChangedByID    uuid.UUID `json:"changedById"`
	ChangedByName  string    `json:"changedByName"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadAssigned is published when a lead is assigned to a counsellor.
type LeadAssigned struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	FullName       string     `json:"fullName"`
	PreviousUserID *uuid.UUID `json:"previousUserId,omitempty"`
	NewUserID      uuid.UUID  `json:"newUserId"`
	NewUserName    string     `json:"newUserName"`
	AssignedByID   uuid.UUID  `json:"assignedById"`
	AssignedByName string     `json:"assignedByName"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// RemarkAdded is published when a counsellor writes a remark on a lead.
type RemarkAdded struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	RemarkID   uuid.UUID `json:"remarkId"`
	Text       string    `json:"text"`
	AuthorID   uuid.UUID `json:"authorId"`
	AuthorName string    `json:"authorName"`
}

func (e RemarkAdded) EventName() string { return "leads.remark.added" }

// FollowUpScheduled is published when a lead's follow-up date is set or moved.
// PreviousDate is nil when the lead had no follow-up before this change.
type FollowUpScheduled struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	FullName     string     `json:"fullName"`
	PreviousDate *time.Time `json:"previousDate,omitempty"`
	NewDate      time.Time  `json:"newDate"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
}

func (e FollowUpScheduled) EventName() string { return "leads.followup.scheduled" }

// FollowUpReminderDue is published by the scheduler worker when a
// reminder task fires and the lead's follow-up is still current.
type FollowUpReminderDue struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	AssignedToID uuid.UUID `json:"assignedToId"`
	FollowUpDate time.Time `json:"followUpDate"`
}

func (e FollowUpReminderDue) EventName() string { return "leads.followup.reminder.due" }

// FollowUpCleared is published when a lead's follow-up date is removed,
// either explicitly or because the lead closed.
type FollowUpCleared struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e FollowUpCleared) EventName() string { return "leads.followup.cleared" }
