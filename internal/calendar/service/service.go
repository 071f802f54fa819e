// Package service keeps the follow-up calendar in step with the lead book.
package service

import (
	"context"
	"time"

	"enrollhub_backend/internal/calendar/repository"
	leadsvc "enrollhub_backend/internal/leads/service"
	"enrollhub_backend/platform/apperr"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
)

// EventStore is the persistence surface this service needs.
type EventStore interface {
	UpsertForLead(ctx context.Context, params repository.UpsertForLeadParams) (repository.Event, error)
	DeleteByLeadID(ctx context.Context, leadID uuid.UUID) error
	Create(ctx context.Context, params repository.CreateParams) (repository.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Event, error)
	ListRange(ctx context.Context, from, to time.Time) ([]repository.Event, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (repository.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store EventStore
	log   *logger.Logger
}

func New(store EventStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// SyncFollowUp creates or moves the all-day event tracking a lead's next
// follow-up call.
func (s *Service) SyncFollowUp(ctx context.Context, sync leadsvc.FollowUpSync) error {
	params := repository.UpsertForLeadParams{
		LeadID:    sync.LeadID,
		Title:     "Follow-up: " + sync.FullName,
		EventDate: sync.Date,
	}
	if sync.Phone != "" {
		params.Phone = &sync.Phone
	}
	if sync.Email != "" {
		params.Email = &sync.Email
	}
	if sync.LeadStatus != "" {
		params.LeadStatus = &sync.LeadStatus
	}

	event, err := s.store.UpsertForLead(ctx, params)
	if err != nil {
		return err
	}
	s.log.LeadEvent("calendar_event_synced", sync.LeadID.String(),
		"eventId", event.ID.String(), "date", sync.Date.Format("2006-01-02"))
	return nil
}

// RemoveForLead drops the lead's follow-up event. Removing an absent
// event is a no-op.
func (s *Service) RemoveForLead(ctx context.Context, leadID uuid.UUID) error {
	return s.store.DeleteByLeadID(ctx, leadID)
}

var _ leadsvc.CalendarBridge = (*Service)(nil)

type CreateInput struct {
	Title     string
	Notes     *string
	EventDate time.Time
}

func (s *Service) Create(ctx context.Context, input CreateInput) (repository.Event, error) {
	if input.Title == "" {
		return repository.Event{}, apperr.Validation("title is required")
	}
	if input.EventDate.IsZero() {
		return repository.Event{}, apperr.Validation("event date is required")
	}
	return s.store.Create(ctx, repository.CreateParams{
		Title:     input.Title,
		Notes:     input.Notes,
		EventDate: input.EventDate,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Event, error) {
	return s.store.GetByID(ctx, id)
}

// ListRange returns events within [from, to]. A zero range defaults to
// the current month.
func (s *Service) ListRange(ctx context.Context, from, to time.Time) ([]repository.Event, error) {
	if from.IsZero() || to.IsZero() {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	}
	if to.Before(from) {
		return nil, apperr.Validation("date range end precedes start")
	}
	return s.store.ListRange(ctx, from, to)
}

type UpdateInput struct {
	Title     *string
	Notes     *string
	NotesSet  bool
	EventDate *time.Time
}

// Update edits a standalone event. Lead-linked events are managed by the
// lead workflow and rejected here so the two never drift apart.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (repository.Event, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Event{}, err
	}
	if current.LeadID != nil {
		return repository.Event{}, apperr.Conflict("lead follow-up events are managed through the lead")
	}
	return s.store.Update(ctx, id, repository.UpdateParams{
		Title:     input.Title,
		Notes:     input.Notes,
		NotesSet:  input.NotesSet,
		EventDate: input.EventDate,
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.LeadID != nil {
		return apperr.Conflict("lead follow-up events are managed through the lead")
	}
	return s.store.Delete(ctx, id)
}
