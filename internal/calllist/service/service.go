// Package service implements the cold-call list workflows.
package service

import (
	"context"

	"enrollhub_backend/internal/calllist/domain"
	"enrollhub_backend/internal/calllist/repository"
	"enrollhub_backend/platform/apperr"
	"enrollhub_backend/platform/logger"
	"enrollhub_backend/platform/phone"

	"github.com/google/uuid"
)

// EntryStore is the persistence surface this service needs.
type EntryStore interface {
	Create(ctx context.Context, params repository.CreateEntryParams) (repository.Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Entry, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateEntryParams) (repository.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ListParams) ([]repository.Entry, int, error)
	ListRemarks(ctx context.Context, entryID uuid.UUID) ([]repository.Remark, error)
	MarkRemarkRead(ctx context.Context, entryID uuid.UUID, index int) error
}

// Actor mirrors the leads actor: same roles, same visibility rule.
type Actor struct {
	UserID   uuid.UUID
	Name     string
	Elevated bool
}

type Service struct {
	store EntryStore
	log   *logger.Logger
}

func New(store EntryStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

type CreateInput struct {
	Name         *string
	Phone        *string
	SocialHandle *string
	Source       *string
	Purpose      *string
	Status       string
	AssignedToID *uuid.UUID
}

func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (repository.Entry, error) {
	if !domain.HasContactHandle(deref(input.Name), deref(input.Phone), deref(input.SocialHandle)) {
		return repository.Entry{}, apperr.Validation("at least one of name, phone, or social handle is required")
	}

	status := input.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.IsKnownStatus(status) {
		return repository.Entry{}, apperr.Validation("unknown call status")
	}

	if input.Phone != nil && *input.Phone != "" {
		normalized := phone.NormalizeE164(*input.Phone)
		input.Phone = &normalized
	}

	entry, err := s.store.Create(ctx, repository.CreateEntryParams{
		Name:         input.Name,
		Phone:        input.Phone,
		SocialHandle: input.SocialHandle,
		Source:       input.Source,
		Purpose:      input.Purpose,
		Status:       status,
		AssignedToID: input.AssignedToID,
	})
	if err != nil {
		return repository.Entry{}, err
	}

	s.log.LeadEvent("call_entry_created", entry.ID.String(), "status", entry.Status)
	return entry, nil
}

type ListQuery struct {
	Status *string
	Search string
	Offset int
	Limit  int
}

func (s *Service) List(ctx context.Context, actor Actor, query ListQuery) ([]repository.Entry, int, error) {
	params := repository.ListParams{
		Status: query.Status,
		Search: query.Search,
		Offset: query.Offset,
		Limit:  query.Limit,
	}
	if !actor.Elevated {
		userID := actor.UserID
		params.VisibleToUserID = &userID
	}
	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}
	return s.store.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (repository.Entry, []repository.Remark, error) {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Entry{}, nil, err
	}
	if err := s.guardVisibility(actor, entry); err != nil {
		return repository.Entry{}, nil, err
	}

	remarks, err := s.store.ListRemarks(ctx, id)
	if err != nil {
		return repository.Entry{}, nil, err
	}
	return entry, remarks, nil
}

type UpdateInput struct {
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
	RemarkText      string
}

// Update applies an edit. A status change without a note still produces a
// ledger entry so every call outcome leaves a trace.
func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (repository.Entry, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Entry{}, err
	}
	if err := s.guardVisibility(actor, current); err != nil {
		return repository.Entry{}, err
	}

	newStatus := current.Status
	if input.Status != nil {
		if !domain.IsKnownStatus(*input.Status) {
			return repository.Entry{}, apperr.Validation("unknown call status")
		}
		newStatus = *input.Status
	}
	statusChanged := newStatus != current.Status

	name := current.Name
	if input.NameSet {
		name = input.Name
	}
	phoneVal := current.Phone
	if input.PhoneSet {
		phoneVal = input.Phone
	}
	social := current.SocialHandle
	if input.SocialHandleSet {
		social = input.SocialHandle
	}
	if !domain.HasContactHandle(deref(name), deref(phoneVal), deref(social)) {
		return repository.Entry{}, apperr.Validation("at least one of name, phone, or social handle is required")
	}

	if input.PhoneSet && input.Phone != nil && *input.Phone != "" {
		normalized := phone.NormalizeE164(*input.Phone)
		input.Phone = &normalized
	}

	params := repository.UpdateEntryParams{
		Name:            input.Name,
		NameSet:         input.NameSet,
		Phone:           input.Phone,
		PhoneSet:        input.PhoneSet,
		SocialHandle:    input.SocialHandle,
		SocialHandleSet: input.SocialHandleSet,
		Source:          input.Source,
		SourceSet:       input.SourceSet,
		Purpose:         input.Purpose,
		PurposeSet:      input.PurposeSet,
		Status:          input.Status,
		AssignedToID:    input.AssignedToID,
		AssignedToIDSet: input.AssignedToIDSet,
	}

	if input.RemarkText != "" || statusChanged {
		text := input.RemarkText
		if text == "" {
			text = "Status changed to " + domain.StatusLabel(newStatus)
		}
		params.Remark = &repository.RemarkInsert{
			Text:      text,
			HandledBy: actor.Name,
			Status:    newStatus,
			IsUnread:  true,
		}
	}

	return s.store.Update(ctx, id, params)
}

func (s *Service) MarkRemarkRead(ctx context.Context, actor Actor, id uuid.UUID, index int) error {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardVisibility(actor, entry); err != nil {
		return err
	}
	return s.store.MarkRemarkRead(ctx, id, index)
}

func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.Elevated {
		return apperr.Forbidden("only managers can delete call list entries")
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) guardVisibility(actor Actor, entry repository.Entry) error {
	if actor.Elevated {
		return nil
	}
	if entry.AssignedToID == nil || *entry.AssignedToID != actor.UserID {
		return apperr.NotFound("call list entry not found")
	}
	return nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
