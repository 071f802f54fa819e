// Package service implements the lead lifecycle workflows: saving changes
// with a ledger entry, assignment, visibility, and follow-up sync.
package service

import (
	"context"
	"time"

	"enrollhub_backend/internal/events"
	"enrollhub_backend/internal/leads/domain"
	"enrollhub_backend/internal/leads/repository"
	"enrollhub_backend/platform/apperr"
	"enrollhub_backend/platform/logger"
	"enrollhub_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LeadStore is the persistence surface this service needs. Declared here so
// tests can substitute an in-memory implementation.
type LeadStore interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	SaveChanges(ctx context.Context, id uuid.UUID, params repository.SaveChangesParams) (repository.Lead, error)
	Assign(ctx context.Context, id uuid.UUID, params repository.AssignParams) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListRemarks(ctx context.Context, leadID uuid.UUID) ([]domain.Remark, error)
	MarkRemarkRead(ctx context.Context, leadID uuid.UUID, index int) error
	CountUnread(ctx context.Context, leadID uuid.UUID) (int, error)
}

// CalendarBridge keeps the follow-up calendar in sync with lead saves.
// Implemented by the calendar module; nil disables the sync.
type CalendarBridge interface {
	SyncFollowUp(ctx context.Context, sync FollowUpSync) error
	RemoveForLead(ctx context.Context, leadID uuid.UUID) error
}

// FollowUpSync carries the fields the calendar event is built from.
type FollowUpSync struct {
	LeadID     uuid.UUID
	FullName   string
	Phone      string
	Email      string
	LeadStatus string
	Date       time.Time
}

// ReminderScheduler enqueues a delayed follow-up reminder. Implemented by
// the scheduler client; nil disables reminders.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, leadID uuid.UUID, followUpDate time.Time) error
}

// UserDirectory resolves user ids to display names for ledger entries.
type UserDirectory interface {
	UserName(ctx context.Context, userID uuid.UUID) (string, error)
}

// Actor identifies who is performing an operation and with what privilege.
type Actor struct {
	UserID   uuid.UUID
	Name     string
	Elevated bool
	Owner    bool
}

type Service struct {
	store     LeadStore
	users     UserDirectory
	calendar  CalendarBridge
	reminders ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
}

func New(store LeadStore, users UserDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, users: users, bus: bus, log: log}
}

// SetCalendarBridge wires the follow-up calendar sync. Optional.
func (s *Service) SetCalendarBridge(bridge CalendarBridge) {
	s.calendar = bridge
}

// SetReminderScheduler wires delayed follow-up reminders. Optional.
func (s *Service) SetReminderScheduler(scheduler ReminderScheduler) {
	s.reminders = scheduler
}

type ListQuery struct {
	Status       *string
	Potential    *string
	AssignedToID *uuid.UUID
	Unassigned   bool
	CampaignID   *uuid.UUID
	Search       string
	FollowUpFrom *time.Time
	FollowUpTo   *time.Time
	Offset       int
	Limit        int
	SortBy       string
	SortOrder    string
}

// List returns the leads visible to the actor. Non-elevated callers only
// ever see leads assigned to themselves, regardless of requested filters.
func (s *Service) List(ctx context.Context, actor Actor, query ListQuery) ([]repository.Lead, int, error) {
	params := repository.ListParams{
		Status:       query.Status,
		Potential:    query.Potential,
		CampaignID:   query.CampaignID,
		Search:       query.Search,
		FollowUpFrom: query.FollowUpFrom,
		FollowUpTo:   query.FollowUpTo,
		Offset:       query.Offset,
		Limit:        query.Limit,
		SortBy:       query.SortBy,
		SortOrder:    query.SortOrder,
	}

	if actor.Elevated {
		params.AssignedToID = query.AssignedToID
		params.Unassigned = query.Unassigned
	} else {
		userID := actor.UserID
		params.VisibleToUserID = &userID
	}

	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}

	return s.store.List(ctx, params)
}

// Get returns one lead with its ledger, applying the visibility guard.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (repository.Lead, []domain.Remark, error) {
	var (
		lead    repository.Lead
		remarks []domain.Remark
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lead, err = s.store.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		remarks, err = s.store.ListRemarks(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return repository.Lead{}, nil, err
	}

	if err := s.guardVisibility(actor, lead); err != nil {
		return repository.Lead{}, nil, err
	}
	return lead, remarks, nil
}

type CreateInput struct {
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
	FollowUpDate      *time.Time
}

func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (repository.Lead, error) {
	if input.Phone == "" {
		return repository.Lead{}, apperr.Validation("phone is required")
	}
	normalizedPhone := phone.NormalizeE164(input.Phone)

	status := input.LeadStatus
	if status == "" {
		status = domain.StatusNew
	}
	if !domain.IsKnownStatus(status) {
		return repository.Lead{}, apperr.Validation("unknown lead status")
	}
	if input.LeadPotential != nil && !domain.IsKnownPotential(*input.LeadPotential) {
		return repository.Lead{}, apperr.Validation("unknown lead potential")
	}

	// A converted lead keeps no follow-up date, same as on save.
	followUpDate := input.FollowUpDate
	if status == domain.StatusConverted {
		followUpDate = nil
	}

	handledBy := actor.Name
	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		FullName:          input.FullName,
		Phone:             normalizedPhone,
		AltPhone:          input.AltPhone,
		Email:             input.Email,
		Place:             input.Place,
		OtherPlace:        input.OtherPlace,
		Gender:            input.Gender,
		DateOfBirth:       input.DateOfBirth,
		LeadStatus:        status,
		LeadPotential:     input.LeadPotential,
		Occupation:        input.Occupation,
		EducationLevel:    input.EducationLevel,
		CoursePreferences: input.CoursePreferences,
		ContactPoint:      input.ContactPoint,
		CampaignID:        input.CampaignID,
		AssignedToID:      input.AssignedToID,
		HandledBy:         &handledBy,
		FollowUpDate:      followUpDate,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	s.log.LeadEvent("lead_created", lead.ID.String(), "status", lead.LeadStatus)
	s.publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		FullName:     lead.FullName,
		Phone:        lead.Phone,
		LeadStatus:   lead.LeadStatus,
		AssignedToID: lead.AssignedToID,
		CreatedByID:  actor.UserID,
	})

	s.reconcileCalendar(ctx, repository.Lead{}, lead)
	return lead, nil
}

// SaveInput is one "save changes" action from the edit form. Fields left
// nil (with their Set flag false) are untouched.
type SaveInput struct {
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
	FollowUpDate      *time.Time
	FollowUpDateSet   bool
	IsAdmissionTaken  *bool

	RemarkText string
}

// SaveChanges validates and persists one edit action. The field update and
// the ledger entry commit in a single transaction: either both land or
// neither does.
func (s *Service) SaveChanges(ctx context.Context, actor Actor, id uuid.UUID, input SaveInput) (repository.Lead, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}
	if err := s.guardVisibility(actor, current); err != nil {
		return repository.Lead{}, err
	}
	if err := s.guardProtectedFields(actor, input); err != nil {
		return repository.Lead{}, err
	}

	newStatus := current.LeadStatus
	if input.LeadStatus != nil {
		if !domain.IsKnownStatus(*input.LeadStatus) {
			return repository.Lead{}, apperr.Validation("unknown lead status")
		}
		newStatus = *input.LeadStatus
	}
	statusChanged := newStatus != current.LeadStatus

	// Potential is never defaulted: the save fails unless the caller
	// supplies it or the lead already carries one.
	if input.LeadPotential != nil {
		if !domain.IsKnownPotential(*input.LeadPotential) {
			return repository.Lead{}, apperr.Validation("unknown lead potential")
		}
	} else if current.LeadPotential == nil {
		return repository.Lead{}, apperr.Validation("lead potential is required")
	}

	if input.RemarkText == "" && !statusChanged {
		return repository.Lead{}, apperr.Validation("remarks are required")
	}

	params := saveParamsFromInput(input)

	handledBy := actor.Name
	params.HandledBy = &handledBy

	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		params.Phone = &normalized
	}

	// A closed pipeline keeps no follow-up date, whatever the form held.
	newFollowUp := current.FollowUpDate
	if input.FollowUpDateSet {
		newFollowUp = input.FollowUpDate
	}
	if newStatus == domain.StatusConverted {
		params.FollowUpDate = nil
		params.FollowUpDateSet = true
		newFollowUp = nil
	}

	remark := repository.RemarkInsert{
		Kind:             domain.RemarkKindNote,
		Text:             input.RemarkText,
		HandledBy:        actor.Name,
		LeadStatus:       newStatus,
		NextFollowUpDate: newFollowUp,
		IsUnread:         true,
	}
	if input.RemarkText == "" {
		remark.Kind = domain.RemarkKindStatusChange
		remark.Text = domain.StatusChangeText(newStatus)
	}
	params.Remark = &remark

	lead, err := s.store.SaveChanges(ctx, id, params)
	if err != nil {
		return repository.Lead{}, err
	}

	s.log.LeadEvent("lead_saved", lead.ID.String(), "status", lead.LeadStatus, "statusChanged", statusChanged)

	if statusChanged {
		s.publish(ctx, events.LeadStatusChanged{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         lead.ID,
			FullName:       lead.FullName,
			PreviousStatus: current.LeadStatus,
			NewStatus:      lead.LeadStatus,
			ChangedByID:    actor.UserID,
			ChangedByName:  actor.Name,
		})
	}
	if input.RemarkText != "" {
		s.publish(ctx, events.RemarkAdded{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     lead.ID,
			Text:       input.RemarkText,
			AuthorID:   actor.UserID,
			AuthorName: actor.Name,
		})
	}

	s.reconcileCalendar(ctx, current, lead)
	return lead, nil
}

// AppendRemark records a standalone note without touching lead fields.
func (s *Service) AppendRemark(ctx context.Context, actor Actor, id uuid.UUID, text string) (repository.Lead, error) {
	if text == "" {
		return repository.Lead{}, apperr.Validation("remarks are required")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}
	if err := s.guardVisibility(actor, current); err != nil {
		return repository.Lead{}, err
	}

	handledBy := actor.Name
	lead, err := s.store.SaveChanges(ctx, id, repository.SaveChangesParams{
		HandledBy: &handledBy,
		Remark: &repository.RemarkInsert{
			Kind:             domain.RemarkKindNote,
			Text:             text,
			HandledBy:        actor.Name,
			LeadStatus:       current.LeadStatus,
			NextFollowUpDate: current.FollowUpDate,
			IsUnread:         true,
		},
	})
	if err != nil {
		return repository.Lead{}, err
	}

	s.publish(ctx, events.RemarkAdded{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		Text:       text,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
	})
	return lead, nil
}

// MarkRemarkRead flips one ledger entry's unread flag and returns the lead
// as persisted after the flip, with the remaining unread count. Repeating
// the call for an already-read entry succeeds without effect.
func (s *Service) MarkRemarkRead(ctx context.Context, actor Actor, id uuid.UUID, index int) (repository.Lead, int, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, 0, err
	}
	if err := s.guardVisibility(actor, lead); err != nil {
		return repository.Lead{}, 0, err
	}

	if err := s.store.MarkRemarkRead(ctx, id, index); err != nil {
		return repository.Lead{}, 0, err
	}

	lead, err = s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, 0, err
	}
	unread, err := s.store.CountUnread(ctx, id)
	if err != nil {
		return repository.Lead{}, 0, err
	}
	return lead, unread, nil
}

// Assign transfers ownership of a lead and records the transfer in the
// ledger. Elevated roles only.
func (s *Service) Assign(ctx context.Context, actor Actor, id uuid.UUID, targetUserID uuid.UUID, remark *string) (repository.Lead, error) {
	if !actor.Elevated {
		return repository.Lead{}, apperr.Forbidden("only managers can assign leads")
	}
	if targetUserID == uuid.Nil {
		return repository.Lead{}, apperr.Validation("target user is required")
	}

	targetName, err := s.users.UserName(ctx, targetUserID)
	if err != nil {
		return repository.Lead{}, apperr.Validation("target user not found")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}

	lead, err := s.store.Assign(ctx, id, repository.AssignParams{
		NewUserID:        targetUserID,
		AssignmentRemark: remark,
		HandledBy:        actor.Name,
		LedgerText:       "Assigned to " + targetName,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	s.log.LeadEvent("lead_assigned", lead.ID.String(), "to", targetUserID.String())
	s.publish(ctx, events.LeadAssigned{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		FullName:       lead.FullName,
		PreviousUserID: current.AssignedToID,
		NewUserID:      targetUserID,
		NewUserName:    targetName,
		AssignedByID:   actor.UserID,
		AssignedByName: actor.Name,
	})
	return lead, nil
}

// Delete removes a lead and its calendar reminder. Elevated roles only.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.Elevated {
		return apperr.Forbidden("only managers can delete leads")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.log.LeadEvent("lead_deleted", id.String())
	if s.calendar != nil {
		if err := s.calendar.RemoveForLead(ctx, id); err != nil {
			s.log.Warn("failed to remove calendar event for deleted lead", "leadId", id.String(), "error", err)
		}
	}
	return nil
}

func (s *Service) guardVisibility(actor Actor, lead repository.Lead) error {
	if actor.Elevated {
		return nil
	}
	if lead.AssignedToID == nil || *lead.AssignedToID != actor.UserID {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// Protected contact and attribution fields may only change under an owner.
func (s *Service) guardProtectedFields(actor Actor, input SaveInput) error {
	if actor.Owner {
		return nil
	}
	touched := input.FullName != nil ||
		input.Phone != nil ||
		input.EmailSet ||
		input.ContactPointSet ||
		input.CampaignIDSet
	if touched {
		return apperr.Forbidden("only owners can change contact fields")
	}
	return nil
}

// reconcileCalendar keeps at most one calendar event per lead: updated
// while the lead still needs follow-up, removed once it closes.
func (s *Service) reconcileCalendar(ctx context.Context, previous, lead repository.Lead) {
	if domain.IsClosed(lead.LeadStatus) {
		if previous.FollowUpDate != nil || lead.FollowUpDate != nil {
			s.removeFollowUp(ctx, lead.ID)
		}
		if previous.FollowUpDate != nil {
			s.publish(ctx, events.FollowUpCleared{BaseEvent: events.NewBaseEvent(), LeadID: lead.ID})
		}
		return
	}

	if lead.FollowUpDate == nil {
		if previous.FollowUpDate != nil {
			s.removeFollowUp(ctx, lead.ID)
			s.publish(ctx, events.FollowUpCleared{BaseEvent: events.NewBaseEvent(), LeadID: lead.ID})
		}
		return
	}

	changed := previous.FollowUpDate == nil || !previous.FollowUpDate.Equal(*lead.FollowUpDate)
	s.syncFollowUp(ctx, lead)
	if changed {
		s.publish(ctx, events.FollowUpScheduled{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			FullName:     lead.FullName,
			PreviousDate: previous.FollowUpDate,
			NewDate:      *lead.FollowUpDate,
			AssignedToID: lead.AssignedToID,
		})
		if s.reminders != nil {
			if err := s.reminders.ScheduleFollowUpReminder(ctx, lead.ID, *lead.FollowUpDate); err != nil {
				s.log.Warn("failed to schedule follow-up reminder", "leadId", lead.ID.String(), "error", err)
			}
		}
	}
}

func (s *Service) syncFollowUp(ctx context.Context, lead repository.Lead) {
	if s.calendar == nil || lead.FollowUpDate == nil {
		return
	}

	email := ""
	if lead.Email != nil {
		email = *lead.Email
	}
	err := s.calendar.SyncFollowUp(ctx, FollowUpSync{
		LeadID:     lead.ID,
		FullName:   lead.FullName,
		Phone:      lead.Phone,
		Email:      email,
		LeadStatus: lead.LeadStatus,
		Date:       *lead.FollowUpDate,
	})
	if err != nil {
		s.log.Warn("failed to sync follow-up calendar event", "leadId", lead.ID.String(), "error", err)
	}
}

func (s *Service) removeFollowUp(ctx context.Context, leadID uuid.UUID) {
	if s.calendar == nil {
		return
	}
	if err := s.calendar.RemoveForLead(ctx, leadID); err != nil {
		s.log.Warn("failed to remove follow-up calendar event", "leadId", leadID.String(), "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

func saveParamsFromInput(input SaveInput) repository.SaveChangesParams {
	return repository.SaveChangesParams{
		FullName:          input.FullName,
		Phone:             input.Phone,
		AltPhone:          input.AltPhone,
		AltPhoneSet:       input.AltPhoneSet,
		Email:             input.Email,
		EmailSet:          input.EmailSet,
		Place:             input.Place,
		PlaceSet:          input.PlaceSet,
		OtherPlace:        input.OtherPlace,
		OtherPlaceSet:     input.OtherPlaceSet,
		Gender:            input.Gender,
		GenderSet:         input.GenderSet,
		DateOfBirth:       input.DateOfBirth,
		DateOfBirthSet:    input.DateOfBirthSet,
		LeadStatus:        input.LeadStatus,
		LeadPotential:     input.LeadPotential,
		Occupation:        input.Occupation,
		OccupationSet:     input.OccupationSet,
		EducationLevel:    input.EducationLevel,
		EducationLevelSet: input.EducationLevelSet,
		CoursePreferences: input.CoursePreferences,
		CoursePrefsSet:    input.CoursePrefsSet,
		ContactPoint:      input.ContactPoint,
		ContactPointSet:   input.ContactPointSet,
		CampaignID:        input.CampaignID,
		CampaignIDSet:     input.CampaignIDSet,
		FollowUpDate:      input.FollowUpDate,
		FollowUpDateSet:   input.FollowUpDateSet,
		IsAdmissionTaken:  input.IsAdmissionTaken,
	}
}
