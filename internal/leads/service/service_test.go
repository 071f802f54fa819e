package service

import (
	"context"
	"testing"
	"time"

	"enrollhub_backend/internal/leads/domain"
	"enrollhub_backend/internal/leads/repository"
	"enrollhub_backend/platform/apperr"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory LeadStore. SaveChanges applies the field update
// and the remark append atomically, mirroring the transactional contract.
type fakeStore struct {
	leads   map[uuid.UUID]repository.Lead
	remarks map[uuid.UUID][]domain.Remark
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:   make(map[uuid.UUID]repository.Lead),
		remarks: make(map[uuid.UUID][]domain.Remark),
	}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:            uuid.New(),
		FullName:      params.FullName,
		Phone:         params.Phone,
		Email:         params.Email,
		LeadStatus:    params.LeadStatus,
		LeadPotential: params.LeadPotential,
		AssignedToID:  params.AssignedToID,
		HandledBy:     params.HandledBy,
		FollowUpDate:  params.FollowUpDate,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	var out []repository.Lead
	for _, lead := range f.leads {
		if params.VisibleToUserID != nil {
			if lead.AssignedToID == nil || *lead.AssignedToID != *params.VisibleToUserID {
				continue
			}
		}
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (f *fakeStore) SaveChanges(_ context.Context, id uuid.UUID, params repository.SaveChangesParams) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}

	if params.FullName != nil {
		lead.FullName = *params.FullName
	}
	if params.Phone != nil {
		lead.Phone = *params.Phone
	}
	if params.EmailSet {
		lead.Email = params.Email
	}
	if params.LeadStatus != nil {
		lead.LeadStatus = *params.LeadStatus
	}
	if params.LeadPotential != nil {
		lead.LeadPotential = params.LeadPotential
	}
	if params.FollowUpDateSet {
		lead.FollowUpDate = params.FollowUpDate
	}
	if params.IsAdmissionTaken != nil {
		lead.IsAdmissionTaken = *params.IsAdmissionTaken
	}
	if params.HandledBy != nil {
		lead.HandledBy = params.HandledBy
	}
	lead.UpdatedAt = time.Now()
	f.leads[id] = lead

	if params.Remark != nil {
		f.remarks[id] = append(f.remarks[id], domain.Remark{
			ID:               uuid.New(),
			Kind:             params.Remark.Kind,
			Text:             params.Remark.Text,
			HandledBy:        params.Remark.HandledBy,
			LeadStatus:       params.Remark.LeadStatus,
			NextFollowUpDate: params.Remark.NextFollowUpDate,
			IsUnread:         params.Remark.IsUnread,
			CreatedAt:        time.Now(),
		})
	}
	return lead, nil
}

func (f *fakeStore) Assign(_ context.Context, id uuid.UUID, params repository.AssignParams) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	previous := lead.AssignedToID
	userID := params.NewUserID
	lead.AssignedToID = &userID
	lead.AssignmentRemark = params.AssignmentRemark
	f.leads[id] = lead

	f.remarks[id] = append(f.remarks[id], domain.Remark{
		ID:                 uuid.New(),
		Kind:               domain.RemarkKindAssignment,
		Text:               params.LedgerText,
		HandledBy:          params.HandledBy,
		LeadStatus:         lead.LeadStatus,
		AssignedFromUserID: previous,
		AssignedToUserID:   &userID,
		IsUnread:           true,
		CreatedAt:          time.Now(),
	})
	return lead, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	delete(f.remarks, id)
	return nil
}

func (f *fakeStore) ListRemarks(_ context.Context, leadID uuid.UUID) ([]domain.Remark, error) {
	return f.remarks[leadID], nil
}

func (f *fakeStore) MarkRemarkRead(_ context.Context, leadID uuid.UUID, index int) error {
	remarks := f.remarks[leadID]
	if index < 0 || index >= len(remarks) {
		return repository.ErrNotFound
	}
	remarks[index].IsUnread = false
	return nil
}

func (f *fakeStore) CountUnread(_ context.Context, leadID uuid.UUID) (int, error) {
	return domain.CountUnread(f.remarks[leadID]), nil
}

type fakeDirectory struct {
	names map[uuid.UUID]string
}

func (f *fakeDirectory) UserName(_ context.Context, userID uuid.UUID) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return name, nil
}

func newTestService(store *fakeStore) *Service {
	return New(store, &fakeDirectory{names: map[uuid.UUID]string{}}, nil, logger.New("test"))
}

func counsellor() Actor {
	return Actor{UserID: uuid.New(), Name: "Asha", Elevated: false, Owner: false}
}

func owner() Actor {
	return Actor{UserID: uuid.New(), Name: "Priya", Elevated: true, Owner: true}
}

func seedLead(store *fakeStore, assignedTo *uuid.UUID, status string, potential *string) repository.Lead {
	lead := repository.Lead{
		ID:            uuid.New(),
		FullName:      "Ravi Kumar",
		Phone:         "+919876543210",
		LeadStatus:    status,
		LeadPotential: potential,
		AssignedToID:  assignedTo,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	store.leads[lead.ID] = lead
	return lead
}

func strPtr(s string) *string { return &s }

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestSaveChangesRejectsEmptyRemarkWithUnchangedStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusContacted, strPtr(domain.PotentialRegular))

	status := domain.StatusContacted
	_, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus: &status,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.remarks[lead.ID]) != 0 {
		t.Errorf("ledger has %d entries, want 0", len(store.remarks[lead.ID]))
	}
}

func TestSaveChangesSynthesizesStatusChangeRemark(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNew, strPtr(domain.PotentialRegular))

	status := domain.StatusContacted
	_, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus: &status,
	})
	if err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	remarks := store.remarks[lead.ID]
	if len(remarks) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(remarks))
	}
	if remarks[0].Text != "Status changed to Contacted" {
		t.Errorf("remark text = %q, want %q", remarks[0].Text, "Status changed to Contacted")
	}
	if remarks[0].Kind != domain.RemarkKindStatusChange {
		t.Errorf("remark kind = %q, want %q", remarks[0].Kind, domain.RemarkKindStatusChange)
	}
}

func TestSaveChangesRequiresPotential(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNew, nil)

	status := domain.StatusContacted
	_, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus: &status,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing potential, got %v", err)
	}
}

func TestSaveChangesConvertedClearsFollowUpDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNegotiation, strPtr(domain.PotentialStrong))

	followUp := datePtr(2025, 4, 1)
	status := domain.StatusConverted
	saved, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus:      &status,
		FollowUpDate:    followUp,
		FollowUpDateSet: true,
	})
	if err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}
	if saved.FollowUpDate != nil {
		t.Errorf("followUpDate = %v, want nil after conversion", saved.FollowUpDate)
	}
}

func TestMarkRemarkReadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNew, strPtr(domain.PotentialWeak))
	store.remarks[lead.ID] = []domain.Remark{
		{ID: uuid.New(), Kind: domain.RemarkKindNote, Text: "hello", IsUnread: true},
		{ID: uuid.New(), Kind: domain.RemarkKindNote, Text: "again", IsUnread: true},
	}

	for i := 0; i < 2; i++ {
		got, unread, err := svc.MarkRemarkRead(context.Background(), actor, lead.ID, 0)
		if err != nil {
			t.Fatalf("MarkRemarkRead call %d: %v", i+1, err)
		}
		if unread != 1 {
			t.Errorf("call %d: unread = %d, want 1", i+1, unread)
		}
		if got.ID != lead.ID {
			t.Errorf("call %d: returned lead %s, want %s", i+1, got.ID, lead.ID)
		}
	}

	remarks := store.remarks[lead.ID]
	if len(remarks) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(remarks))
	}
	if remarks[0].IsUnread {
		t.Error("remark still unread after MarkRemarkRead")
	}
	if !remarks[1].IsUnread {
		t.Error("untouched remark no longer unread")
	}
}

func TestListVisibilityForNonElevatedUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	user := counsellor()
	other := uuid.New()

	mine := seedLead(store, &user.UserID, domain.StatusNew, nil)
	seedLead(store, &other, domain.StatusNew, nil)
	seedLead(store, nil, domain.StatusNew, nil)

	leads, _, err := svc.List(context.Background(), user, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != mine.ID {
		t.Errorf("non-elevated view has %d leads, want exactly own lead", len(leads))
	}

	all, _, err := svc.List(context.Background(), owner(), ListQuery{})
	if err != nil {
		t.Fatalf("List elevated: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("elevated view has %d leads, want 3", len(all))
	}
}

func TestGetHiddenFromWrongUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	user := counsellor()
	other := uuid.New()
	lead := seedLead(store, &other, domain.StatusNew, nil)

	_, _, err := svc.Get(context.Background(), user, lead.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign lead, got %v", err)
	}
}

func TestProtectedFieldsRequireOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	user := counsellor()
	lead := seedLead(store, &user.UserID, domain.StatusNew, strPtr(domain.PotentialRegular))

	name := "Changed Name"
	_, err := svc.SaveChanges(context.Background(), user, lead.ID, SaveInput{
		FullName:   &name,
		RemarkText: "tried to rename",
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for protected field, got %v", err)
	}

	// The same counsellor can still update pipeline fields.
	status := domain.StatusContacted
	if _, err := svc.SaveChanges(context.Background(), user, lead.ID, SaveInput{
		LeadStatus: &status,
	}); err != nil {
		t.Fatalf("pipeline-only save: %v", err)
	}
}

func TestAssignRequiresElevatedRole(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	user := counsellor()
	lead := seedLead(store, &user.UserID, domain.StatusNew, nil)

	_, err := svc.Assign(context.Background(), user, lead.ID, uuid.New(), nil)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignRecordsLedgerEvent(t *testing.T) {
	store := newFakeStore()
	target := uuid.New()
	directory := &fakeDirectory{names: map[uuid.UUID]string{target: "Meena"}}
	svc := New(store, directory, nil, logger.New("test"))
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNew, nil)

	remark := "warm lead, handle today"
	saved, err := svc.Assign(context.Background(), actor, lead.ID, target, &remark)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if saved.AssignedToID == nil || *saved.AssignedToID != target {
		t.Error("assignedTo not updated")
	}

	remarks := store.remarks[lead.ID]
	if len(remarks) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(remarks))
	}
	entry := remarks[0]
	if entry.Kind != domain.RemarkKindAssignment {
		t.Errorf("entry kind = %q, want assignment", entry.Kind)
	}
	if entry.Text != "Assigned to Meena" {
		t.Errorf("entry text = %q", entry.Text)
	}
	if entry.AssignedToUserID == nil || *entry.AssignedToUserID != target {
		t.Error("entry missing target user")
	}
}

func TestSaveLifecycleEndToEnd(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNew, nil)

	// First save: status change with follow-up, no text.
	status := domain.StatusContacted
	potential := domain.PotentialRegular
	followUp := datePtr(2025, 3, 1)
	saved, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus:      &status,
		LeadPotential:   &potential,
		FollowUpDate:    followUp,
		FollowUpDateSet: true,
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	remarks := store.remarks[lead.ID]
	if len(remarks) != 1 {
		t.Fatalf("ledger has %d entries after first save, want 1", len(remarks))
	}
	if remarks[0].Text != "Status changed to Contacted" {
		t.Errorf("first entry text = %q", remarks[0].Text)
	}
	if saved.FollowUpDate == nil || !saved.FollowUpDate.Equal(*followUp) {
		t.Errorf("followUpDate = %v, want %v", saved.FollowUpDate, followUp)
	}

	// Second save: conversion with a note.
	status = domain.StatusConverted
	saved, err = svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus: &status,
		RemarkText: "Signed up",
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	remarks = store.remarks[lead.ID]
	if len(remarks) != 2 {
		t.Fatalf("ledger has %d entries after second save, want 2", len(remarks))
	}
	if remarks[1].Text != "Signed up" || remarks[1].Kind != domain.RemarkKindNote {
		t.Errorf("second entry = %+v", remarks[1])
	}
	if saved.FollowUpDate != nil {
		t.Errorf("followUpDate = %v, want nil after conversion", saved.FollowUpDate)
	}
	if got := domain.EffectiveStatus(saved.LeadStatus, saved.IsAdmissionTaken); got != domain.StatusConverted {
		t.Errorf("effective status = %q, want converted", got)
	}
}

func TestSaveChangesRemovesCalendarEventOnClose(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	bridge := &recordingBridge{}
	svc.SetCalendarBridge(bridge)
	actor := owner()

	lead := seedLead(store, nil, domain.StatusContacted, strPtr(domain.PotentialRegular))
	lead.FollowUpDate = datePtr(2025, 3, 1)
	store.leads[lead.ID] = lead

	status := domain.StatusLost
	if _, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus: &status,
	}); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	if len(bridge.removed) != 1 || bridge.removed[0] != lead.ID {
		t.Errorf("calendar event not removed on close: %v", bridge.removed)
	}
	if len(bridge.synced) != 0 {
		t.Errorf("unexpected calendar sync on close: %v", bridge.synced)
	}
}

func TestSaveChangesSyncsCalendarEvent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	bridge := &recordingBridge{}
	svc.SetCalendarBridge(bridge)
	actor := owner()
	lead := seedLead(store, nil, domain.StatusNew, strPtr(domain.PotentialRegular))

	status := domain.StatusContacted
	followUp := datePtr(2025, 3, 1)
	if _, err := svc.SaveChanges(context.Background(), actor, lead.ID, SaveInput{
		LeadStatus:      &status,
		FollowUpDate:    followUp,
		FollowUpDateSet: true,
	}); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	if len(bridge.synced) != 1 {
		t.Fatalf("calendar synced %d times, want 1", len(bridge.synced))
	}
	sync := bridge.synced[0]
	if sync.LeadID != lead.ID || !sync.Date.Equal(*followUp) || sync.LeadStatus != domain.StatusContacted {
		t.Errorf("unexpected sync payload: %+v", sync)
	}
}

func TestCreateConvertedClearsFollowUpDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	bridge := &recordingBridge{}
	svc.SetCalendarBridge(bridge)

	lead, err := svc.Create(context.Background(), owner(), CreateInput{
		FullName:     "Ravi Kumar",
		Phone:        "+919876543210",
		LeadStatus:   domain.StatusConverted,
		FollowUpDate: datePtr(2025, 3, 1),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if lead.FollowUpDate != nil {
		t.Errorf("followUpDate = %v, want nil for a converted lead", lead.FollowUpDate)
	}
	if len(bridge.synced) != 0 {
		t.Errorf("calendar synced %d times for a converted lead, want 0", len(bridge.synced))
	}
}

func TestCreateSyncsCalendarEvent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	bridge := &recordingBridge{}
	svc.SetCalendarBridge(bridge)

	followUp := datePtr(2025, 3, 1)
	lead, err := svc.Create(context.Background(), owner(), CreateInput{
		FullName:     "Ravi Kumar",
		Phone:        "+919876543210",
		FollowUpDate: followUp,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(bridge.synced) != 1 {
		t.Fatalf("calendar synced %d times, want 1", len(bridge.synced))
	}
	if bridge.synced[0].LeadID != lead.ID || !bridge.synced[0].Date.Equal(*followUp) {
		t.Errorf("unexpected sync payload: %+v", bridge.synced[0])
	}
}

type recordingBridge struct {
	synced  []FollowUpSync
	removed []uuid.UUID
}

func (b *recordingBridge) SyncFollowUp(_ context.Context, sync FollowUpSync) error {
	b.synced = append(b.synced, sync)
	return nil
}

func (b *recordingBridge) RemoveForLead(_ context.Context, leadID uuid.UUID) error {
	b.removed = append(b.removed, leadID)
	return nil
}
