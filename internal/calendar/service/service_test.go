package service

import (
	"context"
	"testing"
	"time"

	"enrollhub_backend/internal/calendar/repository"
	leadsvc "enrollhub_backend/internal/leads/service"
	"enrollhub_backend/platform/apperr"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	byID     map[uuid.UUID]repository.Event
	byLeadID map[uuid.UUID]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:     make(map[uuid.UUID]repository.Event),
		byLeadID: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeStore) UpsertForLead(_ context.Context, params repository.UpsertForLeadParams) (repository.Event, error) {
	id, exists := f.byLeadID[params.LeadID]
	if !exists {
		id = uuid.New()
		f.byLeadID[params.LeadID] = id
	}
	leadID := params.LeadID
	event := repository.Event{
		ID:         id,
		LeadID:     &leadID,
		Title:      params.Title,
		Phone:      params.Phone,
		Email:      params.Email,
		LeadStatus: params.LeadStatus,
		EventDate:  params.EventDate,
	}
	f.byID[id] = event
	return event, nil
}

func (f *fakeStore) DeleteByLeadID(_ context.Context, leadID uuid.UUID) error {
	if id, ok := f.byLeadID[leadID]; ok {
		delete(f.byID, id)
		delete(f.byLeadID, leadID)
	}
	return nil
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateParams) (repository.Event, error) {
	event := repository.Event{
		ID:        uuid.New(),
		Title:     params.Title,
		Notes:     params.Notes,
		EventDate: params.EventDate,
	}
	f.byID[event.ID] = event
	return event, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Event, error) {
	event, ok := f.byID[id]
	if !ok {
		return repository.Event{}, repository.ErrNotFound
	}
	return event, nil
}

func (f *fakeStore) ListRange(_ context.Context, from, to time.Time) ([]repository.Event, error) {
	var out []repository.Event
	for _, event := range f.byID {
		if !event.EventDate.Before(from) && !event.EventDate.After(to) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (repository.Event, error) {
	event, ok := f.byID[id]
	if !ok {
		return repository.Event{}, repository.ErrNotFound
	}
	if params.Title != nil {
		event.Title = *params.Title
	}
	if params.NotesSet {
		event.Notes = params.Notes
	}
	if params.EventDate != nil {
		event.EventDate = *params.EventDate
	}
	f.byID[id] = event
	return event, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestSyncFollowUpUpsertsSingleEventPerLead(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("test"))
	leadID := uuid.New()

	first := leadsvc.FollowUpSync{
		LeadID:     leadID,
		FullName:   "Ravi Kumar",
		Phone:      "+919812345678",
		LeadStatus: "contacted",
		Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.SyncFollowUp(context.Background(), first); err != nil {
		t.Fatalf("SyncFollowUp: %v", err)
	}

	moved := first
	moved.Date = time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	if err := svc.SyncFollowUp(context.Background(), moved); err != nil {
		t.Fatalf("SyncFollowUp move: %v", err)
	}

	if len(store.byID) != 1 {
		t.Fatalf("store holds %d events, want 1", len(store.byID))
	}
	event := store.byID[store.byLeadID[leadID]]
	if event.Title != "Follow-up: Ravi Kumar" {
		t.Errorf("title = %q", event.Title)
	}
	if !event.EventDate.Equal(moved.Date) {
		t.Errorf("event date = %v, want %v", event.EventDate, moved.Date)
	}
}

func TestRemoveForLeadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("test"))
	leadID := uuid.New()

	sync := leadsvc.FollowUpSync{
		LeadID:   leadID,
		FullName: "Ravi Kumar",
		Date:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.SyncFollowUp(context.Background(), sync); err != nil {
		t.Fatalf("SyncFollowUp: %v", err)
	}

	if err := svc.RemoveForLead(context.Background(), leadID); err != nil {
		t.Fatalf("RemoveForLead: %v", err)
	}
	if err := svc.RemoveForLead(context.Background(), leadID); err != nil {
		t.Fatalf("RemoveForLead second call: %v", err)
	}
	if len(store.byID) != 0 {
		t.Errorf("store holds %d events, want 0", len(store.byID))
	}
}

func TestUpdateRejectsLeadLinkedEvents(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("test"))
	leadID := uuid.New()

	if err := svc.SyncFollowUp(context.Background(), leadsvc.FollowUpSync{
		LeadID:   leadID,
		FullName: "Ravi Kumar",
		Date:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SyncFollowUp: %v", err)
	}

	eventID := store.byLeadID[leadID]
	title := "edited"
	_, err := svc.Update(context.Background(), eventID, UpdateInput{Title: &title})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if err := svc.Delete(context.Background(), eventID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on delete, got %v", err)
	}
}

func TestListRangeValidatesOrder(t *testing.T) {
	svc := New(newFakeStore(), logger.New("test"))

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListRange(context.Background(), from, to)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
