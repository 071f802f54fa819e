package service

import (
	"context"
	"testing"
	"time"

	"enrollhub_backend/internal/calllist/domain"
	"enrollhub_backend/internal/calllist/repository"
	"enrollhub_backend/platform/apperr"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	entries map[uuid.UUID]repository.Entry
	remarks map[uuid.UUID][]repository.Remark
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[uuid.UUID]repository.Entry),
		remarks: make(map[uuid.UUID][]repository.Remark),
	}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateEntryParams) (repository.Entry, error) {
	entry := repository.Entry{
		ID:           uuid.New(),
		Name:         params.Name,
		Phone:        params.Phone,
		SocialHandle: params.SocialHandle,
		Source:       params.Source,
		Purpose:      params.Purpose,
		Status:       params.Status,
		AssignedToID: params.AssignedToID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Entry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return repository.Entry{}, repository.ErrNotFound
	}
	return entry, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateEntryParams) (repository.Entry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return repository.Entry{}, repository.ErrNotFound
	}
	if params.NameSet {
		entry.Name = params.Name
	}
	if params.PhoneSet {
		entry.Phone = params.Phone
	}
	if params.SocialHandleSet {
		entry.SocialHandle = params.SocialHandle
	}
	if params.Status != nil {
		entry.Status = *params.Status
	}
	f.entries[id] = entry

	if params.Remark != nil {
		f.remarks[id] = append(f.remarks[id], repository.Remark{
			ID:        uuid.New(),
			Text:      params.Remark.Text,
			HandledBy: params.Remark.HandledBy,
			Status:    params.Remark.Status,
			IsUnread:  params.Remark.IsUnread,
			CreatedAt: time.Now(),
		})
	}
	return entry, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) ([]repository.Entry, int, error) {
	var out []repository.Entry
	for _, entry := range f.entries {
		if params.VisibleToUserID != nil {
			if entry.AssignedToID == nil || *entry.AssignedToID != *params.VisibleToUserID {
				continue
			}
		}
		out = append(out, entry)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListRemarks(_ context.Context, entryID uuid.UUID) ([]repository.Remark, error) {
	return f.remarks[entryID], nil
}

func (f *fakeStore) MarkRemarkRead(_ context.Context, entryID uuid.UUID, index int) error {
	remarks := f.remarks[entryID]
	if index < 0 || index >= len(remarks) {
		return repository.ErrNotFound
	}
	remarks[index].IsUnread = false
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateRequiresContactHandle(t *testing.T) {
	svc := New(newFakeStore(), logger.New("test"))
	actor := Actor{UserID: uuid.New(), Name: "Asha", Elevated: true}

	_, err := svc.Create(context.Background(), actor, CreateInput{
		Source:  strPtr("college fair"),
		Purpose: strPtr("brochure request"),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	entry, err := svc.Create(context.Background(), actor, CreateInput{
		Phone: strPtr("+919812345678"),
	})
	if err != nil {
		t.Fatalf("Create with phone: %v", err)
	}
	if entry.Status != domain.StatusPending {
		t.Errorf("default status = %q, want pending", entry.Status)
	}
}

func TestUpdateStatusChangeWritesLedgerEntry(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("test"))
	actor := Actor{UserID: uuid.New(), Name: "Asha", Elevated: true}

	entry, err := svc.Create(context.Background(), actor, CreateInput{Phone: strPtr("+919812345678")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := domain.StatusNotPicked
	if _, err := svc.Update(context.Background(), actor, entry.ID, UpdateInput{Status: &status}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	remarks := store.remarks[entry.ID]
	if len(remarks) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(remarks))
	}
	if remarks[0].Text != "Status changed to Not Picked" {
		t.Errorf("ledger text = %q", remarks[0].Text)
	}
}

func TestUpdateCannotRemoveLastContactHandle(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("test"))
	actor := Actor{UserID: uuid.New(), Name: "Asha", Elevated: true}

	entry, err := svc.Create(context.Background(), actor, CreateInput{Phone: strPtr("+919812345678")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), actor, entry.ID, UpdateInput{
		Phone:      nil,
		PhoneSet:   true,
		RemarkText: "clearing phone",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVisibilityForNonElevatedCaller(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("test"))
	owner := Actor{UserID: uuid.New(), Name: "Priya", Elevated: true}
	counsellor := Actor{UserID: uuid.New(), Name: "Asha", Elevated: false}

	mine, _ := svc.Create(context.Background(), owner, CreateInput{
		Phone:        strPtr("+919812345678"),
		AssignedToID: &counsellor.UserID,
	})
	svc.Create(context.Background(), owner, CreateInput{Phone: strPtr("+919898989898")})

	entries, _, err := svc.List(context.Background(), counsellor, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != mine.ID {
		t.Errorf("counsellor sees %d entries, want only own", len(entries))
	}
}
