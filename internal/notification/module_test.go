package notification

import (
	"context"
	"testing"
	"time"

	"enrollhub_backend/internal/events"
	"enrollhub_backend/internal/notification/inapp"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeInAppStore struct {
	created []inapp.CreateParams
}

func (f *fakeInAppStore) Create(_ context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	f.created = append(f.created, p)
	return inapp.Notification{ID: uuid.New(), UserID: p.UserID, Title: p.Title, Content: p.Content}, nil
}

func (f *fakeInAppStore) List(context.Context, uuid.UUID, int, int) ([]inapp.Notification, int, error) {
	return nil, 0, nil
}
func (f *fakeInAppStore) CountUnread(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (f *fakeInAppStore) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakeInAppStore) MarkAllRead(context.Context, uuid.UUID) error         { return nil }
func (f *fakeInAppStore) Delete(context.Context, uuid.UUID, uuid.UUID) error   { return nil }

type fakeSender struct {
	assigned  []string
	reminders []string
}

func (f *fakeSender) SendLeadAssignedEmail(_ context.Context, toEmail, _, _, _, _ string) error {
	f.assigned = append(f.assigned, toEmail)
	return nil
}

func (f *fakeSender) SendFollowUpReminderEmail(_ context.Context, toEmail, _, _, _, _ string) error {
	f.reminders = append(f.reminders, toEmail)
	return nil
}

type fakeRecipients struct {
	byID map[uuid.UUID]Recipient
}

func (f *fakeRecipients) Recipient(_ context.Context, userID uuid.UUID) (Recipient, error) {
	return f.byID[userID], nil
}

type fakeBaseURL struct{}

func (fakeBaseURL) GetAppBaseURL() string { return "https://portal.example.com" }

func newTestModule(store *fakeInAppStore, sender *fakeSender, recipients *fakeRecipients) *Module {
	log := logger.New("test")
	return &Module{
		inAppService: inapp.NewService(store, log),
		sender:       sender,
		recipients:   recipients,
		cfg:          fakeBaseURL{},
		log:          log,
	}
}

func TestLeadAssignedNotifiesNewAssignee(t *testing.T) {
	store := &fakeInAppStore{}
	sender := &fakeSender{}
	assignee := uuid.New()
	recipients := &fakeRecipients{byID: map[uuid.UUID]Recipient{
		assignee: {Email: "meena@institute.example", FullName: "Meena"},
	}}
	module := newTestModule(store, sender, recipients)

	err := module.Handle(context.Background(), events.LeadAssigned{
		LeadID:         uuid.New(),
		FullName:       "Ravi Kumar",
		NewUserID:      assignee,
		NewUserName:    "Meena",
		AssignedByID:   uuid.New(),
		AssignedByName: "Priya",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("in-app notifications = %d, want 1", len(store.created))
	}
	if store.created[0].UserID != assignee {
		t.Errorf("notification addressed to %s, want assignee", store.created[0].UserID)
	}
	if store.created[0].Content != "Priya assigned Ravi Kumar to you" {
		t.Errorf("content = %q", store.created[0].Content)
	}
	if len(sender.assigned) != 1 || sender.assigned[0] != "meena@institute.example" {
		t.Errorf("assignment email = %v, want one to meena@institute.example", sender.assigned)
	}
}

func TestFollowUpScheduledSkipsUnassignedLeads(t *testing.T) {
	store := &fakeInAppStore{}
	module := newTestModule(store, &fakeSender{}, &fakeRecipients{byID: map[uuid.UUID]Recipient{}})

	err := module.Handle(context.Background(), events.FollowUpScheduled{
		LeadID:   uuid.New(),
		FullName: "Ravi Kumar",
		NewDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("in-app notifications = %d, want 0 for unassigned lead", len(store.created))
	}
}

func TestFollowUpReminderDueEmailsAssignee(t *testing.T) {
	store := &fakeInAppStore{}
	sender := &fakeSender{}
	assignee := uuid.New()
	recipients := &fakeRecipients{byID: map[uuid.UUID]Recipient{
		assignee: {Email: "meena@institute.example", FullName: "Meena"},
	}}
	module := newTestModule(store, sender, recipients)

	err := module.Handle(context.Background(), events.FollowUpReminderDue{
		LeadID:       uuid.New(),
		FullName:     "Ravi Kumar",
		AssignedToID: assignee,
		FollowUpDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("in-app notifications = %d, want 1", len(store.created))
	}
	if store.created[0].Category != "warning" {
		t.Errorf("category = %q, want warning", store.created[0].Category)
	}
	if len(sender.reminders) != 1 || sender.reminders[0] != "meena@institute.example" {
		t.Errorf("reminder emails = %v", sender.reminders)
	}
}

func TestFollowUpScheduledNotifiesAssignee(t *testing.T) {
	store := &fakeInAppStore{}
	assignee := uuid.New()
	module := newTestModule(store, &fakeSender{}, &fakeRecipients{byID: map[uuid.UUID]Recipient{}})

	err := module.Handle(context.Background(), events.FollowUpScheduled{
		LeadID:       uuid.New(),
		FullName:     "Ravi Kumar",
		NewDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		AssignedToID: &assignee,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("in-app notifications = %d, want 1", len(store.created))
	}
	if store.created[0].Content != "Follow-up with Ravi Kumar set for 2025-03-01" {
		t.Errorf("content = %q", store.created[0].Content)
	}
}
