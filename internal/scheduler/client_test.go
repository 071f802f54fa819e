package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testConfig struct {
	redisURL string
}

func (c testConfig) GetRedisURL() string       { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool { return false }
func (c testConfig) GetAsynqQueueName() string { return "followups" }
func (c testConfig) GetAsynqConcurrency() int  { return 1 }

func TestScheduleFollowUpReminderEnqueuesTask(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	leadID := uuid.New()
	followUp := time.Now().AddDate(0, 0, 3)
	if err := client.ScheduleFollowUpReminder(context.Background(), leadID, followUp); err != nil {
		t.Fatalf("ScheduleFollowUpReminder: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("followups")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("scheduled tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskFollowUpReminder {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskFollowUpReminder)
	}

	payload, err := ParseFollowUpReminderPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseFollowUpReminderPayload: %v", err)
	}
	if payload.LeadID != leadID.String() {
		t.Errorf("payload lead id = %q, want %q", payload.LeadID, leadID)
	}
	if payload.FollowUpDate != followUp.Format("2006-01-02") {
		t.Errorf("payload date = %q", payload.FollowUpDate)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testConfig{redisURL: ""}); err == nil {
		t.Fatal("expected error for missing redis url")
	}
}
