// Package notification fans domain events out to counsellor-facing
// channels: the in-app bell and email.
package notification

import (
	"context"
	"fmt"

	"enrollhub_backend/internal/email"
	"enrollhub_backend/internal/events"
	apphttp "enrollhub_backend/internal/http"
	"enrollhub_backend/internal/notification/handler"
	"enrollhub_backend/internal/notification/inapp"
	"enrollhub_backend/platform/config"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resourceTypeLead = "lead"

// Recipient is the contact surface needed to address an email.
type Recipient struct {
	Email    string
	FullName string
}

// RecipientReader resolves a user id to an email recipient.
type RecipientReader interface {
	Recipient(ctx context.Context, userID uuid.UUID) (Recipient, error)
}

type Module struct {
	inAppService *inapp.Service
	sender       email.Sender
	recipients   RecipientReader
	cfg          config.NotificationConfig
	log          *logger.Logger
	httpHandler  *handler.HTTPHandler
}

func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	inAppService := inapp.NewService(inapp.NewRepository(pool), log)
	return &Module{
		inAppService: inAppService,
		sender:       sender,
		recipients:   &pgRecipientReader{pool: pool},
		cfg:          cfg,
		log:          log,
		httpHandler:  handler.NewHTTPHandler(inAppService),
	}
}

func (m *Module) Name() string { return "notification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.httpHandler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// RegisterHandlers subscribes this module to the lead lifecycle events
// it turns into notifications.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.FollowUpScheduled{}.EventName(), m)
	bus.Subscribe(events.FollowUpReminderDue{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case events.FollowUpScheduled:
		return m.handleFollowUpScheduled(ctx, e)
	case events.FollowUpReminderDue:
		return m.handleFollowUpReminderDue(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	leadID := e.LeadID
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.NewUserID,
		Title:        "New lead assigned",
		Content:      fmt.Sprintf("%s assigned %s to you", e.AssignedByName, e.FullName),
		ResourceID:   &leadID,
		ResourceType: resourceTypeLead,
		Category:     "info",
	}); err != nil {
		return err
	}

	if m.sender == nil {
		return nil
	}
	recipient, err := m.recipients.Recipient(ctx, e.NewUserID)
	if err != nil {
		m.log.Error("failed to resolve assignment email recipient", "error", err, "userId", e.NewUserID)
		return nil
	}
	if err := m.sender.SendLeadAssignedEmail(ctx,
		recipient.Email, recipient.FullName, e.FullName, e.AssignedByName, m.leadURL(e.LeadID)); err != nil {
		m.log.EmailEvent("lead_assigned", recipient.Email, err)
	}
	return nil
}

func (m *Module) handleFollowUpScheduled(ctx context.Context, e events.FollowUpScheduled) error {
	if e.AssignedToID == nil {
		return nil
	}
	leadID := e.LeadID
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       *e.AssignedToID,
		Title:        "Follow-up scheduled",
		Content:      fmt.Sprintf("Follow-up with %s set for %s", e.FullName, e.NewDate.Format("2006-01-02")),
		ResourceID:   &leadID,
		ResourceType: resourceTypeLead,
		Category:     "info",
	})
}

func (m *Module) handleFollowUpReminderDue(ctx context.Context, e events.FollowUpReminderDue) error {
	leadID := e.LeadID
	dueDate := e.FollowUpDate.Format("2006-01-02")
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.AssignedToID,
		Title:        "Follow-up due",
		Content:      fmt.Sprintf("Your follow-up with %s is due on %s", e.FullName, dueDate),
		ResourceID:   &leadID,
		ResourceType: resourceTypeLead,
		Category:     "warning",
	}); err != nil {
		return err
	}

	if m.sender == nil {
		return nil
	}
	recipient, err := m.recipients.Recipient(ctx, e.AssignedToID)
	if err != nil {
		m.log.Error("failed to resolve reminder email recipient", "error", err, "userId", e.AssignedToID)
		return nil
	}
	if err := m.sender.SendFollowUpReminderEmail(ctx,
		recipient.Email, recipient.FullName, e.FullName, dueDate, m.leadURL(e.LeadID)); err != nil {
		m.log.EmailEvent("followup_reminder", recipient.Email, err)
	}
	return nil
}

func (m *Module) leadURL(leadID uuid.UUID) string {
	return m.cfg.GetAppBaseURL() + "/leads/" + leadID.String()
}

type pgRecipientReader struct {
	pool *pgxpool.Pool
}

func (r *pgRecipientReader) Recipient(ctx context.Context, userID uuid.UUID) (Recipient, error) {
	var rec Recipient
	err := r.pool.QueryRow(ctx,
		`SELECT email, full_name FROM users WHERE id = $1 AND is_active = true`, userID,
	).Scan(&rec.Email, &rec.FullName)
	return rec, err
}

var _ apphttp.Module = (*Module)(nil)
var _ events.Handler = (*Module)(nil)
