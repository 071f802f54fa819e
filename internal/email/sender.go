// Package email delivers transactional mail to counsellors.
package email

import "context"

// Sender delivers the notification emails the lead workflow produces.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, counsellorName, leadName, assignedBy, leadURL string) error
	SendFollowUpReminderEmail(ctx context.Context, toEmail, counsellorName, leadName, followUpDate, leadURL string) error
}

// NoopSender is used when email delivery is disabled in config.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendFollowUpReminderEmail(context.Context, string, string, string, string, string) error {
	return nil
}
