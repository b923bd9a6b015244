// Package email renders and delivers outbound mail for the prospecting
// workbench. Delivery is a collaborator concern: callers supply recipient and
// merge fields, the package owns templates and transport.
package email

import "context"

type Sender interface {
	// SendFollowUpEmail mails a prospect after a call, referencing the agreed
	// follow-up moment.
	SendFollowUpEmail(ctx context.Context, toEmail, establishmentName, contactName, followUpDate, followUpTime string) error
	// SendInterestedAlertEmail notifies the closer inbox about a prospect
	// that asked for an appointment.
	SendInterestedAlertEmail(ctx context.Context, toEmail, establishmentName, phone, contactName, urgency string) error
	// SendTransferAlertEmail notifies the closer inbox that a prospect should
	// be handled by a different caller.
	SendTransferAlertEmail(ctx context.Context, toEmail, establishmentName, phone, reason, note string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender satisfies Sender without delivering anything. Used in tests and
// in environments without SMTP credentials.
type NoopSender struct{}

func (NoopSender) SendFollowUpEmail(ctx context.Context, toEmail, establishmentName, contactName, followUpDate, followUpTime string) error {
	return nil
}

func (NoopSender) SendInterestedAlertEmail(ctx context.Context, toEmail, establishmentName, phone, contactName, urgency string) error {
	return nil
}

func (NoopSender) SendTransferAlertEmail(ctx context.Context, toEmail, establishmentName, phone, reason, note string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}
