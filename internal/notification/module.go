// Package notification relays domain events to the closer inbox. It inverts
// the dependency: the calls module publishes events and never learns about
// email providers or templates. Delivery is fire-and-forget; a failed alert
// is logged and never affects the committed call outcome.
package notification

import (
	"context"
	"fmt"

	"prospect_backend/internal/email"
	"prospect_backend/internal/events"
	"prospect_backend/platform/logger"
)

type Module struct {
	sender      email.Sender
	closerInbox string
	log         *logger.Logger
}

func NewModule(sender email.Sender, closerInbox string, log *logger.Logger) *Module {
	return &Module{sender: sender, closerInbox: closerInbox, log: log}
}

func (m *Module) Name() string { return "notification" }

// RegisterHandlers subscribes the module to the call outcome events it relays.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ProspectInterested{}.EventName(), m)
	bus.Subscribe(events.TransferRequested{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	if m.closerInbox == "" {
		return nil
	}

	switch e := event.(type) {
	case events.ProspectInterested:
		return m.handleInterested(ctx, e)
	case events.TransferRequested:
		return m.handleTransfer(ctx, e)
	default:
		return fmt.Errorf("notification: unexpected event %s", event.EventName())
	}
}

func (m *Module) handleInterested(ctx context.Context, e events.ProspectInterested) error {
	urgency := e.Urgency
	if urgency == "" {
		urgency = "normal"
	}
	err := m.sender.SendInterestedAlertEmail(ctx, m.closerInbox, e.EstablishmentName, e.Phone, e.ContactName, urgency)
	if err != nil {
		m.log.CollaboratorWarning("notification", "interested alert", err)
	}
	return err
}

func (m *Module) handleTransfer(ctx context.Context, e events.TransferRequested) error {
	err := m.sender.SendTransferAlertEmail(ctx, m.closerInbox, e.EstablishmentName, e.Phone, e.Reason, e.Note)
	if err != nil {
		m.log.CollaboratorWarning("notification", "transfer alert", err)
	}
	return err
}

var _ events.Handler = (*Module)(nil)
