package notification

import (
	"context"
	"errors"
	"testing"

	"prospect_backend/internal/events"
	"prospect_backend/platform/logger"
)

type fakeSender struct {
	interested []string
	transfers  []string
	fail       bool
}

func (f *fakeSender) SendFollowUpEmail(_ context.Context, toEmail, _, _, _, _ string) error {
	return nil
}

func (f *fakeSender) SendInterestedAlertEmail(_ context.Context, toEmail, establishmentName, _, _, _ string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.interested = append(f.interested, toEmail+":"+establishmentName)
	return nil
}

func (f *fakeSender) SendTransferAlertEmail(_ context.Context, toEmail, establishmentName, _, _, _ string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.transfers = append(f.transfers, toEmail+":"+establishmentName)
	return nil
}

func (f *fakeSender) SendCustomEmail(_ context.Context, _, _, _ string) error {
	return nil
}

func TestInterestedEventMailsCloserInbox(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, "closers@example.com", logger.New("development"))

	err := m.Handle(context.Background(), events.ProspectInterested{
		BaseEvent:         events.NewBaseEvent(),
		EstablishmentName: "Bakkerij Jansen",
		Phone:             "+31201234567",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.interested) != 1 || sender.interested[0] != "closers@example.com:Bakkerij Jansen" {
		t.Fatalf("expected one interested alert to the closer inbox, got %v", sender.interested)
	}
}

func TestTransferEventMailsCloserInbox(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, "closers@example.com", logger.New("development"))

	err := m.Handle(context.Background(), events.TransferRequested{
		BaseEvent:         events.NewBaseEvent(),
		EstablishmentName: "Garage De Vries",
		Reason:            "language",
		Note:              "prefers German speaker",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.transfers) != 1 {
		t.Fatalf("expected one transfer alert, got %d", len(sender.transfers))
	}
}

func TestMissingCloserInboxIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, "", logger.New("development"))

	if err := m.Handle(context.Background(), events.ProspectInterested{BaseEvent: events.NewBaseEvent()}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.interested) != 0 {
		t.Error("expected no delivery without a configured inbox")
	}
}

func TestDeliveryFailureIsSurfacedNotFatal(t *testing.T) {
	sender := &fakeSender{fail: true}
	m := NewModule(sender, "closers@example.com", logger.New("development"))

	if err := m.Handle(context.Background(), events.TransferRequested{BaseEvent: events.NewBaseEvent()}); err == nil {
		t.Fatal("expected delivery error to be returned for the bus to log")
	}
}
