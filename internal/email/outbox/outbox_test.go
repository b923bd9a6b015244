package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	sentAt  map[string]time.Time
	records int
}

func key(id uuid.UUID, template string) string {
	return id.String() + "/" + template
}

func (f *fakeStore) RecordSent(_ context.Context, establishmentID uuid.UUID, _ string, template string) error {
	if f.sentAt == nil {
		f.sentAt = make(map[string]time.Time)
	}
	f.sentAt[key(establishmentID, template)] = time.Now()
	f.records++
	return nil
}

func (f *fakeStore) SentSince(_ context.Context, establishmentID uuid.UUID, template string, since time.Time) (bool, error) {
	at, ok := f.sentAt[key(establishmentID, template)]
	return ok && !at.Before(since), nil
}

func newTestOutbox(store Store) *Outbox {
	return New(store, logger.New("development"))
}

func TestSendGuardedSendsOnce(t *testing.T) {
	store := &fakeStore{}
	ob := newTestOutbox(store)
	estID := uuid.New()

	sends := 0
	send := func(context.Context) error {
		sends++
		return nil
	}

	sent, err := ob.SendGuarded(context.Background(), estID, "a@b.nl", "follow_up", send)
	if err != nil || !sent {
		t.Fatalf("first send: sent=%v err=%v", sent, err)
	}

	sent, err = ob.SendGuarded(context.Background(), estID, "a@b.nl", "follow_up", send)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if sent {
		t.Error("expected second send suppressed by duplicate window")
	}
	if sends != 1 {
		t.Errorf("expected 1 delivery, got %d", sends)
	}
}

func TestSendGuardedAllowsDifferentTemplates(t *testing.T) {
	store := &fakeStore{}
	ob := newTestOutbox(store)
	estID := uuid.New()

	noop := func(context.Context) error { return nil }
	if _, err := ob.SendGuarded(context.Background(), estID, "a@b.nl", "follow_up", noop); err != nil {
		t.Fatalf("SendGuarded: %v", err)
	}
	sent, err := ob.SendGuarded(context.Background(), estID, "a@b.nl", "interested_alert", noop)
	if err != nil {
		t.Fatalf("SendGuarded: %v", err)
	}
	if !sent {
		t.Error("expected a different template to pass the guard")
	}
}

func TestSendGuardedDoesNotRecordFailedSend(t *testing.T) {
	store := &fakeStore{}
	ob := newTestOutbox(store)
	estID := uuid.New()

	sendErr := errors.New("smtp down")
	sent, err := ob.SendGuarded(context.Background(), estID, "a@b.nl", "follow_up", func(context.Context) error {
		return sendErr
	})
	if sent {
		t.Error("expected failed delivery reported as not sent")
	}
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}
	if store.records != 0 {
		t.Errorf("expected no log record for failed delivery, got %d", store.records)
	}
}
