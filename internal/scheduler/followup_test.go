package scheduler

import (
	"context"
	"testing"
	"time"

	callbackrepo "prospect_backend/internal/callbacks/repository"
	"prospect_backend/internal/email"
	"prospect_backend/internal/email/outbox"
	"prospect_backend/internal/establishments/domain"
	estrepo "prospect_backend/internal/establishments/repository"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeCallbacks struct {
	byID map[uuid.UUID]callbackrepo.Callback
}

func (f *fakeCallbacks) GetByID(_ context.Context, id uuid.UUID) (callbackrepo.Callback, error) {
	cb, ok := f.byID[id]
	if !ok {
		return callbackrepo.Callback{}, callbackrepo.ErrNotFound
	}
	return cb, nil
}

type fakeEsts struct {
	byID map[uuid.UUID]domain.Establishment
}

func (f *fakeEsts) GetByID(_ context.Context, id uuid.UUID) (domain.Establishment, error) {
	est, ok := f.byID[id]
	if !ok {
		return domain.Establishment{}, estrepo.ErrNotFound
	}
	return est, nil
}

type passthroughGuard struct {
	calls int
}

func (g *passthroughGuard) SendGuarded(ctx context.Context, _ uuid.UUID, _, _ string, send outbox.SendFunc) (bool, error) {
	g.calls++
	if err := send(ctx); err != nil {
		return false, err
	}
	return true, nil
}

type countingSender struct {
	email.NoopSender
	followUps int
}

func (s *countingSender) SendFollowUpEmail(_ context.Context, _, _, _, _, _ string) error {
	s.followUps++
	return nil
}

type dispatchFixture struct {
	dispatcher *FollowUpDispatcher
	callbacks  *fakeCallbacks
	ests       *fakeEsts
	guard      *passthroughGuard
	sender     *countingSender
}

func newDispatchFixture() *dispatchFixture {
	callbacks := &fakeCallbacks{byID: make(map[uuid.UUID]callbackrepo.Callback)}
	ests := &fakeEsts{byID: make(map[uuid.UUID]domain.Establishment)}
	guard := &passthroughGuard{}
	sender := &countingSender{}
	return &dispatchFixture{
		dispatcher: NewFollowUpDispatcher(callbacks, ests, guard, sender, logger.New("development")),
		callbacks:  callbacks,
		ests:       ests,
		guard:      guard,
		sender:     sender,
	}
}

func seed(fx *dispatchFixture, resolved bool, email string, status domain.Status) (uuid.UUID, uuid.UUID) {
	estID := uuid.New()
	cbID := uuid.New()
	fx.ests.byID[estID] = domain.Establishment{ID: estID, Name: "Test BV", Email: email, Status: status}
	fx.callbacks.byID[cbID] = callbackrepo.Callback{
		ID:              cbID,
		EstablishmentID: estID,
		DueDate:         time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		DueTime:         "10:30",
		Resolved:        resolved,
	}
	return cbID, estID
}

func TestDispatchSendsFollowUp(t *testing.T) {
	fx := newDispatchFixture()
	cbID, estID := seed(fx, false, "info@test.nl", domain.StatusContactedTepid)

	if err := fx.dispatcher.Dispatch(context.Background(), cbID, estID); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if fx.sender.followUps != 1 {
		t.Errorf("expected 1 follow-up mail, got %d", fx.sender.followUps)
	}
}

func TestDispatchSkipsResolvedCallback(t *testing.T) {
	fx := newDispatchFixture()
	cbID, estID := seed(fx, true, "info@test.nl", domain.StatusContactedTepid)

	if err := fx.dispatcher.Dispatch(context.Background(), cbID, estID); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if fx.guard.calls != 0 {
		t.Error("expected no delivery attempt for a resolved callback")
	}
}

func TestDispatchSkipsMissingCallback(t *testing.T) {
	fx := newDispatchFixture()

	if err := fx.dispatcher.Dispatch(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("expected a vanished callback to be a no-op, got %v", err)
	}
}

func TestDispatchSkipsWithoutEmailOrWhenBlocked(t *testing.T) {
	fx := newDispatchFixture()
	noEmail, estA := seed(fx, false, "", domain.StatusContactedTepid)
	blocked, estB := seed(fx, false, "info@test.nl", domain.StatusDoNotCall)

	if err := fx.dispatcher.Dispatch(context.Background(), noEmail, estA); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := fx.dispatcher.Dispatch(context.Background(), blocked, estB); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if fx.guard.calls != 0 {
		t.Errorf("expected no delivery attempts, got %d", fx.guard.calls)
	}
}
