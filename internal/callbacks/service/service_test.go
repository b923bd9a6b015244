package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"prospect_backend/internal/callbacks/repository"
	"prospect_backend/internal/callbacks/transport"
	callsdomain "prospect_backend/internal/calls/domain"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/events"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	callbacks map[uuid.UUID]repository.Callback
}

func newFakeStore() *fakeStore {
	return &fakeStore{callbacks: make(map[uuid.UUID]repository.Callback)}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateParams) (repository.Callback, *uuid.UUID, error) {
	var supersededID *uuid.UUID
	now := time.Now()
	for id, cb := range f.callbacks {
		if cb.EstablishmentID == params.EstablishmentID && !cb.Resolved {
			prior := id
			cb.Resolved = true
			cb.ResolvedAt = &now
			f.callbacks[id] = cb
			supersededID = &prior
		}
	}

	created := repository.Callback{
		ID:              uuid.New(),
		EstablishmentID: params.EstablishmentID,
		DueDate:         params.DueDate,
		DueTime:         params.DueTime,
		Reason:          params.Reason,
		ContactName:     params.ContactName,
		CreatedAt:       now,
	}
	f.callbacks[created.ID] = created

	if supersededID != nil {
		prior := f.callbacks[*supersededID]
		prior.SupersededBy = &created.ID
		f.callbacks[*supersededID] = prior
	}

	return created, supersededID, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Callback, error) {
	cb, ok := f.callbacks[id]
	if !ok {
		return repository.Callback{}, repository.ErrNotFound
	}
	return cb, nil
}

func (f *fakeStore) GetUnresolved(_ context.Context, establishmentID uuid.UUID) (repository.Callback, error) {
	for _, cb := range f.callbacks {
		if cb.EstablishmentID == establishmentID && !cb.Resolved {
			return cb, nil
		}
	}
	return repository.Callback{}, repository.ErrNotFound
}

func (f *fakeStore) ListDue(_ context.Context, asOf time.Time) ([]repository.Callback, error) {
	var due []repository.Callback
	for _, cb := range f.callbacks {
		if !cb.Resolved && !cb.DueDate.After(asOf) {
			due = append(due, cb)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueDate.Equal(due[j].DueDate) {
			return due[i].DueDate.Before(due[j].DueDate)
		}
		return due[i].DueTime < due[j].DueTime
	})
	return due, nil
}

func (f *fakeStore) ListByEstablishment(_ context.Context, establishmentID uuid.UUID) ([]repository.Callback, error) {
	var out []repository.Callback
	for _, cb := range f.callbacks {
		if cb.EstablishmentID == establishmentID {
			out = append(out, cb)
		}
	}
	return out, nil
}

func (f *fakeStore) Resolve(_ context.Context, id uuid.UUID) error {
	cb, ok := f.callbacks[id]
	if !ok || cb.Resolved {
		return repository.ErrNotFound
	}
	now := time.Now()
	cb.Resolved = true
	cb.ResolvedAt = &now
	f.callbacks[id] = cb
	return nil
}

func (f *fakeStore) ResolveForEstablishment(_ context.Context, establishmentID uuid.UUID) error {
	now := time.Now()
	for id, cb := range f.callbacks {
		if cb.EstablishmentID == establishmentID && !cb.Resolved {
			cb.Resolved = true
			cb.ResolvedAt = &now
			f.callbacks[id] = cb
		}
	}
	return nil
}

func (f *fakeStore) unresolvedCount(establishmentID uuid.UUID) int {
	count := 0
	for _, cb := range f.callbacks {
		if cb.EstablishmentID == establishmentID && !cb.Resolved {
			count++
		}
	}
	return count
}

func newTestService(store *fakeStore) *Service {
	return New(store, events.NewInMemoryBus(logger.New("development")))
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleSupersedesPrior(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	estID := uuid.New()

	first, err := svc.Schedule(context.Background(), estID, day(2026, 3, 12), "09:00", "first try", callsdomain.ContactSnapshot{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	second, err := svc.Schedule(context.Background(), estID, day(2026, 3, 15), "14:00", "rescheduled", callsdomain.ContactSnapshot{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if store.unresolvedCount(estID) != 1 {
		t.Fatalf("unresolved = %d, want 1", store.unresolvedCount(estID))
	}
	prior := store.callbacks[first]
	if !prior.Resolved {
		t.Fatal("prior callback not resolved by supersede")
	}
	if prior.SupersededBy == nil || *prior.SupersededBy != second {
		t.Fatal("supersede link missing")
	}
}

func TestDueTodayIncludesOverdueOrdered(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	asOf := day(2026, 3, 10)

	estA, estB, estC := uuid.New(), uuid.New(), uuid.New()
	if _, err := svc.Schedule(context.Background(), estA, day(2026, 3, 10), "16:00", "", callsdomain.ContactSnapshot{}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Schedule(context.Background(), estB, day(2026, 3, 8), "11:00", "", callsdomain.ContactSnapshot{}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Schedule(context.Background(), estC, day(2026, 3, 10), "09:00", "", callsdomain.ContactSnapshot{}); err != nil {
		t.Fatal(err)
	}
	// Future callback stays out.
	if _, err := svc.Schedule(context.Background(), uuid.New(), day(2026, 3, 11), "08:00", "", callsdomain.ContactSnapshot{}); err != nil {
		t.Fatal(err)
	}

	due, err := svc.DueToday(context.Background(), asOf)
	if err != nil {
		t.Fatalf("DueToday: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("due = %d, want 3", len(due))
	}
	wantOrder := []uuid.UUID{estB, estC, estA}
	for i, cb := range due {
		if cb.EstablishmentID != wantOrder[i] {
			t.Fatalf("position %d: got %s, want %s", i, cb.EstablishmentID, wantOrder[i])
		}
	}
}

func TestResolveTwiceFails(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	id, err := svc.Schedule(context.Background(), uuid.New(), day(2026, 3, 12), "09:00", "", callsdomain.ContactSnapshot{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if err := svc.Resolve(context.Background(), id); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := svc.Resolve(context.Background(), id); apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("second resolve should report not found, got %v", err)
	}
}

func TestResolveForEstablishmentIsNoOpWhenEmpty(t *testing.T) {
	svc := newTestService(newFakeStore())
	if err := svc.ResolveForEstablishment(context.Background(), uuid.New()); err != nil {
		t.Fatalf("resolving nothing must succeed: %v", err)
	}
}

func TestScheduleFromRequestValidatesDate(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.ScheduleFromRequest(context.Background(), uuid.New(), transport.ScheduleCallbackRequest{
		DueDate: "12/03/2026",
		DueTime: "09:00",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScheduleFromRequestRejectsPastDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store).WithToday(func() (int, int, int) { return 2026, 3, 10 })

	_, err := svc.ScheduleFromRequest(context.Background(), uuid.New(), transport.ScheduleCallbackRequest{
		DueDate: "2026-03-09",
		DueTime: "09:00",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for past date, got %v", err)
	}
	if len(store.callbacks) != 0 {
		t.Fatal("callback created despite past due date")
	}

	// Same day is still schedulable.
	if _, err := svc.ScheduleFromRequest(context.Background(), uuid.New(), transport.ScheduleCallbackRequest{
		DueDate: "2026-03-10",
		DueTime: "16:00",
	}); err != nil {
		t.Fatalf("same-day schedule failed: %v", err)
	}
}
