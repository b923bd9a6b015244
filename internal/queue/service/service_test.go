package service

import (
	"context"
	"strings"
	"testing"
	"time"

	callbackrepo "prospect_backend/internal/callbacks/repository"
	callerrepo "prospect_backend/internal/callers/repository"
	"prospect_backend/internal/establishments/domain"
	estrepo "prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/queue/transport"
	"prospect_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeEsts struct {
	items []domain.Establishment
}

func (f *fakeEsts) List(_ context.Context, params estrepo.ListParams) ([]domain.Establishment, int, error) {
	var out []domain.Establishment
	for _, e := range f.items {
		if len(params.Statuses) > 0 && !containsStatus(params.Statuses, e.Status) {
			continue
		}
		if params.DelegatedOnly && e.DelegateID == nil {
			continue
		}
		if !params.DelegatedOnly && !params.IncludeDelegated && e.DelegateID != nil {
			continue
		}
		if params.LegalForm != nil && e.LegalForm != *params.LegalForm {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func containsStatus(statuses []domain.Status, s domain.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type fakeCallbacks struct {
	due []callbackrepo.Callback
}

func (f *fakeCallbacks) ListDue(_ context.Context, asOf time.Time) ([]callbackrepo.Callback, error) {
	var out []callbackrepo.Callback
	for _, cb := range f.due {
		if !cb.DueDate.After(asOf) {
			out = append(out, cb)
		}
	}
	return out, nil
}

type fakeCallers struct {
	callers map[uuid.UUID]callerrepo.Caller
}

func (f *fakeCallers) GetByID(_ context.Context, id uuid.UUID) (callerrepo.Caller, error) {
	caller, ok := f.callers[id]
	if !ok {
		return callerrepo.Caller{}, callerrepo.ErrNotFound
	}
	return caller, nil
}

type fixture struct {
	svc       *Service
	ests      *fakeEsts
	callbacks *fakeCallbacks
	callerID  uuid.UUID
}

func newFixture(t *testing.T, base callerrepo.Caller) *fixture {
	t.Helper()
	callerID := uuid.New()
	base.ID = callerID

	ests := &fakeEsts{}
	callbacks := &fakeCallbacks{}
	callers := &fakeCallers{callers: map[uuid.UUID]callerrepo.Caller{callerID: base}}

	svc := New(ests, callbacks, callers).WithNow(func() time.Time {
		return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	})
	return &fixture{svc: svc, ests: ests, callbacks: callbacks, callerID: callerID}
}

func ptr[T any](v T) *T { return &v }

func establishment(name string, status domain.Status, quality int) domain.Establishment {
	return domain.Establishment{
		ID:           uuid.New(),
		Name:         name,
		Status:       status,
		QualityScore: quality,
	}
}

func TestBuildQueueOrdersCallbacksThenQualityThenDistance(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{BaseLatitude: ptr(52.37), BaseLongitude: ptr(4.89)})

	near := establishment("near high", domain.StatusToCall, 80)
	near.Latitude, near.Longitude = ptr(52.38), ptr(4.90)
	far := establishment("far high", domain.StatusToCall, 80)
	far.Latitude, far.Longitude = ptr(53.21), ptr(6.57)
	lowWithCallback := establishment("low with callback", domain.StatusToCall, 10)

	fx.ests.items = []domain.Establishment{far, near, lowWithCallback}
	fx.callbacks.due = []callbackrepo.Callback{{
		ID:              uuid.New(),
		EstablishmentID: lowWithCallback.ID,
		DueDate:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		DueTime:         "10:00",
	}}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].Establishment.ID != lowWithCallback.ID {
		t.Errorf("expected the due callback first despite low quality, got %s", resp.Entries[0].Establishment.Name)
	}
	if resp.Entries[0].DueCallback == nil {
		t.Error("expected due callback details on the first entry")
	}
	if resp.Entries[1].Establishment.ID != near.ID {
		t.Errorf("expected nearer establishment before farther at equal quality, got %s", resp.Entries[1].Establishment.Name)
	}
}

func TestBuildQueueOrdersDueCallbacksByDateThenTime(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{})

	a := establishment("a", domain.StatusToCall, 50)
	b := establishment("b", domain.StatusToCall, 90)
	c := establishment("c", domain.StatusToCall, 10)
	fx.ests.items = []domain.Establishment{a, b, c}
	fx.callbacks.due = []callbackrepo.Callback{
		{ID: uuid.New(), EstablishmentID: a.ID, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), DueTime: "16:00"},
		{ID: uuid.New(), EstablishmentID: b.ID, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), DueTime: "09:00"},
		{ID: uuid.New(), EstablishmentID: c.ID, DueDate: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), DueTime: "11:00"},
	}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	got := []uuid.UUID{resp.Entries[0].Establishment.ID, resp.Entries[1].Establishment.ID, resp.Entries[2].Establishment.ID}
	want := []uuid.UUID{c.ID, b.ID, a.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected overdue 3/8 then 3/10 09:00 then 3/10 16:00", i)
		}
	}
}

func TestBuildQueueRadiusKeepsUnlocatedEntries(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{BaseLatitude: ptr(52.37), BaseLongitude: ptr(4.89), DefaultRadiusKm: 25})

	near := establishment("near", domain.StatusToCall, 50)
	near.Latitude, near.Longitude = ptr(52.38), ptr(4.90)
	far := establishment("far", domain.StatusToCall, 50)
	far.Latitude, far.Longitude = ptr(53.21), ptr(6.57)
	unlocated := establishment("no coords", domain.StatusToCall, 99)

	fx.ests.items = []domain.Establishment{near, far, unlocated}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected far entry dropped by radius, got %d entries", len(resp.Entries))
	}
	last := resp.Entries[len(resp.Entries)-1]
	if last.Establishment.ID != unlocated.ID {
		t.Errorf("expected unlocated entry kept and sorted last, got %s", last.Establishment.Name)
	}
	if last.DistanceKm != nil {
		t.Error("expected nil distance for unlocated entry")
	}
}

func TestBuildQueueDefaultBucketExcludesDelegatedAndTerminal(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{})

	open := establishment("open", domain.StatusToCall, 50)
	primary := establishment("primary", domain.StatusToCall, 50)
	delegated := establishment("delegated", domain.StatusRedirected, 50)
	delegated.DelegateID = &primary.ID
	dnc := establishment("dnc", domain.StatusDoNotCall, 50)

	fx.ests.items = []domain.Establishment{open, primary, delegated, dnc}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected only the two callable entries, got %d", len(resp.Entries))
	}
	for _, entry := range resp.Entries {
		if entry.Establishment.ID == delegated.ID || entry.Establishment.ID == dnc.ID {
			t.Errorf("unexpected entry %s in default bucket", entry.Establishment.Name)
		}
	}
}

func TestBuildQueueRedirectedBucketShowsDelegated(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{})

	primary := establishment("primary", domain.StatusToCall, 50)
	delegated := establishment("delegated", domain.StatusRedirected, 50)
	delegated.DelegateID = &primary.ID
	fx.ests.items = []domain.Establishment{primary, delegated}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{Bucket: string(BucketRedirected)})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Establishment.ID != delegated.ID {
		t.Fatalf("expected exactly the delegated establishment, got %d entries", len(resp.Entries))
	}
}

func TestBuildQueueDueCallbacksBucketFiltersToDue(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{})

	withDue := establishment("with due", domain.StatusContactedTepid, 50)
	withFuture := establishment("future", domain.StatusContactedTepid, 50)
	without := establishment("without", domain.StatusToCall, 50)
	fx.ests.items = []domain.Establishment{withDue, withFuture, without}
	fx.callbacks.due = []callbackrepo.Callback{
		{ID: uuid.New(), EstablishmentID: withDue.ID, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), DueTime: "09:00"},
		{ID: uuid.New(), EstablishmentID: withFuture.ID, DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), DueTime: "09:00"},
	}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{Bucket: string(BucketDueCallbacks)})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Establishment.ID != withDue.ID {
		t.Fatalf("expected only the establishment with a due callback, got %d entries", len(resp.Entries))
	}
}

func TestBuildQueueWorkforceRange(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{})

	small := establishment("small", domain.StatusToCall, 50)
	small.WorkforceBracket = "02" // midpoint 4
	mid := establishment("mid", domain.StatusToCall, 50)
	mid.WorkforceBracket = "12" // midpoint 35
	large := establishment("large", domain.StatusToCall, 50)
	large.WorkforceBracket = "22" // midpoint 150
	fx.ests.items = []domain.Establishment{small, mid, large}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{
		MinWorkforce: ptr(10),
		MaxWorkforce: ptr(100),
	})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Establishment.ID != mid.ID {
		t.Fatalf("expected only the mid bracket, got %d entries", len(resp.Entries))
	}
}

func TestBuildQueueQueryOverridesTerritory(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{BaseLatitude: ptr(52.37), BaseLongitude: ptr(4.89), DefaultRadiusKm: 500})

	groningen := establishment("groningen", domain.StatusToCall, 50)
	groningen.Latitude, groningen.Longitude = ptr(53.21), ptr(6.57)
	amsterdam := establishment("amsterdam", domain.StatusToCall, 50)
	amsterdam.Latitude, amsterdam.Longitude = ptr(52.38), ptr(4.90)
	fx.ests.items = []domain.Establishment{groningen, amsterdam}

	resp, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{
		BaseLatitude:  ptr(53.20),
		BaseLongitude: ptr(6.56),
		RadiusKm:      ptr(25),
	})
	if err != nil {
		t.Fatalf("BuildQueue: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Establishment.ID != groningen.ID {
		t.Fatalf("expected override base to keep only groningen, got %d entries", len(resp.Entries))
	}
}

func TestBuildQueueUnknownBucket(t *testing.T) {
	fx := newFixture(t, callerrepo.Caller{})

	_, err := fx.svc.BuildQueue(context.Background(), fx.callerID, transport.BuildQueueQuery{Bucket: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown bucket")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
