package dedup

import (
	"context"
	"testing"

	"prospect_backend/internal/establishments/domain"
	"prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/events"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	establishments map[uuid.UUID]domain.Establishment
	delegations    map[uuid.UUID]uuid.UUID
	reassigned     []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		establishments: make(map[uuid.UUID]domain.Establishment),
		delegations:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeStore) add(e domain.Establishment) domain.Establishment {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.establishments[e.ID] = e
	return e
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (domain.Establishment, error) {
	e, ok := f.establishments[id]
	if !ok {
		return domain.Establishment{}, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListByGroup(_ context.Context, groupID string) ([]domain.Establishment, error) {
	var out []domain.Establishment
	for _, e := range f.establishments {
		if e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByPhone(_ context.Context, phone string, excludeID uuid.UUID) ([]domain.Establishment, error) {
	var out []domain.Establishment
	for _, e := range f.establishments {
		if e.Phone == phone && e.ID != excludeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByEmail(_ context.Context, email string, excludeID uuid.UUID) ([]domain.Establishment, error) {
	var out []domain.Establishment
	for _, e := range f.establishments {
		if e.Email == email && e.ID != excludeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByDomain(_ context.Context, websiteDomain string, excludeID uuid.UUID) ([]domain.Establishment, error) {
	var out []domain.Establishment
	for _, e := range f.establishments {
		if NormalizeDomain(e.WebsiteDomain) == websiteDomain && e.ID != excludeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) SetDelegate(_ context.Context, id, primaryID uuid.UUID, note string) error {
	e, ok := f.establishments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Status == domain.StatusDoNotCall {
		return repository.ErrDoNotCall
	}
	f.delegations[id] = primaryID
	e.DelegateID = &primaryID
	e.Status = domain.StatusRedirected
	e.Contacted = true
	e.Notes = note
	f.establishments[id] = e
	return nil
}

func (f *fakeStore) ClearDelegate(_ context.Context, id uuid.UUID) error {
	if _, ok := f.delegations[id]; !ok {
		return repository.ErrNotFound
	}
	e := f.establishments[id]
	if e.Status == domain.StatusDoNotCall {
		return repository.ErrDoNotCall
	}
	delete(f.delegations, id)
	e.DelegateID = nil
	e.Status = domain.StatusToCall
	e.Contacted = false
	f.establishments[id] = e
	return nil
}

func (f *fakeStore) CountDelegatedTo(_ context.Context, primaryID uuid.UUID) (int, error) {
	count := 0
	for _, target := range f.delegations {
		if target == primaryID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ReassignGroupPrimary(_ context.Context, groupID string, newPrimaryID uuid.UUID, note string) (int64, error) {
	f.reassigned = append(f.reassigned, newPrimaryID)
	var redirected int64
	for id, e := range f.establishments {
		if e.GroupID == nil || *e.GroupID != groupID {
			continue
		}
		if e.Status == domain.StatusDoNotCall {
			continue
		}
		if id == newPrimaryID {
			if e.DelegateID != nil || !e.Contacted {
				e.Status = domain.StatusToCall
			}
			e.DelegateID = nil
		} else {
			primary := newPrimaryID
			e.DelegateID = &primary
			e.Status = domain.StatusRedirected
			e.Contacted = true
			e.Notes = note
			redirected++
		}
		f.establishments[id] = e
	}
	return redirected, nil
}

func newTestService(store *fakeStore) *Service {
	log := logger.New("development")
	return New(store, events.NewInMemoryBus(log), log)
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/contact", "example.com"},
		{"http://example.com", "example.com"},
		{"WWW.Example.COM", "example.com"},
		{"example.com:8080/about", "example.com"},
		{"shop.example.com", "shop.example.com"},
		{"  example.com  ", "example.com"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDomain(tc.in); got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFindLinksGroupsPhoneEmailDomain(t *testing.T) {
	store := newFakeStore()
	group := "123456789"

	subject := store.add(domain.Establishment{
		GroupID:       &group,
		Phone:         "+33123456789",
		Email:         "pierre@boulangerie-martin.fr",
		WebsiteDomain: "https://www.boulangerie-martin.fr",
		Status:        domain.StatusToCall,
	})
	sibling := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusToCall})
	samePhone := store.add(domain.Establishment{Phone: "+33123456789", Status: domain.StatusToCall})
	sameEmail := store.add(domain.Establishment{Email: "pierre@boulangerie-martin.fr", Status: domain.StatusToCall})
	sameDomain := store.add(domain.Establishment{WebsiteDomain: "boulangerie-martin.fr", Status: domain.StatusToCall})
	store.add(domain.Establishment{WebsiteDomain: "shop.boulangerie-martin.fr", Status: domain.StatusToCall})

	links, err := newTestService(store).FindLinks(context.Background(), subject.ID)
	if err != nil {
		t.Fatalf("FindLinks: %v", err)
	}

	byID := map[uuid.UUID]LinkKind{}
	for _, link := range links {
		byID[link.Establishment.ID] = link.Kind
	}

	if len(links) != 4 {
		t.Fatalf("expected 4 links, got %d", len(links))
	}
	if byID[sibling.ID] != LinkSameGroup {
		t.Errorf("sibling kind = %s, want %s", byID[sibling.ID], LinkSameGroup)
	}
	if byID[samePhone.ID] != LinkSamePhone {
		t.Errorf("phone match kind = %s, want %s", byID[samePhone.ID], LinkSamePhone)
	}
	if byID[sameEmail.ID] != LinkSameEmail {
		t.Errorf("email match kind = %s, want %s", byID[sameEmail.ID], LinkSameEmail)
	}
	if byID[sameDomain.ID] != LinkSameDomain {
		t.Errorf("domain match kind = %s, want %s", byID[sameDomain.ID], LinkSameDomain)
	}
}

func TestFindLinksSkipsGenericEmail(t *testing.T) {
	store := newFakeStore()
	subject := store.add(domain.Establishment{Email: "info@ovh-hosting.fr", Status: domain.StatusToCall})
	store.add(domain.Establishment{Email: "info@ovh-hosting.fr", Status: domain.StatusToCall})

	links, err := newTestService(store).FindLinks(context.Background(), subject.ID)
	if err != nil {
		t.Fatalf("FindLinks: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("generic mailbox must not link establishments, got %d links", len(links))
	}
}

func TestFindLinksSurfacesEveryReason(t *testing.T) {
	store := newFakeStore()
	group := "987654321"
	subject := store.add(domain.Establishment{
		GroupID: &group,
		Phone:   "+33444555666",
		Status:  domain.StatusToCall,
	})
	// Same group AND same phone: both reasons come back for the same twin.
	twin := store.add(domain.Establishment{GroupID: &group, Phone: "+33444555666", Status: domain.StatusToCall})

	links, err := newTestService(store).FindLinks(context.Background(), subject.ID)
	if err != nil {
		t.Fatalf("FindLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	kinds := map[LinkKind]bool{}
	for _, link := range links {
		if link.Establishment.ID != twin.ID {
			t.Fatalf("unexpected establishment %s in links", link.Establishment.ID)
		}
		kinds[link.Kind] = true
	}
	if !kinds[LinkSameGroup] || !kinds[LinkSamePhone] {
		t.Fatalf("expected same_group and same_phone reasons, got %v", kinds)
	}
}

func TestFindLinksUnknownEstablishment(t *testing.T) {
	_, err := newTestService(newFakeStore()).FindLinks(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDelegateSkipsMissingSiblings(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusToCall})
	a := store.add(domain.Establishment{Status: domain.StatusToCall})
	b := store.add(domain.Establishment{Status: domain.StatusToCall})
	missing := uuid.New()

	delegated, err := newTestService(store).Delegate(context.Background(), primary.ID, []uuid.UUID{a.ID, missing, b.ID})
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if delegated != 2 {
		t.Fatalf("delegated = %d, want 2", delegated)
	}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		e := store.establishments[id]
		if e.DelegateID == nil || *e.DelegateID != primary.ID {
			t.Errorf("establishment %s not delegated to primary", id)
		}
		if e.Status != domain.StatusRedirected {
			t.Errorf("establishment %s status = %s, want %s", id, e.Status, domain.StatusRedirected)
		}
	}
}

func TestDelegateRejectsSelfDelegation(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusToCall})

	_, err := newTestService(store).Delegate(context.Background(), primary.ID, []uuid.UUID{primary.ID})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelegateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusToCall})
	sibling := store.add(domain.Establishment{Status: domain.StatusToCall})

	svc := newTestService(store)
	if _, err := svc.Delegate(context.Background(), primary.ID, []uuid.UUID{sibling.ID}); err != nil {
		t.Fatalf("first Delegate: %v", err)
	}
	if _, err := svc.Delegate(context.Background(), primary.ID, []uuid.UUID{sibling.ID}); err != nil {
		t.Fatalf("repeat Delegate: %v", err)
	}
	e := store.establishments[sibling.ID]
	if e.DelegateID == nil || *e.DelegateID != primary.ID {
		t.Fatalf("delegation pointer lost after repeat")
	}
}

func TestUndelegateRestoresQueueMembership(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusToCall})
	sibling := store.add(domain.Establishment{Status: domain.StatusToCall})

	svc := newTestService(store)
	if _, err := svc.Delegate(context.Background(), primary.ID, []uuid.UUID{sibling.ID}); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := svc.Undelegate(context.Background(), sibling.ID); err != nil {
		t.Fatalf("Undelegate: %v", err)
	}

	e := store.establishments[sibling.ID]
	if e.DelegateID != nil {
		t.Fatal("delegate pointer still set after undelegate")
	}
	if e.Status != domain.StatusToCall {
		t.Fatalf("status = %s, want %s", e.Status, domain.StatusToCall)
	}
}

func TestDesignateCentralRequiresGroup(t *testing.T) {
	store := newFakeStore()
	loner := store.add(domain.Establishment{Status: domain.StatusToCall})

	_, err := newTestService(store).DesignateCentral(context.Background(), loner.ID)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDesignateCentralRedirectsSiblings(t *testing.T) {
	store := newFakeStore()
	group := "555000111"
	newPrimary := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusToCall})
	oldPrimary := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusToCall})
	third := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusContactedTepid})

	redirected, err := newTestService(store).DesignateCentral(context.Background(), newPrimary.ID)
	if err != nil {
		t.Fatalf("DesignateCentral: %v", err)
	}
	if redirected != 2 {
		t.Fatalf("redirected = %d, want 2", redirected)
	}
	for _, id := range []uuid.UUID{oldPrimary.ID, third.ID} {
		e := store.establishments[id]
		if e.DelegateID == nil || *e.DelegateID != newPrimary.ID {
			t.Errorf("establishment %s does not point at new primary", id)
		}
		if e.Status != domain.StatusRedirected {
			t.Errorf("establishment %s status = %s, want %s", id, e.Status, domain.StatusRedirected)
		}
	}
	if e := store.establishments[newPrimary.ID]; e.DelegateID != nil {
		t.Fatal("new primary must not delegate anywhere")
	}
}

func TestDelegateKeepsDoNotCallSibling(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusToCall})
	blocked := store.add(domain.Establishment{Status: domain.StatusDoNotCall})
	active := store.add(domain.Establishment{Status: domain.StatusToCall})

	delegated, err := newTestService(store).Delegate(context.Background(), primary.ID, []uuid.UUID{blocked.ID, active.ID})
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if delegated != 1 {
		t.Fatalf("delegated = %d, want 1", delegated)
	}

	e := store.establishments[blocked.ID]
	if e.Status != domain.StatusDoNotCall {
		t.Fatalf("blocked sibling status = %s, want %s", e.Status, domain.StatusDoNotCall)
	}
	if e.DelegateID != nil {
		t.Fatal("blocked sibling must not gain a delegation pointer")
	}
}

func TestDelegateRejectsDoNotCallPrimary(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusDoNotCall})
	sibling := store.add(domain.Establishment{Status: domain.StatusToCall})

	_, err := newTestService(store).Delegate(context.Background(), primary.ID, []uuid.UUID{sibling.ID})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if e := store.establishments[sibling.ID]; e.DelegateID != nil {
		t.Fatal("sibling must not be delegated to a blocked primary")
	}
}

func TestDelegateRefusesChains(t *testing.T) {
	store := newFakeStore()
	central := store.add(domain.Establishment{Status: domain.StatusToCall})
	leaf := store.add(domain.Establishment{Status: domain.StatusToCall})
	other := store.add(domain.Establishment{Status: domain.StatusToCall})

	svc := newTestService(store)
	if _, err := svc.Delegate(context.Background(), central.ID, []uuid.UUID{leaf.ID}); err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	// central now has an inbound delegation; pointing it at another primary
	// would stack a chain.
	_, err := svc.Delegate(context.Background(), other.ID, []uuid.UUID{central.ID})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if e := store.establishments[central.ID]; e.DelegateID != nil {
		t.Fatal("delegation target must not itself be delegated")
	}
}

func TestUndelegateRefusesDoNotCall(t *testing.T) {
	store := newFakeStore()
	primary := store.add(domain.Establishment{Status: domain.StatusToCall})
	sibling := store.add(domain.Establishment{Status: domain.StatusToCall})

	svc := newTestService(store)
	if _, err := svc.Delegate(context.Background(), primary.ID, []uuid.UUID{sibling.ID}); err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	// The register entry lands while the row is delegated.
	e := store.establishments[sibling.ID]
	e.Status = domain.StatusDoNotCall
	store.establishments[sibling.ID] = e

	err := svc.Undelegate(context.Background(), sibling.ID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if got := store.establishments[sibling.ID].Status; got != domain.StatusDoNotCall {
		t.Fatalf("status = %s, want %s", got, domain.StatusDoNotCall)
	}
}

func TestDesignateCentralRejectsDoNotCallPrimary(t *testing.T) {
	store := newFakeStore()
	group := "777000222"
	blocked := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusDoNotCall})
	store.add(domain.Establishment{GroupID: &group, Status: domain.StatusToCall})

	_, err := newTestService(store).DesignateCentral(context.Background(), blocked.ID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestDesignateCentralKeepsDoNotCallMember(t *testing.T) {
	store := newFakeStore()
	group := "888000333"
	newPrimary := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusToCall})
	blocked := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusDoNotCall})
	sibling := store.add(domain.Establishment{GroupID: &group, Status: domain.StatusToCall})

	redirected, err := newTestService(store).DesignateCentral(context.Background(), newPrimary.ID)
	if err != nil {
		t.Fatalf("DesignateCentral: %v", err)
	}
	if redirected != 1 {
		t.Fatalf("redirected = %d, want 1", redirected)
	}
	if e := store.establishments[blocked.ID]; e.Status != domain.StatusDoNotCall || e.DelegateID != nil {
		t.Fatalf("blocked member changed: status=%s delegate=%v", e.Status, e.DelegateID)
	}
	if e := store.establishments[sibling.ID]; e.Status != domain.StatusRedirected {
		t.Fatalf("sibling status = %s, want %s", e.Status, domain.StatusRedirected)
	}
}
