package dedup

import (
	"context"
	"errors"
	"strings"

	"prospect_backend/internal/establishments/domain"
	"prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/events"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

// LinkKind classifies why two establishments are considered related.
type LinkKind string

const (
	LinkSameGroup  LinkKind = "same_group"
	LinkSamePhone  LinkKind = "same_phone"
	LinkSameEmail  LinkKind = "same_email"
	LinkSameDomain LinkKind = "same_domain"
)

// Link is one related establishment together with the signal that surfaced it.
type Link struct {
	Kind          LinkKind
	Establishment domain.Establishment
}

// genericLocalParts are mailbox names shared by unrelated businesses behind
// the same hosting provider; matching on them would link strangers.
var genericLocalParts = map[string]struct{}{
	"info":        {},
	"contact":     {},
	"reception":   {},
	"secretariat": {},
	"office":      {},
	"admin":       {},
}

// EstablishmentStore is the subset of the establishments repository the
// resolution service needs.
type EstablishmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Establishment, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.Establishment, error)
	ListByPhone(ctx context.Context, phone string, excludeID uuid.UUID) ([]domain.Establishment, error)
	ListByEmail(ctx context.Context, email string, excludeID uuid.UUID) ([]domain.Establishment, error)
	ListByDomain(ctx context.Context, websiteDomain string, excludeID uuid.UUID) ([]domain.Establishment, error)
	SetDelegate(ctx context.Context, id, primaryID uuid.UUID, note string) error
	ClearDelegate(ctx context.Context, id uuid.UUID) error
	CountDelegatedTo(ctx context.Context, primaryID uuid.UUID) (int, error)
	ReassignGroupPrimary(ctx context.Context, groupID string, newPrimaryID uuid.UUID, note string) (int64, error)
}

type Service struct {
	store    EstablishmentStore
	eventBus events.Bus
	log      *logger.Logger
}

func New(store EstablishmentStore, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, eventBus: eventBus, log: log}
}

func redirectNote(primary domain.Establishment) string {
	name := primary.Name
	if name == "" {
		name = primary.ID.String()
	}
	return "redirected to " + name
}

// NormalizeDomain reduces a website reference to its bare host: scheme, a
// leading www, path, port and case are stripped. Subdomains are kept, so
// shop.example.com and example.com do not link.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "www.")
	return s
}

// emailLinkable reports whether an address is specific enough to tie two
// establishments together.
func emailLinkable(email string) bool {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return false
	}
	_, generic := genericLocalParts[strings.ToLower(local)]
	return !generic
}

// FindLinks returns every establishment related to the given one, strongest
// signal first. A candidate matched by several signals appears once per
// signal; callers decide how to present the overlap.
func (s *Service) FindLinks(ctx context.Context, id uuid.UUID) ([]Link, error) {
	est, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("establishment not found")
		}
		return nil, err
	}

	links := make([]Link, 0)

	appendLinks := func(kind LinkKind, candidates []domain.Establishment) {
		for _, candidate := range candidates {
			links = append(links, Link{Kind: kind, Establishment: candidate})
		}
	}

	if est.GroupID != nil && *est.GroupID != "" {
		members, err := s.store.ListByGroup(ctx, *est.GroupID)
		if err != nil {
			return nil, err
		}
		siblings := make([]domain.Establishment, 0, len(members))
		for _, member := range members {
			if member.ID != id {
				siblings = append(siblings, member)
			}
		}
		appendLinks(LinkSameGroup, siblings)
	}

	if est.Phone != "" {
		matches, err := s.store.ListByPhone(ctx, est.Phone, id)
		if err != nil {
			return nil, err
		}
		appendLinks(LinkSamePhone, matches)
	}

	if est.Email != "" && emailLinkable(est.Email) {
		matches, err := s.store.ListByEmail(ctx, est.Email, id)
		if err != nil {
			return nil, err
		}
		appendLinks(LinkSameEmail, matches)
	}

	if host := NormalizeDomain(est.WebsiteDomain); host != "" {
		matches, err := s.store.ListByDomain(ctx, host, id)
		if err != nil {
			return nil, err
		}
		appendLinks(LinkSameDomain, matches)
	}

	return links, nil
}

// Delegate points each sibling at the primary. Siblings are processed one by
// one so a failure mid-list leaves the earlier delegations in place; a missing
// sibling is skipped with a warning rather than aborting the batch.
func (s *Service) Delegate(ctx context.Context, primaryID uuid.UUID, siblingIDs []uuid.UUID) (int, error) {
	primary, err := s.store.GetByID(ctx, primaryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.NotFound("primary establishment not found")
		}
		return 0, err
	}
	if primary.Status == domain.StatusDoNotCall {
		return 0, apperr.Conflict("cannot delegate to a do-not-call establishment")
	}
	note := redirectNote(primary)

	delegated := 0
	for _, siblingID := range siblingIDs {
		if siblingID == primaryID {
			return delegated, apperr.Validation("an establishment cannot delegate to itself")
		}
		// Delegation is one hop: an establishment that others point at must
		// be undelegated from first, not stacked into a chain.
		inbound, err := s.store.CountDelegatedTo(ctx, siblingID)
		if err != nil {
			return delegated, err
		}
		if inbound > 0 {
			return delegated, apperr.Conflict("establishment is the delegation target of others")
		}
		err = s.store.SetDelegate(ctx, siblingID, primaryID, note)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("skipping missing sibling during delegation",
				"sibling_id", siblingID, "primary_id", primaryID)
			continue
		}
		// Do_Not_Call is terminal; a blocked sibling stays blocked.
		if errors.Is(err, repository.ErrDoNotCall) {
			s.log.Warn("skipping do-not-call sibling during delegation",
				"sibling_id", siblingID, "primary_id", primaryID)
			continue
		}
		if err != nil {
			return delegated, err
		}
		delegated++
	}

	if delegated > 0 {
		s.eventBus.Publish(ctx, events.EstablishmentsDelegated{
			BaseEvent:  events.NewBaseEvent(),
			PrimaryID:  primaryID,
			SiblingIDs: siblingIDs,
		})
	}

	return delegated, nil
}

// Undelegate removes a delegation pointer and returns the establishment to
// the active queue. Refused on a do-not-call row: clearing the pointer must
// not resurrect a blocked establishment.
func (s *Service) Undelegate(ctx context.Context, id uuid.UUID) error {
	err := s.store.ClearDelegate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("establishment is not delegated")
	}
	if errors.Is(err, repository.ErrDoNotCall) {
		return apperr.Conflict("establishment is on the do-not-call register")
	}
	return err
}

// DesignateCentral makes the given establishment the single delegation target
// of its legal group in one transaction. Any unresolved callback the new
// primary carries stays scheduled; the reassignment is about routing, not
// about erasing planned work.
func (s *Service) DesignateCentral(ctx context.Context, newPrimaryID uuid.UUID) (int64, error) {
	primary, err := s.store.GetByID(ctx, newPrimaryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.NotFound("establishment not found")
		}
		return 0, err
	}
	if primary.Status == domain.StatusDoNotCall {
		return 0, apperr.Conflict("cannot designate a do-not-call establishment as primary")
	}
	if primary.GroupID == nil || *primary.GroupID == "" {
		return 0, apperr.Validation("establishment does not belong to a group")
	}

	redirected, err := s.store.ReassignGroupPrimary(ctx, *primary.GroupID, newPrimaryID, redirectNote(primary))
	if err != nil {
		return 0, err
	}

	s.eventBus.Publish(ctx, events.CentralDesignated{
		BaseEvent:    events.NewBaseEvent(),
		GroupID:      *primary.GroupID,
		NewPrimaryID: newPrimaryID,
	})

	return redirected, nil
}
