// Package service builds the per-caller work queue: status bucket plus
// attribute filters, territory radius around the caller's home base, and an
// ordering that puts due callbacks first.
package service

import (
	"context"
	"sort"
	"time"

	callbackrepo "prospect_backend/internal/callbacks/repository"
	callerrepo "prospect_backend/internal/callers/repository"
	"prospect_backend/internal/establishments/domain"
	estrepo "prospect_backend/internal/establishments/repository"
	esttransport "prospect_backend/internal/establishments/transport"
	"prospect_backend/internal/queue/transport"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/geo"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Bucket selects which slice of the pool the queue shows.
type Bucket string

const (
	BucketToCall       Bucket = "to_call"
	BucketDueCallbacks Bucket = "due_callbacks"
	BucketTepid        Bucket = "tepid"
	BucketInterested   Bucket = "interested"
	BucketRedirected   Bucket = "redirected"
	BucketCold         Bucket = "cold"
	BucketWrongNumber  Bucket = "wrong_number"
	BucketDoNotCall    Bucket = "do_not_call"
	BucketAll          Bucket = "all"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// EstablishmentLister lists establishments matching attribute filters.
type EstablishmentLister interface {
	List(ctx context.Context, params estrepo.ListParams) ([]domain.Establishment, int, error)
}

// CallbackLister returns unresolved callbacks due on or before a point in time.
type CallbackLister interface {
	ListDue(ctx context.Context, asOf time.Time) ([]callbackrepo.Callback, error)
}

// CallerStore provides the caller's home-base territory profile.
type CallerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (callerrepo.Caller, error)
}

type Service struct {
	ests      EstablishmentLister
	callbacks CallbackLister
	callers   CallerStore
	now       func() time.Time
}

func New(ests EstablishmentLister, callbacks CallbackLister, callers CallerStore) *Service {
	return &Service{
		ests:      ests,
		callbacks: callbacks,
		callers:   callers,
		now:       time.Now,
	}
}

// WithNow overrides the snapshot clock in tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// BuildQueue composes the caller's ordered work queue. The result is a
// snapshot recomputed from the store on every call; nothing is materialized.
func (s *Service) BuildQueue(ctx context.Context, callerID uuid.UUID, query transport.BuildQueueQuery) (transport.QueueResponse, error) {
	bucket := Bucket(query.Bucket)
	if bucket == "" {
		bucket = BucketToCall
	}

	params, err := bucketParams(bucket)
	if err != nil {
		return transport.QueueResponse{}, err
	}
	params.LegalForm = query.LegalForm
	params.Search = query.Search

	caller, err := s.callers.GetByID(ctx, callerID)
	if err != nil {
		return transport.QueueResponse{}, apperr.NotFound("caller not found")
	}
	baseLat, baseLon, radiusKm := territory(caller, query)

	asOf := s.now()

	// The due-callback list and the establishment list are independent reads.
	var (
		due  []callbackrepo.Callback
		ests []domain.Establishment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		due, err = s.callbacks.ListDue(gctx, asOf)
		return err
	})
	g.Go(func() error {
		var err error
		ests, _, err = s.ests.List(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.QueueResponse{}, err
	}

	dueByEstablishment := make(map[uuid.UUID]callbackrepo.Callback, len(due))
	for _, cb := range due {
		if _, seen := dueByEstablishment[cb.EstablishmentID]; !seen {
			dueByEstablishment[cb.EstablishmentID] = cb
		}
	}

	entries := make([]queueEntry, 0, len(ests))
	for _, est := range ests {
		cb, hasDue := dueByEstablishment[est.ID]
		if bucket == BucketDueCallbacks && !hasDue {
			continue
		}
		if !withinWorkforceRange(est.WorkforceBracket, query.MinWorkforce, query.MaxWorkforce) {
			continue
		}

		var distance *float64
		if baseLat != nil && baseLon != nil && est.Latitude != nil && est.Longitude != nil {
			d := geo.Distance(*baseLat, *baseLon, *est.Latitude, *est.Longitude)
			if radiusKm > 0 && d > float64(radiusKm) {
				continue
			}
			distance = &d
		}
		// Entries without coordinates are kept even under a radius cutoff;
		// they sort after every located entry instead.

		entry := queueEntry{est: est, distance: distance}
		if hasDue {
			entry.callback = &cb
		}
		entries = append(entries, entry)
	}

	sortEntries(entries)

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	total := len(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}

	responses := make([]transport.QueueEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, entry.toResponse())
	}

	return transport.QueueResponse{Entries: responses, Total: total, AsOf: asOf}, nil
}

type queueEntry struct {
	est      domain.Establishment
	distance *float64
	callback *callbackrepo.Callback
}

func (e queueEntry) toResponse() transport.QueueEntryResponse {
	resp := transport.QueueEntryResponse{
		Establishment: esttransport.ToResponse(e.est, geo.WorkforceMidpoint(e.est.WorkforceBracket)),
		DistanceKm:    e.distance,
	}
	if e.callback != nil {
		resp.DueCallback = &transport.DueCallbackResponse{
			ID:      e.callback.ID,
			DueDate: e.callback.DueDate.Format("2006-01-02"),
			DueTime: e.callback.DueTime,
			Reason:  e.callback.Reason,
		}
	}
	return resp
}

// sortEntries orders the queue: due callbacks first by (due date, due time)
// ascending, then quality score descending, then distance ascending with
// unlocated entries last.
func sortEntries(entries []queueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		if (a.callback != nil) != (b.callback != nil) {
			return a.callback != nil
		}
		if a.callback != nil && b.callback != nil {
			if !a.callback.DueDate.Equal(b.callback.DueDate) {
				return a.callback.DueDate.Before(b.callback.DueDate)
			}
			if a.callback.DueTime != b.callback.DueTime {
				return a.callback.DueTime < b.callback.DueTime
			}
		}

		if a.est.QualityScore != b.est.QualityScore {
			return a.est.QualityScore > b.est.QualityScore
		}

		if (a.distance != nil) != (b.distance != nil) {
			return a.distance != nil
		}
		if a.distance != nil && b.distance != nil && *a.distance != *b.distance {
			return *a.distance < *b.distance
		}
		return false
	})
}

func bucketParams(bucket Bucket) (estrepo.ListParams, error) {
	switch bucket {
	case BucketToCall:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusToCall}}, nil
	case BucketDueCallbacks, BucketAll:
		return estrepo.ListParams{}, nil
	case BucketTepid:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusContactedTepid}}, nil
	case BucketInterested:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusContactedInterested}}, nil
	case BucketRedirected:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusRedirected}, DelegatedOnly: true}, nil
	case BucketCold:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusContactedCold}}, nil
	case BucketWrongNumber:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusWrongNumber}}, nil
	case BucketDoNotCall:
		return estrepo.ListParams{Statuses: []domain.Status{domain.StatusDoNotCall}}, nil
	default:
		return estrepo.ListParams{}, apperr.Validation("unknown queue bucket")
	}
}

// territory resolves the base point and radius, query overrides winning over
// the caller's stored profile. Radius 0 means unlimited.
func territory(caller callerrepo.Caller, query transport.BuildQueueQuery) (*float64, *float64, int) {
	lat := caller.BaseLatitude
	lon := caller.BaseLongitude
	if query.BaseLatitude != nil && query.BaseLongitude != nil {
		lat = query.BaseLatitude
		lon = query.BaseLongitude
	}

	radius := caller.DefaultRadiusKm
	if query.RadiusKm != nil {
		radius = *query.RadiusKm
	}
	return lat, lon, radius
}

func withinWorkforceRange(bracket string, min, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	midpoint := geo.WorkforceMidpoint(bracket)
	if min != nil && midpoint < *min {
		return false
	}
	if max != nil && midpoint > *max {
		return false
	}
	return true
}
