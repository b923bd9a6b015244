package service

import (
	"context"
	"errors"
	"time"

	"prospect_backend/internal/callbacks/repository"
	"prospect_backend/internal/callbacks/transport"
	callsdomain "prospect_backend/internal/calls/domain"
	"prospect_backend/internal/events"
	"prospect_backend/platform/apperr"

	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// CallbackStore is the persistence surface the scheduler needs.
type CallbackStore interface {
	Create(ctx context.Context, params repository.CreateParams) (repository.Callback, *uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Callback, error)
	GetUnresolved(ctx context.Context, establishmentID uuid.UUID) (repository.Callback, error)
	ListDue(ctx context.Context, asOf time.Time) ([]repository.Callback, error)
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]repository.Callback, error)
	Resolve(ctx context.Context, id uuid.UUID) error
	ResolveForEstablishment(ctx context.Context, establishmentID uuid.UUID) error
}

type Service struct {
	store    CallbackStore
	eventBus events.Bus
	today    func() (int, int, int)
}

func New(store CallbackStore, eventBus events.Bus) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		today: func() (int, int, int) {
			y, m, d := time.Now().Date()
			return y, int(m), d
		},
	}
}

// WithToday overrides the clock. Test hook.
func (s *Service) WithToday(today func() (int, int, int)) *Service {
	s.today = today
	return s
}

// Schedule creates the follow-up, superseding whatever was pending for the
// establishment. Implements the scheduler contract of the calls service.
func (s *Service) Schedule(ctx context.Context, establishmentID uuid.UUID, dueDate time.Time, dueTime, reason string, contact callsdomain.ContactSnapshot) (uuid.UUID, error) {
	created, supersededID, err := s.store.Create(ctx, repository.CreateParams{
		EstablishmentID: establishmentID,
		DueDate:         dueDate,
		DueTime:         dueTime,
		Reason:          reason,
		ContactName:     contact.Name,
		ContactRole:     contact.Role,
		ContactEmail:    contact.Email,
		ContactMobile:   contact.Mobile,
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.eventBus.Publish(ctx, events.CallbackScheduled{
		BaseEvent:       events.NewBaseEvent(),
		CallbackID:      created.ID,
		EstablishmentID: establishmentID,
		DueDate:         created.DueDate,
		DueTime:         created.DueTime,
		Reason:          created.Reason,
		SupersededID:    supersededID,
	})

	return created.ID, nil
}

// ScheduleFromRequest is the HTTP entry point for manual scheduling.
func (s *Service) ScheduleFromRequest(ctx context.Context, establishmentID uuid.UUID, req transport.ScheduleCallbackRequest) (transport.ScheduleCallbackResponse, error) {
	dueDate, err := time.Parse(dateFormat, req.DueDate)
	if err != nil {
		return transport.ScheduleCallbackResponse{}, apperr.Validation("invalid due date")
	}
	y, m, d := s.today()
	if dueDate.Before(time.Date(y, time.Month(m), d, 0, 0, 0, 0, dueDate.Location())) {
		return transport.ScheduleCallbackResponse{}, apperr.Validation("due date is in the past")
	}

	created, supersededID, err := s.store.Create(ctx, repository.CreateParams{
		EstablishmentID: establishmentID,
		DueDate:         dueDate,
		DueTime:         req.DueTime,
		Reason:          req.Reason,
		ContactName:     req.ContactName,
		ContactRole:     req.ContactRole,
		ContactEmail:    req.ContactEmail,
		ContactMobile:   req.ContactMobile,
	})
	if err != nil {
		return transport.ScheduleCallbackResponse{}, err
	}

	s.eventBus.Publish(ctx, events.CallbackScheduled{
		BaseEvent:       events.NewBaseEvent(),
		CallbackID:      created.ID,
		EstablishmentID: establishmentID,
		DueDate:         created.DueDate,
		DueTime:         created.DueTime,
		Reason:          created.Reason,
		SupersededID:    supersededID,
	})

	return transport.ScheduleCallbackResponse{
		Callback:     toResponse(created),
		SupersededID: supersededID,
	}, nil
}

// DueToday returns unresolved callbacks due on or before asOf in firing
// order. Overdue entries come first, so a missed day surfaces rather than
// disappearing.
func (s *Service) DueToday(ctx context.Context, asOf time.Time) ([]transport.CallbackResponse, error) {
	callbacks, err := s.store.ListDue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return toResponses(callbacks), nil
}

func (s *Service) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]transport.CallbackResponse, error) {
	callbacks, err := s.store.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	return toResponses(callbacks), nil
}

func (s *Service) Resolve(ctx context.Context, id uuid.UUID) error {
	err := s.store.Resolve(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("callback not found or already resolved")
	}
	return err
}

// ResolveForEstablishment resolves the pending follow-up as part of an
// outcome commit. Implements the scheduler contract of the calls service.
func (s *Service) ResolveForEstablishment(ctx context.Context, establishmentID uuid.UUID) error {
	return s.store.ResolveForEstablishment(ctx, establishmentID)
}

// GetUnresolved returns the pending callback for an establishment.
func (s *Service) GetUnresolved(ctx context.Context, establishmentID uuid.UUID) (transport.CallbackResponse, error) {
	cb, err := s.store.GetUnresolved(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CallbackResponse{}, apperr.NotFound("no pending callback")
		}
		return transport.CallbackResponse{}, err
	}
	return toResponse(cb), nil
}

func toResponse(cb repository.Callback) transport.CallbackResponse {
	return transport.CallbackResponse{
		ID:              cb.ID,
		EstablishmentID: cb.EstablishmentID,
		DueDate:         cb.DueDate.Format(dateFormat),
		DueTime:         cb.DueTime,
		Reason:          cb.Reason,
		ContactName:     cb.ContactName,
		ContactRole:     cb.ContactRole,
		ContactEmail:    cb.ContactEmail,
		ContactMobile:   cb.ContactMobile,
		Resolved:        cb.Resolved,
		ResolvedAt:      cb.ResolvedAt,
		SupersededBy:    cb.SupersededBy,
		CreatedAt:       cb.CreatedAt,
	}
}

func toResponses(callbacks []repository.Callback) []transport.CallbackResponse {
	responses := make([]transport.CallbackResponse, 0, len(callbacks))
	for _, cb := range callbacks {
		responses = append(responses, toResponse(cb))
	}
	return responses
}
