package service

import (
	"context"
	"errors"
	"time"

	"prospect_backend/internal/appointments/repository"
	"prospect_backend/internal/appointments/transport"
	"prospect_backend/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// CreateFromCall records the appointment spawned by an Interested outcome.
// Implements the calls service's AppointmentCreator contract.
func (s *Service) CreateFromCall(ctx context.Context, establishmentID, attemptID, assigneeID uuid.UUID, proposedDate *time.Time, urgency string) (uuid.UUID, error) {
	params := repository.CreateParams{
		EstablishmentID: establishmentID,
		AssigneeID:      assigneeID,
		ProposedDate:    proposedDate,
		Urgency:         urgency,
	}
	if attemptID != uuid.Nil {
		params.SourceAttemptID = &attemptID
	}

	appointment, err := s.repo.Create(ctx, params)
	if err != nil {
		return uuid.Nil, err
	}
	return appointment.ID, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.AppointmentResponse, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AppointmentResponse{}, apperr.NotFound("appointment not found")
		}
		return transport.AppointmentResponse{}, err
	}
	return toResponse(appointment), nil
}

func (s *Service) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]transport.AppointmentResponse, error) {
	appointments, err := s.repo.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	return toResponses(appointments), nil
}

func (s *Service) ListByAssignee(ctx context.Context, assigneeID uuid.UUID, statuses []string) ([]transport.AppointmentResponse, error) {
	appointments, err := s.repo.ListByAssignee(ctx, assigneeID, statuses)
	if err != nil {
		return nil, err
	}
	return toResponses(appointments), nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID, req transport.ConfirmAppointmentRequest) (transport.AppointmentResponse, error) {
	appointment, err := s.repo.Confirm(ctx, id, req.ConfirmedDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AppointmentResponse{}, apperr.NotFound("appointment not found")
		}
		return transport.AppointmentResponse{}, err
	}
	return toResponse(appointment), nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateAppointmentStatusRequest) (transport.AppointmentResponse, error) {
	appointment, err := s.repo.SetStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AppointmentResponse{}, apperr.NotFound("appointment not found")
		}
		return transport.AppointmentResponse{}, err
	}
	return toResponse(appointment), nil
}

func toResponse(a repository.Appointment) transport.AppointmentResponse {
	return transport.AppointmentResponse{
		ID:              a.ID,
		EstablishmentID: a.EstablishmentID,
		SourceAttemptID: a.SourceAttemptID,
		AssigneeID:      a.AssigneeID,
		ProposedDate:    a.ProposedDate,
		ConfirmedDate:   a.ConfirmedDate,
		Urgency:         a.Urgency,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toResponses(appointments []repository.Appointment) []transport.AppointmentResponse {
	responses := make([]transport.AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		responses = append(responses, toResponse(a))
	}
	return responses
}
