package service

import (
	"context"
	"errors"

	"prospect_backend/internal/calls/repository"
	"prospect_backend/internal/calls/transport"
	"prospect_backend/platform/apperr"

	"github.com/google/uuid"
)

const reconcilePrompt = "this attempt has dependent records; review the establishment status after correcting"

func (s *Service) GetAttempt(ctx context.Context, id uuid.UUID) (transport.AttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AttemptResponse{}, apperr.NotFound("call attempt not found")
		}
		return transport.AttemptResponse{}, err
	}
	return toAttemptResponse(attempt), nil
}

func (s *Service) ListAttempts(ctx context.Context, establishmentID uuid.UUID) ([]transport.AttemptResponse, error) {
	attempts, err := s.attempts.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, toAttemptResponse(attempt))
	}
	return responses, nil
}

// CorrectAttempt edits the captured text of a historical attempt. Dependent
// callbacks and appointments are left untouched; the caller gets a prompt in
// the response when any exist so the operator can reconcile by hand.
func (s *Service) CorrectAttempt(ctx context.Context, id uuid.UUID, req transport.CorrectAttemptRequest) (transport.AttemptResponse, *transport.DependentRecords, error) {
	params := repository.CorrectionParams{Notes: req.Notes}
	if req.Contact != nil {
		params.ContactName = &req.Contact.Name
		params.ContactRole = &req.Contact.Role
		params.ContactEmail = &req.Contact.Email
		params.ContactMobile = &req.Contact.Mobile
	}

	attempt, err := s.attempts.Correct(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AttemptResponse{}, nil, apperr.NotFound("call attempt not found")
		}
		return transport.AttemptResponse{}, nil, err
	}

	return toAttemptResponse(attempt), dependentsOf(attempt), nil
}

// DeleteAttempt removes a historical attempt. When the attempt spawned a
// callback or appointment the delete is refused until the operator
// acknowledges; nothing is auto-resolved or recreated either way.
func (s *Service) DeleteAttempt(ctx context.Context, id uuid.UUID, req transport.DeleteAttemptRequest) error {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("call attempt not found")
		}
		return err
	}

	if deps := dependentsOf(attempt); deps != nil && !req.AcknowledgeDependents {
		return apperr.Conflict("attempt has dependent records").WithDetails(deps)
	}

	return s.attempts.Delete(ctx, id)
}

// LastCallerForGroup computes who most recently called into a group. Derived
// from the attempt log on every read, never cached.
func (s *Service) LastCallerForGroup(ctx context.Context, groupID string) (transport.LastCallerResponse, error) {
	callerID, at, err := s.attempts.LastCallerForGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LastCallerResponse{}, apperr.NotFound("no attempts logged for group")
		}
		return transport.LastCallerResponse{}, err
	}
	return transport.LastCallerResponse{CallerID: callerID, At: at}, nil
}

func dependentsOf(attempt repository.CallAttempt) *transport.DependentRecords {
	if attempt.CallbackID == nil && attempt.AppointmentID == nil {
		return nil
	}
	return &transport.DependentRecords{
		CallbackID:    attempt.CallbackID,
		AppointmentID: attempt.AppointmentID,
		Prompt:        reconcilePrompt,
	}
}
