package service

import (
	"context"
	"errors"
	"time"

	"prospect_backend/internal/calls/domain"
	"prospect_backend/internal/calls/repository"
	"prospect_backend/internal/calls/transport"
	establishments "prospect_backend/internal/establishments/domain"
	estrepo "prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/events"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/logger"
	"prospect_backend/platform/phone"

	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// AttemptStore is the persistence surface for call attempts.
type AttemptStore interface {
	Create(ctx context.Context, params repository.CreateParams) (repository.CallAttempt, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.CallAttempt, error)
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]repository.CallAttempt, error)
	LinkCallback(ctx context.Context, attemptID, callbackID uuid.UUID) error
	LinkAppointment(ctx context.Context, attemptID, appointmentID uuid.UUID) error
	Correct(ctx context.Context, id uuid.UUID, params repository.CorrectionParams) (repository.CallAttempt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LastCallerForGroup(ctx context.Context, groupID string) (uuid.UUID, time.Time, error)
}

// EstablishmentStore is the slice of the establishments repository the
// outcome commit needs.
type EstablishmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (establishments.Establishment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status establishments.Status, contacted bool) error
	UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error
	UpdateGroupPhone(ctx context.Context, groupID, phone string) (int64, error)
}

// CallbackScheduler supersedes and resolves follow-ups on behalf of the
// outcome commit.
type CallbackScheduler interface {
	Schedule(ctx context.Context, establishmentID uuid.UUID, dueDate time.Time, dueTime, reason string, contact domain.ContactSnapshot) (uuid.UUID, error)
	ResolveForEstablishment(ctx context.Context, establishmentID uuid.UUID) error
}

// AppointmentCreator records the meeting spawned by an Interested outcome.
type AppointmentCreator interface {
	CreateFromCall(ctx context.Context, establishmentID, attemptID, assigneeID uuid.UUID, proposedDate *time.Time, urgency string) (uuid.UUID, error)
}

type Service struct {
	attempts  AttemptStore
	ests      EstablishmentStore
	scheduler CallbackScheduler
	appts     AppointmentCreator
	eventBus  events.Bus
	log       *logger.Logger
	today     func() (int, int, int)
}

func New(attempts AttemptStore, ests EstablishmentStore, scheduler CallbackScheduler, appts AppointmentCreator, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		attempts:  attempts,
		ests:      ests,
		scheduler: scheduler,
		appts:     appts,
		eventBus:  eventBus,
		log:       log,
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

// CommitOutcome runs the whole call flow for one establishment and applies
// the committed effects. Validation failures reject before any write. Failed
// record writes fail the commit; only link bookkeeping degrades to a warning.
func (s *Service) CommitOutcome(ctx context.Context, establishmentID, callerID uuid.UUID, req transport.CommitOutcomeRequest) (transport.CommitOutcomeResponse, error) {
	est, err := s.ests.GetByID(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, estrepo.ErrNotFound) {
			return transport.CommitOutcomeResponse{}, apperr.NotFound("establishment not found")
		}
		return transport.CommitOutcomeResponse{}, err
	}
	if est.Status == establishments.StatusDoNotCall {
		return transport.CommitOutcomeResponse{}, apperr.Conflict("establishment is on the do-not-call list")
	}

	committed, err := s.runFlow(req)
	if err != nil {
		return transport.CommitOutcomeResponse{}, err
	}

	// The at-most-one-unresolved invariant: whatever was pending is resolved
	// before this outcome creates anything new.
	if err := s.scheduler.ResolveForEstablishment(ctx, establishmentID); err != nil {
		return transport.CommitOutcomeResponse{}, err
	}

	return s.applyEffects(ctx, est, callerID, committed, req)
}

// runFlow replays the operator's choices through the state machine.
func (s *Service) runFlow(req transport.CommitOutcomeRequest) (domain.Committed, error) {
	state, err := domain.Transition(domain.Idle{}, domain.Dial{}, s.today)
	if err != nil {
		return domain.Committed{}, err
	}

	contact := domain.ContactSnapshot{
		Name:   req.Contact.Name,
		Role:   req.Contact.Role,
		Email:  req.Contact.Email,
		Mobile: req.Contact.Mobile,
	}

	var terminal domain.Event
	switch req.Outcome {
	case transport.OutcomeKindNoAnswer:
		state, err = domain.Transition(state, domain.ReportNoAnswer{MessageLeft: req.MessageLeft}, s.today)
		if err != nil {
			return domain.Committed{}, err
		}
		if req.Callback == nil {
			return domain.Committed{}, apperr.Validation("no-answer outcome requires a callback")
		}
		due, perr := time.Parse(dateFormat, req.Callback.DueDate)
		if perr != nil {
			return domain.Committed{}, apperr.Validation("invalid callback due date")
		}
		terminal = domain.ScheduleFollowUp{DueDate: due, DueTime: req.Callback.DueTime, Reason: req.Callback.Reason, Notes: req.Notes}

	case transport.OutcomeKindInterested, transport.OutcomeKindTepid, transport.OutcomeKindTransfer,
		transport.OutcomeKindCold, transport.OutcomeKindWrongNumber:
		state, err = domain.Transition(state, domain.ReportResponded{Contact: contact}, s.today)
		if err != nil {
			return domain.Committed{}, err
		}
		terminal, err = s.terminalEvent(req)
		if err != nil {
			return domain.Committed{}, err
		}

	default:
		return domain.Committed{}, apperr.Validation("unknown outcome")
	}

	state, err = domain.Transition(state, terminal, s.today)
	if err != nil {
		return domain.Committed{}, mapFlowError(err)
	}
	committed, ok := state.(domain.Committed)
	if !ok {
		return domain.Committed{}, apperr.Internal("call flow did not reach a terminal state")
	}
	return committed, nil
}

func (s *Service) terminalEvent(req transport.CommitOutcomeRequest) (domain.Event, error) {
	switch req.Outcome {
	case transport.OutcomeKindInterested:
		event := domain.ChooseInterested{
			Notes:     req.Notes,
			Offerings: req.Offerings,
			Duration:  time.Duration(req.DurationSeconds) * time.Second,
		}
		if req.Appointment != nil {
			event.ProposedDate = req.Appointment.ProposedDate
			event.Urgency = req.Appointment.Urgency
		}
		return event, nil

	case transport.OutcomeKindTepid:
		if req.Callback == nil {
			return nil, apperr.Validation("tepid outcome requires a callback")
		}
		due, err := time.Parse(dateFormat, req.Callback.DueDate)
		if err != nil {
			return nil, apperr.Validation("invalid callback due date")
		}
		return domain.ChooseTepid{DueDate: due, DueTime: req.Callback.DueTime, Reason: req.Callback.Reason, Notes: req.Notes}, nil

	case transport.OutcomeKindTransfer:
		if req.Transfer == nil {
			return nil, apperr.Validation("transfer outcome requires reason and note")
		}
		return domain.ChooseTransfer{Reason: req.Transfer.Reason, Note: req.Transfer.Note}, nil

	case transport.OutcomeKindCold:
		if req.Cold == nil {
			return nil, apperr.Validation("cold outcome requires a reason tag")
		}
		return domain.ChooseCold{ReasonTag: req.Cold.ReasonTag, CustomText: req.Cold.CustomText, Notes: req.Notes}, nil

	case transport.OutcomeKindWrongNumber:
		replacement := req.ReplacementPhone
		if replacement != "" {
			replacement = phone.NormalizeE164(replacement)
		}
		return domain.ChooseWrongNumber{ReplacementPhone: replacement}, nil
	}
	return nil, apperr.Validation("unknown outcome")
}

func (s *Service) applyEffects(ctx context.Context, est establishments.Establishment, callerID uuid.UUID, committed domain.Committed, req transport.CommitOutcomeRequest) (transport.CommitOutcomeResponse, error) {
	var attempt repository.CallAttempt
	var callbackID, appointmentID *uuid.UUID
	finalStatus := est.Status

	for _, effect := range committed.Effects {
		switch e := effect.(type) {
		case domain.WriteAttempt:
			created, err := s.attempts.Create(ctx, repository.CreateParams{
				EstablishmentID: est.ID,
				CallerID:        callerID,
				Outcome:         string(e.Outcome),
				ContactName:     e.Contact.Name,
				ContactRole:     e.Contact.Role,
				ContactEmail:    e.Contact.Email,
				ContactMobile:   e.Contact.Mobile,
				Notes:           e.Notes,
				Offerings:       e.Offerings,
				DurationSeconds: int(e.Duration / time.Second),
			})
			if err != nil {
				return transport.CommitOutcomeResponse{}, err
			}
			attempt = created

		case domain.CreateCallback:
			id, err := s.scheduler.Schedule(ctx, est.ID, e.DueDate, e.DueTime, e.Reason, committed.Contact)
			if err != nil {
				return transport.CommitOutcomeResponse{}, err
			}
			callbackID = &id
			if err := s.attempts.LinkCallback(ctx, attempt.ID, id); err != nil {
				s.log.CollaboratorWarning("attempts", "link callback", err)
			}

		case domain.CreateAppointment:
			id, err := s.appts.CreateFromCall(ctx, est.ID, attempt.ID, callerID, e.ProposedDate, e.Urgency)
			if err != nil {
				return transport.CommitOutcomeResponse{}, err
			}
			appointmentID = &id
			if err := s.attempts.LinkAppointment(ctx, attempt.ID, id); err != nil {
				s.log.CollaboratorWarning("attempts", "link appointment", err)
			}

		case domain.SetStatus:
			if err := s.ests.SetStatus(ctx, est.ID, e.Status, true); err != nil {
				return transport.CommitOutcomeResponse{}, err
			}
			finalStatus = e.Status

		case domain.OverwriteGroupPhone:
			if est.GroupID != nil && *est.GroupID != "" {
				if _, err := s.ests.UpdateGroupPhone(ctx, *est.GroupID, e.Phone); err != nil {
					return transport.CommitOutcomeResponse{}, err
				}
			} else {
				if err := s.ests.UpdatePhone(ctx, est.ID, e.Phone); err != nil {
					return transport.CommitOutcomeResponse{}, err
				}
			}
			finalStatus = establishments.StatusToCall

		case domain.Notify:
			s.publishNotification(ctx, est, callerID, committed, e, appointmentID)
		}
	}

	s.eventBus.Publish(ctx, events.CallAttemptCommitted{
		BaseEvent:       events.NewBaseEvent(),
		AttemptID:       attempt.ID,
		EstablishmentID: est.ID,
		CallerID:        callerID,
		Outcome:         string(committed.Outcome),
	})

	return transport.CommitOutcomeResponse{
		Attempt:             toAttemptResponse(attempt),
		EstablishmentStatus: string(finalStatus),
		CallbackID:          callbackID,
		AppointmentID:       appointmentID,
	}, nil
}

func (s *Service) publishNotification(ctx context.Context, est establishments.Establishment, callerID uuid.UUID, committed domain.Committed, notify domain.Notify, appointmentID *uuid.UUID) {
	switch notify.Kind {
	case domain.NotifyInterested:
		event := events.ProspectInterested{
			BaseEvent:         events.NewBaseEvent(),
			EstablishmentID:   est.ID,
			EstablishmentName: est.Name,
			Phone:             est.Phone,
			ContactName:       committed.Contact.Name,
			ContactRole:       committed.Contact.Role,
			ContactEmail:      committed.Contact.Email,
			ContactMobile:     committed.Contact.Mobile,
			Urgency:           notify.Urgency,
			CallerID:          callerID,
		}
		if appointmentID != nil {
			event.AppointmentID = *appointmentID
		}
		s.eventBus.Publish(ctx, event)

	case domain.NotifyTransfer:
		s.eventBus.Publish(ctx, events.TransferRequested{
			BaseEvent:         events.NewBaseEvent(),
			EstablishmentID:   est.ID,
			EstablishmentName: est.Name,
			Phone:             est.Phone,
			Reason:            notify.Reason,
			Note:              notify.Note,
			ContactName:       committed.Contact.Name,
			ContactRole:       committed.Contact.Role,
			CallerID:          callerID,
		})
	}
}

func mapFlowError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingTransferInfo),
		errors.Is(err, domain.ErrMissingColdReason),
		errors.Is(err, domain.ErrMissingColdText),
		errors.Is(err, domain.ErrPastCallbackDate),
		errors.Is(err, domain.ErrShortReplacement):
		return apperr.Validation(err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperr.BadRequest(err.Error())
	}
	return err
}

func toAttemptResponse(a repository.CallAttempt) transport.AttemptResponse {
	return transport.AttemptResponse{
		ID:              a.ID,
		EstablishmentID: a.EstablishmentID,
		CallerID:        a.CallerID,
		Outcome:         a.Outcome,
		Contact: transport.ContactPayload{
			Name:   a.ContactName,
			Role:   a.ContactRole,
			Email:  a.ContactEmail,
			Mobile: a.ContactMobile,
		},
		Notes:           a.Notes,
		Offerings:       a.Offerings,
		DurationSeconds: a.DurationSeconds,
		CallbackID:      a.CallbackID,
		AppointmentID:   a.AppointmentID,
		CreatedAt:       a.CreatedAt,
	}
}
