package domain

import (
	"errors"
	"fmt"
	"time"

	establishments "prospect_backend/internal/establishments/domain"
	"prospect_backend/platform/phone"
)

var (
	ErrInvalidTransition   = errors.New("invalid call flow transition")
	ErrMissingTransferInfo = errors.New("transfer requires a reason and a note")
	ErrMissingColdReason   = errors.New("cold outcome requires a reason tag")
	ErrMissingColdText     = errors.New("cold reason 'Other' requires custom text")
	ErrPastCallbackDate    = errors.New("callback due date is in the past")
	ErrShortReplacement    = errors.New("replacement phone needs at least 6 digits")
)

// Transition advances the flow. It returns the next state; when the event is
// terminal the returned state is Committed and carries the effect list. The
// flow itself never touches storage.
func Transition(state State, event Event, today func() (int, int, int)) (State, error) {
	if _, done := state.(Committed); done {
		return state, ErrInvalidTransition
	}
	if _, abandon := event.(Abandon); abandon {
		return Idle{}, nil
	}

	switch s := state.(type) {
	case Idle:
		if _, ok := event.(Dial); ok {
			return Dialing{}, nil
		}

	case Dialing:
		switch e := event.(type) {
		case ReportNoAnswer:
			return NoAnswer{MessageLeft: e.MessageLeft}, nil
		case ReportResponded:
			return Responded{Contact: e.Contact}, nil
		}

	case NoAnswer:
		if e, ok := event.(ScheduleFollowUp); ok {
			if err := validateDueDate(e.DueDate, today); err != nil {
				return state, err
			}
			notes := e.Notes
			if s.MessageLeft {
				if notes == "" {
					notes = "message left"
				} else {
					notes = "message left / " + notes
				}
			}
			return Committed{
				Outcome: OutcomeNoAnswer,
				Effects: []Effect{
					WriteAttempt{Outcome: OutcomeNoAnswer, Notes: notes},
					CreateCallback{DueDate: e.DueDate, DueTime: e.DueTime, Reason: e.Reason},
					SetStatus{Status: establishments.StatusContactedTepid},
				},
			}, nil
		}

	case Responded:
		return transitionResponded(s, event, today)
	}

	return state, fmt.Errorf("%w: %T in %T", ErrInvalidTransition, event, state)
}

func transitionResponded(s Responded, event Event, today func() (int, int, int)) (State, error) {
	switch e := event.(type) {
	case ChooseInterested:
		return Committed{
			Outcome: OutcomeInterested,
			Contact: s.Contact,
			Effects: []Effect{
				WriteAttempt{Outcome: OutcomeInterested, Contact: s.Contact, Notes: e.Notes, Offerings: e.Offerings, Duration: e.Duration},
				CreateAppointment{ProposedDate: e.ProposedDate, Urgency: e.Urgency},
				SetStatus{Status: establishments.StatusContactedInterested},
				Notify{Kind: NotifyInterested, Urgency: e.Urgency},
			},
		}, nil

	case ChooseTepid:
		if err := validateDueDate(e.DueDate, today); err != nil {
			return s, err
		}
		return Committed{
			Outcome: OutcomeTepid,
			Contact: s.Contact,
			Effects: []Effect{
				WriteAttempt{Outcome: OutcomeTepid, Contact: s.Contact, Notes: e.Notes},
				CreateCallback{DueDate: e.DueDate, DueTime: e.DueTime, Reason: e.Reason},
				SetStatus{Status: establishments.StatusContactedTepid},
			},
		}, nil

	case ChooseTransfer:
		if e.Reason == "" || e.Note == "" {
			return s, ErrMissingTransferInfo
		}
		return Committed{
			Outcome: OutcomeTransfer,
			Contact: s.Contact,
			Effects: []Effect{
				WriteAttempt{Outcome: OutcomeTransfer, Contact: s.Contact, Notes: e.Note},
				SetStatus{Status: establishments.StatusContactedTepid},
				Notify{Kind: NotifyTransfer, Reason: e.Reason, Note: e.Note},
			},
		}, nil

	case ChooseCold:
		if e.ReasonTag == "" {
			return s, ErrMissingColdReason
		}
		if e.ReasonTag == ColdReasonOther && e.CustomText == "" {
			return s, ErrMissingColdText
		}
		notes := e.ReasonTag
		if e.ReasonTag == ColdReasonOther {
			notes = e.CustomText
		}
		if e.Notes != "" {
			notes = notes + " / " + e.Notes
		}
		return Committed{
			Outcome: OutcomeCold,
			Contact: s.Contact,
			Effects: []Effect{
				WriteAttempt{Outcome: OutcomeCold, Contact: s.Contact, Notes: notes},
				SetStatus{Status: establishments.StatusContactedCold},
			},
		}, nil

	case ChooseWrongNumber:
		if e.ReplacementPhone != "" {
			if !phone.IsPlausibleReplacement(e.ReplacementPhone) {
				return s, ErrShortReplacement
			}
			return Committed{
				Outcome: OutcomeWrongNumber,
				Contact: s.Contact,
				Effects: []Effect{
					WriteAttempt{Outcome: OutcomeWrongNumber, Contact: s.Contact},
					OverwriteGroupPhone{Phone: e.ReplacementPhone},
				},
			}, nil
		}
		return Committed{
			Outcome: OutcomeWrongNumber,
			Contact: s.Contact,
			Effects: []Effect{
				WriteAttempt{Outcome: OutcomeWrongNumber, Contact: s.Contact},
				SetStatus{Status: establishments.StatusWrongNumber},
			},
		}, nil
	}

	return s, fmt.Errorf("%w: %T in %T", ErrInvalidTransition, event, s)
}

func validateDueDate(due time.Time, today func() (int, int, int)) error {
	y, m, d := today()
	startOfDay := time.Date(y, time.Month(m), d, 0, 0, 0, 0, due.Location())
	if due.Before(startOfDay) {
		return ErrPastCallbackDate
	}
	return nil
}
