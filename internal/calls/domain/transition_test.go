package domain

import (
	"errors"
	"testing"
	"time"

	establishments "prospect_backend/internal/establishments/domain"
)

func fixedToday() (int, int, int) { return 2026, 3, 10 }

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func mustTransition(t *testing.T, state State, event Event) State {
	t.Helper()
	next, err := Transition(state, event, fixedToday)
	if err != nil {
		t.Fatalf("Transition(%T, %T): %v", state, event, err)
	}
	return next
}

func reachResponded(t *testing.T, contact ContactSnapshot) State {
	t.Helper()
	state := mustTransition(t, Idle{}, Dial{})
	return mustTransition(t, state, ReportResponded{Contact: contact})
}

func commit(t *testing.T, state State, event Event) Committed {
	t.Helper()
	next := mustTransition(t, state, event)
	committed, ok := next.(Committed)
	if !ok {
		t.Fatalf("expected Committed, got %T", next)
	}
	return committed
}

func effectTypes(effects []Effect) []string {
	out := make([]string, 0, len(effects))
	for _, effect := range effects {
		switch effect.(type) {
		case WriteAttempt:
			out = append(out, "attempt")
		case CreateCallback:
			out = append(out, "callback")
		case CreateAppointment:
			out = append(out, "appointment")
		case SetStatus:
			out = append(out, "status")
		case Notify:
			out = append(out, "notify")
		case OverwriteGroupPhone:
			out = append(out, "phone")
		}
	}
	return out
}

func assertEffects(t *testing.T, committed Committed, want ...string) {
	t.Helper()
	got := effectTypes(committed.Effects)
	if len(got) != len(want) {
		t.Fatalf("effects = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("effects = %v, want %v", got, want)
		}
	}
}

func findStatus(t *testing.T, committed Committed) establishments.Status {
	t.Helper()
	for _, effect := range committed.Effects {
		if set, ok := effect.(SetStatus); ok {
			return set.Status
		}
	}
	t.Fatal("no SetStatus effect")
	return ""
}

func TestNoAnswerRequiresCallbackBeforeCommit(t *testing.T) {
	state := mustTransition(t, Idle{}, Dial{})
	state = mustTransition(t, state, ReportNoAnswer{MessageLeft: true})

	// Terminal choices from Responded are rejected here.
	if _, err := Transition(state, ChooseCold{ReasonTag: "Busy"}, fixedToday); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	committed := commit(t, state, ScheduleFollowUp{
		DueDate: date(2026, 3, 12),
		DueTime: "09:30",
		Reason:  "try again in the morning",
	})
	assertEffects(t, committed, "attempt", "callback", "status")
	if committed.Outcome != OutcomeNoAnswer {
		t.Fatalf("outcome = %s", committed.Outcome)
	}
	if findStatus(t, committed) != establishments.StatusContactedTepid {
		t.Fatalf("status = %s, want %s", findStatus(t, committed), establishments.StatusContactedTepid)
	}
}

func TestNoAnswerRejectsPastDueDate(t *testing.T) {
	state := mustTransition(t, Idle{}, Dial{})
	state = mustTransition(t, state, ReportNoAnswer{})

	_, err := Transition(state, ScheduleFollowUp{DueDate: date(2026, 3, 9), DueTime: "10:00"}, fixedToday)
	if !errors.Is(err, ErrPastCallbackDate) {
		t.Fatalf("expected past-date error, got %v", err)
	}

	// Same-day is allowed.
	if _, err := Transition(state, ScheduleFollowUp{DueDate: date(2026, 3, 10), DueTime: "16:00"}, fixedToday); err != nil {
		t.Fatalf("same-day callback rejected: %v", err)
	}
}

func TestInterestedCreatesAppointmentAndNotifies(t *testing.T) {
	contact := ContactSnapshot{Name: "Claire Morel", Role: "gérante", Email: "c.morel@menuiserie-morel.fr"}
	proposed := date(2026, 3, 20)

	committed := commit(t, reachResponded(t, contact), ChooseInterested{
		ProposedDate: &proposed,
		Urgency:      "high",
		Offerings:    []string{"fibre", "mobile"},
	})

	assertEffects(t, committed, "attempt", "appointment", "status", "notify")
	if committed.Outcome != OutcomeInterested {
		t.Fatalf("outcome = %s", committed.Outcome)
	}
	if findStatus(t, committed) != establishments.StatusContactedInterested {
		t.Fatalf("status = %s", findStatus(t, committed))
	}

	attempt := committed.Effects[0].(WriteAttempt)
	if attempt.Contact != contact {
		t.Fatalf("contact not carried onto attempt: %+v", attempt.Contact)
	}
	notify := committed.Effects[3].(Notify)
	if notify.Kind != NotifyInterested || notify.Urgency != "high" {
		t.Fatalf("notify = %+v", notify)
	}
}

func TestTepidReplacesCallback(t *testing.T) {
	committed := commit(t, reachResponded(t, ContactSnapshot{}), ChooseTepid{
		DueDate: date(2026, 4, 1),
		DueTime: "14:00",
		Reason:  "decision after budget meeting",
	})
	assertEffects(t, committed, "attempt", "callback", "status")
	cb := committed.Effects[1].(CreateCallback)
	if cb.DueTime != "14:00" || cb.Reason == "" {
		t.Fatalf("callback = %+v", cb)
	}
}

func TestTransferValidation(t *testing.T) {
	state := reachResponded(t, ContactSnapshot{Name: "standard"})

	if _, err := Transition(state, ChooseTransfer{Reason: "wrong territory"}, fixedToday); !errors.Is(err, ErrMissingTransferInfo) {
		t.Fatalf("missing note accepted: %v", err)
	}
	if _, err := Transition(state, ChooseTransfer{Note: "ask for Karim"}, fixedToday); !errors.Is(err, ErrMissingTransferInfo) {
		t.Fatalf("missing reason accepted: %v", err)
	}

	committed := commit(t, state, ChooseTransfer{Reason: "wrong territory", Note: "ask for Karim"})
	assertEffects(t, committed, "attempt", "status", "notify")
	if findStatus(t, committed) != establishments.StatusContactedTepid {
		t.Fatalf("status = %s", findStatus(t, committed))
	}
}

func TestColdValidationAndEffects(t *testing.T) {
	state := reachResponded(t, ContactSnapshot{})

	if _, err := Transition(state, ChooseCold{}, fixedToday); !errors.Is(err, ErrMissingColdReason) {
		t.Fatalf("empty reason accepted: %v", err)
	}
	if _, err := Transition(state, ChooseCold{ReasonTag: ColdReasonOther}, fixedToday); !errors.Is(err, ErrMissingColdText) {
		t.Fatalf("bare Other accepted: %v", err)
	}

	committed := commit(t, state, ChooseCold{ReasonTag: "Already using a provider"})
	// Terminal: no callback, no appointment.
	assertEffects(t, committed, "attempt", "status")
	if findStatus(t, committed) != establishments.StatusContactedCold {
		t.Fatalf("status = %s", findStatus(t, committed))
	}
}

func TestWrongNumberWithReplacementOverwritesGroup(t *testing.T) {
	committed := commit(t, reachResponded(t, ContactSnapshot{}), ChooseWrongNumber{ReplacementPhone: "+33298111111"})
	assertEffects(t, committed, "attempt", "phone")
	overwrite := committed.Effects[1].(OverwriteGroupPhone)
	if overwrite.Phone != "+33298111111" {
		t.Fatalf("phone = %s", overwrite.Phone)
	}
}

func TestWrongNumberRejectsShortReplacement(t *testing.T) {
	state := reachResponded(t, ContactSnapshot{})
	if _, err := Transition(state, ChooseWrongNumber{ReplacementPhone: "12 34"}, fixedToday); !errors.Is(err, ErrShortReplacement) {
		t.Fatalf("short replacement accepted: %v", err)
	}
}

func TestWrongNumberWithoutReplacementIsTerminal(t *testing.T) {
	committed := commit(t, reachResponded(t, ContactSnapshot{}), ChooseWrongNumber{})
	assertEffects(t, committed, "attempt", "status")
	if findStatus(t, committed) != establishments.StatusWrongNumber {
		t.Fatalf("status = %s", findStatus(t, committed))
	}
}

func TestAbandonLeavesNoEffects(t *testing.T) {
	state := mustTransition(t, Idle{}, Dial{})
	state = mustTransition(t, state, ReportNoAnswer{MessageLeft: true})

	next := mustTransition(t, state, Abandon{})
	if _, ok := next.(Idle); !ok {
		t.Fatalf("abandon should return to Idle, got %T", next)
	}
}

func TestCommittedIsFinal(t *testing.T) {
	committed := commit(t, reachResponded(t, ContactSnapshot{}), ChooseWrongNumber{})
	if _, err := Transition(committed, Dial{}, fixedToday); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("committed state accepted a new event: %v", err)
	}
}

func TestValidationFailureKeepsState(t *testing.T) {
	state := reachResponded(t, ContactSnapshot{Name: "kept"})
	next, err := Transition(state, ChooseTransfer{}, fixedToday)
	if err == nil {
		t.Fatal("expected error")
	}
	responded, ok := next.(Responded)
	if !ok {
		t.Fatalf("state changed on validation failure: %T", next)
	}
	if responded.Contact.Name != "kept" {
		t.Fatal("contact lost on validation failure")
	}
}
