package domain

import (
	"time"

	establishments "prospect_backend/internal/establishments/domain"
)

// Effect is one side effect of a committed outcome. The calls service
// executes effects in order; the attempt write always comes first so later
// effects can reference the attempt id.
type Effect interface {
	isEffect()
}

// WriteAttempt appends the immutable call-attempt record.
type WriteAttempt struct {
	Outcome   Outcome
	Contact   ContactSnapshot
	Notes     string
	Offerings []string
	Duration  time.Duration
}

// SetStatus moves the establishment to its post-call status.
type SetStatus struct {
	Status establishments.Status
}

// CreateCallback schedules the follow-up, superseding any unresolved one.
type CreateCallback struct {
	DueDate time.Time
	DueTime string
	Reason  string
}

// CreateAppointment records the commercial meeting from an Interested outcome.
type CreateAppointment struct {
	ProposedDate *time.Time
	Urgency      string
}

// NotifyKind selects the downstream notification payload.
type NotifyKind string

const (
	NotifyInterested NotifyKind = "interested"
	NotifyTransfer   NotifyKind = "transfer"
)

// Notify signals the notification collaborator. Fire and forget; a failure
// never rolls back the transition.
type Notify struct {
	Kind    NotifyKind
	Reason  string
	Note    string
	Urgency string
}

// OverwriteGroupPhone replaces the phone number on every establishment of the
// group and returns them all to the queue.
type OverwriteGroupPhone struct {
	Phone string
}

func (WriteAttempt) isEffect()        {}
func (SetStatus) isEffect()           {}
func (CreateCallback) isEffect()      {}
func (CreateAppointment) isEffect()   {}
func (Notify) isEffect()              {}
func (OverwriteGroupPhone) isEffect() {}
