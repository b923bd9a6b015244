// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"prospect_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Call Domain Events
// =============================================================================

// CallAttemptCommitted is published whenever a terminal call outcome is committed.
type CallAttemptCommitted struct {
	BaseEvent
	AttemptID       uuid.UUID `json:"attemptId"`
	EstablishmentID uuid.UUID `json:"establishmentId"`
	CallerID        uuid.UUID `json:"callerId"`
	Outcome         string    `json:"outcome"`
}

func (e CallAttemptCommitted) EventName() string { return "calls.attempt.committed" }

// ProspectInterested is published when an Interested outcome is committed.
// The notification module relays this to the closer inbox; delivery failure
// never affects the committed transition.
type ProspectInterested struct {
	BaseEvent
	EstablishmentID   uuid.UUID  `json:"establishmentId"`
	EstablishmentName string     `json:"establishmentName"`
	Phone             string     `json:"phone"`
	ContactName       string     `json:"contactName,omitempty"`
	ContactRole       string     `json:"contactRole,omitempty"`
	ContactEmail      string     `json:"contactEmail,omitempty"`
	ContactMobile     string     `json:"contactMobile,omitempty"`
	AppointmentID     uuid.UUID  `json:"appointmentId"`
	ProposedDate      *time.Time `json:"proposedDate,omitempty"`
	Urgency           string     `json:"urgency,omitempty"`
	CallerID          uuid.UUID  `json:"callerId"`
}

func (e ProspectInterested) EventName() string { return "calls.prospect.interested" }

// TransferRequested is published when a Transfer outcome is committed and the
// establishment must be picked up by a different caller.
type TransferRequested struct {
	BaseEvent
	EstablishmentID   uuid.UUID `json:"establishmentId"`
	EstablishmentName string    `json:"establishmentName"`
	Phone             string    `json:"phone"`
	Reason            string    `json:"reason"`
	Note              string    `json:"note"`
	ContactName       string    `json:"contactName,omitempty"`
	ContactRole       string    `json:"contactRole,omitempty"`
	CallerID          uuid.UUID `json:"callerId"`
}

func (e TransferRequested) EventName() string { return "calls.transfer.requested" }

// =============================================================================
// Callback Domain Events
// =============================================================================

// CallbackScheduled is published when a follow-up is created or replaced.
type CallbackScheduled struct {
	BaseEvent
	CallbackID      uuid.UUID  `json:"callbackId"`
	EstablishmentID uuid.UUID  `json:"establishmentId"`
	DueDate         time.Time  `json:"dueDate"`
	DueTime         string     `json:"dueTime"`
	Reason          string     `json:"reason"`
	SupersededID    *uuid.UUID `json:"supersededId,omitempty"`
}

func (e CallbackScheduled) EventName() string { return "callbacks.scheduled" }

// =============================================================================
// Entity Resolution Events
// =============================================================================

// EstablishmentsDelegated is published after a delegate batch completes.
type EstablishmentsDelegated struct {
	BaseEvent
	PrimaryID  uuid.UUID   `json:"primaryId"`
	SiblingIDs []uuid.UUID `json:"siblingIds"`
}

func (e EstablishmentsDelegated) EventName() string { return "dedup.establishments.delegated" }

// CentralDesignated is published when a group's primary establishment changes.
type CentralDesignated struct {
	BaseEvent
	GroupID      string    `json:"groupId"`
	NewPrimaryID uuid.UUID `json:"newPrimaryId"`
}

func (e CentralDesignated) EventName() string { return "dedup.central.designated" }

// =============================================================================
// Establishment Domain Events
// =============================================================================

// DoNotCallRecorded is published when an establishment enters the permanent
// do-not-call list.
type DoNotCallRecorded struct {
	BaseEvent
	EstablishmentID uuid.UUID `json:"establishmentId"`
	Reason          string    `json:"reason"`
	RecordedBy      uuid.UUID `json:"recordedBy"`
}

func (e DoNotCallRecorded) EventName() string { return "establishments.dnc.recorded" }
