package transport

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeKind is the wire name of a terminal branch.
type OutcomeKind string

const (
	OutcomeKindNoAnswer    OutcomeKind = "no_answer"
	OutcomeKindInterested  OutcomeKind = "interested"
	OutcomeKindTepid       OutcomeKind = "tepid"
	OutcomeKindTransfer    OutcomeKind = "transfer"
	OutcomeKindCold        OutcomeKind = "cold"
	OutcomeKindWrongNumber OutcomeKind = "wrong_number"
)

type ContactPayload struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Email  string `json:"email" validate:"omitempty,email"`
	Mobile string `json:"mobile"`
}

type CallbackPayload struct {
	DueDate string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	DueTime string `json:"dueTime" validate:"required,duetime"`
	Reason  string `json:"reason" validate:"max=500"`
}

type AppointmentPayload struct {
	ProposedDate *time.Time `json:"proposedDate"`
	Urgency      string     `json:"urgency" validate:"omitempty,oneof=low normal high"`
}

type TransferPayload struct {
	Reason string `json:"reason" validate:"required"`
	Note   string `json:"note" validate:"required"`
}

type ColdPayload struct {
	ReasonTag  string `json:"reasonTag" validate:"required"`
	CustomText string `json:"customText"`
}

// CommitOutcomeRequest carries one full pass through the call flow. The
// branch-specific payload matching the outcome must be present; the rest are
// ignored.
type CommitOutcomeRequest struct {
	Outcome          OutcomeKind         `json:"outcome" validate:"required,oneof=no_answer interested tepid transfer cold wrong_number"`
	MessageLeft      bool                `json:"messageLeft"`
	Contact          ContactPayload      `json:"contact"`
	Callback         *CallbackPayload    `json:"callback"`
	Appointment      *AppointmentPayload `json:"appointment"`
	Transfer         *TransferPayload    `json:"transfer"`
	Cold             *ColdPayload        `json:"cold"`
	ReplacementPhone string              `json:"replacementPhone"`
	Notes            string              `json:"notes" validate:"max=2000"`
	Offerings        []string            `json:"offerings"`
	DurationSeconds  int                 `json:"durationSeconds" validate:"gte=0"`
}

type AttemptResponse struct {
	ID              uuid.UUID      `json:"id"`
	EstablishmentID uuid.UUID      `json:"establishmentId"`
	CallerID        uuid.UUID      `json:"callerId"`
	Outcome         string         `json:"outcome"`
	Contact         ContactPayload `json:"contact"`
	Notes           string         `json:"notes"`
	Offerings       []string       `json:"offerings"`
	DurationSeconds int            `json:"durationSeconds"`
	CallbackID      *uuid.UUID     `json:"callbackId,omitempty"`
	AppointmentID   *uuid.UUID     `json:"appointmentId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

type CommitOutcomeResponse struct {
	Attempt             AttemptResponse `json:"attempt"`
	EstablishmentStatus string          `json:"establishmentStatus"`
	CallbackID          *uuid.UUID      `json:"callbackId,omitempty"`
	AppointmentID       *uuid.UUID      `json:"appointmentId,omitempty"`
}

type CorrectAttemptRequest struct {
	Contact *ContactPayload `json:"contact"`
	Notes   *string         `json:"notes" validate:"omitempty,max=2000"`
}

// DeleteAttemptRequest must acknowledge dependent records before the delete
// proceeds; the establishment status is never reconciled automatically.
type DeleteAttemptRequest struct {
	AcknowledgeDependents bool `json:"acknowledgeDependents"`
}

// DependentRecords lists what hangs off an attempt an operator wants to
// change. Returned inside the conflict error details.
type DependentRecords struct {
	CallbackID    *uuid.UUID `json:"callbackId,omitempty"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	Prompt        string     `json:"prompt"`
}

// LastCallerResponse is the read-side projection of who most recently logged
// an attempt against any member of a group.
type LastCallerResponse struct {
	CallerID uuid.UUID `json:"callerId"`
	At       time.Time `json:"at"`
}
