package transport

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	EstablishmentID uuid.UUID  `json:"establishmentId"`
	SourceAttemptID *uuid.UUID `json:"sourceAttemptId,omitempty"`
	AssigneeID      uuid.UUID  `json:"assigneeId"`
	ProposedDate    *time.Time `json:"proposedDate,omitempty"`
	ConfirmedDate   *time.Time `json:"confirmedDate,omitempty"`
	Urgency         string     `json:"urgency"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type ConfirmAppointmentRequest struct {
	ConfirmedDate time.Time `json:"confirmedDate" validate:"required"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Proposed Confirmed Cancelled Completed"`
}
