package transport

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleCallbackRequest struct {
	DueDate       string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	DueTime       string `json:"dueTime" validate:"required,duetime"`
	Reason        string `json:"reason" validate:"max=500"`
	ContactName   string `json:"contactName"`
	ContactRole   string `json:"contactRole"`
	ContactEmail  string `json:"contactEmail" validate:"omitempty,email"`
	ContactMobile string `json:"contactMobile"`
}

type CallbackResponse struct {
	ID              uuid.UUID  `json:"id"`
	EstablishmentID uuid.UUID  `json:"establishmentId"`
	DueDate         string     `json:"dueDate"`
	DueTime         string     `json:"dueTime"`
	Reason          string     `json:"reason"`
	ContactName     string     `json:"contactName,omitempty"`
	ContactRole     string     `json:"contactRole,omitempty"`
	ContactEmail    string     `json:"contactEmail,omitempty"`
	ContactMobile   string     `json:"contactMobile,omitempty"`
	Resolved        bool       `json:"resolved"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	SupersededBy    *uuid.UUID `json:"supersededBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type ScheduleCallbackResponse struct {
	Callback     CallbackResponse `json:"callback"`
	SupersededID *uuid.UUID       `json:"supersededId,omitempty"`
}
