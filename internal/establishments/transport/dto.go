package transport

import (
	"time"

	"prospect_backend/internal/establishments/domain"

	"github.com/google/uuid"
)

type CreateEstablishmentRequest struct {
	GroupID          string   `json:"groupId"`
	RegistrationID   string   `json:"registrationId" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	Street           string   `json:"street"`
	ZipCode          string   `json:"zipCode"`
	City             string   `json:"city"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email" validate:"omitempty,email"`
	Website          string   `json:"website"`
	WorkforceBracket string   `json:"workforceBracket"`
	LegalForm        string   `json:"legalForm"`
	QualityScore     int      `json:"qualityScore" validate:"gte=0,lte=100"`
	Notes            string   `json:"notes"`
}

type UpdateEstablishmentRequest struct {
	Name             *string  `json:"name"`
	Street           *string  `json:"street"`
	ZipCode          *string  `json:"zipCode"`
	City             *string  `json:"city"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Phone            *string  `json:"phone"`
	Email            *string  `json:"email" validate:"omitempty,email"`
	Website          *string  `json:"website"`
	WorkforceBracket *string  `json:"workforceBracket"`
	LegalForm        *string  `json:"legalForm"`
	QualityScore     *int     `json:"qualityScore" validate:"omitempty,gte=0,lte=100"`
	Notes            *string  `json:"notes"`
}

type ListEstablishmentsQuery struct {
	Statuses         []string `form:"status"`
	LegalForm        string   `form:"legalForm"`
	GroupID          string   `form:"groupId"`
	Search           string   `form:"search"`
	IncludeDelegated bool     `form:"includeDelegated"`
	Page             int      `form:"page"`
	PageSize         int      `form:"pageSize"`
}

type EstablishmentResponse struct {
	ID                uuid.UUID  `json:"id"`
	GroupID           string     `json:"groupId,omitempty"`
	RegistrationID    string     `json:"registrationId"`
	Name              string     `json:"name"`
	Street            string     `json:"street"`
	ZipCode           string     `json:"zipCode"`
	City              string     `json:"city"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	WebsiteDomain     string     `json:"websiteDomain"`
	WorkforceBracket  string     `json:"workforceBracket"`
	WorkforceEstimate int        `json:"workforceEstimate"`
	LegalForm         string     `json:"legalForm"`
	QualityScore      int        `json:"qualityScore"`
	Status            string     `json:"status"`
	DelegateID        *uuid.UUID `json:"delegateId,omitempty"`
	Contacted         bool       `json:"contacted"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastContactedAt   *time.Time `json:"lastContactedAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type ListEstablishmentsResponse struct {
	Items    []EstablishmentResponse `json:"items"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
}

type LinkResponse struct {
	Kind          string                `json:"kind"`
	Establishment EstablishmentResponse `json:"establishment"`
}

type DelegateRequest struct {
	PrimaryID  uuid.UUID   `json:"primaryId" validate:"required"`
	SiblingIDs []uuid.UUID `json:"siblingIds" validate:"required,min=1"`
}

type DelegateResponse struct {
	Delegated int `json:"delegated"`
}

type DesignateCentralResponse struct {
	Redirected int64 `json:"redirected"`
}

type DoNotCallRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type DoNotCallResponse struct {
	EstablishmentID uuid.UUID `json:"establishmentId"`
	Reason          string    `json:"reason"`
	RecordedBy      uuid.UUID `json:"recordedBy"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// ToResponse maps a domain establishment to its API shape.
func ToResponse(e domain.Establishment, workforceEstimate int) EstablishmentResponse {
	resp := EstablishmentResponse{
		ID:                e.ID,
		RegistrationID:    e.RegistrationID,
		Name:              e.Name,
		Street:            e.AddressStreet,
		ZipCode:           e.AddressZipCode,
		City:              e.AddressCity,
		Latitude:          e.Latitude,
		Longitude:         e.Longitude,
		Phone:             e.Phone,
		Email:             e.Email,
		WebsiteDomain:     e.WebsiteDomain,
		WorkforceBracket:  e.WorkforceBracket,
		WorkforceEstimate: workforceEstimate,
		LegalForm:         e.LegalForm,
		QualityScore:      e.QualityScore,
		Status:            string(e.Status),
		DelegateID:        e.DelegateID,
		Contacted:         e.Contacted,
		Notes:             e.Notes,
		CreatedAt:         e.CreatedAt,
		LastContactedAt:   e.LastContactedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	if e.GroupID != nil {
		resp.GroupID = *e.GroupID
	}
	return resp
}
