// Package domain holds the establishment entity and its contact-status rules.
// Pure types, no storage or transport concerns.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the contact status of an establishment.
type Status string

const (
	StatusToCall              Status = "To_Call"
	StatusContactedInterested Status = "Contacted_Interested"
	StatusContactedTepid      Status = "Contacted_Tepid"
	StatusContactedCold       Status = "Contacted_Cold"
	StatusWrongNumber         Status = "Wrong_Number"
	StatusRedirected          Status = "Redirected"
	StatusDoNotCall           Status = "Do_Not_Call"
)

// AllStatuses lists every valid contact status.
var AllStatuses = []Status{
	StatusToCall, StatusContactedInterested, StatusContactedTepid,
	StatusContactedCold, StatusWrongNumber, StatusRedirected, StatusDoNotCall,
}

// Valid reports whether s is a known contact status.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Establishment is one physical place of business in the prospect pool.
type Establishment struct {
	ID               uuid.UUID
	GroupID          *string // shared legal-entity id; nil for manual records
	RegistrationID   string
	Name             string
	AddressStreet    string
	AddressZipCode   string
	AddressCity      string
	Latitude         *float64
	Longitude        *float64
	Phone            string
	Email            string
	WebsiteDomain    string
	WorkforceBracket string
	LegalForm        string
	QualityScore     int
	Status           Status
	DelegateID       *uuid.UUID // establishment now managing this one
	Contacted        bool
	Notes            string
	CreatedAt        time.Time
	LastContactedAt  *time.Time
	UpdatedAt        time.Time
}

// Delegated reports whether this establishment is represented by another one.
// Delegated establishments never appear in an active calling queue.
func (e Establishment) Delegated() bool {
	return e.DelegateID != nil
}

// Callable reports whether a call outcome may be committed against this
// establishment. Do-not-call is absorbing and only an explicit administrative
// override leaves it.
func (e Establishment) Callable() bool {
	return e.Status != StatusDoNotCall
}
