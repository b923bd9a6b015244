// Package service applies registry records to establishments on demand.
// Enrichment is a collaborator lookup, never part of the call outcome flow.
package service

import (
	"context"

	"prospect_backend/internal/enrichment/client"
	"prospect_backend/internal/establishments/domain"
	estrepo "prospect_backend/internal/establishments/repository"
	esttransport "prospect_backend/internal/establishments/transport"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/geo"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

// RegistryClient looks up a registration identifier in the company registry.
type RegistryClient interface {
	GetByRegistrationID(ctx context.Context, registrationID string) (*client.Profile, error)
}

// EstablishmentStore reads and patches establishment attribute fields.
type EstablishmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Establishment, error)
	Update(ctx context.Context, id uuid.UUID, params estrepo.UpdateParams) (domain.Establishment, error)
}

type Service struct {
	registry RegistryClient
	ests     EstablishmentStore
	enabled  bool
	log      *logger.Logger
}

func New(registry RegistryClient, ests EstablishmentStore, enabled bool, log *logger.Logger) *Service {
	return &Service{registry: registry, ests: ests, enabled: enabled, log: log}
}

// Enrich refreshes an establishment's registry attributes. Fields the
// registry does not know are left untouched.
func (s *Service) Enrich(ctx context.Context, establishmentID uuid.UUID) (esttransport.EstablishmentResponse, error) {
	if !s.enabled {
		return esttransport.EstablishmentResponse{}, apperr.BadRequest("registry enrichment is not configured")
	}

	est, err := s.ests.GetByID(ctx, establishmentID)
	if err != nil {
		return esttransport.EstablishmentResponse{}, apperr.NotFound("establishment not found")
	}
	if est.RegistrationID == "" {
		return esttransport.EstablishmentResponse{}, apperr.Validation("establishment has no registration id")
	}

	profile, err := s.registry.GetByRegistrationID(ctx, est.RegistrationID)
	if err != nil {
		return esttransport.EstablishmentResponse{}, apperr.Wrap(apperr.KindInternal, "registry lookup failed", err)
	}
	if profile == nil {
		return esttransport.EstablishmentResponse{}, apperr.NotFound("no registry record for registration id")
	}

	params := updateParams(*profile)
	updated, err := s.ests.Update(ctx, est.ID, params)
	if err != nil {
		return esttransport.EstablishmentResponse{}, err
	}

	s.log.Info("establishment enriched from registry",
		"establishment_id", est.ID,
		"registration_id", est.RegistrationID,
	)
	return esttransport.ToResponse(updated, geo.WorkforceMidpoint(updated.WorkforceBracket)), nil
}

func updateParams(profile client.Profile) estrepo.UpdateParams {
	params := estrepo.UpdateParams{}
	if profile.LegalForm != "" {
		params.LegalForm = &profile.LegalForm
	}
	if profile.WorkforceBracket != "" {
		params.WorkforceBracket = &profile.WorkforceBracket
	}
	if profile.AddressStreet != "" {
		params.AddressStreet = &profile.AddressStreet
	}
	if profile.AddressZipCode != "" {
		params.AddressZipCode = &profile.AddressZipCode
	}
	if profile.AddressCity != "" {
		params.AddressCity = &profile.AddressCity
	}
	if profile.Latitude != nil && profile.Longitude != nil {
		params.Latitude = profile.Latitude
		params.Longitude = profile.Longitude
	}
	return params
}
