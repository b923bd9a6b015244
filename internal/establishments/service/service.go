package service

import (
	"context"
	"errors"

	"prospect_backend/internal/establishments/dedup"
	"prospect_backend/internal/establishments/domain"
	"prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/establishments/transport"
	"prospect_backend/internal/events"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/geo"
	"prospect_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Service struct {
	repo     *repository.Repository
	eventBus events.Bus
}

func New(repo *repository.Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus}
}

func (s *Service) Create(ctx context.Context, req transport.CreateEstablishmentRequest) (transport.EstablishmentResponse, error) {
	params := repository.CreateParams{
		RegistrationID:   req.RegistrationID,
		Name:             req.Name,
		AddressStreet:    req.Street,
		AddressZipCode:   req.ZipCode,
		AddressCity:      req.City,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Phone:            phone.NormalizeE164(req.Phone),
		Email:            req.Email,
		WebsiteDomain:    dedup.NormalizeDomain(req.Website),
		WorkforceBracket: req.WorkforceBracket,
		LegalForm:        req.LegalForm,
		QualityScore:     req.QualityScore,
		Notes:            req.Notes,
	}
	if req.GroupID != "" {
		params.GroupID = &req.GroupID
	}

	est, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.EstablishmentResponse{}, err
	}
	return s.toResponse(est), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.EstablishmentResponse, error) {
	est, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.EstablishmentResponse{}, apperr.NotFound("establishment not found")
		}
		return transport.EstablishmentResponse{}, err
	}
	return s.toResponse(est), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateEstablishmentRequest) (transport.EstablishmentResponse, error) {
	params := repository.UpdateParams{
		Name:             req.Name,
		AddressStreet:    req.Street,
		AddressZipCode:   req.ZipCode,
		AddressCity:      req.City,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Email:            req.Email,
		WorkforceBracket: req.WorkforceBracket,
		LegalForm:        req.LegalForm,
		QualityScore:     req.QualityScore,
		Notes:            req.Notes,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}
	if req.Website != nil {
		host := dedup.NormalizeDomain(*req.Website)
		params.WebsiteDomain = &host
	}

	est, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.EstablishmentResponse{}, apperr.NotFound("establishment not found")
		}
		return transport.EstablishmentResponse{}, err
	}
	return s.toResponse(est), nil
}

func (s *Service) List(ctx context.Context, query transport.ListEstablishmentsQuery) (transport.ListEstablishmentsResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		Search:           query.Search,
		IncludeDelegated: query.IncludeDelegated,
		Limit:            pageSize,
		Offset:           (page - 1) * pageSize,
	}
	if query.LegalForm != "" {
		params.LegalForm = &query.LegalForm
	}
	if query.GroupID != "" {
		params.GroupID = &query.GroupID
	}
	for _, raw := range query.Statuses {
		status := domain.Status(raw)
		if !status.Valid() {
			return transport.ListEstablishmentsResponse{}, apperr.Validation("unknown status: " + raw)
		}
		params.Statuses = append(params.Statuses, status)
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListEstablishmentsResponse{}, err
	}

	responses := make([]transport.EstablishmentResponse, 0, len(items))
	for _, est := range items {
		responses = append(responses, s.toResponse(est))
	}

	return transport.ListEstablishmentsResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// RecordDoNotCall puts the establishment on the permanent exclusion list.
// The status change and the register entry commit together.
func (s *Service) RecordDoNotCall(ctx context.Context, id uuid.UUID, reason string, recordedBy uuid.UUID) (transport.DoNotCallResponse, error) {
	entry, err := s.repo.RecordDoNotCall(ctx, id, reason, recordedBy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.DoNotCallResponse{}, apperr.NotFound("establishment not found")
		}
		return transport.DoNotCallResponse{}, err
	}

	s.eventBus.Publish(ctx, events.DoNotCallRecorded{
		BaseEvent:       events.NewBaseEvent(),
		EstablishmentID: id,
		Reason:          reason,
		RecordedBy:      recordedBy,
	})

	return transport.DoNotCallResponse{
		EstablishmentID: entry.EstablishmentID,
		Reason:          entry.Reason,
		RecordedBy:      entry.RecordedBy,
		RecordedAt:      entry.RecordedAt,
	}, nil
}

func (s *Service) GetDoNotCall(ctx context.Context, id uuid.UUID) (transport.DoNotCallResponse, error) {
	entry, err := s.repo.GetDoNotCall(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDNCNotFound) {
			return transport.DoNotCallResponse{}, apperr.NotFound("no do-not-call entry for establishment")
		}
		return transport.DoNotCallResponse{}, err
	}
	return transport.DoNotCallResponse{
		EstablishmentID: entry.EstablishmentID,
		Reason:          entry.Reason,
		RecordedBy:      entry.RecordedBy,
		RecordedAt:      entry.RecordedAt,
	}, nil
}

// RemoveDoNotCall lifts the exclusion. Admin only; the route enforces the role.
func (s *Service) RemoveDoNotCall(ctx context.Context, id uuid.UUID) error {
	err := s.repo.RemoveDoNotCall(ctx, id)
	if errors.Is(err, repository.ErrDNCNotFound) {
		return apperr.NotFound("no do-not-call entry for establishment")
	}
	return err
}

func (s *Service) toResponse(est domain.Establishment) transport.EstablishmentResponse {
	return transport.ToResponse(est, geo.WorkforceMidpoint(est.WorkforceBracket))
}
