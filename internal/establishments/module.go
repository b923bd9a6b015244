// Package establishments provides the establishment directory bounded context:
// the prospect records themselves, entity resolution across legal groups and
// shared contact details, and the permanent do-not-call register.
package establishments

import (
	"prospect_backend/internal/establishments/dedup"
	"prospect_backend/internal/establishments/handler"
	"prospect_backend/internal/establishments/repository"
	"prospect_backend/internal/establishments/service"
	"prospect_backend/internal/events"
	apphttp "prospect_backend/internal/http"
	"prospect_backend/platform/logger"
	"prospect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the establishments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	dedup   *dedup.Service
	repo    *repository.Repository
}

// NewModule wires the establishments module. The enricher is provided by the
// enrichment module; pass nil only in tests that never hit the enrich route.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger, enricher handler.Enricher) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)
	dedupSvc := dedup.New(repo, eventBus, log)
	h := handler.New(svc, dedupSvc, enricher, val)

	return &Module{
		handler: h,
		service: svc,
		dedup:   dedupSvc,
		repo:    repo,
	}
}

func (m *Module) Name() string {
	return "establishments"
}

// Service exposes the establishment service to sibling modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the establishment repository to sibling modules that
// operate on establishments directly (calls, queue).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts establishment routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/establishments")
	m.handler.RegisterRoutes(group)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
