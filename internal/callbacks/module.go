// Package callbacks provides the follow-up scheduler bounded context.
package callbacks

import (
	"prospect_backend/internal/callbacks/handler"
	"prospect_backend/internal/callbacks/repository"
	"prospect_backend/internal/callbacks/service"
	"prospect_backend/internal/events"
	apphttp "prospect_backend/internal/http"
	"prospect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the callbacks bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)
	h := handler.New(svc, val)
	return &Module{handler: h, service: svc, repo: repo}
}

func (m *Module) Name() string {
	return "callbacks"
}

// Service exposes the scheduler to the calls and queue modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the callback store to the queue builder.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts callback routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/callbacks")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
