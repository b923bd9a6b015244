// Package appointments provides the commercial meeting bounded context fed by
// Interested call outcomes.
package appointments

import (
	"prospect_backend/internal/appointments/handler"
	"prospect_backend/internal/appointments/repository"
	"prospect_backend/internal/appointments/service"
	apphttp "prospect_backend/internal/http"
	"prospect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)
	return &Module{handler: h, service: svc}
}

func (m *Module) Name() string {
	return "appointments"
}

// Service exposes the appointment creator to the calls module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts appointment routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/appointments")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
