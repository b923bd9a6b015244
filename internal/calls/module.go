// Package calls provides the call flow bounded context: the outcome state
// machine, the immutable attempt log, and operator corrections.
package calls

import (
	"prospect_backend/internal/calls/handler"
	"prospect_backend/internal/calls/repository"
	"prospect_backend/internal/calls/service"
	"prospect_backend/internal/events"
	apphttp "prospect_backend/internal/http"
	"prospect_backend/platform/logger"
	"prospect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the calls bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires the calls module. The establishment store, callback
// scheduler and appointment creator come from their own modules.
func NewModule(
	pool *pgxpool.Pool,
	ests service.EstablishmentStore,
	scheduler service.CallbackScheduler,
	appts service.AppointmentCreator,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, ests, scheduler, appts, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

func (m *Module) Name() string {
	return "calls"
}

// Repository exposes the attempt log to sibling modules (messaging guard,
// derived projections).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts call flow routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	calls := ctx.Protected.Group("/calls")
	attempts := ctx.Protected.Group("/attempts")
	m.handler.RegisterRoutes(calls, attempts)
}

var _ apphttp.Module = (*Module)(nil)
