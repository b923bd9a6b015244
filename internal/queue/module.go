// Package queue provides the work queue bounded context: the per-caller,
// territory-aware, priority-ordered view over the establishment pool.
package queue

import (
	apphttp "prospect_backend/internal/http"
	"prospect_backend/internal/queue/handler"
	"prospect_backend/internal/queue/service"
)

// Module is the queue bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the queue module over the sibling contexts' stores.
func NewModule(ests service.EstablishmentLister, callbacks service.CallbackLister, callers service.CallerStore) *Module {
	svc := service.New(ests, callbacks, callers)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "queue"
}

// RegisterRoutes mounts the queue route on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/queue"))
}

var _ apphttp.Module = (*Module)(nil)
