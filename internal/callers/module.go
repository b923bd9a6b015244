// Package callers provides the operator accounts bounded context: sign-in,
// token rotation, and the home-base territory profile that anchors the
// call queue.
package callers

import (
	"prospect_backend/internal/callers/handler"
	"prospect_backend/internal/callers/repository"
	"prospect_backend/internal/callers/service"
	apphttp "prospect_backend/internal/http"
	"prospect_backend/platform/config"
	"prospect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the callers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires the callers module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthConfig, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

func (m *Module) Name() string {
	return "callers"
}

// Repository exposes the caller repository to sibling modules (queue).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts caller routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting.
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterAuthRoutes(authGroup)

	ctx.Protected.GET("/callers/me", m.handler.GetMe)
	ctx.Protected.PATCH("/callers/me/territory", m.handler.UpdateTerritory)
	ctx.Protected.POST("/callers/me/password", m.handler.ChangePassword)

	ctx.Admin.GET("/callers", m.handler.ListCallers)
	ctx.Admin.POST("/callers", m.handler.CreateCaller)
	ctx.Admin.GET("/callers/:id", m.handler.GetCaller)
}

var _ apphttp.Module = (*Module)(nil)
