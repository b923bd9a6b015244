// Package enrichment provides the registry enrichment collaborator: on-demand
// lookups of registration identifiers to refresh establishment attributes.
package enrichment

import (
	"prospect_backend/internal/enrichment/client"
	"prospect_backend/internal/enrichment/service"
	estrepo "prospect_backend/internal/establishments/repository"
	"prospect_backend/platform/config"
	"prospect_backend/platform/logger"
)

// Module wires the registry client and enrichment service. It registers no
// routes of its own; the establishments module mounts the enrich endpoint.
type Module struct {
	service *service.Service
}

func NewModule(cfg config.RegistryConfig, ests *estrepo.Repository, log *logger.Logger) *Module {
	registry := client.New(cfg, log)
	return &Module{
		service: service.New(registry, ests, cfg.IsRegistryEnabled(), log),
	}
}

func (m *Module) Name() string {
	return "enrichment"
}

// Service exposes the enrichment service; the establishments handler uses it
// as its Enricher.
func (m *Module) Service() *service.Service {
	return m.service
}
