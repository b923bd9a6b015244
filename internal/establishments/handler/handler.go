package handler

import (
	"context"
	"net/http"

	"prospect_backend/internal/establishments/dedup"
	"prospect_backend/internal/establishments/service"
	"prospect_backend/internal/establishments/transport"
	"prospect_backend/platform/geo"
	"prospect_backend/platform/httpkit"
	"prospect_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Enricher refreshes an establishment's registry attributes on demand.
type Enricher interface {
	Enrich(ctx context.Context, establishmentID uuid.UUID) (transport.EstablishmentResponse, error)
}

type Handler struct {
	svc      *service.Service
	dedupSvc *dedup.Service
	enricher Enricher
	val      *validator.Validator
}

func New(svc *service.Service, dedupSvc *dedup.Service, enricher Enricher, val *validator.Validator) *Handler {
	return &Handler{svc: svc, dedupSvc: dedupSvc, enricher: enricher, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.GET("/:id/links", h.Links)
	rg.POST("/delegate", h.Delegate)
	rg.DELETE("/:id/delegate", h.Undelegate)
	rg.POST("/:id/designate-central", h.DesignateCentral)
	rg.POST("/:id/do-not-call", h.RecordDoNotCall)
	rg.GET("/:id/do-not-call", h.GetDoNotCall)
	rg.POST("/:id/enrich", h.Enrich)
}

// RegisterAdminRoutes mounts the admin-only override routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/establishments/:id/do-not-call", h.RemoveDoNotCall)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) List(c *gin.Context) {
	var query transport.ListEstablishmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Links(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	links, err := h.dedupSvc.FindLinks(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.LinkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, transport.LinkResponse{
			Kind:          string(link.Kind),
			Establishment: transport.ToResponse(link.Establishment, geo.WorkforceMidpoint(link.Establishment.WorkforceBracket)),
		})
	}
	httpkit.OK(c, responses)
}

func (h *Handler) Delegate(c *gin.Context) {
	var req transport.DelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	delegated, err := h.dedupSvc.Delegate(c.Request.Context(), req.PrimaryID, req.SiblingIDs)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.DelegateResponse{Delegated: delegated})
}

func (h *Handler) Undelegate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.dedupSvc.Undelegate(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DesignateCentral(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	redirected, err := h.dedupSvc.DesignateCentral(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.DesignateCentralResponse{Redirected: redirected})
}

func (h *Handler) RecordDoNotCall(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.DoNotCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	resp, err := h.svc.RecordDoNotCall(c.Request.Context(), id, req.Reason, identity.CallerID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) GetDoNotCall(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetDoNotCall(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) RemoveDoNotCall(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.RemoveDoNotCall(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Enrich(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.enricher.Enrich(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
