package handler

import (
	"net/http"
	"time"

	"prospect_backend/internal/callbacks/service"
	"prospect_backend/internal/callbacks/transport"
	"prospect_backend/platform/httpkit"
	"prospect_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/due", h.Due)
	rg.POST("/establishments/:establishmentId", h.Schedule)
	rg.GET("/establishments/:establishmentId", h.ListByEstablishment)
	rg.GET("/establishments/:establishmentId/pending", h.Pending)
	rg.POST("/:id/resolve", h.Resolve)
}

// Due lists unresolved callbacks due today or earlier. An explicit asOf query
// parameter (YYYY-MM-DD) overrides the server clock, mostly for supervision
// views.
func (h *Handler) Due(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid asOf date", nil)
			return
		}
		asOf = parsed
	}

	due, err := h.svc.DueToday(c.Request.Context(), asOf)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, due)
}

func (h *Handler) Schedule(c *gin.Context) {
	establishmentID, err := uuid.Parse(c.Param("establishmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ScheduleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.ScheduleFromRequest(c.Request.Context(), establishmentID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) ListByEstablishment(c *gin.Context) {
	establishmentID, err := uuid.Parse(c.Param("establishmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	callbacks, err := h.svc.ListByEstablishment(c.Request.Context(), establishmentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, callbacks)
}

func (h *Handler) Pending(c *gin.Context) {
	establishmentID, err := uuid.Parse(c.Param("establishmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	pending, err := h.svc.GetUnresolved(c.Request.Context(), establishmentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, pending)
}

func (h *Handler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Resolve(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}
