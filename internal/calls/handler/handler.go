package handler

import (
	"net/http"

	"prospect_backend/internal/calls/service"
	"prospect_backend/internal/calls/transport"
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

// RegisterRoutes mounts the outcome commit under /calls and the correction
// routes under /attempts.
func (h *Handler) RegisterRoutes(calls, attempts *gin.RouterGroup) {
	calls.POST("/:establishmentId/outcome", h.CommitOutcome)
	calls.GET("/:establishmentId/attempts", h.ListAttempts)
	calls.GET("/groups/:groupId/last-caller", h.LastCaller)

	attempts.GET("/:id", h.GetAttempt)
	attempts.PATCH("/:id", h.CorrectAttempt)
	attempts.DELETE("/:id", h.DeleteAttempt)
}

func (h *Handler) CommitOutcome(c *gin.Context) {
	establishmentID, err := uuid.Parse(c.Param("establishmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CommitOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	resp, err := h.svc.CommitOutcome(c.Request.Context(), establishmentID, identity.CallerID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) ListAttempts(c *gin.Context) {
	establishmentID, err := uuid.Parse(c.Param("establishmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	attempts, err := h.svc.ListAttempts(c.Request.Context(), establishmentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, attempts)
}

func (h *Handler) LastCaller(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.LastCallerForGroup(c.Request.Context(), groupID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	attempt, err := h.svc.GetAttempt(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, attempt)
}

func (h *Handler) CorrectAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CorrectAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	attempt, dependents, err := h.svc.CorrectAttempt(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"attempt": attempt, "dependents": dependents})
}

func (h *Handler) DeleteAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.DeleteAttemptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	if httpkit.HandleError(c, h.svc.DeleteAttempt(c.Request.Context(), id, req)) {
		return
	}
	c.Status(http.StatusNoContent)
}
