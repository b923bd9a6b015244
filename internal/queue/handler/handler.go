package handler

import (
	"net/http"

	"prospect_backend/internal/queue/service"
	"prospect_backend/internal/queue/transport"
	"prospect_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Build)
}

func (h *Handler) Build(c *gin.Context) {
	var query transport.BuildQueueQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	resp, err := h.svc.BuildQueue(c.Request.Context(), identity.CallerID(), query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
