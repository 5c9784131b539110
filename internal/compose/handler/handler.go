// Package handler handles HTTP requests for the compose module.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"outbound_messaging_backend/internal/compose/service"
	"outbound_messaging_backend/internal/compose/transport"
	"outbound_messaging_backend/platform/httpkit"
	"outbound_messaging_backend/platform/validator"
)

// Handler handles HTTP requests for compose sessions.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid session id"
)

// New creates a new compose handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// OpenSession opens a compose panel session.
// POST /api/v1/outbound/sessions
func (h *Handler) OpenSession(c *gin.Context) {
	result, err := h.svc.OpenSession(requestContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetSession returns the current session state.
// GET /api/v1/outbound/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetSession(requestContext(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ApplyEvent applies one user input event to the session.
// POST /api/v1/outbound/sessions/:id/events
func (h *Handler) ApplyEvent(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ApplyEvent(requestContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Send submits the composed message.
// POST /api/v1/outbound/sessions/:id/send
func (h *Handler) Send(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Send(requestContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CloseSession closes and discards the session.
// DELETE /api/v1/outbound/sessions/:id
func (h *Handler) CloseSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.svc.CloseSession(requestContext(c), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ListNumbers serves the sender-number listing.
// GET /api/v1/outbound/numbers
func (h *Handler) ListNumbers(c *gin.Context) {
	httpkit.OK(c, h.svc.ListNumbers(requestContext(c)))
}

// ListTemplates serves the content-template descriptors.
// GET /api/v1/outbound/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	httpkit.OK(c, h.svc.ListTemplates(requestContext(c)))
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// requestContext carries the worker-availability signal from the access
// token into the service layer.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if activity, ok := c.Get(httpkit.ContextActivitySIDKey); ok {
		if sid, ok := activity.(string); ok {
			ctx = service.WithWorkerActivity(ctx, sid)
		}
	}
	return ctx
}
