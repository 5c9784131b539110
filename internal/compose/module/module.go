package composemodule

import (
	"outbound_messaging_backend/internal/compose/handler"
	"outbound_messaging_backend/internal/compose/service"
	"outbound_messaging_backend/internal/events"
	apphttp "outbound_messaging_backend/internal/http"
	"outbound_messaging_backend/platform/config"
	"outbound_messaging_backend/platform/logger"
	"outbound_messaging_backend/platform/validator"
)

// Module is the compose bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the compose module. The collaborator
// clients are built by the composition root and injected here.
func NewModule(
	inv service.InventoryFetcher,
	tmpl service.TemplateFetcher,
	sender service.Sender,
	bus events.Bus,
	cfg config.ComposeConfig,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(inv, tmpl, sender, bus, log,
		service.ActivityAvailability(cfg), cfg.IsContentTemplatesEnabled())
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "compose"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts compose routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/outbound")
	group.POST("/sessions", m.handler.OpenSession)
	group.GET("/sessions/:id", m.handler.GetSession)
	group.POST("/sessions/:id/events", m.handler.ApplyEvent)
	group.POST("/sessions/:id/send", m.handler.Send)
	group.DELETE("/sessions/:id", m.handler.CloseSession)
	group.GET("/numbers", m.handler.ListNumbers)
	group.GET("/templates", m.handler.ListTemplates)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
