package dispatch

import (
	"context"

	"outbound_messaging_backend/internal/dispatch/repository"
	"outbound_messaging_backend/internal/events"
	"outbound_messaging_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module records dispatch outcomes in response to compose events. A nil
// Module (no database configured) is inert.
type Module struct {
	repo repository.Repository
	log  *logger.Logger
}

// NewModule creates the dispatch-log module, or nil when no pool is given.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	if pool == nil {
		return nil
	}
	return &Module{
		repo: repository.New(pool),
		log:  log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dispatch"
}

// RegisterHandlers subscribes to the compose dispatch events.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	if m == nil {
		return
	}
	bus.Subscribe(events.OutboundMessageSent{}.EventName(), m)
	bus.Subscribe(events.OutboundSendFailed{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.OutboundMessageSent:
		return m.record(ctx, repository.Record{
			ID:                 uuid.New(),
			SessionID:          e.SessionID,
			Destination:        e.Destination,
			Channel:            e.Channel,
			CallerID:           e.CallerID,
			ContentTemplateSID: e.ContentTemplateSID,
			OpenChat:           e.OpenChat,
			RouteToMe:          e.RouteToMe,
			Success:            true,
		})
	case events.OutboundSendFailed:
		return m.record(ctx, repository.Record{
			ID:                 uuid.New(),
			SessionID:          e.SessionID,
			Destination:        e.Destination,
			Channel:            e.Channel,
			CallerID:           e.CallerID,
			ContentTemplateSID: e.ContentTemplateSID,
			OpenChat:           e.OpenChat,
			RouteToMe:          e.RouteToMe,
			Success:            false,
			Error:              e.Reason,
		})
	default:
		return nil
	}
}

func (m *Module) record(ctx context.Context, record repository.Record) error {
	if err := m.repo.InsertOutcome(ctx, record); err != nil {
		m.log.DatabaseError("insert dispatch outcome", err)
		return err
	}
	return nil
}
