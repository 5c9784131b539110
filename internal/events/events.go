// Package events re-exports the platform event bus and defines the domain
// events exchanged between modules.
package events

import (
	platformevents "outbound_messaging_backend/platform/events"
	"outbound_messaging_backend/platform/logger"

	"github.com/google/uuid"
)

// Bus is a type alias to the platform event bus interface.
type Bus = platformevents.Bus

// Event is a type alias to the platform event interface.
type Event = platformevents.Event

// InMemoryBus is a type alias to the platform InMemoryBus.
type InMemoryBus = platformevents.InMemoryBus

// BaseEvent is a type alias to the platform base event.
type BaseEvent = platformevents.BaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// OutboundMessageSent is published after the send action accepts a payload.
type OutboundMessageSent struct {
	BaseEvent
	SessionID          uuid.UUID
	Destination        string
	Channel            string
	CallerID           string
	ContentTemplateSID string
	OpenChat           bool
	RouteToMe          bool
}

// EventName returns the event identifier.
func (OutboundMessageSent) EventName() string { return "outbound.message_sent" }

// OutboundSendFailed is published when the send action rejects a payload.
// The compose state stays intact for a user-initiated retry.
type OutboundSendFailed struct {
	BaseEvent
	SessionID          uuid.UUID
	Destination        string
	Channel            string
	CallerID           string
	ContentTemplateSID string
	OpenChat           bool
	RouteToMe          bool
	Reason             string
}

// EventName returns the event identifier.
func (OutboundSendFailed) EventName() string { return "outbound.send_failed" }
