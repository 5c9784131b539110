// Package compose owns the outbound-message compose state machine: the
// editable panel state, the caller-ID resolution rules, and the construction
// of the final send payload.
package compose

import (
	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/internal/templates"
	"outbound_messaging_backend/platform/phone"
)

// SenderValidation classifies the currently chosen sender against the
// active channel. It is advisory state, never an error.
type SenderValidation string

const (
	// SenderValidationNone means no sender is selected.
	SenderValidationNone SenderValidation = "none"
	// SenderValidationValid means the selected sender matches the channel.
	SenderValidationValid SenderValidation = "valid"
	// SenderValidationChannelMismatch means the selected sender does not
	// support the active channel. Transient: transitions heal it before
	// returning.
	SenderValidationChannelMismatch SenderValidation = "channel-mismatch"
)

// RoutingIntent is the chosen post-send conversation-routing behavior.
type RoutingIntent string

const (
	// RoutingOpenForMe opens the resulting conversation for the sending agent.
	RoutingOpenForMe RoutingIntent = "open-for-me"
	// RoutingToMe routes the new conversation to the sending agent.
	RoutingToMe RoutingIntent = "route-to-me"
	// RoutingToAnyone routes the new conversation to any available agent.
	// Unrecognized intents degrade to this behavior.
	RoutingToAnyone RoutingIntent = "route-to-anyone"
)

// DestinationNumber is the user-entered destination plus its derived
// classification and display rendering. Re-derived on every edit.
type DestinationNumber struct {
	Raw            string
	Classification phone.Classification
	Formatted      string
}

// NewDestination derives a DestinationNumber from raw input.
func NewDestination(raw string) DestinationNumber {
	return DestinationNumber{
		Raw:            raw,
		Classification: phone.Classify(raw),
		Formatted:      phone.FormatAsYouType(raw),
	}
}

// State is the single source of truth for an open compose panel.
type State struct {
	Destination        DestinationNumber
	Channel            inventory.Channel
	MessageBody        string
	SelectedTemplateID string
	SelectedSender     *inventory.SenderNumber
	SenderValidation   SenderValidation
	AvailableSenders   []inventory.SenderNumber
	AvailableTemplates []templates.Template
	// InventoryError carries the surfaced, non-fatal description of a failed
	// inventory fetch. Empty while the inventory is healthy or pending.
	InventoryError string
	// TemplateMode reports whether WhatsApp submissions use a content
	// template instead of free-form body text.
	TemplateMode bool
}

// CanSend reports submit eligibility. It is recomputed from scratch on
// every read, so no transition can leave it stale.
func (s *State) CanSend() bool {
	if len(s.AvailableSenders) == 0 {
		return false
	}
	if !s.Destination.Classification.Valid {
		return false
	}
	if s.SenderValidation != SenderValidationValid {
		return false
	}

	if s.Channel == inventory.ChannelWhatsApp && s.TemplateMode {
		return s.SelectedTemplateID != ""
	}
	return s.MessageBody != ""
}

// SendPayload is the write-once snapshot handed to the external send
// action. Field names follow the action's wire contract.
type SendPayload struct {
	Destination        string                 `json:"destination"`
	MessageType        inventory.Channel      `json:"messageType"`
	Body               string                 `json:"body"`
	ContentTemplateSID string                 `json:"contentTemplateSid,omitempty"`
	CallerID           string                 `json:"callerId"`
	CallerIDData       inventory.SenderNumber `json:"callerIdData"`
	OpenChat           bool                   `json:"openChat"`
	RouteToMe          bool                   `json:"routeToMe"`
}
