// Package transport defines the request/response DTOs of the compose API.
package transport

import (
	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/internal/templates"
)

// EventRequest is one user input event applied to a compose session.
type EventRequest struct {
	Type  string `json:"type" validate:"required,oneof=destination channel body template sender"`
	Value string `json:"value"`
}

// SendRequest submits the composed message with a routing intent.
type SendRequest struct {
	Intent string `json:"intent" validate:"required"`
}

// DestinationView is the derived view of the destination input.
type DestinationView struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
	Possible  bool   `json:"possible"`
	Valid     bool   `json:"valid"`
}

// StateResponse is the full snapshot of a compose session.
type StateResponse struct {
	Destination         DestinationView           `json:"destination"`
	Channel             string                    `json:"channel"`
	MessageBody         string                    `json:"messageBody"`
	SelectedTemplateSID string                    `json:"selectedTemplateSid"`
	SelectedSender      *inventory.SenderNumber   `json:"selectedSender,omitempty"`
	SenderValidation    string                    `json:"senderValidation"`
	AvailableSenders    []inventory.SenderNumber  `json:"availableSenders"`
	AvailableTemplates  []templates.Template      `json:"availableTemplates"`
	InventoryError      string                    `json:"inventoryError,omitempty"`
	TemplateMode        bool                      `json:"templateMode"`
	CanSend             bool                      `json:"canSend"`
	Available           bool                      `json:"available"`
	// LastValidation reports a transient channel-mismatch outcome of the
	// transition that produced this snapshot. The stored state is already
	// healed.
	LastValidation string `json:"lastValidation,omitempty"`
}

// SessionResponse pairs a session identifier with its state.
type SessionResponse struct {
	SessionID string        `json:"sessionId"`
	State     StateResponse `json:"state"`
}

// SendResponse is the outcome of a successful dispatch. ClosePanel tells
// the hosting shell to toggle the panel closed.
type SendResponse struct {
	ClosePanel bool `json:"closePanel"`
}

// NumberListResponse is the inventory listing shape served to the UI.
type NumberListResponse struct {
	Success bool                     `json:"success"`
	Numbers []inventory.SenderNumber `json:"numbers"`
	Count   int                      `json:"count"`
	Error   string                   `json:"error,omitempty"`
}
