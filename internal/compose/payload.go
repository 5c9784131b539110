package compose

import (
	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/platform/apperr"
)

// errSessionClosed is a programming-error condition: the caller dispatched
// against a panel that is no longer open.
var errSessionClosed = apperr.Internal("compose session is not open")

// BuildPayload turns a complete, valid compose state plus a routing intent
// into the payload handed to the external send action.
//
// Callable only when the state is send-eligible; building from an invalid
// state is a programming error (the caller must check CanSend first) and is
// signaled distinctly from user-facing validation failures.
func BuildPayload(state State, intent RoutingIntent) (SendPayload, error) {
	if !state.CanSend() {
		return SendPayload{}, apperr.Internal("payload requested for unsendable compose state").
			WithOp("compose.BuildPayload")
	}
	if state.SelectedSender == nil {
		return SendPayload{}, apperr.Internal("no caller ID selected").
			WithOp("compose.BuildPayload")
	}

	payload := SendPayload{
		Destination:  state.Destination.Raw,
		MessageType:  state.Channel,
		CallerID:     state.SelectedSender.PhoneNumber,
		CallerIDData: *state.SelectedSender,
	}

	if state.Channel == inventory.ChannelWhatsApp && state.TemplateMode && state.SelectedTemplateID != "" {
		payload.ContentTemplateSID = state.SelectedTemplateID
		payload.Body = ""
	} else {
		payload.Body = state.MessageBody
	}

	payload.OpenChat, payload.RouteToMe = routingFlags(intent)
	return payload, nil
}

// routingFlags maps a routing intent to its fixed flag pair. Unrecognized
// intents degrade to route-to-anyone rather than erroring.
func routingFlags(intent RoutingIntent) (openChat, routeToMe bool) {
	switch intent {
	case RoutingOpenForMe:
		return true, true
	case RoutingToMe:
		return false, true
	case RoutingToAnyone:
		return false, false
	default:
		return false, false
	}
}
