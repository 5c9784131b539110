package compose

import (
	"errors"
	"testing"

	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/platform/apperr"
)

func sendableSMSState() State {
	sender := inventory.SenderNumber{
		ID:          "PN1",
		PhoneNumber: "+15551230000",
		DisplayName: "Support",
		Channel:     inventory.ChannelSMS,
	}
	return State{
		Destination:      NewDestination("+12025550123"),
		Channel:          inventory.ChannelSMS,
		MessageBody:      "hello there",
		SelectedSender:   &sender,
		SenderValidation: SenderValidationValid,
		AvailableSenders: []inventory.SenderNumber{sender},
		TemplateMode:     true,
	}
}

func sendableWhatsAppState() State {
	sender := inventory.SenderNumber{
		ID:                 "PN2",
		PhoneNumber:        "+15551230001",
		DisplayName:        "+15551230001 (WhatsApp)",
		Channel:            inventory.ChannelWhatsApp,
		MessagingServiceID: "MG1",
	}
	return State{
		Destination:        NewDestination("+12025550123"),
		Channel:            inventory.ChannelWhatsApp,
		SelectedTemplateID: "HX1",
		SelectedSender:     &sender,
		SenderValidation:   SenderValidationValid,
		AvailableSenders:   []inventory.SenderNumber{sender},
		TemplateMode:       true,
	}
}

func TestBuildPayload_SMSBody(t *testing.T) {
	payload, err := BuildPayload(sendableSMSState(), RoutingToAnyone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Destination != "+12025550123" {
		t.Fatalf("wrong destination %q", payload.Destination)
	}
	if payload.MessageType != inventory.ChannelSMS {
		t.Fatalf("wrong message type %q", payload.MessageType)
	}
	if payload.Body != "hello there" {
		t.Fatalf("wrong body %q", payload.Body)
	}
	if payload.ContentTemplateSID != "" {
		t.Fatalf("sms payload must not carry a template SID, got %q", payload.ContentTemplateSID)
	}
	if payload.CallerID != "+15551230000" {
		t.Fatalf("wrong caller ID %q", payload.CallerID)
	}
	if payload.CallerIDData.ID != "PN1" {
		t.Fatalf("wrong caller ID data %+v", payload.CallerIDData)
	}
}

func TestBuildPayload_WhatsAppTemplate(t *testing.T) {
	payload, err := BuildPayload(sendableWhatsAppState(), RoutingToAnyone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.ContentTemplateSID != "HX1" {
		t.Fatalf("expected template SID HX1, got %q", payload.ContentTemplateSID)
	}
	if payload.Body != "" {
		t.Fatalf("template payload must carry an empty body, got %q", payload.Body)
	}
	if payload.MessageType != inventory.ChannelWhatsApp {
		t.Fatalf("wrong message type %q", payload.MessageType)
	}
}

func TestBuildPayload_WhatsAppBodyWithoutTemplateMode(t *testing.T) {
	state := sendableWhatsAppState()
	state.TemplateMode = false
	state.SelectedTemplateID = ""
	state.MessageBody = "plain whatsapp text"

	payload, err := BuildPayload(state, RoutingToAnyone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Body != "plain whatsapp text" || payload.ContentTemplateSID != "" {
		t.Fatalf("expected body-mode payload, got body=%q template=%q", payload.Body, payload.ContentTemplateSID)
	}
}

func TestBuildPayload_RoutingFlags(t *testing.T) {
	cases := []struct {
		intent    RoutingIntent
		openChat  bool
		routeToMe bool
	}{
		{RoutingOpenForMe, true, true},
		{RoutingToMe, false, true},
		{RoutingToAnyone, false, false},
		{RoutingIntent("something-new"), false, false},
	}

	for _, tc := range cases {
		payload, err := BuildPayload(sendableSMSState(), tc.intent)
		if err != nil {
			t.Fatalf("intent %q: unexpected error: %v", tc.intent, err)
		}
		if payload.OpenChat != tc.openChat || payload.RouteToMe != tc.routeToMe {
			t.Fatalf("intent %q: got openChat=%v routeToMe=%v, want %v/%v",
				tc.intent, payload.OpenChat, payload.RouteToMe, tc.openChat, tc.routeToMe)
		}
	}
}

func TestBuildPayload_RejectsUnsendableState(t *testing.T) {
	state := sendableSMSState()
	state.MessageBody = ""

	_, err := BuildPayload(state, RoutingToAnyone)
	if err == nil {
		t.Fatalf("expected an error for an unsendable state")
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInternal {
		t.Fatalf("expected an internal programming error, got %v", err)
	}
}
