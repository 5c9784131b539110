package compose

import (
	"testing"

	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/internal/templates"
	"outbound_messaging_backend/platform/phone"
)

func openSessionWithInventory(t *testing.T, senders []inventory.SenderNumber) *Session {
	t.Helper()

	s := NewSession(true)
	gen := s.Open()
	if !s.ApplyInventory(gen, inventory.FetchResult{Senders: senders}) {
		t.Fatalf("inventory response unexpectedly discarded")
	}
	return s
}

func TestOpen_Defaults(t *testing.T) {
	s := NewSession(true)
	s.Open()

	state := s.Snapshot()
	if state.Destination.Raw != phone.DefaultSeed {
		t.Fatalf("expected destination seeded with %q, got %q", phone.DefaultSeed, state.Destination.Raw)
	}
	if state.Destination.Classification.Valid || state.Destination.Classification.Possible {
		t.Fatalf("expected the bare seed to classify invalid, got %+v", state.Destination.Classification)
	}
	if state.Channel != inventory.ChannelSMS {
		t.Fatalf("expected default channel sms, got %s", state.Channel)
	}
	if state.SenderValidation != SenderValidationNone {
		t.Fatalf("expected no sender validation yet, got %s", state.SenderValidation)
	}
	if s.CanSend() {
		t.Fatalf("freshly opened session must not be sendable")
	}
}

func TestApplyInventory_AutoSelectsDefault(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	state := s.Snapshot()
	if len(state.AvailableSenders) != 2 {
		t.Fatalf("expected 2 sms senders, got %d", len(state.AvailableSenders))
	}
	if state.SelectedSender == nil || state.SelectedSender.ID != "PN1" {
		t.Fatalf("expected first sms sender auto-selected, got %+v", state.SelectedSender)
	}
	if state.SenderValidation != SenderValidationValid {
		t.Fatalf("expected valid selection, got %s", state.SenderValidation)
	}
	if state.InventoryError != "" {
		t.Fatalf("unexpected inventory error %q", state.InventoryError)
	}
}

func TestApplyInventory_FailureClearsSenders(t *testing.T) {
	s := NewSession(true)
	gen := s.Open()

	if !s.ApplyInventory(gen, inventory.FetchResult{Failed: true, Err: "failed to fetch available numbers: boom"}) {
		t.Fatalf("failure response unexpectedly discarded")
	}

	state := s.Snapshot()
	if len(state.AvailableSenders) != 0 {
		t.Fatalf("expected empty sender list after failure")
	}
	if state.InventoryError == "" {
		t.Fatalf("expected surfaced inventory error")
	}

	// The error is advisory: the session stays open for further edits.
	s.SetBody("hello")
	if got := s.Snapshot().MessageBody; got != "hello" {
		t.Fatalf("expected session to keep accepting edits, body = %q", got)
	}
	if s.CanSend() {
		t.Fatalf("empty inventory must veto sending")
	}
}

func TestApplyInventory_StaleGenerationDiscarded(t *testing.T) {
	s := NewSession(true)
	gen := s.Open()

	// Re-opening bumps the generation; the old fetch must be dropped.
	s.Close()
	s.Open()

	if s.ApplyInventory(gen, inventory.FetchResult{Senders: testInventory()}) {
		t.Fatalf("stale inventory response was applied")
	}
	if got := s.Snapshot().AvailableSenders; len(got) != 0 {
		t.Fatalf("stale response leaked %d senders into the session", len(got))
	}
}

func TestApplyInventory_DroppedAfterClose(t *testing.T) {
	s := NewSession(true)
	gen := s.Open()
	s.Close()

	if s.ApplyInventory(gen, inventory.FetchResult{Senders: testInventory()}) {
		t.Fatalf("inventory response applied to a closed session")
	}
}

func TestSetChannel_ResetsContentAndRefilters(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())
	s.SetBody("draft text")
	s.SelectTemplate("HX_OLD")

	templateGen, fetch := s.SetChannel(inventory.ChannelWhatsApp)
	if !fetch || templateGen == 0 {
		t.Fatalf("expected a template fetch for the whatsapp switch")
	}

	state := s.Snapshot()
	if state.MessageBody != "" || state.SelectedTemplateID != "" {
		t.Fatalf("channel switch must clear body and template, got body=%q template=%q", state.MessageBody, state.SelectedTemplateID)
	}
	if len(state.AvailableSenders) != 1 || state.AvailableSenders[0].ID != "PN2" {
		t.Fatalf("expected only the whatsapp sender, got %+v", state.AvailableSenders)
	}
	// The sms selection no longer matches; it is healed to the whatsapp
	// default within the same transition.
	if state.SelectedSender == nil || state.SelectedSender.ID != "PN2" {
		t.Fatalf("expected healed whatsapp default selection, got %+v", state.SelectedSender)
	}
	if state.SenderValidation != SenderValidationValid {
		t.Fatalf("mismatch persisted past the transition: %s", state.SenderValidation)
	}
}

func TestSetChannel_BackToSMSClearsTemplates(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	gen, _ := s.SetChannel(inventory.ChannelWhatsApp)
	if !s.ApplyTemplates(gen, []templates.Template{{SID: "HX1", Name: "Greeting"}}) {
		t.Fatalf("template response unexpectedly discarded")
	}

	if _, fetch := s.SetChannel(inventory.ChannelSMS); fetch {
		t.Fatalf("sms switch must not trigger a template fetch")
	}
	if got := s.Snapshot().AvailableTemplates; len(got) != 0 {
		t.Fatalf("expected templates cleared on sms switch, got %d", len(got))
	}
}

func TestSetChannel_NoOpOnSameOrInvalidChannel(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())
	s.SetBody("keep me")

	if _, fetch := s.SetChannel(inventory.ChannelSMS); fetch {
		t.Fatalf("same-channel switch must be a no-op")
	}
	if _, fetch := s.SetChannel(inventory.Channel("fax")); fetch {
		t.Fatalf("invalid channel must be rejected")
	}
	if got := s.Snapshot().MessageBody; got != "keep me" {
		t.Fatalf("no-op switch still reset the body, got %q", got)
	}
}

func TestApplyTemplates_GuardsChannelAndGeneration(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	staleGen, _ := s.SetChannel(inventory.ChannelWhatsApp)
	s.SetChannel(inventory.ChannelSMS)

	// Channel moved off whatsapp; the in-flight response must be dropped.
	if s.ApplyTemplates(staleGen, []templates.Template{{SID: "HX1"}}) {
		t.Fatalf("template response applied after the channel moved off whatsapp")
	}

	freshGen, _ := s.SetChannel(inventory.ChannelWhatsApp)
	if s.ApplyTemplates(staleGen, []templates.Template{{SID: "HX1"}}) {
		t.Fatalf("stale-generation template response was applied")
	}
	if !s.ApplyTemplates(freshGen, []templates.Template{{SID: "HX2"}}) {
		t.Fatalf("current-generation template response was discarded")
	}
}

func TestSelectSender_MismatchIsTransient(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	// PN2 is whatsapp-only; selecting it on the sms channel reports the
	// mismatch but must not persist it.
	outcome := s.SelectSender("PN2")
	if outcome != SenderValidationChannelMismatch {
		t.Fatalf("expected channel-mismatch outcome, got %s", outcome)
	}

	state := s.Snapshot()
	if state.SenderValidation == SenderValidationChannelMismatch {
		t.Fatalf("channel-mismatch persisted in stored state")
	}
	if state.SelectedSender == nil || state.SelectedSender.Channel != inventory.ChannelSMS {
		t.Fatalf("expected healed sms selection, got %+v", state.SelectedSender)
	}
}

func TestSelectSender_KnownAndUnknown(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	if got := s.SelectSender("PN3"); got != SenderValidationValid {
		t.Fatalf("expected valid selection of PN3, got %s", got)
	}
	if got := s.Snapshot().SelectedSender.ID; got != "PN3" {
		t.Fatalf("expected PN3 selected, got %s", got)
	}

	// Unknown IDs fall back to the channel default.
	s.SelectSender("PN_MISSING")
	state := s.Snapshot()
	if state.SelectedSender == nil || state.SelectedSender.ID != "PN1" {
		t.Fatalf("expected default re-selection after unknown ID, got %+v", state.SelectedSender)
	}
	if state.SenderValidation != SenderValidationValid {
		t.Fatalf("expected valid state after heal, got %s", state.SenderValidation)
	}
}

func TestCanSend_Matrix(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	if s.CanSend() {
		t.Fatalf("invalid destination must veto sending")
	}

	s.SetDestination("+12025550123")
	if s.CanSend() {
		t.Fatalf("empty body must veto an sms send")
	}

	s.SetBody("hello there")
	if !s.CanSend() {
		t.Fatalf("valid destination + valid sender + body must be sendable")
	}

	// WhatsApp in template mode requires a template, not a body.
	gen, _ := s.SetChannel(inventory.ChannelWhatsApp)
	s.ApplyTemplates(gen, []templates.Template{{SID: "HX1", Name: "Greeting"}})
	s.SetBody("free text")
	if s.CanSend() {
		t.Fatalf("template mode must require a template selection")
	}
	s.SelectTemplate("HX1")
	if !s.CanSend() {
		t.Fatalf("template selection must make the whatsapp state sendable")
	}
}

func TestCanSend_FalseWithoutSenders(t *testing.T) {
	s := openSessionWithInventory(t, nil)
	s.SetDestination("+12025550123")
	s.SetBody("hello")

	if s.CanSend() {
		t.Fatalf("sending must be vetoed while no senders are available")
	}
}

func TestCanSend_BodyOnWhatsAppWithoutTemplateMode(t *testing.T) {
	s := NewSession(false)
	gen := s.Open()
	s.ApplyInventory(gen, inventory.FetchResult{Senders: testInventory()})
	s.SetDestination("+12025550123")
	s.SetChannel(inventory.ChannelWhatsApp)
	s.SetBody("plain whatsapp text")

	if !s.CanSend() {
		t.Fatalf("without template mode a whatsapp body send must be eligible")
	}
}

func TestClose_DiscardsStateAndRejectsEdits(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())
	s.SetDestination("+12025550123")
	s.SetBody("hello")
	s.Close()

	if s.IsOpen() {
		t.Fatalf("expected session closed")
	}
	s.SetBody("after close")
	state := s.Snapshot()
	if state.MessageBody != "" {
		t.Fatalf("closed session accepted an edit: %q", state.MessageBody)
	}
	if state.Destination.Raw != phone.DefaultSeed {
		t.Fatalf("expected destination reset on close, got %q", state.Destination.Raw)
	}
	if _, err := s.BuildPayload(RoutingToAnyone); err == nil {
		t.Fatalf("expected payload build to fail on a closed session")
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	s := openSessionWithInventory(t, testInventory())

	snapshot := s.Snapshot()
	snapshot.AvailableSenders[0].ID = "TAMPERED"
	snapshot.SelectedSender.ID = "TAMPERED"

	fresh := s.Snapshot()
	if fresh.AvailableSenders[0].ID != "PN1" || fresh.SelectedSender.ID != "PN1" {
		t.Fatalf("snapshot mutation leaked into the session")
	}
}
