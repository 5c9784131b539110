package compose

import (
	"sync"

	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/internal/templates"
	"outbound_messaging_backend/platform/phone"

	"github.com/google/uuid"
)

// Session is one open compose panel. All transitions are synchronous,
// total, and run under the session mutex, so every method leaves the state
// consistent with its invariants. Fetch responses re-enter the session
// through the Apply methods, which discard anything stale via the request
// generation counters.
type Session struct {
	ID uuid.UUID

	mu    sync.Mutex
	open  bool
	state State

	// full normalized inventory, both channels; AvailableSenders is always
	// the channel filtering of this slice
	inventory []inventory.SenderNumber

	inventoryGen uint64
	templateGen  uint64
}

// NewSession creates a closed session. templateMode fixes whether WhatsApp
// submissions use content templates for the session's lifetime.
func NewSession(templateMode bool) *Session {
	s := &Session{ID: uuid.New()}
	s.state.TemplateMode = templateMode
	s.resetLocked()
	return s
}

// resetLocked restores the panel defaults. Callers hold the mutex (or own
// the session exclusively, as in NewSession).
func (s *Session) resetLocked() {
	templateMode := s.state.TemplateMode
	s.state = State{
		Destination:      NewDestination(phone.DefaultSeed),
		Channel:          inventory.ChannelSMS,
		SenderValidation: SenderValidationNone,
		TemplateMode:     templateMode,
	}
	s.inventory = nil
}

// Open resets the session to defaults and marks it open (rule 1). The
// returned generation tags the inventory fetch this open triggers; the
// response is applied only while that generation is current.
func (s *Session) Open() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.open = true
	s.inventoryGen++
	return s.inventoryGen
}

// Close discards the session state entirely (rule 8). In-flight fetch
// responses for the closed panel are dropped on arrival.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = false
	s.inventoryGen++
	s.templateGen++
	s.resetLocked()
}

// IsOpen reports whether the panel is open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// ApplyInventory applies an inventory fetch response (rules 2 and 3).
// Returns false when the response is stale or the panel has closed.
func (s *Session) ApplyInventory(gen uint64, result inventory.FetchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || gen != s.inventoryGen {
		return false
	}

	if result.Failed {
		s.inventory = nil
		s.state.AvailableSenders = nil
		s.state.InventoryError = result.Err
		return true
	}

	s.inventory = result.Senders
	s.state.InventoryError = ""
	s.state.AvailableSenders = FilterByChannel(s.inventory, s.state.Channel)

	if s.state.SelectedSender == nil && len(s.state.AvailableSenders) > 0 {
		s.state.SelectedSender = PickDefault(s.state.AvailableSenders)
		s.state.SenderValidation = ValidateSender(s.state.SelectedSender, s.state.Channel)
	}
	return true
}

// ApplyTemplates applies a template fetch response. Returns false when the
// response is stale, the panel has closed, or the channel moved off
// WhatsApp again.
func (s *Session) ApplyTemplates(gen uint64, list []templates.Template) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || gen != s.templateGen || s.state.Channel != inventory.ChannelWhatsApp {
		return false
	}

	s.state.AvailableTemplates = list
	return true
}

// SetDestination re-derives the destination on an edit (rule 4). No other
// field is affected.
func (s *Session) SetDestination(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	s.state.Destination = NewDestination(raw)
}

// SetChannel switches the message channel (rule 5). Body and template
// selection reset, eligible senders are recomputed, and a mismatched
// selection is cleared and re-defaulted in the same transition. When
// WhatsApp is newly selected the returned generation tags the template
// fetch the caller must start; otherwise templates are cleared without
// fetching.
func (s *Session) SetChannel(channel inventory.Channel) (templateGen uint64, fetchTemplates bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || !channel.Valid() || channel == s.state.Channel {
		return 0, false
	}

	s.state.Channel = channel
	s.state.MessageBody = ""
	s.state.SelectedTemplateID = ""
	s.state.AvailableSenders = FilterByChannel(s.inventory, channel)

	if ValidateSender(s.state.SelectedSender, channel) == SenderValidationChannelMismatch {
		s.healSelectionLocked()
	}

	if channel == inventory.ChannelWhatsApp {
		s.templateGen++
		return s.templateGen, true
	}

	s.state.AvailableTemplates = nil
	return 0, false
}

// SetBody assigns the free-form message body (rule 6).
func (s *Session) SetBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	s.state.MessageBody = body
}

// SelectTemplate assigns the chosen content template (rule 6).
func (s *Session) SelectTemplate(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	s.state.SelectedTemplateID = sid
}

// SelectSender chooses a sender by ID (rule 6) and returns the validation
// outcome of the transition. A selection whose channel does not match is an
// inconsistent transient state (rule 7): it is reported as the outcome but
// healed before the method returns, so the stored state is always valid or
// none.
func (s *Session) SelectSender(id string) SenderValidation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return SenderValidationNone
	}

	for _, sender := range s.state.AvailableSenders {
		if sender.ID == id {
			chosen := sender
			s.state.SelectedSender = &chosen
			s.state.SenderValidation = ValidateSender(&chosen, s.state.Channel)
			return s.state.SenderValidation
		}
	}

	// The UI may still hold the other channel's list. Classify against the
	// full inventory, then heal.
	for _, sender := range s.inventory {
		if sender.ID == id {
			outcome := ValidateSender(&sender, s.state.Channel)
			s.healSelectionLocked()
			return outcome
		}
	}

	// Unknown ID: clear the selection and let the default re-selection run.
	s.healSelectionLocked()
	return s.state.SenderValidation
}

// healSelectionLocked clears the selection and re-runs default selection
// against the currently filtered list. The post-heal state is valid (a
// channel-matching sender was available) or none (the list is empty);
// channel-mismatch never persists.
func (s *Session) healSelectionLocked() {
	s.state.SelectedSender = PickDefault(s.state.AvailableSenders)
	s.state.SenderValidation = ValidateSender(s.state.SelectedSender, s.state.Channel)
}

// CanSend reports submit eligibility for the current state.
func (s *Session) CanSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open && s.state.CanSend()
}

// Snapshot returns a copy of the current state for read-only use.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	snapshot := s.state
	if s.state.SelectedSender != nil {
		selected := *s.state.SelectedSender
		snapshot.SelectedSender = &selected
	}
	snapshot.AvailableSenders = append([]inventory.SenderNumber(nil), s.state.AvailableSenders...)
	snapshot.AvailableTemplates = append([]templates.Template(nil), s.state.AvailableTemplates...)
	return snapshot
}

// BuildPayload snapshots the state and builds the send payload atomically
// with the eligibility check, so no input event can race between the two.
func (s *Session) BuildPayload(intent RoutingIntent) (SendPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return SendPayload{}, errSessionClosed
	}
	return BuildPayload(s.snapshotLocked(), intent)
}
