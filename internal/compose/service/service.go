// Package service orchestrates compose sessions: it owns the session
// registry, drives the asynchronous collaborator fetches back into the
// state machine, and hands valid payloads to the send action.
package service

import (
	"context"
	"sync"

	"outbound_messaging_backend/internal/compose"
	"outbound_messaging_backend/internal/compose/transport"
	"outbound_messaging_backend/internal/events"
	"outbound_messaging_backend/internal/inventory"
	"outbound_messaging_backend/internal/templates"
	"outbound_messaging_backend/platform/apperr"
	"outbound_messaging_backend/platform/logger"

	"github.com/google/uuid"
)

// InventoryFetcher fetches the normalized sender inventory.
type InventoryFetcher interface {
	FetchSenders(ctx context.Context) inventory.FetchResult
}

// TemplateFetcher fetches the content templates for WhatsApp template mode.
type TemplateFetcher interface {
	FetchTemplates(ctx context.Context) []templates.Template
}

// Sender is the external send action. It accepts a payload and resolves or
// rejects; retries are user-initiated only.
type Sender interface {
	Send(ctx context.Context, payload compose.SendPayload) error
}

// AvailabilityFunc reports whether the current agent may send at all. When
// it returns false the machine holds its reset state but stays inert.
type AvailabilityFunc func(ctx context.Context) bool

// Service implements the compose operations behind the HTTP handlers.
type Service struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*compose.Session

	inventory    InventoryFetcher
	templates    TemplateFetcher
	sender       Sender
	bus          events.Bus
	log          *logger.Logger
	available    AvailabilityFunc
	templateMode bool
}

// New creates a compose service.
func New(inv InventoryFetcher, tmpl TemplateFetcher, sender Sender, bus events.Bus, log *logger.Logger, available AvailabilityFunc, templateMode bool) *Service {
	if available == nil {
		available = func(context.Context) bool { return true }
	}
	return &Service{
		sessions:     make(map[uuid.UUID]*compose.Session),
		inventory:    inv,
		templates:    tmpl,
		sender:       sender,
		bus:          bus,
		log:          log,
		available:    available,
		templateMode: templateMode,
	}
}

// OpenSession creates a session and opens its panel (rule 1), which kicks
// off the inventory fetch. An unavailable agent gets the session in its
// reset, inert form with no fetch started.
func (s *Service) OpenSession(ctx context.Context) (transport.SessionResponse, error) {
	session := compose.NewSession(s.templateMode)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	available := s.available(ctx)
	if available {
		gen := session.Open()
		s.startInventoryFetch(session, gen)
	}

	s.log.WithSessionID(session.ID.String()).Info("compose session opened", "available", available)
	return transport.SessionResponse{
		SessionID: session.ID.String(),
		State:     s.stateResponse(session, available, ""),
	}, nil
}

// GetSession returns the current state snapshot.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (transport.StateResponse, error) {
	session, err := s.lookup(id)
	if err != nil {
		return transport.StateResponse{}, err
	}
	return s.stateResponse(session, s.available(ctx), ""), nil
}

// ApplyEvent applies one user input event (rules 4-7) and returns the new
// state. Events against an inert (unavailable or unopened) session are
// dropped; the machine never errors on input, it only recomputes.
func (s *Service) ApplyEvent(ctx context.Context, id uuid.UUID, req transport.EventRequest) (transport.StateResponse, error) {
	session, err := s.lookup(id)
	if err != nil {
		return transport.StateResponse{}, err
	}

	available := s.available(ctx)
	if !available || !session.IsOpen() {
		return s.stateResponse(session, available, ""), nil
	}

	lastValidation := ""
	switch req.Type {
	case "destination":
		session.SetDestination(req.Value)
	case "channel":
		if gen, fetch := session.SetChannel(inventory.Channel(req.Value)); fetch {
			s.startTemplateFetch(session, gen)
		}
	case "body":
		session.SetBody(req.Value)
	case "template":
		session.SelectTemplate(req.Value)
	case "sender":
		if outcome := session.SelectSender(req.Value); outcome == compose.SenderValidationChannelMismatch {
			lastValidation = string(outcome)
		}
	default:
		return transport.StateResponse{}, apperr.Validation("unknown event type").WithOp("compose.ApplyEvent")
	}

	return s.stateResponse(session, available, lastValidation), nil
}

// Send builds the payload from the current state and hands it to the send
// action. On success the panel closes (rule 8); on failure the state stays
// intact so the user can retry without re-entering the message.
func (s *Service) Send(ctx context.Context, id uuid.UUID, req transport.SendRequest) (transport.SendResponse, error) {
	session, err := s.lookup(id)
	if err != nil {
		return transport.SendResponse{}, err
	}

	if !s.available(ctx) {
		return transport.SendResponse{}, apperr.Forbidden("agent is not available to send messages")
	}

	payload, err := session.BuildPayload(normalizeIntent(req.Intent))
	if err != nil {
		return transport.SendResponse{}, err
	}

	log := s.log.WithSessionID(session.ID.String())
	if err := s.sender.Send(ctx, payload); err != nil {
		reason := err.Error()
		if reason == "" {
			reason = "failed to send message"
		}
		log.DispatchOutcome(session.ID.String(), string(payload.MessageType), false, reason)
		s.bus.Publish(ctx, events.OutboundSendFailed{
			BaseEvent:          events.NewBaseEvent(),
			SessionID:          session.ID,
			Destination:        payload.Destination,
			Channel:            string(payload.MessageType),
			CallerID:           payload.CallerID,
			ContentTemplateSID: payload.ContentTemplateSID,
			OpenChat:           payload.OpenChat,
			RouteToMe:          payload.RouteToMe,
			Reason:             reason,
		})
		return transport.SendResponse{}, apperr.Wrap(apperr.KindUnavailable, reason, err)
	}

	log.DispatchOutcome(session.ID.String(), string(payload.MessageType), true, "")
	s.bus.Publish(ctx, events.OutboundMessageSent{
		BaseEvent:          events.NewBaseEvent(),
		SessionID:          session.ID,
		Destination:        payload.Destination,
		Channel:            string(payload.MessageType),
		CallerID:           payload.CallerID,
		ContentTemplateSID: payload.ContentTemplateSID,
		OpenChat:           payload.OpenChat,
		RouteToMe:          payload.RouteToMe,
	})

	session.Close()
	return transport.SendResponse{ClosePanel: true}, nil
}

// CloseSession closes the panel and discards the session (rule 8).
func (s *Service) CloseSession(_ context.Context, id uuid.UUID) error {
	session, err := s.lookup(id)
	if err != nil {
		return err
	}

	session.Close()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.log.WithSessionID(id.String()).Info("compose session closed")
	return nil
}

// ListNumbers serves the inventory listing shape consumed by the UI.
func (s *Service) ListNumbers(ctx context.Context) transport.NumberListResponse {
	result := s.inventory.FetchSenders(ctx)
	if result.Failed {
		return transport.NumberListResponse{
			Numbers: []inventory.SenderNumber{},
			Error:   result.Err,
		}
	}

	numbers := result.Senders
	if numbers == nil {
		numbers = []inventory.SenderNumber{}
	}
	return transport.NumberListResponse{
		Success: true,
		Numbers: numbers,
		Count:   len(numbers),
	}
}

// ListTemplates serves the content-template descriptors, empty on failure.
func (s *Service) ListTemplates(ctx context.Context) []templates.Template {
	list := s.templates.FetchTemplates(ctx)
	if list == nil {
		list = []templates.Template{}
	}
	return list
}

func (s *Service) lookup(id uuid.UUID) (*compose.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("compose session not found")
	}
	return session, nil
}

// startInventoryFetch runs the fetch detached from the request lifetime and
// re-enters the session through the generation-checked apply. The session
// drops the result if the panel closed or reopened meanwhile.
func (s *Service) startInventoryFetch(session *compose.Session, gen uint64) {
	go func() {
		result := s.inventory.FetchSenders(context.Background())
		if !session.ApplyInventory(gen, result) {
			s.log.WithSessionID(session.ID.String()).Debug("stale inventory response discarded")
		}
	}()
}

func (s *Service) startTemplateFetch(session *compose.Session, gen uint64) {
	go func() {
		list := s.templates.FetchTemplates(context.Background())
		if !session.ApplyTemplates(gen, list) {
			s.log.WithSessionID(session.ID.String()).Debug("stale template response discarded")
		}
	}()
}

func (s *Service) stateResponse(session *compose.Session, available bool, lastValidation string) transport.StateResponse {
	state := session.Snapshot()

	var selected *inventory.SenderNumber
	if state.SelectedSender != nil {
		sender := *state.SelectedSender
		selected = &sender
	}

	senders := state.AvailableSenders
	if senders == nil {
		senders = []inventory.SenderNumber{}
	}
	templateList := state.AvailableTemplates
	if templateList == nil {
		templateList = []templates.Template{}
	}

	return transport.StateResponse{
		Destination: transport.DestinationView{
			Raw:       state.Destination.Raw,
			Formatted: state.Destination.Formatted,
			Possible:  state.Destination.Classification.Possible,
			Valid:     state.Destination.Classification.Valid,
		},
		Channel:             string(state.Channel),
		MessageBody:         state.MessageBody,
		SelectedTemplateSID: state.SelectedTemplateID,
		SelectedSender:      selected,
		SenderValidation:    string(state.SenderValidation),
		AvailableSenders:    senders,
		AvailableTemplates:  templateList,
		InventoryError:      state.InventoryError,
		TemplateMode:        state.TemplateMode,
		CanSend:             available && session.CanSend(),
		Available:           available,
		LastValidation:      lastValidation,
	}
}

// normalizeIntent accepts both the canonical intent names and the menu-item
// identifiers the original panel emitted. Anything else passes through and
// degrades to route-to-anyone in the payload builder.
func normalizeIntent(raw string) compose.RoutingIntent {
	switch raw {
	case string(compose.RoutingOpenForMe), "send-message-open-chat":
		return compose.RoutingOpenForMe
	case string(compose.RoutingToMe), "send-message-route-to-me":
		return compose.RoutingToMe
	case string(compose.RoutingToAnyone), "send-message-route-to-anyone":
		return compose.RoutingToAnyone
	default:
		return compose.RoutingIntent(raw)
	}
}
