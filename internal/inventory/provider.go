package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outbound_messaging_backend/platform/config"
	"outbound_messaging_backend/platform/logger"

	"github.com/sony/gobreaker"
)

// TokenProvider supplies the authentication token sent to the number
// provider. Injected at construction so the client never reaches into
// ambient session state.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider serves a fixed token, typically from configuration.
type StaticTokenProvider string

// Token returns the fixed token.
func (t StaticTokenProvider) Token(context.Context) (string, error) {
	return string(t), nil
}

// IncomingNumber is a plain account phone number as the provider reports it.
type IncomingNumber struct {
	SID          string               `json:"sid"`
	PhoneNumber  string               `json:"phone_number"`
	FriendlyName string               `json:"friendly_name"`
	Capabilities IncomingCapabilities `json:"capabilities"`
}

// IncomingCapabilities is the capability set of a plain number.
type IncomingCapabilities struct {
	Voice bool `json:"voice"`
	SMS   bool `json:"sms"`
	MMS   bool `json:"mms"`
}

// MessagingService is one provider messaging service.
type MessagingService struct {
	SID          string `json:"sid"`
	FriendlyName string `json:"friendly_name"`
}

// ServiceNumber is a phone number bound to a messaging service. Its
// capability set is a plain string list on the wire.
type ServiceNumber struct {
	SID          string   `json:"sid"`
	PhoneNumber  string   `json:"phone_number"`
	FriendlyName string   `json:"friendly_name"`
	Capabilities []string `json:"capabilities"`
}

// ProviderAPI is the surface of the number provider the client consumes.
type ProviderAPI interface {
	ListIncomingNumbers(ctx context.Context) ([]IncomingNumber, error)
	ListMessagingServices(ctx context.Context) ([]MessagingService, error)
	ListServiceNumbers(ctx context.Context, serviceSID string) ([]ServiceNumber, error)
}

// Provider is the HTTP implementation of ProviderAPI. All calls share one
// circuit breaker so a struggling provider is given room to recover instead
// of being hammered by every panel open.
type Provider struct {
	baseURL string
	tokens  TokenProvider
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewProvider creates a provider client from configuration.
func NewProvider(cfg config.ProviderConfig, tokens TokenProvider, log *logger.Logger) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.GetProviderBaseURL(), "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "number-provider",
			MaxRequests: 2,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
		}),
		log: log,
	}
}

// ListIncomingNumbers returns the account's plain phone numbers.
func (p *Provider) ListIncomingNumbers(ctx context.Context) ([]IncomingNumber, error) {
	var out struct {
		IncomingPhoneNumbers []IncomingNumber `json:"incoming_phone_numbers"`
	}
	if err := p.get(ctx, "/incoming-phone-numbers", &out); err != nil {
		return nil, err
	}
	return out.IncomingPhoneNumbers, nil
}

// ListMessagingServices returns the account's messaging services.
func (p *Provider) ListMessagingServices(ctx context.Context) ([]MessagingService, error) {
	var out struct {
		Services []MessagingService `json:"services"`
	}
	if err := p.get(ctx, "/messaging-services", &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

// ListServiceNumbers returns the numbers bound to one messaging service.
func (p *Provider) ListServiceNumbers(ctx context.Context, serviceSID string) ([]ServiceNumber, error) {
	var out struct {
		PhoneNumbers []ServiceNumber `json:"phone_numbers"`
	}
	if err := p.get(ctx, "/messaging-services/"+serviceSID+"/phone-numbers", &out); err != nil {
		return nil, err
	}
	return out.PhoneNumbers, nil
}

func (p *Provider) get(ctx context.Context, path string, out interface{}) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		token, err := p.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve provider token: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := p.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("provider request failed: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= http.StatusBadRequest {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode provider response: %w", err)
		}
		return nil, nil
	})
	return err
}

// Compile-time check that Provider implements ProviderAPI.
var _ ProviderAPI = (*Provider)(nil)
