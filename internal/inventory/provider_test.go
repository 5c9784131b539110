package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"outbound_messaging_backend/platform/logger"
)

type providerConfig string

func (c providerConfig) GetProviderBaseURL() string   { return string(c) }
func (c providerConfig) GetProviderAuthToken() string { return "test-token" }

func TestProvider_ListIncomingNumbers(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"incoming_phone_numbers":[
			{"sid":"PN1","phone_number":"+15551230000","friendly_name":"Support","capabilities":{"voice":true,"sms":true,"mms":false}}
		]}`))
	}))
	defer server.Close()

	provider := NewProvider(providerConfig(server.URL), StaticTokenProvider("test-token"), logger.New("test"))

	numbers, err := provider.ListIncomingNumbers(context.Background())
	if err != nil {
		t.Fatalf("ListIncomingNumbers: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("wrong authorization header %q", gotAuth)
	}
	if gotPath != "/incoming-phone-numbers" {
		t.Fatalf("wrong path %q", gotPath)
	}
	if len(numbers) != 1 || numbers[0].SID != "PN1" || !numbers[0].Capabilities.SMS {
		t.Fatalf("unexpected decode %+v", numbers)
	}
}

func TestProvider_ListServiceNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messaging-services/MG1/phone-numbers" {
			t.Errorf("wrong path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"phone_numbers":[
			{"sid":"PN2","phone_number":"+15551230001","friendly_name":"","capabilities":["sms","whatsapp"]}
		]}`))
	}))
	defer server.Close()

	provider := NewProvider(providerConfig(server.URL), StaticTokenProvider("test-token"), logger.New("test"))

	numbers, err := provider.ListServiceNumbers(context.Background(), "MG1")
	if err != nil {
		t.Fatalf("ListServiceNumbers: %v", err)
	}
	if len(numbers) != 1 || numbers[0].SID != "PN2" {
		t.Fatalf("unexpected decode %+v", numbers)
	}
	if !hasWhatsAppCapability(numbers[0].Capabilities) {
		t.Fatalf("expected whatsapp capability in %v", numbers[0].Capabilities)
	}
}

func TestProvider_ErrorStatusSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewProvider(providerConfig(server.URL), StaticTokenProvider("test-token"), logger.New("test"))

	_, err := provider.ListMessagingServices(context.Background())
	if err == nil {
		t.Fatalf("expected an error for a 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected the status in the error, got %v", err)
	}
}

func TestProvider_TrailingSlashBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "//") {
			t.Errorf("double slash in path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"services":[]}`))
	}))
	defer server.Close()

	provider := NewProvider(providerConfig(server.URL+"/"), StaticTokenProvider(""), logger.New("test"))

	if _, err := provider.ListMessagingServices(context.Background()); err != nil {
		t.Fatalf("ListMessagingServices: %v", err)
	}
}
