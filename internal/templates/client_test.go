package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"outbound_messaging_backend/platform/logger"
)

type templatesConfig string

func (c templatesConfig) GetTemplatesBaseURL() string   { return string(c) }
func (c templatesConfig) GetTemplatesAuthToken() string { return "tmpl-token" }

func TestFetchTemplates_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/content-templates" {
			t.Errorf("wrong path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"sid":"HX1","name":"Greeting"},{"sid":"HX2","name":"Follow-up"}]`))
	}))
	defer server.Close()

	client := NewClient(templatesConfig(server.URL), logger.New("test"))

	list := client.FetchTemplates(context.Background())
	if gotAuth != "Bearer tmpl-token" {
		t.Fatalf("wrong authorization header %q", gotAuth)
	}
	if len(list) != 2 || list[0].SID != "HX1" || list[1].Name != "Follow-up" {
		t.Fatalf("unexpected templates %+v", list)
	}
}

func TestFetchTemplates_ErrorStatusDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(templatesConfig(server.URL), logger.New("test"))

	if list := client.FetchTemplates(context.Background()); list != nil {
		t.Fatalf("expected nil on error status, got %+v", list)
	}
}

func TestFetchTemplates_UnreachableDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(templatesConfig(server.URL), logger.New("test"))

	if list := client.FetchTemplates(context.Background()); list != nil {
		t.Fatalf("expected nil when unreachable, got %+v", list)
	}
}

func TestFetchTemplates_MalformedBodyDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	client := NewClient(templatesConfig(server.URL), logger.New("test"))

	if list := client.FetchTemplates(context.Background()); list != nil {
		t.Fatalf("expected nil on malformed body, got %+v", list)
	}
}
