// Package templates implements the content-template listing client used for
// WhatsApp template mode. The provider is a black box; any failure degrades
// to an empty template list.
package templates

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
)

// Template is one pre-approved content template descriptor.
type Template struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

// Client fetches content templates from the template provider.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a template client from configuration.
func NewClient(cfg config.TemplatesConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.GetTemplatesBaseURL(), "/"),
		token:   cfg.GetTemplatesAuthToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// FetchTemplates returns the available content templates. Failures are
// logged and yield an empty slice; template mode simply has nothing to
// offer until a retry succeeds.
func (c *Client) FetchTemplates(ctx context.Context) []Template {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/content-templates", nil)
	if err != nil {
		c.log.CollaboratorFailure("content-templates", err)
		return nil
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.CollaboratorFailure("content-templates", err)
		return nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.CollaboratorFailure("content-templates",
			fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
		return nil
	}

	var templates []Template
	if err := json.NewDecoder(resp.Body).Decode(&templates); err != nil {
		c.log.CollaboratorFailure("content-templates", err)
		return nil
	}
	return templates
}
