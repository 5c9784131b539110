// Package dispatch hands finished send payloads to the external send action
// and records the outcomes.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outbound_messaging_backend/internal/compose"
	"outbound_messaging_backend/platform/config"
	"outbound_messaging_backend/platform/logger"

	"github.com/sony/gobreaker"
)

// actionResponse is the send action's reply shape. Error text, when
// present, is surfaced to the user verbatim.
type actionResponse struct {
	Success bool   `json:"success"`
	SID     string `json:"sid"`
	Error   string `json:"error"`
}

// ActionClient posts payloads to the send-action endpoint. The action is a
// black box: it resolves with an opaque success or rejects with an error
// description.
type ActionClient struct {
	url     string
	token   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewActionClient creates a send-action client from configuration.
func NewActionClient(cfg config.DispatchConfig, log *logger.Logger) *ActionClient {
	return &ActionClient{
		url:   cfg.GetSendActionURL(),
		token: cfg.GetSendActionAuthToken(),
		http:  &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "send-action",
			MaxRequests: 2,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
		}),
		log: log,
	}
}

// Send posts the payload and interprets the outcome. The returned error
// carries a short human-readable description drawn from the action's reply
// or a fixed fallback.
func (c *ActionClient) Send(ctx context.Context, payload compose.SendPayload) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.New("message service is temporarily unavailable")
		}
		return err
	}
	return nil
}

func (c *ActionClient) post(ctx context.Context, payload compose.SendPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.CollaboratorFailure("send-action", err)
		return errors.New("failed to reach the message service")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var reply actionResponse
	_ = json.Unmarshal(data, &reply)

	if resp.StatusCode >= http.StatusBadRequest || (!reply.Success && reply.Error != "") {
		reason := strings.TrimSpace(reply.Error)
		if reason == "" {
			reason = fmt.Sprintf("message service returned %d", resp.StatusCode)
		}
		c.log.CollaboratorFailure("send-action", errors.New(reason))
		return errors.New(reason)
	}

	return nil
}
