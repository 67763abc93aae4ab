// Package upstream provides the HTTP client for the central server that
// receives facility requisitions.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"lmis/internal/domain/sync"
	"lmis/pkg/logger"
)

// Compile-time check.
var _ sync.Transport = (*Client)(nil)

// Config holds upstream connection settings.
type Config struct {
	// BaseURL of the central server, e.g. "https://central.example.org"
	BaseURL string

	// Token authenticates the facility against the central server
	Token string

	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL, token string) Config {
	return Config{
		BaseURL: baseURL,
		Token:   token,
		Timeout: 30 * time.Second,
	}
}

// Client submits requisition payloads to the central server.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates an upstream client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SubmitRequisition implements sync.Transport. The payload is the wire
// encoding produced by the sync codec and is sent as-is.
func (c *Client) SubmitRequisition(ctx context.Context, payload []byte) error {
	url := c.cfg.BaseURL + "/rest-api/requisitions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit requisition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn(ctx, "upstream rejected requisition",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return nil
}
