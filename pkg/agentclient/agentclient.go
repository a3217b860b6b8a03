package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 15 * time.Second

	probePath = "/probe"

	// Agent responses are small JSON documents; anything larger is a
	// misbehaving endpoint.
	maxResponseBytes = 1 << 20
)

// Client dispatches probe requests to a remote probe agent over HTTP.
type Client interface {
	Probe(ctx context.Context, agentURL, targetURL string) (*Result, error)
}

type Config struct {
	Timeout time.Duration
}

type probeRequest struct {
	URL string `json:"url"`
}

// Result is the agent wire format for a completed probe.
type Result struct {
	IsUp      bool   `json:"is_up"`
	LatencyMS *int64 `json:"latency_ms"`
	Region    string `json:"region"`
}

type client struct {
	http *http.Client
}

func New(cfg *Config) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &client{
		http: &http.Client{Timeout: timeout},
	}
}

func (c *client) Probe(ctx context.Context, agentURL, targetURL string) (*Result, error) {
	payload, err := json.Marshal(probeRequest{URL: targetURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal probe request: %w", err)
	}

	endpoint := strings.TrimRight(agentURL, "/") + probePath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}

	return &result, nil
}
