// Package e2b provides a client for the E2B sandbox provisioning API. A
// sandbox is an isolated execution environment that exposes the configured
// MCP servers over an authenticated HTTP endpoint.
package e2b

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the E2B API.
const defaultBaseURL = "https://api.e2b.app"

// Client defines the sandbox lifecycle operations.
type Client interface {
	// Create provisions a sandbox and returns its live handle.
	Create(ctx context.Context, req CreateRequest) (*Sandbox, error)
	// Kill tears the sandbox down. Sandboxes also expire on their own
	// after the configured timeout, but callers should release them
	// explicitly as soon as they are done.
	Kill(ctx context.Context, sandboxID string) error
}

// CreateRequest is the body for POST /sandboxes.
type CreateRequest struct {
	// MCP maps server names to their configuration, e.g. {"exa": {...}}.
	MCP map[string]MCPServer `json:"mcp,omitempty"`
	// TimeoutSecs is the sandbox lifetime in seconds.
	TimeoutSecs int `json:"timeout,omitempty"`
}

// MCPServer configures one MCP server inside the sandbox.
type MCPServer struct {
	APIKey string `json:"apiKey"`
}

// Sandbox is a live sandbox handle.
type Sandbox struct {
	SandboxID string `json:"sandboxID"`
	MCPURL    string `json:"mcpUrl"`
	MCPToken  string `json:"mcpToken"`
}

// MCPHTTPBase returns the base URL for the sandbox's HTTP tool endpoints.
// The provisioning API reports the URL with an /mcp suffix, but the HTTP
// tools live at the root.
func (s *Sandbox) MCPHTTPBase() string {
	base := strings.TrimRight(s.MCPURL, "/")
	return strings.TrimSuffix(base, "/mcp")
}

// APIError is returned when E2B responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("e2b: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new E2B client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Create(ctx context.Context, req CreateRequest) (*Sandbox, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "e2b: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sandboxes", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "e2b: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "e2b: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "e2b: read response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var sandbox Sandbox
	if err := json.Unmarshal(respBody, &sandbox); err != nil {
		return nil, eris.Wrap(err, "e2b: unmarshal response")
	}
	if sandbox.SandboxID == "" {
		return nil, eris.New("e2b: response missing sandbox id")
	}

	return &sandbox, nil
}

func (c *httpClient) Kill(ctx context.Context, sandboxID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/sandboxes/"+sandboxID, nil)
	if err != nil {
		return eris.Wrap(err, "e2b: create request")
	}
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "e2b: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil
}
