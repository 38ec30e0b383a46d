package client

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Probe timeouts for the supervised service's HTTP surface.
const (
	DefaultHealthTimeout = 5 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
)

// Client issues HTTP calls against the running service using its advertised
// host and port.
type Client struct {
	baseURL string
	health  *http.Client
	fetch   *http.Client
}

// New creates a client for the service at host:port. Zero timeouts take the
// defaults.
func New(host string, port int, healthTimeout, fetchTimeout time.Duration) *Client {
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Client{
		baseURL: "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
		health:  &http.Client{Timeout: healthTimeout},
		fetch:   &http.Client{Timeout: fetchTimeout},
	}
}

// BaseURL returns the advertised root URL of the service.
func (c *Client) BaseURL() string { return c.baseURL }

// DocsURL returns the interactive documentation page URL.
func (c *Client) DocsURL() string { return c.baseURL + "/docs" }

// Health fetches /health and returns the response body verbatim.
func (c *Client) Health() (string, error) {
	url := c.baseURL + "/health"
	resp, err := c.health.Get(url)
	if err != nil {
		return "", fmt.Errorf("health check %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("health check %s: read body: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("health check %s: unexpected status %s", url, resp.Status)
	}
	return string(body), nil
}

// FetchOpenAPI downloads /openapi.json and writes the raw body to outputPath.
func (c *Client) FetchOpenAPI(outputPath string) error {
	url := c.baseURL + "/openapi.json"
	resp, err := c.fetch.Get(url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	if err := os.WriteFile(outputPath, body, 0o600); err != nil {
		return fmt.Errorf("write schema to %s: %w", outputPath, err)
	}
	return nil
}
