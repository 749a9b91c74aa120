// Package hyperbolic provides a client for the Hyperbolic GPU marketplace API.
package hyperbolic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultURL is the public marketplace endpoint.
const DefaultURL = "https://api.hyperbolic.xyz/v1/marketplace"

// Client defines the Hyperbolic marketplace operations.
type Client interface {
	// ListInstances returns every node currently listed on the marketplace.
	ListInstances(ctx context.Context) ([]Instance, error)
}

// Instance is a marketplace node.
type Instance struct {
	ID           string   `json:"id"`
	ClusterName  string   `json:"cluster_name"`
	Hardware     Hardware `json:"hardware"`
	Location     Location `json:"location"`
	GPUsTotal    *int     `json:"gpus_total"`
	GPUsReserved *int     `json:"gpus_reserved"`
	Pricing      Pricing  `json:"pricing"`
	Reserved     bool     `json:"reserved"`
}

// Hardware lists the node's accelerators.
type Hardware struct {
	GPUs []GPU `json:"gpus"`
}

// GPU describes one accelerator model.
type GPU struct {
	Model string  `json:"model"`
	RAM   float64 `json:"ram"`
}

// Location is where the node is hosted.
type Location struct {
	Region string `json:"region"`
}

// Pricing wraps the hourly price.
type Pricing struct {
	Price Amount `json:"price"`
}

// Amount is an hourly price in US cents.
type Amount struct {
	Amount *float64 `json:"amount"`
}

// Model returns the first GPU model, or "" when the node lists none.
func (i Instance) Model() string {
	if len(i.Hardware.GPUs) == 0 {
		return ""
	}
	return i.Hardware.GPUs[0].Model
}

// Option configures the Hyperbolic client.
type Option func(*httpClient)

// WithBaseURL sets a custom endpoint URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.url = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	url  string
	http *http.Client
}

// NewClient creates a new Hyperbolic client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		url:  DefaultURL,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type marketplaceRequest struct {
	Filters map[string]any `json:"filters"`
}

type marketplaceResponse struct {
	Instances json.RawMessage `json:"instances"`
}

func (c *httpClient) ListInstances(ctx context.Context) ([]Instance, error) {
	payload, err := json.Marshal(marketplaceRequest{Filters: map[string]any{}})
	if err != nil {
		return nil, eris.Wrap(err, "hyperbolic: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "hyperbolic: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hyperbolic: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hyperbolic: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("hyperbolic: unexpected status %d", resp.StatusCode)
	}

	var envelope marketplaceResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, eris.Wrap(err, "hyperbolic: decode response")
	}
	raw := bytes.TrimSpace(envelope.Instances)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, eris.New("hyperbolic: decode response: no instances array")
	}

	var out []Instance
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, eris.Wrap(err, "hyperbolic: decode instances")
	}
	return out, nil
}
