// Package runpod provides a client for the RunPod public GPU types API.
package runpod

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultURL is the public GPU types endpoint.
const DefaultURL = "https://api.runpod.io/v2/gpu-types"

// Client defines the RunPod API operations.
type Client interface {
	// ListGPUTypes returns every GPU type the API advertises.
	ListGPUTypes(ctx context.Context) ([]GPUType, error)
}

// GPUType is a single GPU offering. Price tiers are optional.
type GPUType struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	MemoryInGb  *float64    `json:"memoryInGb"`
	LowestPrice *Price      `json:"lowestPrice"`
	SecureCloud *CloudPrice `json:"secureCloud"`
}

// CloudPrice wraps the secure cloud tier.
type CloudPrice struct {
	LowestPrice *Price `json:"lowestPrice"`
}

// Price holds an hourly on-demand price in USD.
type Price struct {
	OnDemandPrice *float64 `json:"onDemandPrice"`
}

// CommunityPrice returns the community cloud on-demand price, if any.
func (g GPUType) CommunityPrice() (float64, bool) {
	if g.LowestPrice == nil || g.LowestPrice.OnDemandPrice == nil {
		return 0, false
	}
	return *g.LowestPrice.OnDemandPrice, true
}

// SecurePrice returns the secure cloud on-demand price, if any.
func (g GPUType) SecurePrice() (float64, bool) {
	if g.SecureCloud == nil || g.SecureCloud.LowestPrice == nil || g.SecureCloud.LowestPrice.OnDemandPrice == nil {
		return 0, false
	}
	return *g.SecureCloud.LowestPrice.OnDemandPrice, true
}

// Option configures the RunPod client.
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

// NewClient creates a new RunPod client.
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

func (c *httpClient) ListGPUTypes(ctx context.Context) ([]GPUType, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "runpod: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "runpod: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "runpod: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("runpod: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var out []GPUType
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "runpod: decode response: expected a JSON array")
	}
	if out == nil {
		return nil, eris.New("runpod: decode response: expected a JSON array, got null")
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
