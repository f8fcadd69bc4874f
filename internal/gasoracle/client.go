// Package gasoracle talks to a premium streaming gas-data provider.
package gasoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mev-sentinel/internal/domain"
)

// DefaultTimeout bounds one estimate request.
const DefaultTimeout = 3 * time.Second

// Estimates is the provider's current view of the network.
type Estimates struct {
	BlockNumber  int64
	AvgBlockTime float64 // seconds
	Gas          domain.GasPercentiles
	Pending      []PendingEntry
}

// PendingEntry is one provider-observed pending transaction.
type PendingEntry struct {
	Hash     string  `json:"hash"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	GasPrice float64 `json:"gasPrice"` // gwei
	Value    float64 `json:"value"`    // ether
	Input    string  `json:"input"`
}

// Client is an HTTP client for the provider's estimates endpoint.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a provider client. An empty apiKey leaves the client
// unconfigured; Configured reports this and callers skip the source.
func NewClient(endpoint, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != ""
}

// estimatesResponse is the provider wire format.
type estimatesResponse struct {
	BlockNumber  int64          `json:"blockNumber"`
	AvgBlockTime float64        `json:"avgBlockTime"`
	P25          float64        `json:"p25"`
	P50          float64        `json:"p50"`
	P75          float64        `json:"p75"`
	P90          float64        `json:"p90"`
	Pending      []PendingEntry `json:"pending"`
}

// Estimates fetches the provider's current gas percentiles and, where the
// plan includes it, a list of observed pending transactions.
func (c *Client) Estimates(ctx context.Context) (*Estimates, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("gas oracle not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var wire estimatesResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	est := &Estimates{
		BlockNumber:  wire.BlockNumber,
		AvgBlockTime: wire.AvgBlockTime,
		Gas: domain.GasPercentiles{
			P25: wire.P25,
			P50: wire.P50,
			P75: wire.P75,
			P90: wire.P90,
		},
		Pending: wire.Pending,
	}

	if !est.Gas.Ordered() || est.Gas.P90 <= 0 {
		return nil, fmt.Errorf("provider returned malformed percentiles %+v", est.Gas)
	}

	return est, nil
}
