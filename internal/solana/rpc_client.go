package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// LatencyObserver receives the wall time of every RPC call by method.
type LatencyObserver func(method string, d time.Duration)

// HTTPClient implements Simulator using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	observe     LatencyObserver
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithLatencyObserver registers a callback invoked after every RPC call.
func WithLatencyObserver(fn LatencyObserver) ClientOption {
	return func(c *HTTPClient) {
		c.observe = fn
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured RPC URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-request HTTP timeout. Zero means no limit.
func (c *HTTPClient) Timeout() time.Duration {
	return c.client.Timeout
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// post sends one JSON-RPC request with retries and exponential backoff and
// returns the raw response body. Only transport failures and HTTP 429 are
// retried; any other response is handed back to the caller.
func (c *HTTPClient) post(ctx context.Context, method string, params []interface{}) ([]byte, int, error) {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	if c.observe != nil {
		start := time.Now()
		defer func() { c.observe(method, time.Since(start)) }()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, fmt.Errorf("%w: %s: %w", ErrNetwork, method, ctx.Err())
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, 0, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		return respBody, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("%w: %s after %d attempt(s): %w", ErrNetwork, method, c.maxRetries+1, lastErr)
}

// CallRaw performs a JSON-RPC call and returns the complete response
// envelope unmodified. The body is returned even for non-2xx statuses as
// long as it is valid JSON.
func (c *HTTPClient) CallRaw(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	body, status, err := c.post(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s (status %d): %q", ErrParse, method, status, truncate(body, 256))
	}
	return json.RawMessage(body), nil
}

// call performs a JSON-RPC call and decodes the result field.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, status, err := c.post(ctx, method, params)
	if err != nil {
		return err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%w: %s (status %d): %v", ErrParse, method, status, err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", status, truncate(body, 256))
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// SimulateTransaction simulates the given instructions without committing them.
func (c *HTTPClient) SimulateTransaction(ctx context.Context, params SimulateTransactionParams, cfg SimulateConfig) (json.RawMessage, error) {
	if params.Signers == nil {
		params.Signers = []string{}
	}
	return c.CallRaw(ctx, "simulateTransaction", []interface{}{params, cfg})
}

// GetHealth retrieves the node health status.
func (c *HTTPClient) GetHealth(ctx context.Context) (string, error) {
	var result string
	if err := c.call(ctx, "getHealth", nil, &result); err != nil {
		return "", err
	}
	return result, nil
}

// GetVersion retrieves the node software version.
func (c *HTTPClient) GetVersion(ctx context.Context) (*Version, error) {
	var result Version
	if err := c.call(ctx, "getVersion", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
