package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is a JSON-RPC 2.0 client over HTTP POST.
type Client struct {
	url        string
	commitment string
	httpClient *http.Client
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// NewClient creates a connection to a single endpoint. It satisfies
// the Factory signature.
func NewClient(url string, cfg Config) Connection {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		url:        url,
		commitment: cfg.Commitment,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Do(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	body, err := c.Do(ctx, payload)
	if err != nil {
		return err
	}

	var res response
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("malformed RPC response: %w", err)
	}

	if res.Error != nil {
		return res.Error
	}

	if result != nil {
		if err := json.Unmarshal(res.Result, result); err != nil {
			return fmt.Errorf("malformed RPC result: %w", err)
		}
	}

	return nil
}

func (c *Client) Slot(ctx context.Context) (uint64, error) {
	var params any
	if c.commitment != "" {
		params = []any{map[string]string{"commitment": c.commitment}}
	}

	var slot uint64
	if err := c.Call(ctx, "getSlot", params, &slot); err != nil {
		return 0, err
	}

	return slot, nil
}
