package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// maxErrorBody caps how much of a non-JSON error body is kept in an Error.
const maxErrorBody = 512

// Client calls the backend RPC surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the backend at baseURL (e.g. http://localhost:5000).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call invokes method with params and decodes the result into out.
// out may be nil when the caller only needs success or failure.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Message: "encoding params", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return transportError(method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug(log.CatRPC, "call failed", "method", method, "error", err)
		return transportError(method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(method, err)
	}
	log.Debug(log.CatRPC, "call", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejectedError(method, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	var env ResultEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return decodeError(method, err)
	}
	if len(env.Result) == 0 {
		return decodeError(method, fmt.Errorf("missing result"))
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return decodeError(method, err)
	}
	return nil
}

func rejectedError(method string, status int, body []byte) *Error {
	e := &Error{Kind: KindRejected, Method: method, StatusCode: status}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		e.Message = resp.Error
		e.Code = resp.Code
		return e
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	if text == "" {
		text = http.StatusText(status)
	}
	e.Message = text
	return e
}

// ListShortcuts returns every stored shortcut.
func (c *Client) ListShortcuts(ctx context.Context) (shortcut.Collection, error) {
	var out shortcut.Collection
	if err := c.Call(ctx, MethodListShortcuts, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// AddShortcut stores a new shortcut and returns the updated collection.
func (c *Client) AddShortcut(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	var out shortcut.Collection
	if err := c.Call(ctx, MethodAddShortcut, ShortcutRequest{Shortcut: s}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// ModifyShortcut replaces an existing shortcut and returns the updated collection.
func (c *Client) ModifyShortcut(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	var out shortcut.Collection
	if err := c.Call(ctx, MethodModifyShortcut, ShortcutRequest{Shortcut: s}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// RemoveShortcut deletes a shortcut and returns the updated collection.
func (c *Client) RemoveShortcut(ctx context.Context, id string) (shortcut.Collection, error) {
	var out shortcut.Collection
	if err := c.Call(ctx, MethodRemoveShortcut, RemoveRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// LaunchInstance asks the backend to start the shortcut's process.
// The started confirmation arrives later on the event channel.
func (c *Client) LaunchInstance(ctx context.Context, req LaunchRequest) (Ack, error) {
	var ack Ack
	err := c.Call(ctx, MethodLaunchInstance, req, &ack)
	return ack, err
}

// StopInstance requests a graceful terminate.
func (c *Client) StopInstance(ctx context.Context, shortcutID string) error {
	return c.Call(ctx, MethodStopInstance, InstanceRequest{ShortcutID: shortcutID}, nil)
}

// KillInstance requests a forceful terminate.
func (c *Client) KillInstance(ctx context.Context, shortcutID string) error {
	return c.Call(ctx, MethodKillInstance, InstanceRequest{ShortcutID: shortcutID}, nil)
}

func nonNil(c shortcut.Collection) shortcut.Collection {
	if c == nil {
		return shortcut.Collection{}
	}
	return c
}
