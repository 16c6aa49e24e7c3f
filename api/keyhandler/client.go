package keyhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/ssh-key-server/api"
	"github.com/ruteri/ssh-key-server/interfaces"
)

// APIError is returned by Client for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("key server returned %d: %s", e.StatusCode, e.Message)
}

// Is maps the status code back onto the interfaces error kinds, so
// errors.Is(err, interfaces.ErrNotFound) works on the client side too.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == interfaces.ErrInvalidInput
	case http.StatusNotFound:
		return target == interfaces.ErrNotFound
	case http.StatusConflict:
		return target == interfaces.ErrConflict
	}
	return false
}

// Client talks to a key server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the key server at baseURL
// (e.g. "http://localhost:8080"). The optional timeout defaults to 30 seconds.
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// ListHosts returns all hosts that have at least one key.
func (c *Client) ListHosts(ctx context.Context) ([]string, error) {
	var resp api.HostsResponse
	if err := c.getJSON(ctx, &resp); err != nil {
		return nil, err
	}
	return resp.Hosts, nil
}

// ListUsers returns the users with keys on host.
func (c *Client) ListUsers(ctx context.Context, host string) ([]string, error) {
	var resp api.UsersResponse
	if err := c.getJSON(ctx, &resp, host); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ListKeyTypes returns the key types stored for user on host.
func (c *Client) ListKeyTypes(ctx context.Context, host, user string) ([]string, error) {
	var resp api.KeyTypesResponse
	if err := c.getJSON(ctx, &resp, host, user); err != nil {
		return nil, err
	}
	return resp.KeyTypes, nil
}

// GetKey returns the stored key bytes.
func (c *Client) GetKey(ctx context.Context, host, user, keyType string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.keyURL(host, user, keyType), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read key: %w", err)
	}
	return body, nil
}

// CreateKey uploads a new key and returns the type the server detected.
func (c *Client) CreateKey(ctx context.Context, host, user string, key []byte) (interfaces.KeyType, error) {
	return c.upload(ctx, http.MethodPost, host, user, key)
}

// ReplaceKey overwrites an existing key and returns its type.
func (c *Client) ReplaceKey(ctx context.Context, host, user string, key []byte) (interfaces.KeyType, error) {
	return c.upload(ctx, http.MethodPut, host, user, key)
}

// DeleteKey removes a key.
func (c *Client) DeleteKey(ctx context.Context, host, user, keyType string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.keyURL(host, user, keyType), nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) upload(ctx context.Context, method, host, user string, key []byte) (interfaces.KeyType, error) {
	resp, err := c.do(ctx, method, c.keyURL(host, user), bytes.NewReader(key), "text/plain")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return interfaces.KeyType(resp.Header.Get(KeyTypeHeader)), nil
}

func (c *Client) getJSON(ctx context.Context, out any, segments ...string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.keyURL(segments...), nil)
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse listing: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.send(req)
}

// send executes req and converts non-2xx responses into *APIError. The
// caller owns the body of a successful response.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxKeySize))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

func (c *Client) keyURL(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/key")
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
