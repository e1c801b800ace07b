package client

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

	"github.com/naveenspark/roam/pkg/domain"
)

// DefaultTimeout bounds every request when no other timeout is configured.
const DefaultTimeout = 5 * time.Second

// Client is the roam API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a new API client. token may be empty for unauthenticated calls.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Authenticate exchanges credentials for a session.
func (c *Client) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	var sess domain.Session
	if err := c.post(ctx, "/auth/login", creds, &sess); err != nil {
		return nil, fmt.Errorf("client.Authenticate: %w", err)
	}
	return &sess, nil
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	var sess domain.Session
	if err := c.post(ctx, "/auth/register", reg, &sess); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &sess, nil
}

// GetMe returns the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// ListPlaces fetches the place catalog with an optional category filter.
func (c *Client) ListPlaces(ctx context.Context, category string) ([]domain.Place, error) {
	path := "/api/places"
	if category != "" && category != domain.CategoryAll {
		params := url.Values{}
		params.Set("category", category)
		path += "?" + params.Encode()
	}

	var places []domain.Place
	if err := c.get(ctx, path, &places); err != nil {
		return nil, fmt.Errorf("client.ListPlaces: %w", err)
	}
	return places, nil
}

// GetPlace fetches a single place by ID.
func (c *Client) GetPlace(ctx context.Context, id string) (*domain.Place, error) {
	var p domain.Place
	if err := c.get(ctx, "/api/places/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetPlace: %w", err)
	}
	return &p, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
