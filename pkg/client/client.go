// Package client is the application side of Merovian: a typed API client,
// the session/profile accessor, the realtime bridge and the form flows the
// CLI drives.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	sessionHeader     = "X-Session-Id"
	idempotencyHeader = "Idempotency-Key"
)

// Credentials identify the caller. A session id wins over tokens.
type Credentials struct {
	AccessToken  string `json:"accessToken,omitempty" mapstructure:"access_token"`
	RefreshToken string `json:"refreshToken,omitempty" mapstructure:"refresh_token"`
	SessionID    string `json:"sessionId,omitempty" mapstructure:"session_id"`
}

// Empty reports whether no credential is set.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.SessionID == ""
}

// APIError is a non 2xx answer. Message is the server text, shown as is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client talks to the Merovian HTTP API.
type Client struct {
	http    *resty.Client
	baseURL string

	mu    sync.RWMutex
	creds Credentials
}

func New(baseURL string, opts ...func(*resty.Client)) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	for _, opt := range opts {
		opt(httpClient)
	}

	return &Client{http: httpClient, baseURL: baseURL}, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&errorBody{})
	creds := c.Credentials()
	switch {
	case creds.SessionID != "":
		req.SetHeader(sessionHeader, creds.SessionID)
	case creds.AccessToken != "":
		req.SetAuthToken(creds.AccessToken)
	}
	return req
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	req := c.request(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if eb, ok := resp.Error().(*errorBody); ok && eb != nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(resp.Body()))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
