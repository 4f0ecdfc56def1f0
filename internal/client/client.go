package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guttosm/tickprobe/internal/domain/dto"
)

// maxBodyBytes caps how much of a response body is kept for error reporting.
const maxBodyBytes = 64 << 10

// StatusError is returned when the API answers with an unexpected status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client talks to the price-tracking REST API.
//
// Every call is a single blocking request; there are no retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client for baseURL (e.g. "http://localhost:8080/api").
//
// A zero timeout keeps the transport default (no client-side deadline).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient builds a Client around an existing *http.Client
// (e.g. one returned by httptest.Server.Client()).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Register creates an account and returns the response status.
//
// A non-2xx status is not an error here: callers decide whether a duplicate
// account matters. err is only set for transport failures.
func (c *Client) Register(ctx context.Context, creds dto.Credentials) (int, error) {
	status, _, err := c.do(ctx, http.MethodPost, "/auth/register", "", creds)
	return status, err
}

// Login exchanges credentials for a bearer token.
//
// Any status other than 200 returns a *StatusError carrying the body.
func (c *Client) Login(ctx context.Context, creds dto.Credentials) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", &StatusError{StatusCode: status, Body: string(body)}
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response has no token: %s", string(body))
	}
	return resp.Token, nil
}

// PostPrice submits one price tick for symbol and returns the response status.
func (c *Client) PostPrice(ctx context.Context, token, symbol string, req dto.PriceRequest) (int, error) {
	status, _, err := c.do(ctx, http.MethodPost, "/prices/"+url.PathEscape(symbol), token, req)
	return status, err
}

// CreateSymbol creates a symbol and returns the response status and body.
func (c *Client) CreateSymbol(ctx context.Context, token string, req dto.SymbolRequest) (int, string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/symbols", token, req)
	return status, string(body), err
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
