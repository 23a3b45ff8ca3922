// Package backend is the REST client for the TicketLive backend service,
// which owns all durable business state. Each method maps to exactly one
// endpoint and makes a single attempt; failures surface immediately as a
// *BackendError carrying the backend's message string.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client talks to the TicketLive backend REST API.
type Client struct {
	baseURL    string
	cookieName string
	client     *http.Client
}

// Config configures the backend client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	SessionCookie string
}

// NewClient creates a backend API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cookieName := cfg.SessionCookie
	if cookieName == "" {
		cookieName = "token"
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		cookieName: cookieName,
		client:     &http.Client{Timeout: timeout},
	}
}

// BackendError is a non-2xx response from the backend. Message holds the
// backend's own error string, which the coupon and password-reset flows
// pattern-match to pick a user-facing message.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
}

// errorBody is the backend's standard error envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do issues one request. token is the visitor's backend session cookie
// value; empty means anonymous. When out is non-nil the 2xx body is
// decoded into it.
func (c *Client) do(ctx context.Context, method, path string, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}

// doMultipart issues one multipart upload request.
func (c *Client) doMultipart(ctx context.Context, method, path, token, field, filename string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{StatusCode: resp.StatusCode}
	}

	var body errorBody
	if err := json.Unmarshal(bodyBytes, &body); err == nil {
		if body.Message != "" {
			return &BackendError{StatusCode: resp.StatusCode, Message: body.Message}
		}
		if body.Error != "" {
			return &BackendError{StatusCode: resp.StatusCode, Message: body.Error}
		}
	}
	return &BackendError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(bodyBytes))}
}

// sessionToken extracts the backend's auth cookie from a sign-in response.
func (c *Client) sessionToken(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName {
			return cookie.Value
		}
	}
	return ""
}
