// Package sdk provides the raw HTTP client for the Moment API.
package sdk

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

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the paper-trading environment
	DefaultBaseURL = "https://paper.moment-api.com"

	maxLoggedBody = 500
)

// Client represents the Moment SDK client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Moment SDK client. A trailing slash on baseURL is ignored.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "moment-sdk").Logger(),
	}
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasCredentials reports whether an API key is configured
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// get performs an authenticated GET and returns the raw JSON body
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// post performs an authenticated POST with a JSON body
func (c *Client) post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil, payload)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (json.RawMessage, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("url", requestURL).Msg("Request failed")
		return nil, &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := truncate(string(respBody))
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Str("status", resp.Status).
			Str("response_body", bodyStr).
			Str("url", requestURL).
			Msg("API returned non-2xx status")
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       errorDetail(respBody),
		}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(respBody) {
		bodyStr := truncate(string(respBody))
		c.log.Error().
			Str("response_body", bodyStr).
			Str("url", requestURL).
			Msg("Failed to parse JSON response")
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       bodyStr,
			Err:        fmt.Errorf("malformed JSON response"),
		}
	}

	return json.RawMessage(respBody), nil
}

// errorDetail prefers the "error" (or "detail") field of a JSON error body
func errorDetail(body []byte) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, key := range []string{"error", "detail", "message"} {
			if msg, ok := parsed[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return truncate(string(body))
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "..."
	}
	return s
}
