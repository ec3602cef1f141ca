// Package maps is a small Google Maps web service client: geocoding, directions and places.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/geocache"
	"go-quickstart/internal/logger"

	"go.uber.org/zap"
)

const (
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
)

// APIError is any failed call, prefixed the way callers report it to clients.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return "Google Maps API error: " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	apiKey  string
	session *http.Client
	cache   geocache.Cache
	log     *zap.Logger
	backoff time.Duration
}

func NewClient(cfg config.MapsConfig, cache geocache.Cache, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cache == nil {
		cache = geocache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		session: &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
		backoff: initialBackoff,
	}
}

func (c *Client) newRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimLeft(endpoint, "/")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries 429, 5xx and network failures with exponential backoff until ctx ends.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}
		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		c.log.Debug("retrying maps request", zap.Int("attempt", attempt), zap.Error(err))
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

// errorMessage pulls error_message out of a Google error body when there is one.
func errorMessage(err error) string {
	var he *httpStatusError
	if errors.As(err, &he) {
		var body struct {
			ErrorMessage string `json:"error_message"`
		}
		if json.Unmarshal([]byte(he.Body), &body) == nil && body.ErrorMessage != "" {
			return body.ErrorMessage
		}
	}
	return err.Error()
}

// Call performs GET {baseURL}/{endpoint} with params plus the API key and decodes JSON into out.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values, out interface{}) (err error) {
	defer logger.Time(ctx, c.log, "maps."+endpoint)(&err)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint, params)
	})
	if err != nil {
		return &APIError{Message: errorMessage(err), Err: err}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Message: "decode response: " + err.Error(), Err: err}
	}
	return nil
}
