// internal/api/client.go
//
// The lifecycle client: every call the TUI makes against the QuickFixHub
// backend funnels through here. The client owns no request state; it holds
// the cookie jar carrying the session credential and a circuit breaker so
// a dead backend fails fast instead of hanging every view.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the client settings loaded from the config file.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-request deadline.
	Timeout time.Duration `yaml:"timeout"`
	// BreakerThreshold opens the circuit after this many consecutive
	// transport failures.
	BreakerThreshold uint32 `yaml:"breaker_threshold"`
	// BreakerCooldown is how long the circuit stays open before a probe.
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:5000/api",
		Timeout:          10 * time.Second,
		BreakerThreshold: 3,
		BreakerCooldown:  15 * time.Second,
	}
}

// Client talks HTTP/JSON to the QuickFixHub backend.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds a client for the given backend. When httpClient is nil
// a default one with the configured timeout is created. A cookie jar is
// attached if the client has none, so the session cookie set by login is
// replayed on every authenticated call automatically.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", cfg.BaseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api: cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = DefaultConfig().BreakerThreshold
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = DefaultConfig().BreakerCooldown
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "quickfixhub-api",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		breaker: breaker,
	}, nil
}

// response is the raw outcome of one round trip, before semantic mapping.
type response struct {
	status int
	body   []byte
}

// do performs one JSON round trip. Transport failures, 5xx answers, and an
// open circuit all come back wrapped in ErrNetwork; other non-2xx codes map
// through statusError. A nil out skips body decoding.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.roundTrip(ctx, method, path, in)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status >= 300 {
		return statusError(resp.status)
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// roundTrip sends the request through the circuit breaker. Only failures
// that say nothing about the payload (transport errors and 5xx) count
// toward opening the circuit; semantic rejections pass through untouched.
func (c *Client) roundTrip(ctx context.Context, method, path string, in any) (response, error) {
	var payload io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return response{}, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(body)
	}
	res, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
		if err != nil {
			return nil, err
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return response{status: resp.StatusCode, body: body},
				fmt.Errorf("backend returned status %d", resp.StatusCode)
		}
		return response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return response{}, fmt.Errorf("%w: circuit open", ErrNetwork)
		}
		if resp, ok := res.(response); ok && resp.status >= 500 {
			return response{}, fmt.Errorf("%w: backend returned status %d", ErrNetwork, resp.status)
		}
		return response{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return res.(response), nil
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	if c == nil || c.http == nil {
		return
	}
	c.http.CloseIdleConnections()
}
