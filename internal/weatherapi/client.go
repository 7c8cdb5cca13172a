// Package weatherapi is the outbound HTTP adapter for the OpenWeather REST
// API. It owns every network concern of a tool call: bounded timeouts,
// bounded retries with exponential backoff and jitter, Retry-After-aware
// rate-limit handling, and a circuit breaker in front of the provider.
// Payloads come back as raw JSON; interpretation belongs to the normalizer.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"weather-agent/internal/api"
)

// Endpoint identifies one of the provider's REST endpoints.
type Endpoint string

const (
	EndpointGeocode        Endpoint = "geocode"
	EndpointCurrentWeather Endpoint = "current"
	EndpointForecast       Endpoint = "forecast"
	EndpointAirQuality     Endpoint = "air_quality"
)

var endpointPaths = map[Endpoint]string{
	EndpointGeocode:        "/geo/1.0/direct",
	EndpointCurrentWeather: "/data/2.5/weather",
	EndpointForecast:       "/data/2.5/forecast",
	EndpointAirQuality:     "/data/2.5/air_pollution",
}

// Requester is the contract tools depend on. Splitting it from the concrete
// Client lets tests count and fake provider calls without a network.
type Requester interface {
	Request(ctx context.Context, endpoint Endpoint, params url.Values) (json.RawMessage, error)
}

// Config carries the process-wide, read-only provider settings. It is
// constructed once at startup and never mutated afterwards.
type Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openweathermap.org"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

// Client implements Requester against the real provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

var _ Requester = (*Client)(nil)

// NewClient builds a Client with its own timeout-bounded HTTP client and a
// circuit breaker sized for a single upstream provider.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// httpFailure carries the classified error together with any provider-supplied
// retry delay, so the retry loop can honor Retry-After on 429s.
type httpFailure struct {
	terr       *api.ToolError
	retryAfter time.Duration
}

func (f *httpFailure) Error() string { return f.terr.Error() }

// Request issues a GET against the named endpoint, retrying transient
// failures up to MaxRetries times with exponential backoff and jitter.
// Non-retryable failures and exhausted retries surface as a *api.ToolError.
func (c *Client) Request(ctx context.Context, endpoint Endpoint, params url.Values) (json.RawMessage, error) {
	path, ok := endpointPaths[endpoint]
	if !ok {
		return nil, api.Errorf(api.ErrProvider, false, "unknown endpoint %q", endpoint)
	}

	for attempt := 0; ; attempt++ {
		payload, failure := c.do(ctx, path, params)
		if failure == nil {
			return payload, nil
		}
		if !failure.terr.Retryable || attempt >= c.cfg.MaxRetries {
			return nil, failure.terr
		}

		delay := c.backoffDelay(attempt)
		if failure.retryAfter > delay {
			delay = failure.retryAfter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, api.Errorf(api.ErrNetwork, false, "request abandoned: %v", ctx.Err())
		case <-timer.C:
		}
	}
}

// do performs a single attempt through the circuit breaker.
func (c *Client) do(ctx context.Context, path string, params url.Values) (json.RawMessage, *httpFailure) {
	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("appid", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &httpFailure{terr: api.Errorf(api.ErrProvider, false, "malformed request URL: %v", err)}
	}
	req.Header.Set("User-Agent", "weather-agent/1.0")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, c.classifyTransport(ctx, doErr)
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, &httpFailure{terr: api.Errorf(api.ErrNetwork, true, "reading provider response: %v", readErr)}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if !json.Valid(body) {
				return nil, &httpFailure{terr: api.NewToolError(api.ErrProvider, "provider returned a non-JSON body", false)}
			}
			return json.RawMessage(body), nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &httpFailure{
				terr:       api.NewToolError(api.ErrRateLimited, "provider rate limit exceeded", true),
				retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			}
		case resp.StatusCode >= 500:
			return nil, &httpFailure{terr: api.Errorf(api.ErrNetwork, true, "provider server error (status %d)", resp.StatusCode)}
		default:
			return nil, &httpFailure{terr: api.Errorf(api.ErrProvider, false, "provider rejected the request (status %d): %s", resp.StatusCode, providerMessage(body))}
		}
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &httpFailure{terr: api.NewToolError(api.ErrNetwork, "provider circuit breaker is open", false)}
		}
		var failure *httpFailure
		if errors.As(err, &failure) {
			return nil, failure
		}
		return nil, &httpFailure{terr: api.Errorf(api.ErrNetwork, true, "provider request failed: %v", err)}
	}

	payload, ok := result.(json.RawMessage)
	if !ok {
		return nil, &httpFailure{terr: api.NewToolError(api.ErrProvider, "unexpected result type from circuit breaker", false)}
	}
	return payload, nil
}

// classifyTransport distinguishes caller cancellation (terminal) from
// transient transport faults (retryable).
func (c *Client) classifyTransport(ctx context.Context, err error) *httpFailure {
	if ctx.Err() != nil {
		return &httpFailure{terr: api.Errorf(api.ErrNetwork, false, "request abandoned: %v", ctx.Err())}
	}
	return &httpFailure{terr: api.Errorf(api.ErrNetwork, true, "provider unreachable: %v", err)}
}

// backoffDelay returns the exponential delay for the given attempt with
// ±20% jitter, capped at MaxBackoff.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(c.cfg.InitialBackoff) * math.Pow(2, float64(attempt)))
	if delay > c.cfg.MaxBackoff {
		delay = c.cfg.MaxBackoff
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(delay) * jitter)
}

// parseRetryAfter reads a Retry-After header in seconds form. HTTP-date form
// is rare on this provider and falls back to the regular backoff curve.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// providerMessage extracts the provider's error message when present, so
// rejections carry an actionable reason instead of just a status code.
func providerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
