package weatherapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-agent/internal/api"
)

// newTestClient points a Client at a local server with near-zero backoff so
// retry tests finish quickly.
func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		APIKey:         "test-key",
		BaseURL:        serverURL,
		Timeout:        2 * time.Second,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestRequestSuccess(t *testing.T) {
	var calls atomic.Int32
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	params := url.Values{}
	params.Set("q", "Dhaka")
	params.Set("limit", "1")

	payload, err := client.Request(context.Background(), EndpointGeocode, params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(payload))

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "test-key", gotQuery.Get("appid"))
	assert.Equal(t, "Dhaka", gotQuery.Get("q"))
	assert.Equal(t, "1", gotQuery.Get("limit"))
}

func TestRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	payload, err := client.Request(context.Background(), EndpointCurrentWeather, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(payload))
	assert.Equal(t, int32(3), calls.Load(), "two failures plus the success")
}

func TestRequestExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Request(context.Background(), EndpointForecast, nil)

	terr := api.AsToolError(err)
	require.NotNil(t, terr)
	assert.Equal(t, api.ErrNetwork, terr.Kind)
	assert.True(t, terr.Retryable)
	assert.Equal(t, int32(4), calls.Load(), "initial attempt plus MaxRetries")
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Request(context.Background(), EndpointCurrentWeather, nil)

	terr := api.AsToolError(err)
	require.NotNil(t, terr)
	assert.Equal(t, api.ErrProvider, terr.Kind)
	assert.False(t, terr.Retryable)
	assert.Contains(t, terr.Message, "city not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequestHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	payload, err := client.Request(context.Background(), EndpointAirQuality, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(payload))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRequestRateLimitExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Request(context.Background(), EndpointCurrentWeather, nil)

	terr := api.AsToolError(err)
	require.NotNil(t, terr)
	assert.Equal(t, api.ErrRateLimited, terr.Kind)
	assert.True(t, terr.Retryable)
}

func TestRequestRejectsNonJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Request(context.Background(), EndpointGeocode, nil)

	terr := api.AsToolError(err)
	require.NotNil(t, terr)
	assert.Equal(t, api.ErrProvider, terr.Kind)
	assert.False(t, terr.Retryable)
}

func TestRequestStopsOnContextCancellation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// MaxRetries is high but a long backoff means the first retry wait is
	// interrupted by the deadline, not exhausted.
	client := NewClient(Config{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		MaxRetries:     10,
		InitialBackoff: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Request(ctx, EndpointCurrentWeather, nil)
	terr := api.AsToolError(err)
	require.NotNil(t, terr)
	assert.Equal(t, api.ErrNetwork, terr.Kind)
	assert.False(t, terr.Retryable)
	assert.Equal(t, int32(1), calls.Load(), "no retry after cancellation")
}

func TestRequestUnknownEndpoint(t *testing.T) {
	client := newTestClient("http://unused")
	_, err := client.Request(context.Background(), Endpoint("bogus"), nil)

	terr := api.AsToolError(err)
	require.NotNil(t, terr)
	assert.Equal(t, api.ErrProvider, terr.Kind)
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	client := NewClient(Config{
		APIKey:         "k",
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
	})

	for attempt := 0; attempt < 6; attempt++ {
		d := client.backoffDelay(attempt)
		// Jitter keeps delays within ±20% of the capped exponential value.
		assert.LessOrEqual(t, d, time.Duration(float64(400*time.Millisecond)*1.2))
		assert.GreaterOrEqual(t, d, time.Duration(float64(100*time.Millisecond)*0.8))
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, 2*time.Second, parseRetryAfter("2"))
	assert.Equal(t, 1500*time.Millisecond, parseRetryAfter("1.5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
}
