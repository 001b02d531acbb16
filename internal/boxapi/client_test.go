package boxapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopSleep is a sleep function that returns immediately, for fast tests.
func noopSleep(_ context.Context, _ time.Duration) error {
	return nil
}

// staticTestToken is a test TokenSource that returns a fixed token.
type staticTestToken string

func (t staticTestToken) Token() (string, error) {
	return string(t), nil
}

// failingToken is a test TokenSource that always returns an error.
type failingToken struct{}

func (failingToken) Token() (string, error) {
	return "", errors.New("token error")
}

// newTestClient creates a Client pointing at the given httptest server
// with instant retry sleeps for fast tests.
func newTestClient(t *testing.T, url string) *Client {
	t.Helper()

	c := NewClient(url, http.DefaultClient, staticTestToken("test-token"), slog.Default(), "test-agent")
	c.sleepFunc = noopSleep

	return c
}

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"123"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.Do(context.Background(), http.MethodGet, "/users/me", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"123"}`, string(body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"conflict", http.StatusConflict, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("box-request-id", "test-req-id")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"something"}`))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.Do(context.Background(), http.MethodGet, "/test", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "test-req-id", apiErr.RequestID)
		})
	}
}

func TestDo_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.Do(context.Background(), http.MethodGet, "/retry", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_RetryOn429WithRetryAfter(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		if n <= 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.Do(context.Background(), http.MethodGet, "/throttle", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_MaxRetriesExhausted(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Do(context.Background(), http.MethodGet, "/fail", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)

	// 1 initial + 5 retries = 6 total attempts.
	assert.Equal(t, int32(6), calls.Load())
}

func TestDo_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Do(context.Background(), http.MethodGet, "/missing", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_AuthorizationAndUserAgentHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer my-secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, http.DefaultClient, staticTestToken("my-secret-token"), slog.Default(), "test-agent")
	client.sleepFunc = noopSleep

	resp, err := client.Do(context.Background(), http.MethodGet, "/auth", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_ExtraHeadersOnEveryAttempt(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The rep hints header must survive retries.
		assert.Equal(t, "[extracted_text]", r.Header.Get(repHintsHeader))

		n := calls.Add(1)
		if n <= 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	headers := http.Header{}
	headers.Set(repHintsHeader, "[extracted_text]")

	resp, err := client.Do(context.Background(), http.MethodGet, "/files/1", headers)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_TokenError(t *testing.T) {
	client := NewClient("http://localhost", http.DefaultClient, failingToken{}, slog.Default(), "test-agent")
	client.sleepFunc = noopSleep

	_, err := client.Do(context.Background(), http.MethodGet, "/test", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token error")
}

func TestDo_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL)
	_, err := client.Do(ctx, http.MethodGet, "/cancel", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetURL_AbsoluteURLWithAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/internal_files/abc/versions/1/representations/extracted_text/content/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	// Base URL deliberately unused — GetURL takes absolute URLs.
	client := newTestClient(t, "http://unused")

	resp, err := client.GetURL(context.Background(), srv.URL+"/internal_files/abc/versions/1/representations/extracted_text/content/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestAPIError_ErrorString(t *testing.T) {
	t.Run("with request ID", func(t *testing.T) {
		apiErr := &APIError{
			StatusCode: http.StatusNotFound,
			RequestID:  "req-123",
			Message:    "not found",
			Err:        ErrNotFound,
		}
		assert.Contains(t, apiErr.Error(), "404")
		assert.Contains(t, apiErr.Error(), "req-123")
	})

	t.Run("without request ID", func(t *testing.T) {
		apiErr := &APIError{
			StatusCode: http.StatusNotFound,
			Message:    "not found",
			Err:        ErrNotFound,
		}
		assert.Contains(t, apiErr.Error(), "404")
		assert.NotContains(t, apiErr.Error(), "request-id")
	})
}

func TestAPIError_Unwrap(t *testing.T) {
	apiErr := &APIError{
		StatusCode: http.StatusForbidden,
		Message:    "access denied",
		Err:        ErrForbidden,
	}

	assert.ErrorIs(t, apiErr, ErrForbidden)
	assert.Equal(t, ErrForbidden, errors.Unwrap(apiErr))
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code     int
		expected error
	}{
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
		{http.StatusNoContent, nil},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrThrottled},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
		{http.StatusServiceUnavailable, ErrServerError},
		{http.StatusGatewayTimeout, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyStatus(tt.code))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []int{
		http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}

	for _, code := range retryable {
		assert.True(t, isRetryable(code), "expected %d to be retryable", code)
	}

	notRetryable := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
	}

	for _, code := range notRetryable {
		assert.False(t, isRetryable(code), "expected %d to not be retryable", code)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	// Nil logger and httpClient should use defaults, not panic.
	c := NewClient("http://localhost", nil, staticTestToken("tok"), nil, "")
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.logger)
	assert.NotEmpty(t, c.userAgent)
}

func TestNewClient_NilTokenSourcePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewClient("http://localhost", nil, nil, nil, "")
	})
}

func TestTimeSleep_Completes(t *testing.T) {
	err := timeSleep(context.Background(), 10*time.Millisecond)
	assert.NoError(t, err)
}

func TestTimeSleep_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := timeSleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalcBackoff_MaxCap(t *testing.T) {
	c := NewClient("http://localhost", nil, staticTestToken("tok"), nil, "")

	// Attempt 10 produces 1s * 2^10 = 1024s which exceeds maxBackoff (60s).
	// Verify the result is capped near maxBackoff (±jitter).
	backoff := c.calcBackoff(10)
	assert.LessOrEqual(t, backoff, maxBackoff+maxBackoff/4)
	assert.GreaterOrEqual(t, backoff, maxBackoff-maxBackoff/4)
}
