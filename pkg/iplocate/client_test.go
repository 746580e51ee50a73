package iplocate

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(url string) *client {
	return &client{
		httpClient: http.DefaultClient,
		baseURL:    url,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestLookup_Self(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success","query":"81.2.69.142","city":"London","country":"United Kingdom","lat":51.5142,"lon":-0.0931}`)
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL+"/json").Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "London", res.City)
	assert.InDelta(t, 51.5142, res.Lat, 1e-9)
	assert.InDelta(t, -0.0931, res.Lon, 1e-9)
}

func TestLookup_SpecificIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/8.8.8.8", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success","lat":37.4,"lon":-122.1}`)
	}))
	defer srv.Close()

	res, err := NewClient(WithBaseURL(srv.URL+"/json/"), WithRateLimit(100)).Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.InDelta(t, 37.4, res.Lat, 1e-9)
}

func TestLookup_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"fail status", http.StatusOK, `{"status":"fail","message":"private range"}`, "private range"},
		{"http error", http.StatusTooManyRequests, ``, "status 429"},
		{"bad json", http.StatusOK, `nope`, "parse response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Lookup(context.Background(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLookup_RateLimitContext(t *testing.T) {
	c := &client{
		httpClient: http.DefaultClient,
		baseURL:    "http://127.0.0.1:0",
		limiter:    rate.NewLimiter(rate.Limit(0.001), 1),
	}
	c.limiter.Allow() // drain the single token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
