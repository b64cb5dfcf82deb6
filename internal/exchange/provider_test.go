package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key/latest/KZT", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success","base_code":"KZT","conversion_rates":{"KZT":1,"USD":0.0021,"EUR":0.00195}}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "test-key", time.Second, nil)

	rates, err := provider.Latest(context.Background(), "KZT")

	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.True(t, rates["USD"].Equal(decimal.RequireFromString("0.0021")))
	assert.Equal(t, "0.00195", rates["EUR"].String())
}

func TestHTTPProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `internal details`},
		{name: "unauthorized", status: http.StatusForbidden, body: `{"result":"error","error-type":"invalid-key"}`},
		{name: "error result", status: http.StatusOK, body: `{"result":"error","error-type":"unsupported-code"}`},
		{name: "malformed body", status: http.StatusOK, body: `{"result":`},
		{name: "no rates", status: http.StatusOK, body: `{"result":"success","conversion_rates":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			rates, err := NewHTTPProvider(server.URL, "k", time.Second, nil).Latest(context.Background(), "USD")

			assert.Nil(t, rates)
			assert.Error(t, err)
		})
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPProvider(server.URL, "k", 50*time.Millisecond, nil).Latest(context.Background(), "USD")

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewHTTPProvider_Defaults(t *testing.T) {
	provider := NewHTTPProvider("", "k", 0, nil)

	assert.Equal(t, DefaultBaseURL, provider.baseURL)
	assert.Equal(t, DefaultTimeout, provider.httpClient.Timeout)
}
