package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWeather(t *testing.T) {
	payload := `{"name":"Almaty","main":{"temp":21.5,"humidity":40},"weather":[{"main":"Clear"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Almaty", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "owm-key", r.URL.Query().Get("appid"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewOpenWeatherClient(server.URL, "owm-key", time.Second, nil)

	current, err := client.CurrentWeather(context.Background(), "Almaty")

	require.NoError(t, err)
	assert.Equal(t, 21.5, current.Temperature)
	assert.JSONEq(t, payload, string(current.Raw))
}

func TestCurrentWeather_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unknown city", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`, wantErr: ErrCityNotFound},
		{name: "bad key", status: http.StatusUnauthorized, body: `{"cod":401}`, wantErr: ErrWeatherUnavailable},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: ErrWeatherUnavailable},
		{name: "malformed body", status: http.StatusOK, body: `{"main":`, wantErr: ErrWeatherUnavailable},
		{name: "no main block", status: http.StatusOK, body: `{"name":"X"}`, wantErr: ErrWeatherUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			current, err := NewOpenWeatherClient(server.URL, "k", time.Second, nil).CurrentWeather(context.Background(), "X")

			assert.Nil(t, current)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCurrentWeather_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, err := NewOpenWeatherClient(server.URL, "secret-key", 50*time.Millisecond, nil).CurrentWeather(context.Background(), "X")

	assert.ErrorIs(t, err, ErrWeatherUnavailable)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestAirQuality(t *testing.T) {
	payload := `{"coord":{"lon":76.9,"lat":43.2},"list":[{"main":{"aqi":2}}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air_pollution", r.URL.Path)
		assert.Equal(t, "43.2", r.URL.Query().Get("lat"))
		assert.Equal(t, "76.9", r.URL.Query().Get("lon"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	report, err := NewOpenWeatherClient(server.URL, "k", time.Second, nil).AirQuality(context.Background(), 43.2, 76.9)

	require.NoError(t, err)
	assert.JSONEq(t, payload, string(report))
}

func TestAirQuality_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewOpenWeatherClient(server.URL, "k", time.Second, nil).AirQuality(context.Background(), 1, 1)

	assert.ErrorIs(t, err, ErrAirQualityUnavailable)
}
