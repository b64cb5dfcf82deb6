package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather_gateway/internal/observability"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultTimeout = 5 * time.Second

	providerName = "openweathermap"

	// provider payloads are small; anything larger is treated as a failure
	maxBodySize = 1 << 20
)

// OpenWeatherClient provides access to the OpenWeatherMap API
type OpenWeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	metrics    *observability.Metrics
}

func NewOpenWeatherClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenWeatherClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		metrics: metrics,
	}
}

// owmWeatherResponse holds the fields read from /weather
type owmWeatherResponse struct {
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// CurrentWeather fetches live weather for city in metric units.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, city string) (*Current, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	body, status, err := c.get(ctx, "/weather", params)
	if err != nil {
		return nil, ErrWeatherUnavailable.WithCause(err)
	}
	if status == http.StatusNotFound {
		return nil, ErrCityNotFound.WithMessage("City not found: " + city)
	}
	if status != http.StatusOK {
		return nil, ErrWeatherUnavailable.WithCause(fmt.Errorf("unexpected status code: %d", status))
	}

	var parsed owmWeatherResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, ErrWeatherUnavailable.WithCause(fmt.Errorf("failed to decode response: %w", err))
	}
	if parsed.Main == nil {
		return nil, ErrWeatherUnavailable.WithCause(fmt.Errorf("response has no main.temp"))
	}

	return &Current{
		Raw:         json.RawMessage(body),
		Temperature: parsed.Main.Temp,
	}, nil
}

// AirQuality fetches the air pollution report for a coordinate.
func (c *OpenWeatherClient) AirQuality(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)

	body, status, err := c.get(ctx, "/air_pollution", params)
	if err != nil {
		return nil, ErrAirQualityUnavailable.WithCause(err)
	}
	if status != http.StatusOK {
		return nil, ErrAirQualityUnavailable.WithCause(fmt.Errorf("unexpected status code: %d", status))
	}
	if !json.Valid(body) {
		return nil, ErrAirQualityUnavailable.WithCause(fmt.Errorf("response is not valid JSON"))
	}

	return json.RawMessage(body), nil
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	start := time.Now()
	body, status, err := c.do(ctx, path, params)

	outcome := "success"
	if err != nil || status != http.StatusOK {
		outcome = "error"
	}
	c.metrics.ObserveUpstream(providerName, outcome, time.Since(start).Seconds())

	return body, status, err
}

func (c *OpenWeatherClient) do(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, including appid
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, 0, fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}
