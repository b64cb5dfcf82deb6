package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather_gateway/internal/observability"

	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://v6.exchangerate-api.com/v6"
	DefaultTimeout = 5 * time.Second

	providerName = "exchangerate-api"
)

// HTTPProvider fetches rates from ExchangeRate-API v6.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	metrics    *observability.Metrics
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics) *HTTPProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPProvider{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		metrics: metrics,
	}
}

// latestResponse is the raw ExchangeRate-API response for /latest
type latestResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	BaseCode        string                     `json:"base_code"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// Latest returns the conversion rates for base.
func (p *HTTPProvider) Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	start := time.Now()
	rates, err := p.latest(ctx, base)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.ObserveUpstream(providerName, outcome, time.Since(start).Seconds())

	return rates, err
}

func (p *HTTPProvider) latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	reqURL := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, url.PathEscape(p.apiKey), url.PathEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, including the API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("latest %s request failed: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused; the body is never surfaced
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Result != "success" {
		return nil, fmt.Errorf("provider returned result %q (%s)", result.Result, result.ErrorType)
	}
	if len(result.ConversionRates) == 0 {
		return nil, fmt.Errorf("provider returned no rates for %s", base)
	}

	return result.ConversionRates, nil
}
