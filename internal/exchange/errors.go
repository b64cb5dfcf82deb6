package exchange

import "weather_gateway/internal/apperr"

var (
	ErrMissingCountry          = apperr.Validation("MISSING_COUNTRY", "Country code is required")
	ErrUnknownCountry          = apperr.Validation("UNKNOWN_COUNTRY", "No currency mapping found for country code")
	ErrRateProviderUnavailable = apperr.Upstream("RATE_PROVIDER_UNAVAILABLE", "Failed to fetch exchange rate data")
)
