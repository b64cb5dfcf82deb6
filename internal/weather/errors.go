package weather

import "weather_gateway/internal/apperr"

var (
	ErrMissingCity        = apperr.Validation("MISSING_CITY", "City name is required")
	ErrMissingCoordinates = apperr.Validation("MISSING_COORDINATES", "Latitude and longitude are required")
	ErrInvalidCoordinates = apperr.Validation("INVALID_COORDINATES", "Latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrMissingLogFields   = apperr.Validation("MISSING_FIELDS", "City and temperature are required")
	ErrMissingTemperature = apperr.Validation("MISSING_TEMPERATURE", "Temperature is required for update")
	ErrInvalidLogID       = apperr.Validation("INVALID_LOG_ID", "Weather log id must be a positive integer")

	ErrCityNotFound  = apperr.NotFound("CITY_NOT_FOUND", "City not found")
	ErrLogNotFound   = apperr.NotFound("WEATHER_LOG_NOT_FOUND", "Weather log not found")
	ErrNoLogsForCity = apperr.NotFound("NO_WEATHER_LOGS", "No weather logs found for this city")

	ErrWeatherUnavailable    = apperr.Upstream("WEATHER_PROVIDER_UNAVAILABLE", "Failed to fetch weather data")
	ErrAirQualityUnavailable = apperr.Upstream("AIR_QUALITY_PROVIDER_UNAVAILABLE", "Failed to fetch air quality data")
)
