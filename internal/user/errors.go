package user

import "weather_gateway/internal/apperr"

var (
	ErrDuplicateUsername  = apperr.Conflict("DUPLICATE_USERNAME", "Username already taken")
	ErrInvalidCredentials = apperr.Auth("INVALID_CREDENTIALS", "Invalid username or password")
	ErrUserNotFound       = apperr.NotFound("USER_NOT_FOUND", "User not found")
	ErrMissingFields      = apperr.Validation("MISSING_FIELDS", "Username and password are required")
)
