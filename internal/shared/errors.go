package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrNotConfigured = fmt.Errorf("spotify credentials not configured")
	ErrInvalidInput  = fmt.Errorf("invalid input")

	// Authentication errors
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// API and polling errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPollInFlight       = fmt.Errorf("poll already in flight")
	ErrPollThrottled      = fmt.Errorf("poll rate limit exceeded")

	// Rendering errors
	ErrTemplateParse = fmt.Errorf("template parsing failed")
	ErrTitleTooLong  = fmt.Errorf("rendered title exceeds maximum length")
)
