package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Spreadsheet store errors
	ErrWorksheetNotFound = fmt.Errorf("worksheet not found")
	ErrNotFound          = fmt.Errorf("record not found")
	ErrDuplicateName     = fmt.Errorf("duplicate name")
	ErrRateLimited       = fmt.Errorf("rate limited")
	ErrRemoteStore       = fmt.Errorf("spreadsheet request failed")

	// Recognition errors
	ErrRecognition       = fmt.Errorf("chord recognition failed")
	ErrMalformedResponse = fmt.Errorf("malformed recognition response")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
