package dirble

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey      = errors.New("dirble: you must supply an API key")
	ErrInvalidID          = errors.New("dirble: you must supply a valid id")
	ErrInvalidQuery       = errors.New("dirble: you must supply a valid query")
	ErrInvalidCountryCode = errors.New("dirble: you must supply a valid country code")
	ErrInvalidPage        = errors.New("dirble: page, per_page and offset must not be negative")
)

// APIError is returned when the API answers with anything but a 200 and a JSON body.
type APIError struct {
	Path       string
	StatusCode int
	// Status is the HTTP reason phrase.
	Status string
	// Message is the API's "error" field when present, otherwise Status.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dirble %s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError for a 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
