package model

import (
	"errors"
	"fmt"
)

// MinRecentCount and MaxRecentCount bound the number of images a single
// "last N" request may return.
const (
	MinRecentCount = 1
	MaxRecentCount = 10
)

// ErrNotAuthenticated is returned when the user has no stored access token.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrEmptyResult marks operations that need at least one image but got none.
var ErrEmptyResult = errors.New("empty result")

var (
	// ErrNoImages is returned when the user's account holds no images.
	ErrNoImages = fmt.Errorf("%w: no images found", ErrEmptyResult)

	// ErrNoDownloads is returned when every selected image failed to download.
	ErrNoDownloads = fmt.Errorf("%w: no images could be retrieved", ErrEmptyResult)
)

// ValidationError reports user input rejected before any I/O happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateRecentCount checks that count lies within [MinRecentCount, MaxRecentCount].
func ValidateRecentCount(count int) error {
	if count < MinRecentCount || count > MaxRecentCount {
		return &ValidationError{
			Field:   "count",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinRecentCount, MaxRecentCount, count),
		}
	}
	return nil
}

// TransportError is a failed exchange with a remote HTTP endpoint: either a
// non-success status (StatusCode and Body set) or a network failure (Err set).
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
