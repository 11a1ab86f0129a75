package models

import (
	"errors"
	"fmt"
)

// Domain specific errors shared by the itinerary, search and auth packages.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrUpstream        = errors.New("upstream request failed")
	ErrNotConfigured   = errors.New("server not configured")

	ErrMissingFields    = errors.New("Missing fields")
	ErrDuplicateDay     = errors.New("That day number already exists for this itinerary.")
	ErrActivityRequired = errors.New("Activity is required.")
	ErrMissingDay       = errors.New("Missing day id.")
)

// UpstreamError reports a non-success status from a third-party API.
type UpstreamError struct {
	Op     string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed (%d)", e.Op, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// ValidationError is a rejected client input whose message is shown to the user as is.
type ValidationError struct {
	Msg string
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConfigError is a missing server setting. Its message is safe to show.
type ConfigError struct {
	Msg string
}

func NewConfigError(msg string) error {
	return &ConfigError{Msg: msg}
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return ErrNotConfigured
}
