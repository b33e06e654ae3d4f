// Package common defines shared constants and sentinel errors used across
// the service, gateway and presentation layers. Callers should use errors.Is
// to match these values; lower layers wrap them with context via %w.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Lifecycle errors.
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Gateway errors.
	ErrDeviceUnreachable = errors.New("device unreachable")
	ErrTimeout           = errors.New("device did not respond in time")
	ErrDeviceRejected    = errors.New("device rejected command")

	// Object storage errors.
	ErrResolutionFailed = errors.New("download url resolution failed")

	// Validation / request errors.
	ErrValidation = errors.New("validation error")

	// Auth errors (missing, invalid or malformed token).
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	ErrorInternal = errors.New("internal error")
)
