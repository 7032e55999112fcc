// Package common defines shared sentinel errors and small helpers used
// across the server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository / storage-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorStorage  = errors.New("storage failure")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAdminRequired = errors.New("admin required")

	// Validation errors (malformed or out-of-enum input).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Account errors.
	ErrorEmailTaken = errors.New("email already registered")

	// Entitlement / progress state conflicts.
	ErrorNotEntitled    = errors.New("track not in entitlements")
	ErrorProfileMissing = errors.New("profile missing")
	ErrorNotActiveTrack = errors.New("not the active track")
	ErrorWrongDay       = errors.New("wrong day")

	// Access-code redemption errors, reported in validation order:
	// existence, active flag, expiry, usage cap.
	ErrorCodeDeactivated = errors.New("access code deactivated")
	ErrorCodeExpired     = errors.New("access code expired")
	ErrorCodeExhausted   = errors.New("access code exhausted")

	// Payment verification errors.
	ErrorMetadataMismatch    = errors.New("payment metadata mismatch")
	ErrorPaymentNotCompleted = errors.New("payment not completed")
)
