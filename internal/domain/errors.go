package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Engines wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")

	ErrInvalidCode  = errors.New("invalid verification code")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidScope = errors.New("invalid token scope")
	ErrUnknownUser  = errors.New("unknown user")

	// ErrSecretUnavailable is fatal: the signing key could not be generated.
	ErrSecretUnavailable = errors.New("signing secret unavailable")
)
