package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrUpstream     = errors.New("upstream failure")
	ErrRender       = errors.New("render failure")
)

// OTP verification failures. Each one also matches ErrUnauthorized.
var (
	ErrOTPNotFound = fmt.Errorf("otp not found: %w", ErrUnauthorized)
	ErrOTPExpired  = fmt.Errorf("otp expired: %w", ErrUnauthorized)
	ErrOTPMismatch = fmt.Errorf("otp mismatch: %w", ErrUnauthorized)
)

// ErrInvalidPassword is a failed shared-password login.
var ErrInvalidPassword = fmt.Errorf("invalid password: %w", ErrUnauthorized)

// ErrDelivery is returned when an email could not be handed to the transport.
var ErrDelivery = fmt.Errorf("delivery failed: %w", ErrUpstream)
