// Package common defines shared constants, sentinel errors and small helpers
// used by both the SecureDrive server and client. Callers match errors with
// errors.Is.
package common

import "errors"

var (
	// Request shape errors: missing fields, bad lengths, malformed Base64.
	ErrorInvalidInput = errors.New("invalid input")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Ownership and session errors.
	ErrorForbidden    = errors.New("forbidden")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrAuthFailure is returned when an AEAD tag check fails. A wrong
	// password and tampered ciphertext both end up here.
	ErrAuthFailure = errors.New("authentication failed")

	ErrorInternal = errors.New("internal error")
)
