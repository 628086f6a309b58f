// Package common defines shared constants and sentinel errors used across
// the server and client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// ErrorDataMissing reports a metadata row whose payload blob is absent.
	ErrorDataMissing = errors.New("data missing")

	// Validation errors.
	ErrorInvalidPayload     = errors.New("invalid payload structure")
	ErrorIntegrityMismatch  = errors.New("hmac mismatch")
	ErrorUnsupportedContent = errors.New("invalid content type")

	// ErrorRateLimited is returned when a client exceeds its publish budget.
	ErrorRateLimited = errors.New("rate limit exceeded")
)
