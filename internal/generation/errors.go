// Package generation drives the four-phase content pipeline: it talks to the
// Gemini generateContent API with per-phase response schemas, retries
// transient failures, normalizes payloads into typed phase results and
// orchestrates the phases in dependency order.
package generation

import "errors"

// Error taxonomy for generation-service failures. Transient conditions are
// recovered locally by the retry decorator; malformed responses are phase
// failures and never retried.
var (
	// ErrOverloaded signals the service reported itself overloaded (503).
	ErrOverloaded = errors.New("generation service overloaded")

	// ErrRateLimited signals the service rejected the call for rate limiting (429).
	ErrRateLimited = errors.New("generation service rate limited")

	// ErrMalformed signals a response that does not match the declared
	// phase shape. Not retryable: the same prompt would fail the same way.
	ErrMalformed = errors.New("malformed generation response")
)

// IsTransient reports whether an error should be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOverloaded) || errors.Is(err, ErrRateLimited)
}
