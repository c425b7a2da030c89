package analysis

import "errors"

var (
	// ErrInvalidInput is returned for malformed URLs, unsupported file types
	// and empty submissions. Detected before any external call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAnalysisUnavailable covers transport failures, provider errors and
	// empty replies from the analysis service.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")

	// ErrInvalidResponseShape means the provider replied with a payload that
	// does not match the Result schema.
	ErrInvalidResponseShape = errors.New("invalid response shape")

	// ErrPersistenceDegraded marks a failed durable write of history.
	ErrPersistenceDegraded = errors.New("persistence degraded")

	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
)
