package gemini

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingAPIKey     = errors.New("no API key configured")
	ErrMalformedResponse = errors.New("model response missing generated text")
	ErrNoJSONArray       = errors.New("no JSON array found in model output")
	ErrNoJSONObject      = errors.New("no JSON object found in model output")
)

// Provider status strings carried in the error envelope
const (
	statusPermissionDenied  = "PERMISSION_DENIED"
	statusResourceExhausted = "RESOURCE_EXHAUSTED"
)

// APIError is a structured error returned by the generative-language endpoint
type APIError struct {
	Model      string
	HTTPStatus int
	Status     string // provider status, e.g. RESOURCE_EXHAUSTED; empty for generic failures
	Message    string
}

func (e *APIError) Error() string {
	switch e.Status {
	case statusPermissionDenied:
		return fmt.Sprintf("invalid or insufficient API key (model %s): %s", e.Model, e.Message)
	case statusResourceExhausted:
		return fmt.Sprintf("API quota exceeded (model %s): %s", e.Model, e.Message)
	default:
		return fmt.Sprintf("API error (model %s): %s", e.Model, e.Message)
	}
}

// QuotaExceeded reports whether this error signals an exhausted quota
func (e *APIError) QuotaExceeded() bool {
	return e.Status == statusResourceExhausted
}

// InvalidKey reports whether this error signals a bad or insufficient key
func (e *APIError) InvalidKey() bool {
	return e.Status == statusPermissionDenied
}

// ModelAttempt records one failed trial in the fallback chain
type ModelAttempt struct {
	Model string
	Err   error
}

// AllModelsFailedError aggregates the failure of every model in the chain,
// keeping each model's individual reason rather than a bare "all failed".
type AllModelsFailedError struct {
	Attempts []ModelAttempt
}

func (e *AllModelsFailedError) Error() string {
	var b strings.Builder
	b.WriteString("all models failed: ")
	for i, a := range e.Attempts {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %v", a.Model, a.Err)
	}
	return b.String()
}

// IsQuotaExceeded reports whether err, anywhere in its chain or in any
// fallback attempt, signals an exhausted quota.
func IsQuotaExceeded(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.QuotaExceeded() {
		return true
	}
	var agg *AllModelsFailedError
	if errors.As(err, &agg) {
		for _, a := range agg.Attempts {
			if IsQuotaExceeded(a.Err) {
				return true
			}
		}
	}
	return false
}

// IsInvalidKey reports whether err signals a rejected API key
func IsInvalidKey(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.InvalidKey() {
		return true
	}
	var agg *AllModelsFailedError
	if errors.As(err, &agg) {
		for _, a := range agg.Attempts {
			if IsInvalidKey(a.Err) {
				return true
			}
		}
	}
	return false
}
