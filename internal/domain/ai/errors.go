package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

var (
	// ErrCredential means the provider refused the configured API key.
	ErrCredential = errors.New("ai credential rejected")
	// ErrTransport covers network failures, timeouts and cancelled calls.
	ErrTransport = errors.New("ai transport failure")
	// ErrServiceRejected means the provider answered but refused the request
	// (bad image, content policy, server-side error).
	ErrServiceRejected = errors.New("ai service rejected request")
	// ErrMalformedResponse means the reply carried no usable text.
	ErrMalformedResponse = errors.New("ai response malformed")
)

// KindOf returns a short stable label for err, used in API responses and logs.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrCredential):
		return "credential"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrServiceRejected):
		return "service_rejected"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ClassifyStatus maps a provider HTTP status to one of the error kinds above.
func ClassifyStatus(code int) error {
	switch {
	case code == 401 || code == 403:
		return ErrCredential
	case code == 429:
		return ErrQuotaExceeded
	case code >= 400:
		return ErrServiceRejected
	default:
		return ErrTransport
	}
}
