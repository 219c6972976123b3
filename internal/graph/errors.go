package graph

import "fmt"

// ErrorKind classifies a failed Graph call.
type ErrorKind string

const (
	// KindUpstream indicates Graph returned a structured error or a
	// non-success status.
	KindUpstream ErrorKind = "upstream_error"

	// KindInvalidResponse indicates a success-shaped status whose body was
	// not valid JSON.
	KindInvalidResponse ErrorKind = "invalid_response"

	// KindDownloadFailed indicates a pre-authorized content download
	// returned a non-success status.
	KindDownloadFailed ErrorKind = "download_failed"

	// KindTextFetchFailed indicates a raw text fetch returned a non-success
	// status.
	KindTextFetchFailed ErrorKind = "text_fetch_failed"
)

// AuthError indicates token issuance failed (bad secret, network error, or
// a malformed issuer response). Never retried; the failed issuance is
// surfaced to the invocation that triggered it.
type AuthError struct {
	Description string
}

func (e *AuthError) Error() string {
	return "graph: authentication failed: " + e.Description
}

// APIError is a classified failure from a Graph call.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Code       string // Graph error code, "UNKNOWN" when absent
	Message    string
	RequestID  string // correlation id from the innerError block, if any
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindInvalidResponse:
		return fmt.Sprintf("graph: invalid response (status %d): %s", e.StatusCode, e.Message)
	case KindDownloadFailed:
		return fmt.Sprintf("graph: download failed with status %d", e.StatusCode)
	case KindTextFetchFailed:
		return fmt.Sprintf("graph: text fetch failed with status %d", e.StatusCode)
	default:
		msg := fmt.Sprintf("graph: request failed with status %d (%s): %s", e.StatusCode, e.Code, e.Message)
		if e.RequestID != "" {
			msg += " [request-id " + e.RequestID + "]"
		}
		return msg
	}
}

// snippet returns at most n characters of b for diagnostics.
func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
