package sahmk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrRateLimited is returned on HTTP 429. The X-RateLimit-Remaining
	// response header indicates the remaining budget.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API rejects the key (401/403).
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrNotFound is returned when the requested symbol or resource
	// does not exist (404).
	ErrNotFound = errors.New("resource not found")

	// ErrPlanRequired is returned when the endpoint needs a higher
	// subscription plan than the key's.
	ErrPlanRequired = errors.New("endpoint requires a higher plan")

	// ErrTooManySymbols is returned before any request is made when a batch
	// call exceeds the per-request symbol limit.
	ErrTooManySymbols = errors.New("too many symbols for a single request")

	// ErrNotConnected is returned when a streaming operation is attempted on
	// a closed session.
	ErrNotConnected = errors.New("stream session not connected")

	// ErrSubscribeFailed is returned when the subscribe handshake is rejected.
	ErrSubscribeFailed = errors.New("failed to establish subscription")
)

// APIError is the typed failure for non-2xx API responses. It carries the
// HTTP status and the provider-supplied error code and message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string

	sentinel error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("sahmk: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap returns the sentinel matching the failure class, if any, so callers
// can use errors.Is(err, sahmk.ErrRateLimited) and friends.
func (e *APIError) Unwrap() error {
	return e.sentinel
}

// errorBody is the provider's error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newAPIError maps a non-200 response to an APIError. 429 is special-cased as
// the rate-limit signal; other statuses carry whatever error code and message
// the provider supplied, falling back to the raw body for non-JSON responses.
func newAPIError(resp *http.Response) *APIError {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT",
			Message:    "rate limit exceeded, check X-RateLimit-Remaining header",
			sentinel:   ErrRateLimited,
		}
	}

	code := "UNKNOWN"
	message := ""
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		var envelope errorBody
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Code != "" {
			code = envelope.Error.Code
			message = envelope.Error.Message
		} else {
			message = strings.TrimSpace(string(body))
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    message,
		sentinel:   sentinelFor(resp.StatusCode, code),
	}
}

func sentinelFor(status int, code string) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrInvalidAPIKey
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusPaymentRequired:
		return ErrPlanRequired
	case status == http.StatusForbidden:
		if strings.HasPrefix(code, "PLAN") {
			return ErrPlanRequired
		}
		return ErrInvalidAPIKey
	default:
		return nil
	}
}
