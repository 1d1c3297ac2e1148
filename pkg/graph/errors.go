package graph

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	// ErrMissingAccessToken is returned before any network activity when a
	// POST or DELETE call is attempted without an access token.
	ErrMissingAccessToken = errors.New("access token required for this operation")

	// ErrNoSuchPage is returned by Page.Next/Page.Previous when the page
	// carries no cursor in that direction.
	ErrNoSuchPage = errors.New("no page available in that direction")

	// ErrInvalidArguments is returned for malformed call construction, such
	// as a bad media argument count.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrEmptyBatch is returned when executing a batch with no registered calls.
	ErrEmptyBatch = errors.New("batch contains no calls")

	// ErrBatchConsumed is returned when a batch is executed more than once.
	ErrBatchConsumed = errors.New("batch already executed")

	// ErrNotACollection is returned when a connection endpoint yields a
	// body without an array-shaped data field.
	ErrNotACollection = errors.New("response body is not a collection")

	ErrTransportRequired = errors.New("transport is required")
	ErrConfigRequired    = errors.New("config is required")
)

// APIError represents an error payload returned by the graph service. The
// original decoded payload is preserved in Raw for diagnostics.
type APIError struct {
	Message string
	Type    string
	Code    int
	Subcode int
	TraceID string
	Raw     map[string]interface{}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s (code: %d)", e.Type, e.Message, e.Code)
	}

	return fmt.Sprintf("graph API error: %s (code: %d)", e.Message, e.Code)
}

// TransportError represents a network, decoding, or cancellation failure at
// the transport boundary.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAPIError checks if the error carries a remote API error payload.
func IsAPIError(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr)
}

// IsOAuthError checks if the error is an OAuth-class API error, which the
// service uses for expired or invalid tokens.
func IsOAuthError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Type == "OAuthException"
	}

	return false
}

// IsTransportError checks if the error originated at the transport boundary.
func IsTransportError(err error) bool {
	terr := &TransportError{}

	return errors.As(err, &terr)
}

// IsMissingToken checks if the error is the local missing-credential guard.
func IsMissingToken(err error) bool {
	return errors.Is(err, ErrMissingAccessToken)
}

// IsNoSuchPage checks if the error means a paging cursor was absent.
func IsNoSuchPage(err error) bool {
	return errors.Is(err, ErrNoSuchPage)
}

// classifyResponse inspects a decoded body and returns the typed error it
// carries, or nil. Only a JSON object containing an "error" key classifies as
// an error; arrays, scalars, and other objects are success shapes. This runs
// before page wrapping because error bodies are never array-shaped.
func classifyResponse(body interface{}) *APIError {
	object, ok := body.(map[string]interface{})
	if !ok {
		return nil
	}

	payload, ok := object["error"]
	if !ok {
		return nil
	}

	apiErr := &APIError{Message: "unknown error"}

	details, ok := payload.(map[string]interface{})
	if !ok {
		// Error payloads are usually objects, but preserve whatever the
		// service sent.
		apiErr.Raw = map[string]interface{}{"error": payload}
		apiErr.Message = fmt.Sprintf("%v", payload)

		return apiErr
	}

	apiErr.Raw = details

	if message, ok := details["message"].(string); ok {
		apiErr.Message = message
	}

	if errType, ok := details["type"].(string); ok {
		apiErr.Type = errType
	}

	if code, ok := details["code"].(float64); ok {
		apiErr.Code = int(code)
	}

	if subcode, ok := details["error_subcode"].(float64); ok {
		apiErr.Subcode = int(subcode)
	}

	if trace, ok := details["fbtrace_id"].(string); ok {
		apiErr.TraceID = trace
	}

	return apiErr
}
