package apiclient

import (
	"errors"
	"fmt"
)

// ServerErrorMessage is shown when the API cannot be reached at all.
const ServerErrorMessage = "Server error. Please try again."

// APIError is a non-success HTTP status from the remote API.
// Message holds the body's "message" field when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage turns an API error into the text shown to the user.
// A server-provided message wins; a bare status uses fallback; anything
// else is reported as a generic server error.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return ServerErrorMessage
}
