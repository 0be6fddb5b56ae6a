package hms

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized marks a 401 from the HMS; callers clear the local session
// when they see it.
var ErrUnauthorized = errors.New("hms: unauthorized")

// NetworkError wraps a transport failure where no response was received.
// Operations that fail this way are user-retryable.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("hms: %s: no response from server: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejection is a non-2xx response with a message body. The message is
// surfaced to the user verbatim.
type ServerRejection struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("hms: %s: server rejected request (%d): %s", e.Op, e.StatusCode, e.Message)
}

func (e *ServerRejection) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// UserMessage returns the text shown to the end user for an adapter error.
func UserMessage(err error) string {
	var rejection *ServerRejection
	if errors.As(err, &rejection) && rejection.Message != "" {
		return rejection.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the booking service. Please check your connection and try again."
	}
	return err.Error()
}
