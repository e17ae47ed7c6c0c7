package timeclock

import (
	"errors"
	"fmt"
)

// StateError represents an operation attempted in the wrong session state.
type StateError struct {
	Operation string
	State     SessionState
	Message   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: session is %s: %s", e.Operation, e.State, e.Message)
}

// Is matches any StateError against the package sentinels by message.
func (e *StateError) Is(target error) bool {
	t, ok := target.(*StateError)
	if !ok {
		return false
	}
	return t.Message == e.Message
}

var (
	// ErrNotAuthenticated is returned when a history fetch is attempted
	// before a successful login.
	ErrNotAuthenticated = &StateError{Message: "must be authenticated first"}

	// ErrSessionExpired is returned when the site bounces an authenticated
	// request back to the login page.
	ErrSessionExpired = &StateError{Message: "session expired"}
)

// RequestError represents caller input that cannot form a valid request.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

// TransportError represents a failed exchange with the time clock.
type TransportError struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error for %s: %s", e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsPrecondition reports whether err is a session-state violation.
func IsPrecondition(err error) bool {
	var stateErr *StateError
	return errors.As(err, &stateErr)
}
