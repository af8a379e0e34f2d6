package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("gateway: not found")
	ErrUnauthorized = errors.New("gateway: unauthorized")
	ErrTimeout      = errors.New("gateway: timeout")
)

// Error is a failed backend call. StatusCode is zero when no response was
// received. Message carries the server's text when it sent one.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers test with errors.Is(err, gateway.ErrNotFound) and friends.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrTimeout:
		return e.Timeout
	}
	return false
}

// UserMessage returns the message to show a user for err: the server's text
// when the backend answered, a generic notice otherwise.
func UserMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		if ge.Timeout {
			return "The server took too long to respond. Please try again."
		}
		if ge.StatusCode > 0 && ge.Message != "" {
			return ge.Message
		}
	}
	return "Could not reach the server. Please try again."
}
