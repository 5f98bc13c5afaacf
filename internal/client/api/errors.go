package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated means no valid credential is available after
	// exhausting the single refresh attempt. The session is gone.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the server rejected a valid credential (403).
	// The session has been torn down.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable marks transport-level failures: connection refused,
	// timeout, DNS. The session is untouched.
	ErrUnavailable = errors.New("server unavailable")

	// ErrNotFound maps a 404 from a resource endpoint.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries the server's rejection of a login/register/profile
// request: a message and optional per-field details, both verbatim.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}
