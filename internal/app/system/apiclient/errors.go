// internal/app/system/apiclient/errors.go
package apiclient

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any 401 response. The admin's API token
// is no longer accepted and the session has to be re-established.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// MutationError is a 2xx mutation response that carried success:false.
type MutationError struct {
	Message string
}

func (e *MutationError) Error() string {
	if e.Message == "" {
		return "request was not accepted"
	}
	return e.Message
}

// IsUnauthorized reports whether err is (or wraps) ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Reason returns a short human-readable reason for err, suitable for a
// notice shown to the admin.
func Reason(err error) string {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Error()
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("server responded with status %d", se.Code)
	}
	if IsUnauthorized(err) {
		return "your session has expired"
	}
	if errors.Is(err, errTimeout) {
		return "the request timed out"
	}
	if err == nil {
		return ""
	}
	return "network error"
}
