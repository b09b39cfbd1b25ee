// internal/api/errors.go
//
// Error taxonomy for backend calls. Callers branch with errors.Is /
// errors.As; none of these are fatal to the client, they only decide what
// notification a view shows and whether a resynchronizing refetch is due.

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the request never produced a usable backend answer:
	// transport failure, timeout, open circuit, or a 5xx response.
	ErrNetwork = errors.New("backend unreachable")

	// ErrNotFound means the request identifier did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller lacks the role or ownership the
	// operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition means the backend rejected a lifecycle action
	// because the request is no longer in a status that permits it. The
	// caller's local copy is stale and should be refetched.
	ErrInvalidTransition = errors.New("invalid transition")
)

// AuthError carries the backend's rejection message for login and signup.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// statusError maps a non-2xx backend status to the taxonomy. 400 on a
// lifecycle route means the transition window has closed; 5xx is grouped
// with transport failures since the caller reacts the same way.
func statusError(code int) error {
	switch {
	case code == 400 || code == 409:
		return ErrInvalidTransition
	case code == 401 || code == 403:
		return ErrUnauthorized
	case code == 404:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: backend returned status %d", ErrNetwork, code)
	default:
		return fmt.Errorf("backend returned status %d", code)
	}
}
