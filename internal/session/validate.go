// internal/session/validate.go
//
// Client-side signup pre-check. Everything here is re-validated by the
// backend; failing fast just saves the round trip.

package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

// ValidationError reports a signup profile rejected before any network
// call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateProfile checks the role-conditional required fields: every
// account needs name, email, phone, and password; providers additionally
// need an address and at least one specialty.
func ValidateProfile(p identity.SignupProfile) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(p.Email) == "":
		return &ValidationError{Field: "email", Reason: "required"}
	case !strings.Contains(p.Email, "@"):
		return &ValidationError{Field: "email", Reason: "must be an email address"}
	case strings.TrimSpace(p.Phone) == "":
		return &ValidationError{Field: "phone", Reason: "required"}
	case p.Password == "":
		return &ValidationError{Field: "password", Reason: "required"}
	}
	if p.Role != request.RoleHomeowner && p.Role != request.RoleProvider {
		return &ValidationError{Field: "role", Reason: "must be homeowner or provider"}
	}
	if p.Role == request.RoleProvider {
		if strings.TrimSpace(p.Address) == "" {
			return &ValidationError{Field: "address", Reason: "required for providers"}
		}
		if len(p.Specialties) == 0 {
			return &ValidationError{Field: "specialties", Reason: "select at least one service"}
		}
		for _, s := range p.Specialties {
			if !s.Valid() {
				return &ValidationError{Field: "specialties", Reason: fmt.Sprintf("unknown service %q", s)}
			}
		}
	}
	return nil
}
