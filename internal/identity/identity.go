// internal/identity/identity.go
//
// The authenticated-user shape shared by the session provider, the API
// client, and the dashboards.

package identity

import "github.com/Sonalgupta2005/QuickFixhub/internal/request"

// Identity is a QuickFixHub account as returned by the auth endpoints.
// The provider-only fields (Specialties, Rating, CompletedJobs, Available)
// are zero for homeowners.
type Identity struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Role      request.Role `json:"role"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	CreatedAt string       `json:"createdAt"`

	Specialties   []request.ServiceType `json:"specialties,omitempty"`
	Rating        float64               `json:"rating,omitempty"`
	CompletedJobs int                   `json:"completedJobs,omitempty"`
	Available     bool                  `json:"available,omitempty"`
}

// IsProvider reports whether this account works jobs.
func (i Identity) IsProvider() bool {
	return i.Role == request.RoleProvider
}

// IsHomeowner reports whether this account creates requests.
func (i Identity) IsHomeowner() bool {
	return i.Role == request.RoleHomeowner
}

// SignupProfile is the payload for account creation. Address and
// Specialties are required for providers only.
type SignupProfile struct {
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Password    string                `json:"password"`
	Phone       string                `json:"phone"`
	Role        request.Role          `json:"role"`
	Address     string                `json:"address,omitempty"`
	Specialties []request.ServiceType `json:"serviceTypes,omitempty"`
}
