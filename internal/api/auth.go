// internal/api/auth.go
//
// Auth endpoints. Login and signup decode the backend envelope even on
// non-2xx answers because the rejection message lives in the body; the
// other routes let the status mapping speak for itself.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
)

type authEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	User    identity.Identity `json:"user"`
}

// Me queries the current-session endpoint. It returns ErrUnauthorized when
// no session exists; the session provider treats that as an ordinary
// anonymous start, not a reportable failure.
func (c *Client) Me(ctx context.Context) (identity.Identity, error) {
	var env authEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &env); err != nil {
		return identity.Identity{}, err
	}
	if !env.Success {
		return identity.Identity{}, ErrUnauthorized
	}
	return env.User, nil
}

// Login authenticates with email and password. Rejected credentials come
// back as *AuthError carrying the backend's message.
func (c *Client) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	in := map[string]string{"email": email, "password": password}
	return c.authPost(ctx, "/auth/login", in)
}

// Signup creates an account and opens a session for it. The backend is the
// authoritative validator; a rejection comes back as *AuthError.
func (c *Client) Signup(ctx context.Context, profile identity.SignupProfile) (identity.Identity, error) {
	return c.authPost(ctx, "/auth/signup", profile)
}

// Logout tells the backend to invalidate the session. Best effort: the
// response is ignored and errors are returned only for the caller's log.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.roundTrip(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

func (c *Client) authPost(ctx context.Context, path string, in any) (identity.Identity, error) {
	resp, err := c.roundTrip(ctx, http.MethodPost, path, in)
	if err != nil {
		return identity.Identity{}, err
	}
	var env authEnvelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		if resp.status < 200 || resp.status >= 300 {
			return identity.Identity{}, statusError(resp.status)
		}
		return identity.Identity{}, fmt.Errorf("api: decode %s: %w", path, err)
	}
	if !env.Success {
		return identity.Identity{}, &AuthError{Message: env.Message}
	}
	return env.User, nil
}
