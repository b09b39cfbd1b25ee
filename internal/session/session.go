// internal/session/session.go
//
// Process-wide authenticated identity. One Provider is created at startup,
// restored once from the backend, and handed to every view model; there is
// no other global mutable state in the client.

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
)

// Backend is the slice of the API client the session provider needs.
type Backend interface {
	Me(ctx context.Context) (identity.Identity, error)
	Login(ctx context.Context, email, password string) (identity.Identity, error)
	Signup(ctx context.Context, profile identity.SignupProfile) (identity.Identity, error)
	Logout(ctx context.Context) error
}

// Provider holds the current session state.
type Provider struct {
	backend Backend

	mu      sync.Mutex
	current identity.Identity
	authed  bool
	loading bool
}

// NewProvider wraps a backend client. The compile-time check below keeps
// the interface honest against the real client.
func NewProvider(backend Backend) *Provider {
	return &Provider{backend: backend}
}

var _ Backend = (*api.Client)(nil)

// Current returns the authenticated identity, or false when anonymous.
func (p *Provider) Current() (identity.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.authed
}

// Loading reports whether a session mutation is in flight.
func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Restore attempts silent session restoration. Any failure, including a
// network one, leaves the session anonymous and is not an error: a fresh
// visitor is an expected state.
func (p *Provider) Restore(ctx context.Context) {
	p.setLoading(true)
	defer p.setLoading(false)
	user, err := p.backend.Me(ctx)
	if err != nil {
		return
	}
	p.set(user)
}

// Login authenticates and populates the session. A false return covers
// both rejected credentials (message from the backend) and network
// failure; the session is left untouched in either case.
func (p *Provider) Login(ctx context.Context, email, password string) (bool, string) {
	p.setLoading(true)
	defer p.setLoading(false)
	user, err := p.backend.Login(ctx, email, password)
	if err != nil {
		return false, loginFailureMessage(err)
	}
	p.set(user)
	return true, ""
}

// Signup validates the profile locally, then creates the account. The
// local check only avoids a doomed round trip; the backend remains the
// authoritative validator. On success the backend opens a session for the
// new account and the provider mirrors it.
func (p *Provider) Signup(ctx context.Context, profile identity.SignupProfile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	p.setLoading(true)
	defer p.setLoading(false)
	user, err := p.backend.Signup(ctx, profile)
	if err != nil {
		return err
	}
	p.set(user)
	return nil
}

// Logout clears the session locally no matter what the backend says. The
// invalidation call is fire-and-forget; a network failure must never keep
// a user logged in.
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	p.current = identity.Identity{}
	p.authed = false
	p.mu.Unlock()
	go func() {
		_ = p.backend.Logout(ctx)
	}()
}

func (p *Provider) set(user identity.Identity) {
	p.mu.Lock()
	p.current = user
	p.authed = true
	p.mu.Unlock()
}

func (p *Provider) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}

func loginFailureMessage(err error) string {
	var authErr *api.AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return "Could not reach the server. Check your connection and try again."
}
