package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

type fakeBackend struct {
	me      func(ctx context.Context) (identity.Identity, error)
	login   func(ctx context.Context, email, password string) (identity.Identity, error)
	signup  func(ctx context.Context, profile identity.SignupProfile) (identity.Identity, error)
	logouts atomic.Int32
}

func (f *fakeBackend) Me(ctx context.Context) (identity.Identity, error) {
	if f.me == nil {
		return identity.Identity{}, api.ErrUnauthorized
	}
	return f.me(ctx)
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	if f.login == nil {
		return identity.Identity{}, &api.AuthError{Message: "Invalid credentials"}
	}
	return f.login(ctx, email, password)
}

func (f *fakeBackend) Signup(ctx context.Context, profile identity.SignupProfile) (identity.Identity, error) {
	if f.signup == nil {
		return identity.Identity{}, &api.AuthError{Message: "rejected"}
	}
	return f.signup(ctx, profile)
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.logouts.Add(1)
	return errors.New("backend down")
}

func TestRestoreFailureStaysSilent(t *testing.T) {
	p := NewProvider(&fakeBackend{
		me: func(context.Context) (identity.Identity, error) {
			return identity.Identity{}, api.ErrNetwork
		},
	})
	p.Restore(context.Background())
	if _, ok := p.Current(); ok {
		t.Fatal("restore failure must leave the session anonymous")
	}
	if p.Loading() {
		t.Fatal("loading flag must clear after restore")
	}
}

func TestRestorePopulatesSession(t *testing.T) {
	want := identity.Identity{ID: "u-1", Name: "Ana", Role: request.RoleHomeowner}
	p := NewProvider(&fakeBackend{
		me: func(context.Context) (identity.Identity, error) { return want, nil },
	})
	p.Restore(context.Background())
	got, ok := p.Current()
	if !ok || got.ID != "u-1" {
		t.Fatalf("current: got %+v ok=%v", got, ok)
	}
}

func TestLoginFailureReturnsMessageWithoutMutating(t *testing.T) {
	p := NewProvider(&fakeBackend{})
	ok, msg := p.Login(context.Background(), "x@example.com", "nope")
	if ok {
		t.Fatal("login must fail")
	}
	if msg != "Invalid credentials" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if _, authed := p.Current(); authed {
		t.Fatal("failed login must not populate session")
	}
}

func TestSignupValidationSkipsNetwork(t *testing.T) {
	called := false
	p := NewProvider(&fakeBackend{
		signup: func(context.Context, identity.SignupProfile) (identity.Identity, error) {
			called = true
			return identity.Identity{}, nil
		},
	})
	err := p.Signup(context.Background(), identity.SignupProfile{
		Name: "Bo", Email: "bo@example.com", Password: "pw", Phone: "555",
		Role: request.RoleProvider, Address: "9 Pine St",
		// empty specialty set: must be rejected before any call
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatal("backend must not be called for an invalid profile")
	}
}

func TestSignupSuccessPopulatesSession(t *testing.T) {
	p := NewProvider(&fakeBackend{
		signup: func(_ context.Context, profile identity.SignupProfile) (identity.Identity, error) {
			return identity.Identity{ID: "u-2", Name: profile.Name, Role: profile.Role}, nil
		},
	})
	err := p.Signup(context.Background(), identity.SignupProfile{
		Name: "Bo", Email: "bo@example.com", Password: "pw", Phone: "555",
		Role: request.RoleProvider, Address: "9 Pine St",
		Specialties: []request.ServiceType{request.ServiceHVAC},
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	got, ok := p.Current()
	if !ok || got.ID != "u-2" || got.Role != request.RoleProvider {
		t.Fatalf("current: got %+v ok=%v", got, ok)
	}
}

func TestLogoutClearsLocallyDespiteBackendFailure(t *testing.T) {
	backend := &fakeBackend{
		me: func(context.Context) (identity.Identity, error) {
			return identity.Identity{ID: "u-1"}, nil
		},
	}
	p := NewProvider(backend)
	p.Restore(context.Background())
	p.Logout(context.Background())
	if _, ok := p.Current(); ok {
		t.Fatal("logout must clear the session immediately")
	}
	// the invalidation call is fire-and-forget; give it a moment
	deadline := time.Now().Add(time.Second)
	for backend.logouts.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if backend.logouts.Load() == 0 {
		t.Fatal("logout must still notify the backend")
	}
}

func TestValidateProfileTable(t *testing.T) {
	valid := identity.SignupProfile{
		Name: "Ana", Email: "ana@example.com", Password: "pw", Phone: "555",
		Role: request.RoleHomeowner,
	}
	if err := ValidateProfile(valid); err != nil {
		t.Fatalf("valid homeowner rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*identity.SignupProfile)
		field  string
	}{
		{"missing name", func(p *identity.SignupProfile) { p.Name = " " }, "name"},
		{"missing email", func(p *identity.SignupProfile) { p.Email = "" }, "email"},
		{"bad email", func(p *identity.SignupProfile) { p.Email = "nope" }, "email"},
		{"missing phone", func(p *identity.SignupProfile) { p.Phone = "" }, "phone"},
		{"missing password", func(p *identity.SignupProfile) { p.Password = "" }, "password"},
		{"bad role", func(p *identity.SignupProfile) { p.Role = request.RoleAdmin }, "role"},
		{"provider without address", func(p *identity.SignupProfile) {
			p.Role = request.RoleProvider
			p.Specialties = []request.ServiceType{request.ServiceGeneral}
		}, "address"},
		{"provider without specialties", func(p *identity.SignupProfile) {
			p.Role = request.RoleProvider
			p.Address = "9 Pine St"
		}, "specialties"},
		{"provider with unknown specialty", func(p *identity.SignupProfile) {
			p.Role = request.RoleProvider
			p.Address = "9 Pine St"
			p.Specialties = []request.ServiceType{"roofing"}
		}, "specialties"},
	}
	for _, tc := range cases {
		profile := valid
		tc.mutate(&profile)
		err := ValidateProfile(profile)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
			continue
		}
		if ve.Field != tc.field {
			t.Errorf("%s: field %q, want %q", tc.name, ve.Field, tc.field)
		}
	}
}
