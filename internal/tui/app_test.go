package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/apitest"
	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

type testEnv struct {
	app    *App
	srv    *apitest.Server
	client *api.Client
	prov   identity.Identity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	srv.SeedHomeowner("Mira Holt", "mira@example.com", "pw", "555-0101")
	prov := srv.SeedProvider("Ana Reyes", "ana@example.com", "pw", "555-0102", "4 Oak Ave",
		request.ServicePlumbing, request.ServiceElectrical)

	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL()
	cfg.Timeout = 5 * time.Second
	client, err := api.NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)

	app := NewApp(client, nil, WithRefreshInterval(time.Millisecond))
	return &testEnv{app: app, srv: srv, client: client, prov: prov}
}

// drain executes commands until the queue settles, feeding resulting
// messages back through Update. Refresh ticks are dropped so the loop
// terminates; batches are unpacked the way the bubbletea runtime would.
func drain(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch m := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, m...)
		case refreshTickMsg:
			continue
		case cursor.BlinkMsg:
			continue
		default:
			nextModel, nextCmd := app.Update(msg)
			app, ok = nextModel.(*App)
			if !ok {
				t.Fatalf("unexpected model type: %T", nextModel)
			}
			queue = append(queue, nextCmd)
		}
	}
	return app
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestStartsOnLoginWhenAnonymous(t *testing.T) {
	env := newTestEnv(t)
	app := drain(t, env.app, env.app.Init())
	if app.screen != screenLogin {
		t.Fatalf("screen = %d, want login", app.screen)
	}
}

func TestRestoredSessionRoutesByRole(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.client.Login(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	app := drain(t, env.app, env.app.Init())
	if app.screen != screenProvider {
		t.Fatalf("screen = %d, want provider dashboard", app.screen)
	}
	if _, ok := app.session.Current(); !ok {
		t.Fatal("session must be populated after restore")
	}
}

func TestLoginFromForm(t *testing.T) {
	env := newTestEnv(t)
	app := drain(t, env.app, env.app.Init())

	app.login.inputs[0].SetValue("mira@example.com")
	app.login.inputs[1].SetValue("pw")
	app = drain(t, app, app.submitLogin())
	if app.screen != screenHomeowner {
		t.Fatalf("screen = %d, want homeowner dashboard", app.screen)
	}
	if user, ok := app.session.Current(); !ok || !user.IsHomeowner() {
		t.Fatalf("session after login = %+v, %v", user, ok)
	}
}

func TestLoginRejectionStaysOnForm(t *testing.T) {
	env := newTestEnv(t)
	app := drain(t, env.app, env.app.Init())

	app.login.inputs[0].SetValue("mira@example.com")
	app.login.inputs[1].SetValue("wrong")
	app = drain(t, app, app.submitLogin())
	if app.screen != screenLogin {
		t.Fatalf("screen = %d, want login", app.screen)
	}
	if app.statusMsg != "Invalid credentials" {
		t.Fatalf("statusMsg = %q, want the backend rejection message", app.statusMsg)
	}
}

func TestSignupValidationStaysLocal(t *testing.T) {
	env := newTestEnv(t)
	app := drain(t, env.app, env.app.Init())

	app.screen = screenSignup
	app.signup = newSignupForm()
	app.signup.inputs[0].SetValue("New Provider")
	app.signup.inputs[1].SetValue("new@example.com")
	app.signup.inputs[2].SetValue("555-0199")
	app.signup.inputs[3].SetValue("pw")
	app.signup.role = request.RoleProvider
	// No address, no specialties: rejected before any call.
	app = drain(t, app, app.submitSignup())
	if app.screen != screenSignup {
		t.Fatalf("screen = %d, want signup", app.screen)
	}
	if !strings.Contains(app.statusMsg, "address") {
		t.Fatalf("statusMsg = %q, want the address validation failure", app.statusMsg)
	}
}

func TestSignupOpensSessionAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	app := drain(t, env.app, env.app.Init())

	app.screen = screenSignup
	app.signup = newSignupForm()
	app.signup.inputs[0].SetValue("New Owner")
	app.signup.inputs[1].SetValue("new@example.com")
	app.signup.inputs[2].SetValue("555-0199")
	app.signup.inputs[3].SetValue("pw")
	app = drain(t, app, app.submitSignup())
	if app.screen != screenHomeowner {
		t.Fatalf("screen = %d, want homeowner dashboard after signup", app.screen)
	}
	if user, ok := app.session.Current(); !ok || user.Email != "new@example.com" {
		t.Fatalf("session after signup = %+v, %v", user, ok)
	}
}

func TestHomeownerCancelKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.client.Login(ctx, "mira@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	created, err := env.client.CreateRequest(ctx, request.NewRequestInput{
		ServiceType:   request.ServicePlumbing,
		Description:   "dripping faucet",
		Address:       "12 Elm St",
		PreferredDate: "2026-09-03",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	app := drain(t, env.app, env.app.Init())
	if app.screen != screenHomeowner {
		t.Fatalf("screen = %d, want homeowner dashboard", app.screen)
	}
	if len(app.homeView.list.Items()) != 1 {
		t.Fatalf("list rows = %d, want 1", len(app.homeView.list.Items()))
	}

	model, cmd := app.Update(keyRune('c'))
	app = drain(t, model, cmd)
	if app.statusMsg != "Request cancelled" {
		t.Fatalf("statusMsg = %q", app.statusMsg)
	}
	rows := app.home.Requests()
	if len(rows) != 1 || rows[0].Status != request.StatusCancelled {
		t.Fatalf("rows after cancel = %+v", rows)
	}
	stored, _ := env.srv.Request(created.ID)
	if stored.Status != request.StatusCancelled {
		t.Fatalf("backend status = %s, want cancelled", stored.Status)
	}
}

func TestCancelKeyInertOnTerminalRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.client.Login(ctx, "mira@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	created, err := env.client.CreateRequest(ctx, request.NewRequestInput{
		ServiceType:   request.ServicePlumbing,
		Description:   "dripping faucet",
		Address:       "12 Elm St",
		PreferredDate: "2026-09-03",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.client.CancelRequest(ctx, created.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	app := drain(t, env.app, env.app.Init())
	model, cmd := app.Update(keyRune('c'))
	app = drain(t, model, cmd)
	if !strings.Contains(app.statusMsg, "cannot be cancelled") {
		t.Fatalf("statusMsg = %q, want the inert-affordance note", app.statusMsg)
	}
}

func TestProviderAcceptKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := ownerClient(t, env.srv)
	created, err := owner.CreateRequest(ctx, request.NewRequestInput{
		ServiceType:   request.ServicePlumbing,
		Description:   "water heater rattle",
		Address:       "12 Elm St",
		PreferredDate: "2026-09-03",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	env.srv.Offer(created.ID, env.prov.ID)

	if _, err := env.client.Login(ctx, "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	app := drain(t, env.app, env.app.Init())
	if app.screen != screenProvider {
		t.Fatalf("screen = %d, want provider dashboard", app.screen)
	}
	if len(app.provView.available.Items()) != 1 {
		t.Fatalf("available rows = %d, want 1", len(app.provView.available.Items()))
	}

	model, cmd := app.Update(keyRune('a'))
	app = drain(t, model, cmd)
	if app.statusMsg != "Job accepted; it is now in your jobs list" {
		t.Fatalf("statusMsg = %q", app.statusMsg)
	}
	if len(app.provView.available.Items()) != 0 {
		t.Fatal("offer must leave the available list after accept")
	}
	jobs := app.prov.Jobs()
	if len(jobs) != 1 || jobs[0].Status != request.StatusAccepted || !jobs[0].HasProvider() {
		t.Fatalf("jobs after accept = %+v", jobs)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.client.Login(ctx, "mira@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	app := drain(t, env.app, env.app.Init())

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	app = drain(t, model, cmd)
	if app.screen != screenLogin {
		t.Fatalf("screen = %d, want login after logout", app.screen)
	}
	if _, ok := app.session.Current(); ok {
		t.Fatal("session must be anonymous after logout")
	}
}

func ownerClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL()
	c, err := api.NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(c.Close)
	if _, err := c.Login(context.Background(), "mira@example.com", "pw"); err != nil {
		t.Fatalf("owner login: %v", err)
	}
	return c
}
