// internal/tui/app.go
//
// This is the main TUI for QuickFixHub. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Every network call runs inside a tea.Cmd and reports back as a message;
// Update never blocks. Which screen is reachable is decided by the session:
// anonymous users only ever see the auth screens, and the dashboard shown
// after sign-in follows the account's role.

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/homeowner"
	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
	"github.com/Sonalgupta2005/QuickFixhub/internal/logbook"
	"github.com/Sonalgupta2005/QuickFixhub/internal/provider"
	"github.com/Sonalgupta2005/QuickFixhub/internal/session"
	"github.com/Sonalgupta2005/QuickFixhub/internal/viewmodel"
)

// appScreen represents which "screen" we're on
type appScreen int

const (
	screenBoot       appScreen = iota // Restoring a previous session
	screenLogin                       // Email + password form
	screenSignup                      // Account creation form
	screenHomeowner                   // Homeowner dashboard
	screenNewRequest                  // New service request form
	screenProvider                    // Provider dashboard
)

const dashboardRefreshInterval = 10 * time.Second

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRefreshInterval overrides the dashboard auto-refresh cadence.
func WithRefreshInterval(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.refreshEvery = d
		}
	}
}

// WithContext sets the context used for backend calls issued by the TUI.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// Messages produced by background commands.

type sessionRestoredMsg struct{}

type authResultMsg struct {
	ok      bool
	message string
}

type homeRefreshedMsg struct{ err error }

type provRefreshedMsg struct{ err error }

type actionDoneMsg struct {
	verb string
	id   string
	err  error
}

type requestCreatedMsg struct {
	err error
}

type refreshTickMsg struct{}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	ctx     context.Context
	client  *api.Client
	session *session.Provider
	home    *homeowner.ViewModel
	prov    *provider.ViewModel
	logbook *logbook.Logbook

	screen       appScreen
	refreshEvery time.Duration

	login    loginForm
	signup   signupForm
	newReq   requestForm
	homeView *homeownerView
	provView *providerView

	spin spinner.Model
	busy bool

	statusMsg     string
	lastLogStatus string

	width  int
	height int
}

// NewApp wires the views around one API client and one session provider.
func NewApp(client *api.Client, lb *logbook.Logbook, opts ...AppOption) *App {
	sess := session.NewProvider(client)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F43"))
	app := &App{
		spin:         sp,
		ctx:          context.Background(),
		client:       client,
		session:      sess,
		home:         homeowner.New(client, lb),
		prov:         provider.New(client, lb),
		logbook:      lb,
		screen:       screenBoot,
		refreshEvery: dashboardRefreshInterval,
		login:        newLoginForm(),
		signup:       newSignupForm(),
		newReq:       newRequestForm(),
	}
	app.homeView = newHomeownerView(app)
	app.provView = newProviderView(app)
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logProgress(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == a.lastLogStatus {
		return
	}
	a.lastLogStatus = status
	a.logInfo(status)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.track(a.restoreSession())
}

// track marks a backend call as in flight and keeps the spinner ticking
// until a completion message clears the flag.
func (a *App) track(cmd tea.Cmd) tea.Cmd {
	a.busy = true
	return tea.Batch(cmd, a.spin.Tick)
}

// restoreSession attempts the silent sign-in. Failure is not an error: the
// app simply lands on the login screen.
func (a *App) restoreSession() tea.Cmd {
	return func() tea.Msg {
		a.session.Restore(a.ctx)
		return sessionRestoredMsg{}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.homeView.setSize(msg.Width, msg.Height)
		a.provView.setSize(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case sessionRestoredMsg:
		a.busy = false
		if user, ok := a.session.Current(); ok {
			a.logInfo("Session restored for %s (%s)", user.Name, user.Role)
			return a.enterDashboard(user)
		}
		a.screen = screenLogin
		a.statusMsg = "Sign in to continue"
		return a, a.login.focusFirst()

	case authResultMsg:
		a.busy = false
		if !msg.ok {
			a.statusMsg = msg.message
			a.logWarn("Sign-in rejected: %s", msg.message)
			return a, nil
		}
		user, ok := a.session.Current()
		if !ok {
			a.statusMsg = "Sign-in did not stick; try again"
			return a, nil
		}
		a.logInfo("Signed in as %s (%s)", user.Name, user.Role)
		return a.enterDashboard(user)

	case homeRefreshedMsg:
		a.busy = false
		a.homeView.apply()
		if msg.err != nil {
			a.statusMsg = "Could not load your requests; showing nothing rather than stale rows"
		} else {
			a.logProgress("Request list refreshed")
		}
		return a, nil

	case provRefreshedMsg:
		a.busy = false
		a.provView.apply()
		if msg.err != nil {
			a.statusMsg = "Could not load the dashboard; lists degrade to empty until the backend answers"
		} else {
			a.logProgress("Provider dashboard refreshed")
		}
		return a, nil

	case actionDoneMsg:
		a.busy = false
		return a.handleActionDone(msg)

	case requestCreatedMsg:
		a.busy = false
		if msg.err != nil {
			a.statusMsg = friendlyError(msg.err)
			return a, nil
		}
		a.statusMsg = "Request submitted"
		a.newReq = newRequestForm()
		a.screen = screenHomeowner
		a.homeView.apply()
		return a, nil

	case refreshTickMsg:
		switch a.screen {
		case screenHomeowner, screenNewRequest:
			return a, tea.Batch(a.refreshHomeowner(), a.scheduleRefresh())
		case screenProvider:
			return a, tea.Batch(a.refreshProvider(), a.scheduleRefresh())
		}
		return a, a.scheduleRefresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)
	}

	return a.routeToScreen(msg)
}

// handleKey dispatches key presses to the active screen.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case screenLogin:
		return a.updateLogin(msg)
	case screenSignup:
		return a.updateSignup(msg)
	case screenHomeowner:
		return a.homeView.handleKey(msg)
	case screenNewRequest:
		return a.updateNewRequest(msg)
	case screenProvider:
		return a.provView.handleKey(msg)
	}
	return a, nil
}

// routeToScreen forwards non-key messages (blink ticks and the like) to the
// component that owns the focus.
func (a *App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case screenLogin:
		return a, a.login.update(msg)
	case screenSignup:
		return a, a.signup.update(msg)
	case screenNewRequest:
		return a, a.newReq.update(msg)
	case screenHomeowner:
		return a, a.homeView.update(msg)
	case screenProvider:
		return a, a.provView.update(msg)
	}
	return a, nil
}

// enterDashboard routes a signed-in account to the screen its role allows
// and kicks off the first data load.
func (a *App) enterDashboard(user identity.Identity) (tea.Model, tea.Cmd) {
	if user.IsProvider() {
		a.screen = screenProvider
		a.statusMsg = fmt.Sprintf("Welcome back, %s", user.Name)
		return a, tea.Batch(a.track(a.refreshProvider()), a.scheduleRefresh())
	}
	a.screen = screenHomeowner
	a.statusMsg = fmt.Sprintf("Welcome back, %s", user.Name)
	return a, tea.Batch(a.track(a.refreshHomeowner()), a.scheduleRefresh())
}

// logout clears the session and drops back to the login screen. The local
// state goes immediately; the backend invalidation happens in the
// background and its outcome does not matter here.
func (a *App) logout() (tea.Model, tea.Cmd) {
	a.session.Logout(a.ctx)
	a.home = homeowner.New(a.client, a.logbook)
	a.prov = provider.New(a.client, a.logbook)
	a.homeView = newHomeownerView(a)
	a.provView = newProviderView(a)
	a.homeView.setSize(a.width, a.height)
	a.provView.setSize(a.width, a.height)
	a.screen = screenLogin
	a.login = newLoginForm()
	a.statusMsg = "Signed out"
	a.logInfo("Signed out")
	return a, a.login.focusFirst()
}

func (a *App) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	a.homeView.apply()
	a.provView.apply()
	if msg.err != nil {
		a.statusMsg = friendlyError(msg.err)
		return a, nil
	}
	switch msg.verb {
	case "cancel":
		a.statusMsg = "Request cancelled"
	case "accept":
		a.statusMsg = "Job accepted; it is now in your jobs list"
	case "reject":
		a.statusMsg = "Offer declined"
	case "start":
		a.statusMsg = "Job started"
	case "complete":
		a.statusMsg = "Job completed"
	}
	return a, nil
}

// Background commands.

func (a *App) refreshHomeowner() tea.Cmd {
	return func() tea.Msg {
		return homeRefreshedMsg{err: a.home.Refresh(a.ctx)}
	}
}

func (a *App) refreshProvider() tea.Cmd {
	return func() tea.Msg {
		return provRefreshedMsg{err: a.prov.Refresh(a.ctx)}
	}
}

func (a *App) scheduleRefresh() tea.Cmd {
	return tea.Tick(a.refreshEvery, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.screen {
	case screenBoot:
		content = "Checking for a previous session..."
	case screenLogin:
		content = a.login.view()
	case screenSignup:
		content = a.signup.view()
	case screenHomeowner:
		content = a.homeView.view()
	case screenNewRequest:
		content = a.newReq.view()
	case screenProvider:
		content = a.provView.view()
	}
	return a.renderFrame(content)
}

func (a *App) renderFrame(content string) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF9F43")).
		MarginBottom(1).
		Render("⚒ QUICKFIXHUB")
	sections := []string{header, content}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	status := a.statusMsg
	if a.busy {
		status = a.spin.View() + " " + status
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(status)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

// friendlyError maps the error taxonomy to something a user can act on.
func friendlyError(err error) string {
	var fieldErr *homeowner.ValidationError
	var profileErr *session.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fieldErr):
		return fieldErr.Error()
	case errors.As(err, &profileErr):
		return profileErr.Error()
	case errors.Is(err, viewmodel.ErrActionInFlight):
		return "Hang on, that request is still being updated"
	case errors.Is(err, api.ErrInvalidTransition):
		return "That action is no longer possible; the list has been resynchronized"
	case errors.Is(err, api.ErrNotFound):
		return "That request no longer exists; the list has been resynchronized"
	case errors.Is(err, api.ErrUnauthorized):
		return "You are not allowed to do that"
	case errors.Is(err, api.ErrNetwork):
		return "Could not reach the server. Check your connection and try again."
	default:
		return err.Error()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
