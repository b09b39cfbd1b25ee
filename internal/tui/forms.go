// internal/tui/forms.go
//
// The three text-entry screens: login, signup, and new service request.
// Each form owns its textinput components; submission happens in a tea.Cmd
// so typing never blocks on the network.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

var (
	formTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	formHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	pickedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF9F43"))
)

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 120
	in.Width = 40
	return in
}

// loginForm

type loginForm struct {
	inputs []textinput.Model // email, password
	focus  int
}

func newLoginForm() loginForm {
	email := newInput("email")
	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	return loginForm{inputs: []textinput.Model{email, password}}
}

func (f *loginForm) focusFirst() tea.Cmd {
	f.focus = 0
	return f.setFocus(0)
}

func (f *loginForm) setFocus(idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == idx {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *loginForm) view() string {
	lines := []string{
		formTitleStyle.Render("Sign in"),
		"",
		"Email:    " + f.inputs[0].View(),
		"Password: " + f.inputs[1].View(),
		formHintStyle.Render("Enter → sign in    Ctrl+N → create an account"),
	}
	return strings.Join(lines, "\n")
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		a.login.focus = (a.login.focus + 1) % len(a.login.inputs)
		return a, a.login.setFocus(a.login.focus)
	case "shift+tab", "up":
		a.login.focus = (a.login.focus + len(a.login.inputs) - 1) % len(a.login.inputs)
		return a, a.login.setFocus(a.login.focus)
	case "enter":
		if a.login.focus < len(a.login.inputs)-1 {
			a.login.focus++
			return a, a.login.setFocus(a.login.focus)
		}
		a.statusMsg = "Signing in..."
		return a, a.track(a.submitLogin())
	case "ctrl+n":
		a.screen = screenSignup
		a.signup = newSignupForm()
		a.statusMsg = "Create an account"
		return a, a.signup.focusFirst()
	}
	return a, a.login.update(msg)
}

func (a *App) submitLogin() tea.Cmd {
	email := strings.TrimSpace(a.login.inputs[0].Value())
	password := a.login.inputs[1].Value()
	return func() tea.Msg {
		ok, message := a.session.Login(a.ctx, email, password)
		return authResultMsg{ok: ok, message: message}
	}
}

// signupForm

type signupForm struct {
	inputs      []textinput.Model // name, email, phone, password, address
	focus       int
	role        request.Role
	specialties map[request.ServiceType]bool
}

func newSignupForm() signupForm {
	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	return signupForm{
		inputs: []textinput.Model{
			newInput("full name"),
			newInput("email"),
			newInput("phone"),
			password,
			newInput("address"),
		},
		role:        request.RoleHomeowner,
		specialties: map[request.ServiceType]bool{},
	}
}

func (f *signupForm) focusFirst() tea.Cmd {
	f.focus = 0
	return f.setFocus(0)
}

func (f *signupForm) setFocus(idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == idx {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *signupForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *signupForm) toggleRole() {
	if f.role == request.RoleHomeowner {
		f.role = request.RoleProvider
	} else {
		f.role = request.RoleHomeowner
	}
}

func (f *signupForm) toggleSpecialty(idx int) {
	types := request.ServiceTypes()
	if idx < 0 || idx >= len(types) {
		return
	}
	f.specialties[types[idx]] = !f.specialties[types[idx]]
}

func (f *signupForm) profile() identity.SignupProfile {
	p := identity.SignupProfile{
		Name:     strings.TrimSpace(f.inputs[0].Value()),
		Email:    strings.TrimSpace(f.inputs[1].Value()),
		Phone:    strings.TrimSpace(f.inputs[2].Value()),
		Password: f.inputs[3].Value(),
		Role:     f.role,
	}
	if f.role == request.RoleProvider {
		p.Address = strings.TrimSpace(f.inputs[4].Value())
		for _, t := range request.ServiceTypes() {
			if f.specialties[t] {
				p.Specialties = append(p.Specialties, t)
			}
		}
	}
	return p
}

func (f *signupForm) view() string {
	labels := []string{"Name:    ", "Email:   ", "Phone:   ", "Password:", "Address: "}
	lines := []string{formTitleStyle.Render("Create an account"), ""}
	for i, in := range f.inputs {
		lines = append(lines, labels[i]+" "+in.View())
	}
	lines = append(lines, "", "Role:     "+pickedStyle.Render(string(f.role))+"  (Ctrl+R to switch)")
	if f.role == request.RoleProvider {
		var marks []string
		for i, t := range request.ServiceTypes() {
			mark := " "
			if f.specialties[t] {
				mark = "✓"
			}
			marks = append(marks, fmt.Sprintf("[%s] %d %s", mark, i+1, t.Label()))
		}
		lines = append(lines, "Services: "+strings.Join(marks, "  "))
		lines = append(lines, formHintStyle.Render("Alt+1..8 → toggle a service    Ctrl+S → sign up    Esc → back"))
	} else {
		lines = append(lines, formHintStyle.Render("Ctrl+S → sign up    Esc → back"))
	}
	return strings.Join(lines, "\n")
}

func (a *App) updateSignup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		a.screen = screenLogin
		a.statusMsg = "Sign in to continue"
		return a, a.login.focusFirst()
	case "tab", "down":
		a.signup.focus = (a.signup.focus + 1) % len(a.signup.inputs)
		return a, a.signup.setFocus(a.signup.focus)
	case "shift+tab", "up":
		a.signup.focus = (a.signup.focus + len(a.signup.inputs) - 1) % len(a.signup.inputs)
		return a, a.signup.setFocus(a.signup.focus)
	case "ctrl+r":
		a.signup.toggleRole()
		return a, nil
	case "enter":
		if a.signup.focus < len(a.signup.inputs)-1 {
			a.signup.focus++
			return a, a.signup.setFocus(a.signup.focus)
		}
		a.statusMsg = "Creating account..."
		return a, a.track(a.submitSignup())
	case "ctrl+s":
		a.statusMsg = "Creating account..."
		return a, a.track(a.submitSignup())
	}
	if strings.HasPrefix(key, "alt+") && len(key) == 5 && key[4] >= '1' && key[4] <= '8' {
		a.signup.toggleSpecialty(int(key[4] - '1'))
		return a, nil
	}
	return a, a.signup.update(msg)
}

// submitSignup runs the local profile check first; a rejected profile never
// reaches the network. On success the backend opens a session for the new
// account, so the same authResultMsg path as login applies.
func (a *App) submitSignup() tea.Cmd {
	profile := a.signup.profile()
	return func() tea.Msg {
		if err := a.session.Signup(a.ctx, profile); err != nil {
			return authResultMsg{ok: false, message: friendlyError(err)}
		}
		return authResultMsg{ok: true}
	}
}

// requestForm

type requestForm struct {
	inputs      []textinput.Model // description, address, date, time
	focus       int               // 0 is the service-type picker, 1..len(inputs) the inputs
	serviceType int
}

func newRequestForm() requestForm {
	return requestForm{
		inputs: []textinput.Model{
			newInput("what needs fixing"),
			newInput("street address"),
			newInput("preferred date (YYYY-MM-DD)"),
			newInput("preferred time, optional"),
		},
	}
}

func (f *requestForm) focusFirst() tea.Cmd {
	f.focus = 0
	return f.setFocus(0)
}

func (f *requestForm) setFocus(idx int) tea.Cmd {
	f.focus = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == idx-1 {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *requestForm) update(msg tea.Msg) tea.Cmd {
	if f.focus == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus-1], cmd = f.inputs[f.focus-1].Update(msg)
	return cmd
}

func (f *requestForm) input() request.NewRequestInput {
	types := request.ServiceTypes()
	return request.NewRequestInput{
		ServiceType:   types[f.serviceType],
		Description:   strings.TrimSpace(f.inputs[0].Value()),
		Address:       strings.TrimSpace(f.inputs[1].Value()),
		PreferredDate: strings.TrimSpace(f.inputs[2].Value()),
		PreferredTime: strings.TrimSpace(f.inputs[3].Value()),
	}
}

func (f *requestForm) view() string {
	types := request.ServiceTypes()
	picker := make([]string, len(types))
	for i, t := range types {
		if i == f.serviceType {
			picker[i] = pickedStyle.Render("▸" + t.Label())
		} else {
			picker[i] = " " + t.Label()
		}
	}
	labels := []string{"Problem: ", "Address: ", "Date:    ", "Time:    "}
	lines := []string{
		formTitleStyle.Render("New service request"),
		"",
		"Service:  " + strings.Join(picker, " "),
	}
	for i, in := range f.inputs {
		lines = append(lines, labels[i]+" "+in.View())
	}
	lines = append(lines, formHintStyle.Render("←/→ → pick service    Enter → next / submit    Esc → back"))
	return strings.Join(lines, "\n")
}

func (a *App) updateNewRequest(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	total := len(a.newReq.inputs) + 1
	switch msg.String() {
	case "esc":
		a.screen = screenHomeowner
		a.statusMsg = ""
		return a, nil
	case "tab", "down":
		return a, a.newReq.setFocus((a.newReq.focus + 1) % total)
	case "shift+tab", "up":
		return a, a.newReq.setFocus((a.newReq.focus + total - 1) % total)
	case "left":
		if a.newReq.focus == 0 && a.newReq.serviceType > 0 {
			a.newReq.serviceType--
			return a, nil
		}
	case "right":
		if a.newReq.focus == 0 && a.newReq.serviceType < len(request.ServiceTypes())-1 {
			a.newReq.serviceType++
			return a, nil
		}
	case "enter":
		if a.newReq.focus < total-1 {
			return a, a.newReq.setFocus(a.newReq.focus + 1)
		}
		a.statusMsg = "Submitting request..."
		return a, a.track(a.submitNewRequest())
	}
	return a, a.newReq.update(msg)
}

func (a *App) submitNewRequest() tea.Cmd {
	in := a.newReq.input()
	return func() tea.Msg {
		_, err := a.home.Create(a.ctx, in)
		return requestCreatedMsg{err: err}
	}
}
