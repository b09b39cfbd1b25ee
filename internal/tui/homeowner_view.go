// internal/tui/homeowner_view.go
//
// The homeowner dashboard: summary tiles on top, the request list below.
// The view renders snapshots taken from the view model; apply() pulls a
// fresh snapshot after every fetch or action so the list widget never drifts
// from the owned state.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

var (
	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 2).
			Align(lipgloss.Center)
	tileValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF9F43"))
)

// requestItem implements list.Item for a service request row.
type requestItem struct {
	req        request.ServiceRequest
	actionable bool
}

func (i requestItem) Title() string {
	title := fmt.Sprintf("%s · %s", i.req.ServiceType.Label(), i.req.Status.Label())
	if i.actionable {
		title += "  (c → cancel)"
	}
	return title
}

func (i requestItem) Description() string {
	desc := i.req.Description
	if i.req.HasProvider() {
		desc += fmt.Sprintf(" · %s, %s", i.req.ProviderName, i.req.ProviderPhone)
	}
	return desc
}

func (i requestItem) FilterValue() string { return i.req.Description }

type homeownerView struct {
	app  *App
	list list.Model
}

func newHomeownerView(app *App) *homeownerView {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "My Requests"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return &homeownerView{app: app, list: l}
}

func (v *homeownerView) setSize(width, height int) {
	v.list.SetSize(max(20, width-6), max(8, height-14))
}

// apply replaces the list rows with the view model's current snapshot.
// The cancel hint is surfaced only once a match exists (offered or
// accepted); a pending request can still be withdrawn with the key, the
// row just does not advertise it.
func (v *homeownerView) apply() {
	rows := v.app.home.Requests()
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		hinted := r.Status == request.StatusOffered || r.Status == request.StatusAccepted
		items[i] = requestItem{req: r, actionable: hinted && v.app.home.CanCancel(r)}
	}
	selected := v.list.Index()
	v.list.SetItems(items)
	if selected >= len(items) && len(items) > 0 {
		v.list.Select(len(items) - 1)
	}
}

func (v *homeownerView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := v.app
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "n":
		a.screen = screenNewRequest
		a.newReq = newRequestForm()
		a.statusMsg = "Describe the problem"
		return a, a.newReq.focusFirst()
	case "r":
		a.statusMsg = "Refreshing..."
		return a, a.track(a.refreshHomeowner())
	case "c":
		return v.cancelSelected()
	case "ctrl+l":
		return a.logout()
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return a, cmd
}

func (v *homeownerView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

// cancelSelected fires the cancel for the highlighted row. The affordance
// check happens here too, so a terminal or busy row gives feedback instead
// of a doomed call.
func (v *homeownerView) cancelSelected() (tea.Model, tea.Cmd) {
	a := v.app
	item, ok := v.list.SelectedItem().(requestItem)
	if !ok {
		return a, nil
	}
	if !a.home.CanCancel(item.req) {
		a.statusMsg = fmt.Sprintf("A %s request cannot be cancelled", item.req.Status.Label())
		return a, nil
	}
	id := item.req.ID
	a.statusMsg = "Cancelling..."
	return a, a.track(func() tea.Msg {
		return actionDoneMsg{verb: "cancel", id: id, err: a.home.Cancel(a.ctx, id)}
	})
}

func (v *homeownerView) view() string {
	sum := v.app.home.Summary()
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		tileStyle.Render(fmt.Sprintf("Active\n%s", tileValueStyle.Render(fmt.Sprintf("%d", sum.Active)))),
		tileStyle.Render(fmt.Sprintf("Completed\n%s", tileValueStyle.Render(fmt.Sprintf("%d", sum.Completed)))),
		tileStyle.Render(fmt.Sprintf("Total\n%s", tileValueStyle.Render(fmt.Sprintf("%d", sum.Total)))),
	)
	hint := formHintStyle.Render("n → new request    c → cancel    r → refresh    Ctrl+L → sign out    q → quit")
	return strings.Join([]string{tiles, v.list.View(), hint}, "\n")
}
