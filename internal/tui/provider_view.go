// internal/tui/provider_view.go
//
// The provider dashboard: stats tiles, the available-offer list, and the
// assigned-job list side by side. Tab moves focus between the two lists;
// the action keys apply to the focused list's highlighted row and stay
// inert while a call for that row is in flight.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

type providerFocus int

const (
	focusAvailable providerFocus = iota
	focusJobs
)

// offerItem implements list.Item for a row in the available list.
type offerItem struct {
	req        request.ServiceRequest
	actionable bool
}

func (i offerItem) Title() string {
	title := fmt.Sprintf("%s · %s", i.req.ServiceType.Label(), i.req.Address)
	if i.actionable {
		title += "  (a → accept, x → decline)"
	}
	return title
}

func (i offerItem) Description() string {
	return fmt.Sprintf("%s · requested by %s for %s", i.req.Description, i.req.UserName, i.req.PreferredDate)
}

func (i offerItem) FilterValue() string { return i.req.Description }

// jobItem implements list.Item for a row in the assigned-job list.
type jobItem struct {
	req  request.ServiceRequest
	hint string
}

func (i jobItem) Title() string {
	title := fmt.Sprintf("%s · %s", i.req.ServiceType.Label(), i.req.Status.Label())
	if i.hint != "" {
		title += "  (" + i.hint + ")"
	}
	return title
}

func (i jobItem) Description() string {
	return fmt.Sprintf("%s · %s, %s", i.req.Description, i.req.UserName, i.req.UserPhone)
}

func (i jobItem) FilterValue() string { return i.req.Description }

type providerView struct {
	app       *App
	available list.Model
	jobs      list.Model
	focus     providerFocus
}

func newProviderView(app *App) *providerView {
	available := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	available.Title = "Available Jobs"
	available.SetShowStatusBar(false)
	available.SetFilteringEnabled(false)
	jobs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	jobs.Title = "My Jobs"
	jobs.SetShowStatusBar(false)
	jobs.SetFilteringEnabled(false)
	return &providerView{app: app, available: available, jobs: jobs}
}

func (v *providerView) setSize(width, height int) {
	half := max(20, width/2-4)
	v.available.SetSize(half, max(8, height-14))
	v.jobs.SetSize(half, max(8, height-14))
}

// apply replaces both lists with the view model's current snapshots.
func (v *providerView) apply() {
	offers := v.app.prov.Available()
	offerItems := make([]list.Item, len(offers))
	for i, r := range offers {
		offerItems[i] = offerItem{req: r, actionable: v.app.prov.CanAct(r, request.ActionAccept)}
	}
	v.available.SetItems(offerItems)
	if idx := v.available.Index(); idx >= len(offerItems) && len(offerItems) > 0 {
		v.available.Select(len(offerItems) - 1)
	}

	jobs := v.app.prov.Jobs()
	jobItems := make([]list.Item, len(jobs))
	for i, r := range jobs {
		jobItems[i] = jobItem{req: r, hint: v.jobHint(r)}
	}
	v.jobs.SetItems(jobItems)
	if idx := v.jobs.Index(); idx >= len(jobItems) && len(jobItems) > 0 {
		v.jobs.Select(len(jobItems) - 1)
	}
}

func (v *providerView) jobHint(r request.ServiceRequest) string {
	switch {
	case v.app.prov.CanAct(r, request.ActionStart):
		return "s → start"
	case v.app.prov.CanAct(r, request.ActionComplete):
		return "d → complete"
	default:
		return ""
	}
}

func (v *providerView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := v.app
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab", "right", "left":
		if v.focus == focusAvailable {
			v.focus = focusJobs
		} else {
			v.focus = focusAvailable
		}
		return a, nil
	case "r":
		a.statusMsg = "Refreshing..."
		return a, a.track(a.refreshProvider())
	case "a", "enter":
		if v.focus == focusAvailable {
			return v.offerAction("accept")
		}
	case "x":
		if v.focus == focusAvailable {
			return v.offerAction("reject")
		}
	case "s":
		if v.focus == focusJobs {
			return v.jobAction("start", request.ActionStart)
		}
	case "d":
		if v.focus == focusJobs {
			return v.jobAction("complete", request.ActionComplete)
		}
	case "ctrl+l":
		return a.logout()
	}
	var cmd tea.Cmd
	if v.focus == focusAvailable {
		v.available, cmd = v.available.Update(msg)
	} else {
		v.jobs, cmd = v.jobs.Update(msg)
	}
	return a, cmd
}

func (v *providerView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if v.focus == focusAvailable {
		v.available, cmd = v.available.Update(msg)
	} else {
		v.jobs, cmd = v.jobs.Update(msg)
	}
	return cmd
}

func (v *providerView) offerAction(verb string) (tea.Model, tea.Cmd) {
	a := v.app
	item, ok := v.available.SelectedItem().(offerItem)
	if !ok {
		return a, nil
	}
	if !a.prov.CanAct(item.req, request.ActionAccept) {
		a.statusMsg = "That offer is busy or no longer open"
		return a, nil
	}
	id := item.req.ID
	a.statusMsg = "Working..."
	return a, a.track(func() tea.Msg {
		var err error
		if verb == "accept" {
			err = a.prov.Accept(a.ctx, id)
		} else {
			err = a.prov.Reject(a.ctx, id)
		}
		return actionDoneMsg{verb: verb, id: id, err: err}
	})
}

func (v *providerView) jobAction(verb string, action request.Action) (tea.Model, tea.Cmd) {
	a := v.app
	item, ok := v.jobs.SelectedItem().(jobItem)
	if !ok {
		return a, nil
	}
	if !a.prov.CanAct(item.req, action) {
		a.statusMsg = fmt.Sprintf("A %s job cannot be %sed", item.req.Status.Label(), verb)
		return a, nil
	}
	id := item.req.ID
	a.statusMsg = "Working..."
	return a, a.track(func() tea.Msg {
		var err error
		if action == request.ActionStart {
			err = a.prov.Start(a.ctx, id)
		} else {
			err = a.prov.Complete(a.ctx, id)
		}
		return actionDoneMsg{verb: verb, id: id, err: err}
	})
}

func (v *providerView) view() string {
	stats := v.app.prov.Stats()
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		tileStyle.Render(fmt.Sprintf("Completed\n%s", tileValueStyle.Render(fmt.Sprintf("%d", stats.JobsCompleted)))),
		tileStyle.Render(fmt.Sprintf("Active\n%s", tileValueStyle.Render(fmt.Sprintf("%d", stats.ActiveJobs)))),
		tileStyle.Render(fmt.Sprintf("Rating\n%s", tileValueStyle.Render(fmt.Sprintf("%.1f", stats.Rating)))),
		tileStyle.Render(fmt.Sprintf("Earnings\n%s", tileValueStyle.Render(fmt.Sprintf("$%.0f", stats.Earnings)))),
	)
	lists := lipgloss.JoinHorizontal(lipgloss.Top, v.available.View(), "  ", v.jobs.View())
	hint := formHintStyle.Render("Tab → switch list    a/x → accept/decline    s/d → start/complete    r → refresh    Ctrl+L → sign out")
	return strings.Join([]string{tiles, lists, hint}, "\n")
}
