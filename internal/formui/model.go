// Package formui is a terminal front end for the mediated name/email form.
package formui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/mediator"
)

const maxLogLines = 6

// Focus positions, in tab order.
const (
	focusName = iota
	focusEmail
	focusOK
	focusCancel
	focusCount
)

// zoneIDs maps each focus position to its mouse zone.
var zoneIDs = [focusCount]string{
	focusName:   "relay-form-name",
	focusEmail:  "relay-form-email",
	focusOK:     "relay-form-ok",
	focusCancel: "relay-form-cancel",
}

// actionLog is shared by every copy of a Model so the form callbacks can
// record clicks.
type actionLog struct {
	entries []string
}

// Options configures a Model.
type Options struct {
	// Listener streams log entries into the tail pane. Nil hides the pane.
	Listener *log.LogListener
	// ConfigChanges signals that the config file changed; Reload is then
	// called to re-apply it.
	ConfigChanges <-chan struct{}
	Reload        func() error
}

// configChangedMsg is delivered when the watched config file changes.
type configChangedMsg struct{}

// Model is the Bubble Tea model for the form.
type Model struct {
	form     *mediator.Form
	inputs   []textinput.Model
	focus    int
	actions  *actionLog
	logs     []string
	listener *log.LogListener
	changes  <-chan struct{}
	reload   func() error
	status   string
	width    int
}

// New builds the form and its inputs. Focus starts on the name field.
func New(opts Options) Model {
	actions := &actionLog{}
	form := mediator.NewForm(mediator.FormOptions{
		OnOK: func(name, email string) {
			actions.entries = append(actions.entries, fmt.Sprintf("OK name=%q email=%q", name, email))
		},
		OnCancel: func() {
			actions.entries = append(actions.entries, "Cancel")
		},
	})

	name := textinput.New()
	name.Placeholder = "Fred Bloggers"
	name.Prompt = ""
	name.Focus()

	email := textinput.New()
	email.Placeholder = "fred@bloggers.com"
	email.Prompt = ""

	return Model{
		form:     form,
		inputs:   []textinput.Model{name, email},
		focus:    focusName,
		actions:  actions,
		listener: opts.Listener,
		changes:  opts.ConfigChanges,
		reload:   opts.Reload,
	}
}

// waitForChange blocks until the config file changes.
func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForChange()}
	if m.listener != nil {
		cmds = append(cmds, m.listener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case configChangedMsg:
		m.status = "config reloaded"
		if m.reload != nil {
			if err := m.reload(); err != nil {
				log.ErrorErr(log.CatUI, "config reload failed", err)
				m.status = "config reload failed: " + err.Error()
			}
		}
		return m, m.waitForChange()

	case log.LogEvent:
		m.logs = append(m.logs, trimNewline(msg.Payload))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		if m.listener != nil {
			return m, m.listener.Listen()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			return m.handleClick(msg)
		}
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Next):
		return m.setFocus((m.focus + 1) % focusCount), textinput.Blink
	case key.Matches(msg, keys.Prev):
		return m.setFocus((m.focus + focusCount - 1) % focusCount), textinput.Blink
	case key.Matches(msg, keys.Enter):
		switch m.focus {
		case focusOK:
			if !m.form.OK.Click() {
				log.Debug(log.CatUI, "ignored click on disabled button", "button", m.form.OK.WidgetName())
			}
			return m, nil
		case focusCancel:
			m.form.Cancel.Click()
			return m, nil
		default:
			return m.setFocus(m.focus + 1), textinput.Blink
		}
	}
	return m.updateFocusedInput(msg)
}

// handleClick focuses the control under the pointer and clicks it if it is
// a button. Zones are registered by View.
func (m Model) handleClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	for focus, id := range zoneIDs {
		z := zone.Get(id)
		if z == nil || !z.InBounds(msg) {
			continue
		}
		m = m.setFocus(focus)
		switch focus {
		case focusOK:
			m.form.OK.Click()
		case focusCancel:
			m.form.Cancel.Click()
		}
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus >= len(m.inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.syncFields()
	return m, cmd
}

// syncFields pushes the input values into the mediated widgets. Unchanged
// values are ignored by the widgets themselves.
func (m Model) syncFields() {
	m.form.Name.SetValue(m.inputs[focusName].Value())
	m.form.Email.SetValue(m.inputs[focusEmail].Value())
}

func (m Model) setFocus(focus int) Model {
	inputs := make([]textinput.Model, len(m.inputs))
	copy(inputs, m.inputs)
	for i := range inputs {
		if i == focus {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	m.inputs = inputs
	m.focus = focus
	return m
}

// Form returns the mediated form.
func (m Model) Form() *mediator.Form { return m.form }

// Actions returns the recorded button actions, oldest first.
func (m Model) Actions() []string {
	return append([]string(nil), m.actions.entries...)
}

// Status returns the last config reload status, if any.
func (m Model) Status() string { return m.status }

// Focused returns the tab position of the focused control.
func (m Model) Focused() int { return m.focus }

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}

var _ tea.Model = Model{}
