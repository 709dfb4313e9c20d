package formui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/relay/internal/mediator"
	"github.com/zjrosen/relay/internal/styles"
)

const inputWidth = 36

// View implements tea.Model. Zone markers are resolved here, so the zone
// manager must be initialized with zone.NewGlobal first.
func (m Model) View() string {
	return zone.Scan(m.render())
}

func (m Model) render() string {
	sections := []string{
		styles.TitleStyle.Render("Contact"),
		m.renderInput(focusName, "Name"),
		m.renderInput(focusEmail, "Email"),
		m.renderButtons(),
	}

	if entries := m.actions.entries; len(entries) > 0 {
		var b strings.Builder
		b.WriteString(styles.LabelStyle.Render("Actions"))
		for _, a := range entries {
			b.WriteString("\n  ")
			b.WriteString(a)
		}
		sections = append(sections, b.String())
	}

	if m.listener != nil {
		var b strings.Builder
		b.WriteString(styles.LabelStyle.Render("Log"))
		for _, line := range m.logs {
			if m.width > 0 {
				line = ansi.Truncate(line, m.width, "…")
			}
			b.WriteString("\n")
			b.WriteString(styles.MutedStyle.Render(line))
		}
		sections = append(sections, b.String())
	}

	if m.status != "" {
		status := m.status
		if m.width > 0 {
			status = wordwrap.String(status, m.width)
		}
		sections = append(sections, styles.MutedStyle.Render(status))
	}

	sections = append(sections, styles.MutedStyle.Render("tab next • shift+tab prev • enter click • esc quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderInput(focus int, label string) string {
	in := m.inputs[focus]
	focused := m.focus == focus
	labelColor := styles.FormTextInputLabelColor
	borderColor := styles.FormTextInputBorderColor
	if focused {
		labelColor = styles.FormTextInputFocusedLabelColor
		borderColor = styles.FormTextInputFocusedBorderColor
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(inputWidth).
		Render(in.View())
	return lipgloss.NewStyle().Foreground(labelColor).Render(label) + "\n" + zone.Mark(zoneIDs[focus], box)
}

func (m Model) renderButtons() string {
	ok := zone.Mark(zoneIDs[focusOK], buttonView(m.form.OK, m.focus == focusOK, true))
	cancel := zone.Mark(zoneIDs[focusCancel], buttonView(m.form.Cancel, m.focus == focusCancel, false))
	return lipgloss.JoinHorizontal(lipgloss.Top, ok, "  ", cancel)
}

func buttonView(b *mediator.Button, focused, primary bool) string {
	style := styles.SecondaryButtonStyle
	switch {
	case !b.Enabled():
		style = styles.DisabledButtonStyle
	case primary && focused:
		style = styles.PrimaryButtonFocusedStyle
	case primary:
		style = styles.PrimaryButtonStyle
	case focused:
		style = styles.SecondaryButtonFocusedStyle
	}
	return style.Render(b.Label())
}
