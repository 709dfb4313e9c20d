package driver

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/mux"
	"github.com/zjrosen/relay/internal/styles"
)

// RenderChainReport renders a chain run summary.
func RenderChainReport(r ChainReport) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Chain run"))
	b.WriteString(" ")
	b.WriteString(styles.MutedStyle.Render(r.RunID))
	b.WriteString("\n")

	for _, k := range event.InputKinds {
		n := r.ByKind[k]
		b.WriteString(row(styles.KindStyle(string(k)).Render(fmt.Sprintf("%-9s", k)), fmt.Sprint(n)))
	}
	b.WriteString(row(styles.LabelStyle.Render(fmt.Sprintf("%-9s", "handled")), styles.SuccessStyle.Render(fmt.Sprint(r.Handled))))
	b.WriteString(row(styles.LabelStyle.Render(fmt.Sprintf("%-9s", "unhandled")), styles.WarningStyle.Render(fmt.Sprint(r.Unhandled))))
	b.WriteString(row(styles.LabelStyle.Render(fmt.Sprintf("%-9s", "stopped")), string(r.Stop)))

	return styles.BoxStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

// RenderTrafficReport renders a traffic run summary, one block per phase.
func RenderTrafficReport(r TrafficReport) string {
	blocks := make([]string, 0, len(r.Phases)+1)
	header := styles.TitleStyle.Render("Traffic run") + " " + styles.MutedStyle.Render(r.RunID)
	blocks = append(blocks, header)

	for i, p := range r.Phases {
		var b strings.Builder
		stateStyle := styles.SuccessStyle
		if p.State == mux.Dormant {
			stateStyle = styles.MutedStyle
		}
		fmt.Fprintf(&b, "%s %s\n",
			styles.LabelStyle.Render(fmt.Sprintf("phase %d", i+1)),
			stateStyle.Render(string(p.State)))
		b.WriteString(row(styles.LabelStyle.Render("events"), fmt.Sprint(p.Events)))
		if p.Dropped > 0 {
			b.WriteString(row(styles.LabelStyle.Render("dropped"), fmt.Sprint(p.Dropped)))
		}
		if p.Failures > 0 {
			b.WriteString(row(styles.LabelStyle.Render("failures"), styles.ErrorStyle.Render(fmt.Sprint(p.Failures))))
		}
		for _, c := range p.Counters {
			b.WriteString(row(styles.LabelStyle.Render(c.Label), styles.ValueStyle.Render(c.Text)))
		}
		blocks = append(blocks, styles.BoxStyle.Render(strings.TrimSuffix(b.String(), "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func row(label, value string) string {
	return "  " + label + "  " + value + "\n"
}
