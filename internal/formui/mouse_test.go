package formui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/relay/internal/log"
)

// zoneFor renders m until the zone manager has registered id.
func zoneFor(t *testing.T, m Model, id string) *zone.ZoneInfo {
	t.Helper()
	var z *zone.ZoneInfo
	for range 50 {
		_ = m.View()
		z = zone.Get(id)
		if z != nil && !z.IsZero() {
			return z
		}
		// Registration happens on the zone manager's worker goroutine.
		time.Sleep(time.Millisecond)
	}
	require.FailNow(t, "zone not registered", id)
	return nil
}

func click(m Model, z *zone.ZoneInfo) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.MouseMsg{
		X:      z.StartX + (z.EndX-z.StartX)/2,
		Y:      z.StartY,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionRelease,
	})
	return next.(Model), cmd
}

func TestMouse_ClickButtons(t *testing.T) {
	m := New(Options{})
	m = typeText(t, m, "Fred")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "fred@bloggers.com")

	m, _ = click(m, zoneFor(t, m, zoneIDs[focusOK]))
	require.Equal(t, focusOK, m.Focused())
	require.Equal(t, []string{`OK name="Fred" email="fred@bloggers.com"`}, m.Actions())

	m, _ = click(m, zoneFor(t, m, zoneIDs[focusCancel]))
	require.Equal(t, focusCancel, m.Focused())
	require.Equal(t, "Cancel", m.Actions()[1])
}

func TestMouse_ClickFieldFocuses(t *testing.T) {
	m := New(Options{})
	m, _ = press(t, m, tea.KeyShiftTab)
	require.Equal(t, focusCancel, m.Focused())

	m, cmd := click(m, zoneFor(t, m, zoneIDs[focusEmail]))
	require.Equal(t, focusEmail, m.Focused())
	require.NotNil(t, cmd)
	require.Empty(t, m.Actions())
}

func TestMouse_IgnoresOtherEvents(t *testing.T) {
	m := New(Options{})
	z := zoneFor(t, m, zoneIDs[focusOK])

	next, cmd := m.Update(tea.MouseMsg{
		X:      z.StartX,
		Y:      z.StartY,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionPress,
	})
	require.Nil(t, cmd)
	require.Equal(t, focusName, next.(Model).Focused(), "press without release does nothing")

	next, cmd = m.Update(tea.MouseMsg{X: 500, Y: 500, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	require.Nil(t, cmd)
	require.Equal(t, focusName, next.(Model).Focused(), "click outside every zone")
}

func TestView_TruncatesLogLinesToWidth(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(nil) })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := New(Options{Listener: log.NewListener(ctx)})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	m = next.(Model)
	m.logs = []string{strings.Repeat("x", 60)}

	view := m.View()
	require.NotContains(t, view, strings.Repeat("x", 21))
	require.Contains(t, view, strings.Repeat("x", 19)+"…")
}

func TestProgram_TypeAndQuit(t *testing.T) {
	tm := teatest.NewTestModel(t, New(Options{}), teatest.WithInitialTermSize(80, 24))

	tm.Type("Fred")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("fred@bloggers.com")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})

	fm, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.True(t, ok)
	require.Equal(t, "Fred", fm.Form().Name.Value())
	require.Equal(t, "fred@bloggers.com", fm.Form().Email.Value())
	require.Equal(t, []string{`OK name="Fred" email="fred@bloggers.com"`}, fm.Actions())
}

func TestView_WrapsStatusToWidth(t *testing.T) {
	m := New(Options{ConfigChanges: make(chan struct{}), Reload: func() error {
		return errors.New("yaml: line 3: mapping values are not allowed here")
	}})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	next, _ = next.(Model).Update(configChangedMsg{})
	m = next.(Model)

	view := m.View()
	require.Contains(t, view, "config reload failed: yaml:")
	require.NotContains(t, view, m.Status(), "long status is wrapped")
}
