package mediator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForm_EnablesOKOnlyWhenAllFieldsFilled(t *testing.T) {
	okClicks := 0
	f := NewForm(FormOptions{OnOK: func(string, string) { okClicks++ }})

	require.False(t, f.OK.Enabled(), "OK starts disabled")
	require.False(t, f.OK.Click(), "disabled click is ignored")
	require.Equal(t, 0, okClicks)

	f.Name.SetValue("Fred")
	require.False(t, f.OK.Enabled())

	f.Email.SetValue("x")
	require.True(t, f.OK.Enabled())

	require.True(t, f.OK.Click())
	require.Equal(t, 1, okClicks)

	f.Email.SetValue("")
	require.False(t, f.OK.Enabled())
	require.False(t, f.OK.Click())
	require.Equal(t, 1, okClicks, "clicking a disabled OK has no effect")
}

func TestForm_OKReceivesValues(t *testing.T) {
	var gotName, gotEmail string
	f := NewForm(FormOptions{OnOK: func(name, email string) { gotName, gotEmail = name, email }})

	f.Name.SetValue("Fred")
	f.Email.SetValue("fred@bloggers.com")
	f.OK.Click()

	require.Equal(t, "Fred", gotName)
	require.Equal(t, "fred@bloggers.com", gotEmail)
}

func TestForm_CancelAlwaysFires(t *testing.T) {
	cancels := 0
	f := NewForm(FormOptions{OnCancel: func() { cancels++ }})

	require.True(t, f.Cancel.Click())
	require.Equal(t, 1, cancels)
	require.False(t, f.OK.Enabled(), "derived stage still ran for the cancel click")
}

func TestForm_NilActionsAreSafe(t *testing.T) {
	f := NewForm(FormOptions{})
	f.Name.SetValue("a")
	f.Email.SetValue("b")
	require.True(t, f.OK.Click())
	require.True(t, f.Cancel.Click())
}

func TestText_SameValueDoesNotNotify(t *testing.T) {
	f := NewForm(FormOptions{})
	m := f.Mediator()

	f.Name.SetValue("Fred")
	require.Equal(t, 1, m.Notifications())

	f.Name.SetValue("Fred")
	require.Equal(t, 1, m.Notifications())

	f.Name.SetValue("Freda")
	require.Equal(t, 2, m.Notifications())
}

func TestButton_DisabledClickDoesNotNotify(t *testing.T) {
	f := NewForm(FormOptions{})
	m := f.Mediator()

	f.OK.Click()
	require.Equal(t, 0, m.Notifications())

	f.Cancel.Click()
	require.Equal(t, 1, m.Notifications())
}

func TestMediator_DerivedStageRunsForEveryNotification(t *testing.T) {
	a := NewText("a", "x")
	b := NewText("b", "y")
	ok := NewButton("ok", "OK")
	ok.SetEnabled(false)

	other := NewButton("other", "Other")
	m := New([]*Text{a, b}, ok, WithAction(other, nil))

	require.True(t, ok.Enabled(), "initial recompute sees both fields filled")
	require.Equal(t, []string{"update_ui", "clicked"}, m.Stages())

	// Force a stale flag, then a notification from an unrelated button must
	// still run the derived stage.
	ok.SetEnabled(false)
	other.Click()
	require.True(t, ok.Enabled())
}

func TestMediator_UnboundButtonOnlyRecomputes(t *testing.T) {
	fired := 0
	field := NewText("f", "")
	ok := NewButton("ok", "OK")
	m := New([]*Text{field}, ok, WithAction(ok, func() { fired++ }))

	field.SetValue("v")
	require.True(t, ok.Enabled())
	require.Equal(t, 0, fired, "text changes never trigger the action stage")

	ok.Click()
	require.Equal(t, 1, fired)
	require.Equal(t, 2, m.Notifications())
}

func TestMediator_NoFieldsEnablesOK(t *testing.T) {
	ok := NewButton("ok", "OK")
	ok.SetEnabled(false)
	New(nil, ok)
	require.True(t, ok.Enabled())
}

func TestWidgets_String(t *testing.T) {
	f := NewForm(FormOptions{})
	f.Name.SetValue("Fred")

	require.Equal(t, `Text("Fred")`, f.Name.String())
	require.Equal(t, `Button("OK") disabled`, f.OK.String())
	require.Equal(t, `Button("Cancel") enabled`, f.Cancel.String())
	require.Equal(t, `Text("Fred") Text("") Button("OK") disabled Button("Cancel") enabled`, f.String())
	require.Equal(t, "name", f.Name.WidgetName())
	require.Equal(t, "OK", f.OK.Label())
}
