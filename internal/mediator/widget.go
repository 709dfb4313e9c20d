// Package mediator centralizes cross-widget reactions for a small form.
//
// Widgets never reference each other. Each one reports real changes to its
// Notifier, and the Mediator recomputes derived state and runs button
// actions in response.
package mediator

import "fmt"

// Widget is anything a Mediator governs.
type Widget interface {
	WidgetName() string
}

// Notifier receives change notifications from widgets.
type Notifier interface {
	Changed(w Widget)
}

// Text is a single-line text field.
type Text struct {
	name     string
	value    string
	notifier Notifier
}

// NewText creates a text field holding initial.
func NewText(name, initial string) *Text {
	return &Text{name: name, value: initial}
}

// WidgetName implements Widget.
func (t *Text) WidgetName() string { return t.name }

// Value returns the current text.
func (t *Text) Value() string { return t.value }

// SetValue replaces the text. Setting the current value again does nothing;
// any real change notifies the mediator.
func (t *Text) SetValue(v string) {
	if v == t.value {
		return
	}
	t.value = v
	if t.notifier != nil {
		t.notifier.Changed(t)
	}
}

func (t *Text) String() string { return fmt.Sprintf("Text(%q)", t.value) }

// Button is a clickable button with an enabled flag.
type Button struct {
	name     string
	label    string
	enabled  bool
	notifier Notifier
}

// NewButton creates an enabled button.
func NewButton(name, label string) *Button {
	return &Button{name: name, label: label, enabled: true}
}

// WidgetName implements Widget.
func (b *Button) WidgetName() string { return b.name }

// Label returns the button text.
func (b *Button) Label() string { return b.label }

// Enabled reports whether clicks are accepted.
func (b *Button) Enabled() bool { return b.enabled }

// SetEnabled sets the enabled flag. It does not notify.
func (b *Button) SetEnabled(enabled bool) { b.enabled = enabled }

// Click notifies the mediator when the button is enabled and reports whether
// it did. Clicks on a disabled button are ignored.
func (b *Button) Click() bool {
	if !b.enabled {
		return false
	}
	if b.notifier != nil {
		b.notifier.Changed(b)
	}
	return true
}

func (b *Button) String() string {
	state := "disabled"
	if b.enabled {
		state = "enabled"
	}
	return fmt.Sprintf("Button(%q) %s", b.label, state)
}
