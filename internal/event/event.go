package event

import (
	"fmt"
	"strings"
)

// Event is one occurrence. Events are values; once built they cannot change.
// The zero Event has no kind and is rejected by the multiplexer.
type Event struct {
	kind Kind

	// MOUSE
	button int
	x, y   int

	// KEYPRESS
	ctrl, shift bool
	key         rune

	// TIMER
	timerID uint64

	// NAMED
	name  string
	count int
}

// Mouse builds a MOUSE event for button at (x, y).
func Mouse(button, x, y int) Event {
	return Event{kind: KindMouse, button: button, x: x, y: y}
}

// Keypress builds a KEYPRESS event.
func Keypress(ctrl, shift bool, key rune) Event {
	return Event{kind: KindKeypress, ctrl: ctrl, shift: shift, key: key}
}

// Timer builds a TIMER event carrying id. Sources assign ids; call this
// directly only when replaying known ids.
func Timer(id uint64) Event {
	return Event{kind: KindTimer, timerID: id}
}

// Terminate builds the TERMINATE sentinel.
func Terminate() Event {
	return Event{kind: KindTerminate}
}

// NamedOption configures a named event.
type NamedOption func(*Event)

// WithCount sets the count carried by a named event (default 1).
func WithCount(n int) NamedOption {
	return func(e *Event) {
		e.count = n
	}
}

// Named builds a named event for the multiplexer. name must be a valid
// identifier and the count at least one.
func Named(name string, opts ...NamedOption) (Event, error) {
	if err := CheckIdentifier(name); err != nil {
		return Event{}, err
	}
	e := Event{kind: KindNamed, name: name, count: 1}
	for _, opt := range opts {
		opt(&e)
	}
	if e.count < 1 {
		return Event{}, fmt.Errorf("%w: %d for %q", ErrInvalidCount, e.count, name)
	}
	return e, nil
}

// MustNamed is Named for fixed names known to be valid. It panics otherwise.
func MustNamed(name string, opts ...NamedOption) Event {
	e, err := Named(name, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Kind returns the event's kind.
func (e Event) Kind() Kind { return e.kind }

// IsZero reports whether e is the zero Event.
func (e Event) IsZero() bool { return e.kind == "" }

// Button returns the mouse button of a MOUSE event.
func (e Event) Button() int { return e.button }

// X returns the horizontal position of a MOUSE event.
func (e Event) X() int { return e.x }

// Y returns the vertical position of a MOUSE event.
func (e Event) Y() int { return e.y }

// Ctrl reports whether ctrl was held for a KEYPRESS event.
func (e Event) Ctrl() bool { return e.ctrl }

// Shift reports whether shift was held for a KEYPRESS event.
func (e Event) Shift() bool { return e.shift }

// Key returns the key of a KEYPRESS event.
func (e Event) Key() rune { return e.key }

// TimerID returns the id of a TIMER event.
func (e Event) TimerID() uint64 { return e.timerID }

// Name returns the identifier of a NAMED event.
func (e Event) Name() string { return e.name }

// Count returns the count of a NAMED event.
func (e Event) Count() int { return e.count }

// Channel returns the multiplexer channel the event routes to: the name for
// NAMED events and the kind otherwise.
func (e Event) Channel() string {
	if e.kind == KindNamed {
		return e.name
	}
	return string(e.kind)
}

func (e Event) String() string {
	switch e.kind {
	case KindMouse:
		return fmt.Sprintf("Button %d (%d, %d)", e.button, e.x, e.y)
	case KindKeypress:
		var b strings.Builder
		b.WriteString("Key ")
		if e.ctrl {
			b.WriteString("Ctrl+")
		}
		if e.shift {
			b.WriteString("Shift+")
		}
		if e.key != 0 {
			b.WriteRune(e.key)
		}
		return b.String()
	case KindTimer:
		return fmt.Sprintf("Timer %d", e.timerID)
	case KindTerminate:
		return string(KindTerminate)
	case KindNamed:
		if e.count == 1 {
			return e.name
		}
		return fmt.Sprintf("%s x%d", e.name, e.count)
	}
	return "<empty event>"
}
