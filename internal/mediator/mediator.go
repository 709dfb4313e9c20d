package mediator

import (
	"context"

	"github.com/zjrosen/relay/internal/chain"
	"github.com/zjrosen/relay/internal/log"
)

// Option configures a Mediator.
type Option func(*Mediator)

// WithAction binds fn to clicks on b.
func WithAction(b *Button, fn func()) Option {
	return func(m *Mediator) {
		if b != nil {
			m.actions[b] = fn
		}
	}
}

// Mediator keeps the OK button enabled exactly when every governed field is
// non-empty, and runs the action bound to a clicked button.
//
// Every notification runs a two-stage chain: the derived-state stage always
// runs, then the action stage consumes notifications from bound buttons.
// A Mediator is not safe for concurrent use.
type Mediator struct {
	fields        []*Text
	ok            *Button
	actions       map[*Button]func()
	chain         *chain.Chain[Widget]
	notifications int
}

// New creates a mediator over fields and ok and registers it as the notifier
// of each of them and of every button bound with WithAction. The derived
// state is computed once before New returns.
func New(fields []*Text, ok *Button, opts ...Option) *Mediator {
	m := &Mediator{
		fields:  fields,
		ok:      ok,
		actions: make(map[*Button]func()),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.chain = chain.New(
		chain.Tap("update_ui", func(context.Context, Widget) { m.recompute() }),
		chain.Match("clicked", m.isActionButton, m.runAction),
	)

	for _, f := range fields {
		f.notifier = m
	}
	if ok != nil {
		ok.notifier = m
	}
	for b := range m.actions {
		b.notifier = m
	}

	m.recompute()
	return m
}

// Changed implements Notifier.
func (m *Mediator) Changed(w Widget) {
	m.notifications++
	log.Debug(log.CatMediator, "widget changed", "widget", w.WidgetName())
	m.chain.Process(context.Background(), w)
}

// Notifications returns how many notifications the mediator has handled.
func (m *Mediator) Notifications() int { return m.notifications }

// Stages returns the stage names in execution order.
func (m *Mediator) Stages() []string { return m.chain.Names() }

func (m *Mediator) recompute() {
	if m.ok == nil {
		return
	}
	enabled := true
	for _, f := range m.fields {
		if f.Value() == "" {
			enabled = false
			break
		}
	}
	if enabled != m.ok.Enabled() {
		log.Debug(log.CatMediator, "ok button toggled", "enabled", enabled)
	}
	m.ok.SetEnabled(enabled)
}

func (m *Mediator) isActionButton(w Widget) bool {
	b, ok := w.(*Button)
	if !ok {
		return false
	}
	_, bound := m.actions[b]
	return bound
}

func (m *Mediator) runAction(_ context.Context, w Widget) {
	b := w.(*Button)
	log.Info(log.CatMediator, "action", "button", b.WidgetName())
	if fn := m.actions[b]; fn != nil {
		fn()
	}
}
