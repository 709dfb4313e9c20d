package chain

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zjrosen/relay/internal/event"
)

// OnKind returns a link consuming events of one kind.
func OnKind(kind event.Kind, action func(context.Context, event.Event)) Link[event.Event] {
	return Match(strings.ToLower(string(kind)), func(e event.Event) bool {
		return e.Kind() == kind
	}, action)
}

// DebugTap returns a tap writing "*DEBUG*: <event>" for every event.
func DebugTap(w io.Writer) Link[event.Event] {
	return Tap("debug", func(_ context.Context, e event.Event) {
		_, _ = fmt.Fprintf(w, "*DEBUG*: %s\n", e)
	})
}
