package chain

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/relay/internal/cachemanager"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/log"
)

func TestLogging_RecordsOutcome(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(nil) })

	r := &recorder{}
	c := New(Logging[event.Event](log.CatChain), r.on(event.KindTimer))

	require.True(t, c.Process(context.Background(), event.Timer(7)))
	require.False(t, c.Process(context.Background(), event.Mouse(2, 1, 1)))

	out := buf.String()
	require.Contains(t, out, "[chain] chain processed value=Timer 7 handled=true")
	require.Contains(t, out, "value=Button 2 (1, 1) handled=false")
}

func TestDedup_SuppressesRepeatsWithinWindow(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[time.Time]("dedup", time.Minute, time.Minute)
	r := &recorder{}
	c := New(Dedup[event.Event](cache, time.Minute, nil), r.on(event.KindKeypress))

	key := event.Keypress(false, false, 'j')
	require.True(t, c.Process(context.Background(), key))
	require.False(t, c.Process(context.Background(), key), "repeat inside the window is suppressed")
	require.True(t, c.Process(context.Background(), event.Keypress(false, false, 'k')))

	require.Equal(t, []string{"KEYPRESS", "KEYPRESS"}, r.fired)
	require.Equal(t, 2, cache.Len())
}

func TestDedup_AllowsAfterWindow(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[time.Time]("dedup", time.Minute, time.Hour)
	r := &recorder{}
	c := New(Dedup(cache, 10*time.Millisecond, func(e event.Event) string { return string(e.Kind()) }), r.on(event.KindMouse))

	require.True(t, c.Process(context.Background(), event.Mouse(1, 0, 0)))
	require.False(t, c.Process(context.Background(), event.Mouse(2, 3, 3)), "same key by kind")

	require.Eventually(t, func() bool {
		return c.Process(context.Background(), event.Mouse(1, 0, 0))
	}, time.Second, 5*time.Millisecond)
}
