package event

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewSource_InvalidWeights(t *testing.T) {
	tests := []struct {
		name string
		w    Weights
	}{
		{"empty", Weights{}},
		{"all zero", Weights{KindMouse: 0, KindTimer: 0}},
		{"negative", Weights{KindMouse: 3, KindTimer: -1}},
		{"named kind", Weights{KindNamed: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(WithWeights(tt.w))
			require.ErrorIs(t, err, ErrInvalidWeights)
		})
	}
}

func TestWeights_ValidateNamesTheProblem(t *testing.T) {
	err := Weights{Kind("RESIZE"): 1}.Validate()
	require.ErrorIs(t, err, ErrInvalidWeights)
	require.ErrorContains(t, err, `unknown kind "RESIZE"`)

	err = Weights{KindNamed: 1}.Validate()
	require.ErrorIs(t, err, ErrInvalidWeights)
	require.ErrorContains(t, err, "is not an input kind")
}

func TestSource_SingleKindWeights(t *testing.T) {
	src, err := NewSource(WithWeights(Weights{KindMouse: 1}), WithSeed(1))
	require.NoError(t, err)

	for range 200 {
		e := src.Next()
		require.Equal(t, KindMouse, e.Kind())
		require.GreaterOrEqual(t, e.Button(), 1)
		require.LessOrEqual(t, e.Button(), 3)
		require.GreaterOrEqual(t, e.X(), 0)
		require.LessOrEqual(t, e.X(), 640)
		require.GreaterOrEqual(t, e.Y(), 0)
		require.LessOrEqual(t, e.Y(), 480)
	}
}

func TestSource_KeypressPayload(t *testing.T) {
	src, err := NewSource(WithWeights(Weights{KindKeypress: 1}), WithSeed(7))
	require.NoError(t, err)

	for range 200 {
		e := src.Next()
		require.Equal(t, KindKeypress, e.Kind())
		require.GreaterOrEqual(t, e.Key(), 'a')
		require.LessOrEqual(t, e.Key(), 'z')
	}
}

func TestSource_SeededIsDeterministic(t *testing.T) {
	a, err := NewSource(WithSeed(42))
	require.NoError(t, err)
	b, err := NewSource(WithSeed(42))
	require.NoError(t, err)

	for range 100 {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestSource_GeneratesEveryKind(t *testing.T) {
	src, err := NewSource(WithSeed(3))
	require.NoError(t, err)

	seen := map[Kind]int{}
	for range 2000 {
		seen[src.Next().Kind()]++
	}
	for _, k := range InputKinds {
		require.Positive(t, seen[k], "kind %s never generated", k)
	}
	require.Greater(t, seen[KindKeypress], seen[KindTerminate])
}

func TestSource_TimerIDsStrictlyIncrease(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		start := rapid.Uint64Range(0, 1<<20).Draw(t, "start")
		n := rapid.IntRange(1, 300).Draw(t, "n")

		src, err := NewSource(WithRand(rand.New(rand.NewPCG(seed, seed))), WithStartTimerID(start))
		if err != nil {
			t.Fatal(err)
		}

		var last uint64
		seenTimer := false
		for range n {
			e := src.Next()
			if e.Kind() != KindTimer {
				continue
			}
			if seenTimer && e.TimerID() <= last {
				t.Fatalf("timer id %d after %d", e.TimerID(), last)
			}
			if !seenTimer && e.TimerID() != start {
				t.Fatalf("first timer id %d, want %d", e.TimerID(), start)
			}
			last, seenTimer = e.TimerID(), true
		}
	})
}

func TestSource_IndependentCounters(t *testing.T) {
	a, err := NewSource()
	require.NoError(t, err)
	b, err := NewSource()
	require.NoError(t, err)

	require.Equal(t, uint64(0), a.NextTimer().TimerID())
	require.Equal(t, uint64(1), a.NextTimer().TimerID())
	require.Equal(t, uint64(0), b.NextTimer().TimerID())
}

func TestSource_ResetIsExplicit(t *testing.T) {
	src, err := NewSource(WithStartTimerID(10))
	require.NoError(t, err)

	_, ok := src.LastTimerID()
	require.False(t, ok)

	src.NextTimer()
	src.NextTimer()
	last, ok := src.LastTimerID()
	require.True(t, ok)
	require.Equal(t, uint64(11), last)
	require.Equal(t, uint64(2), src.TimersIssued())

	src.Reset()
	require.Equal(t, uint64(0), src.TimersIssued())
	require.Equal(t, uint64(10), src.NextTimer().TimerID())
}

func TestSource_ConcurrentTimersNeverRepeat(t *testing.T) {
	src, err := NewSource()
	require.NoError(t, err)

	const workers, perWorker = 8, 250
	ids := make(chan uint64, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				ids <- src.NextTimer().TimerID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "timer id %d issued twice", id)
		seen[id] = struct{}{}
	}
	require.Len(t, seen, workers*perWorker)
}

func TestSource_EventsStopsWhenRangeBreaks(t *testing.T) {
	src, err := NewSource(WithSeed(5))
	require.NoError(t, err)

	n := 0
	for range src.Events() {
		n++
		if n == 25 {
			break
		}
	}
	require.Equal(t, 25, n)
}
