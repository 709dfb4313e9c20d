package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrafficSource_Defaults(t *testing.T) {
	src, err := NewTrafficSource(WithTrafficSeed(11))
	require.NoError(t, err)

	seen := map[string]int{}
	for e := range src.Events(1500) {
		require.Equal(t, KindNamed, e.Kind())
		require.GreaterOrEqual(t, e.Count(), 1)
		require.LessOrEqual(t, e.Count(), DefaultMaxCount)
		seen[e.Name()]++
	}

	require.Len(t, seen, 3)
	require.Greater(t, seen[Cars], seen[Vans])
	require.Greater(t, seen[Vans], seen[Trucks])
}

func TestTrafficSource_EventsCount(t *testing.T) {
	src, err := NewTrafficSource()
	require.NoError(t, err)

	n := 0
	for range src.Events(100) {
		n++
	}
	require.Equal(t, 100, n)
}

func TestTrafficSource_SeededIsDeterministic(t *testing.T) {
	a, err := NewTrafficSource(WithTrafficSeed(99))
	require.NoError(t, err)
	b, err := NewTrafficSource(WithTrafficSeed(99))
	require.NoError(t, err)

	for range 50 {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestNewTrafficSource_Validation(t *testing.T) {
	_, err := NewTrafficSource(WithTrafficWeights(map[string]int{"bad name": 1}))
	require.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = NewTrafficSource(WithTrafficWeights(map[string]int{Cars: 0}))
	require.ErrorIs(t, err, ErrInvalidWeights)

	_, err = NewTrafficSource(WithTrafficWeights(map[string]int{Cars: -2, Vans: 4}))
	require.ErrorIs(t, err, ErrInvalidWeights)

	_, err = NewTrafficSource(WithMaxCount(0))
	require.ErrorIs(t, err, ErrInvalidCount)
}

func TestTrafficSource_SingleName(t *testing.T) {
	src, err := NewTrafficSource(WithTrafficWeights(map[string]int{"bikes": 1}), WithMaxCount(1))
	require.NoError(t, err)

	for e := range src.Events(20) {
		require.Equal(t, "bikes", e.Name())
		require.Equal(t, 1, e.Count())
	}
}
