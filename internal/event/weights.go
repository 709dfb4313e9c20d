package event

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Weights maps each input kind to its relative likelihood.
type Weights map[Kind]int

// DefaultWeights returns the default input mix: mostly keypresses, some mouse
// clicks and timers, and a rare TERMINATE.
func DefaultWeights() Weights {
	return Weights{
		KindMouse:     7,
		KindKeypress:  11,
		KindTimer:     5,
		KindTerminate: 1,
	}
}

// Validate checks that every key is an input kind, no weight is negative and
// at least one weight is positive.
func (w Weights) Validate() error {
	total := 0
	for k, n := range w {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidWeights, k)
		}
		if !slices.Contains(InputKinds, k) {
			return fmt.Errorf("%w: %q is not an input kind", ErrInvalidWeights, k)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative weight %d for %s", ErrInvalidWeights, n, k)
		}
		total += n
	}
	if total == 0 {
		return fmt.Errorf("%w: no positive weight", ErrInvalidWeights)
	}
	return nil
}

// picker draws items by cumulative weight. Items with zero weight are never drawn.
type picker[T any] struct {
	items []T
	cum   []int
	total int
}

func newPicker[T any](items []T, weight func(T) int) picker[T] {
	p := picker[T]{}
	for _, it := range items {
		w := weight(it)
		if w <= 0 {
			continue
		}
		p.total += w
		p.items = append(p.items, it)
		p.cum = append(p.cum, p.total)
	}
	return p
}

func (p picker[T]) pick(r *rand.Rand) T {
	n := r.IntN(p.total)
	i, _ := slices.BinarySearch(p.cum, n+1)
	return p.items[i]
}
