// Package rng centralizes randomness so behavior can be replayed with a fixed seed.
package rng

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the randomness the engine depends on.
type Source interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// IntN returns a value in [0,n). It panics if n <= 0.
	IntN(n int) int
}

// Locked is a goroutine-safe PCG source.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

func New(seed uint64) *Locked {
	return &Locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded is used by binaries. Tests should use New.
func NewTimeSeeded() *Locked {
	return New(uint64(time.Now().UnixNano()))
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Chance runs a Bernoulli trial. p <= 0 never succeeds.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	return src.Float64() < p
}

// Between returns a uniform value in [lo,hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntBetween returns a uniform integer in [lo,hi].
func IntBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniform element. The zero value is returned for an empty slice.
func Pick[T any](src Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[src.IntN(len(items))]
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Weighted is one outcome of a categorical draw.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// PickWeighted draws from a categorical distribution. Weights need not sum to 1.
func PickWeighted[T any](src Source, options []Weighted[T]) T {
	var total float64
	for _, o := range options {
		total += o.Weight
	}
	var zero T
	if len(options) == 0 {
		return zero
	}
	r := src.Float64() * total
	for _, o := range options {
		r -= o.Weight
		if r < 0 {
			return o.Value
		}
	}
	return options[len(options)-1].Value
}
