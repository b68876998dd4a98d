package random

//go:generate mockgen -destination=mock/mock_source.go -package=mockrandom -source=source.go

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source draws the random samples range modifiers need.
// This allows us to inject deterministic implementations for testing.
type Source interface {
	// Uniform returns a value uniformly distributed over [low, high].
	// When low > high the bounds are swapped.
	Uniform(low, high float64) float64
}

// pcgSource implements Source on a PCG generator
type pcgSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a seeded Source. A zero seed seeds from the clock.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &pcgSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Uniform implements Source.Uniform
func (s *pcgSource) Uniform(low, high float64) float64 {
	if low > high {
		low, high = high, low
	}
	if low == high {
		return low
	}

	s.mu.Lock()
	f := s.rng.Float64()
	s.mu.Unlock()

	return low + f*(high-low)
}
