package mockrandom

import (
	"sync"
)

// ManualSource returns predetermined fractions of each requested range.
// A fraction of 0 yields the low bound and 1 yields the high bound.
type ManualSource struct {
	mu        sync.Mutex
	fractions []float64
	index     int
	calls     int
}

// NewManualSource creates a manual source seeded with fractions
func NewManualSource(fractions ...float64) *ManualSource {
	return &ManualSource{fractions: fractions}
}

// SetFractions replaces the queued fractions and rewinds
func (m *ManualSource) SetFractions(fractions ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fractions = fractions
	m.index = 0
}

// Calls reports how many samples were drawn
func (m *ManualSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Uniform implements random.Source. Once the queue is exhausted the last
// fraction repeats; an empty queue behaves as fraction 0.
func (m *ManualSource) Uniform(low, high float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if low > high {
		low, high = high, low
	}

	f := 0.0
	switch {
	case m.index < len(m.fractions):
		f = m.fractions[m.index]
		m.index++
	case len(m.fractions) > 0:
		f = m.fractions[len(m.fractions)-1]
	}

	return low + f*(high-low)
}
