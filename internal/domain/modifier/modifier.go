// Package modifier defines the typed, prioritized numeric contributions
// attached to properties.
package modifier

import "fmt"

// Range is an inclusive (X, Y) interval sampled uniformly on evaluation
type Range struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Low returns the smaller bound
func (r Range) Low() float64 {
	return min(r.X, r.Y)
}

// High returns the larger bound
func (r Range) High() float64 {
	return max(r.X, r.Y)
}

// Modifier is immutable once constructed. Properties track modifiers by
// pointer, so two modifiers with identical fields are distinct stack entries.
type Modifier struct {
	kind     Kind
	priority int
	value    float64
	rng      Range
	isRange  bool
}

// NewScalar creates a modifier contributing a fixed value
func NewScalar(kind Kind, priority int, value float64) *Modifier {
	return &Modifier{kind: kind, priority: priority, value: value}
}

// NewRange creates a modifier whose contribution is drawn from [low, high]
// every time its property recomputes
func NewRange(kind Kind, priority int, low, high float64) *Modifier {
	return &Modifier{kind: kind, priority: priority, rng: Range{X: low, Y: high}, isRange: true}
}

func (m *Modifier) Kind() Kind     { return m.kind }
func (m *Modifier) Priority() int  { return m.priority }
func (m *Modifier) IsRange() bool  { return m.isRange }
func (m *Modifier) Value() float64 { return m.value }
func (m *Modifier) Range() Range   { return m.rng }

// IsRandom reports whether the modifier makes its property's value
// non-deterministic. Clamp bounds are ranges but never sampled.
func (m *Modifier) IsRandom() bool {
	return m.isRange && m.kind != KindClamp
}

// Clone returns a new instance with the same fields, for applying one
// logical modifier to several properties
func (m *Modifier) Clone() *Modifier {
	c := *m
	return &c
}

func (m *Modifier) String() string {
	if m.isRange {
		return fmt.Sprintf("%s[p%d](%g..%g)", m.kind, m.priority, m.rng.X, m.rng.Y)
	}
	return fmt.Sprintf("%s[p%d](%g)", m.kind, m.priority, m.value)
}
