// Package strategy implements the seven modifier aggregation kinds and the
// registry that fixes the order they run in.
package strategy

import (
	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	"github.com/KirkDiggler/attribute-engine/internal/random"
)

// Strategy folds the modifiers of one kind into the running value. It is
// handed the full modifier set and filters by kind itself.
type Strategy func(current float64, mods []*modifier.Modifier, src random.Source) float64

// ForKind is the exhaustive kind -> strategy dispatch
func ForKind(kind modifier.Kind) (Strategy, bool) {
	switch kind {
	case modifier.KindAdd:
		return Add, true
	case modifier.KindPriorityAdd:
		return PriorityAdd, true
	case modifier.KindMul:
		return Mul, true
	case modifier.KindPriorityMul:
		return PriorityMul, true
	case modifier.KindAfterAdd:
		return AfterAdd, true
	case modifier.KindOverride:
		return Override, true
	case modifier.KindClamp:
		return Clamp, true
	}
	return nil, false
}

// Add sums every scalar and one fresh draw per range modifier of kind Add
func Add(current float64, mods []*modifier.Modifier, src random.Source) float64 {
	return current + sum(modifier.KindAdd, mods, src)
}

// AfterAdd is Add, run after the multiplicative kinds
func AfterAdd(current float64, mods []*modifier.Modifier, src random.Source) float64 {
	return current + sum(modifier.KindAfterAdd, mods, src)
}

// Mul multiplies by every scalar and one fresh draw per range modifier
func Mul(current float64, mods []*modifier.Modifier, src random.Source) float64 {
	return current * product(modifier.KindMul, mods, src)
}

// PriorityAdd adds only the winning PriorityAdd contribution
func PriorityAdd(current float64, mods []*modifier.Modifier, src random.Source) float64 {
	v, ok := prioritized(modifier.KindPriorityAdd, mods, src)
	if !ok {
		return current
	}
	return current + v
}

// PriorityMul multiplies by only the winning PriorityMul contribution
func PriorityMul(current float64, mods []*modifier.Modifier, src random.Source) float64 {
	v, ok := prioritized(modifier.KindPriorityMul, mods, src)
	if !ok {
		return current
	}
	return current * v
}

// Override replaces the running value with the winning Override contribution
func Override(current float64, mods []*modifier.Modifier, src random.Source) float64 {
	v, ok := prioritized(modifier.KindOverride, mods, src)
	if !ok {
		return current
	}
	return v
}

// Clamp bounds the running value by the highest-priority Clamp range.
// Scalar Clamp modifiers are ignored.
func Clamp(current float64, mods []*modifier.Modifier, _ random.Source) float64 {
	var best *modifier.Modifier
	for _, m := range mods {
		if m.Kind() != modifier.KindClamp || !m.IsRange() {
			continue
		}
		if best == nil || m.Priority() > best.Priority() {
			best = m
		}
	}
	if best == nil {
		return current
	}

	r := best.Range()
	return min(max(current, r.Low()), r.High())
}

func sum(kind modifier.Kind, mods []*modifier.Modifier, src random.Source) float64 {
	total := 0.0
	for _, m := range mods {
		if m.Kind() != kind {
			continue
		}
		total += contribution(m, src)
	}
	return total
}

func product(kind modifier.Kind, mods []*modifier.Modifier, src random.Source) float64 {
	total := 1.0
	for _, m := range mods {
		if m.Kind() != kind {
			continue
		}
		total *= contribution(m, src)
	}
	return total
}

// prioritized picks the highest-priority scalar and the highest-priority
// range of kind. When both exist the range applies only if its priority is
// strictly higher; equal priority goes to the scalar. Within one family the
// first modifier attached wins a tie.
func prioritized(kind modifier.Kind, mods []*modifier.Modifier, src random.Source) (float64, bool) {
	var scalar, ranged *modifier.Modifier
	for _, m := range mods {
		if m.Kind() != kind {
			continue
		}
		if m.IsRange() {
			if ranged == nil || m.Priority() > ranged.Priority() {
				ranged = m
			}
			continue
		}
		if scalar == nil || m.Priority() > scalar.Priority() {
			scalar = m
		}
	}

	switch {
	case scalar == nil && ranged == nil:
		return 0, false
	case ranged == nil:
		return scalar.Value(), true
	case scalar == nil:
		return contribution(ranged, src), true
	case scalar.Priority() >= ranged.Priority():
		return scalar.Value(), true
	default:
		return contribution(ranged, src), true
	}
}

func contribution(m *modifier.Modifier, src random.Source) float64 {
	if !m.IsRange() {
		return m.Value()
	}
	r := m.Range()
	return src.Uniform(r.Low(), r.High())
}
