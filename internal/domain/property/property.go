package property

import (
	"log"
	"slices"

	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/events"
)

// Calculator derives a dependent's new base value from the value of the
// property it depends on
type Calculator func(dependency *Property, value float64) float64

// Property is a base value plus an ordered modifier stack, with the folded
// result memoized until the next mutation
type Property struct {
	engine *Engine
	id     string

	base      float64
	modifiers []*modifier.Modifier

	value    float64
	dirty    bool
	computed bool

	// bumped on every mutation that changes what dependents should see
	version uint64

	depth        int
	dependencies []*Property
	dependents   []*Property
	calculators  map[*Property]Calculator

	randomDependency bool
}

// NewProperty creates a property with no modifiers and no edges
func (e *Engine) NewProperty(id string, base float64) *Property {
	return &Property{
		engine:      e,
		id:          id,
		base:        base,
		dirty:       true,
		calculators: make(map[*Property]Calculator),
	}
}

// ID returns the property identity
func (p *Property) ID() string {
	return p.id
}

// BaseValue returns the base value without evaluating modifiers
func (p *Property) BaseValue() float64 {
	return p.base
}

// Value returns the memoized value, recomputing it first when dirty
func (p *Property) Value() float64 {
	if !p.dirty {
		return p.value
	}

	v, err := p.engine.registry.Apply(p.base, p.modifiers, p.engine.source)
	if err != nil {
		// NewEngine validated the registry and registries never lose kinds
		panic(apperr.Wrapf(err, "recompute property %q", p.id))
	}

	old, had := p.value, p.computed
	p.value = v
	p.dirty = false
	p.computed = true

	if had && p.engine.changed(old, v) {
		p.engine.emit(events.Event{
			Type:       events.ValueChanged,
			PropertyID: p.id,
			Old:        old,
			New:        v,
		})
	}
	return v
}

// SetBaseValue replaces the base value and pushes the new computed value to
// every dependent before returning
func (p *Property) SetBaseValue(v float64) {
	old := p.base
	p.base = v
	p.dirty = true
	p.version++

	if old != v {
		p.engine.emit(events.Event{
			Type:       events.BaseValueChanged,
			PropertyID: p.id,
			Old:        old,
			New:        v,
		})
	}

	p.triggerDependentUpdates(p.Value())
}

// AddModifier attaches m. The same instance may only be attached once;
// attach a Clone to stack an identical modifier.
func (p *Property) AddModifier(m *modifier.Modifier) error {
	if m == nil {
		return apperr.InvalidArgument("modifier cannot be nil")
	}
	if !m.Kind().Valid() {
		return apperr.InvalidArgumentf("modifier kind %s is not valid", m.Kind())
	}
	if slices.Contains(p.modifiers, m) {
		return apperr.AlreadyExistsf("modifier %s already attached to %q", m, p.id)
	}

	p.modifiers = append(p.modifiers, m)
	p.modifiersChanged(m.IsRandom())
	return nil
}

// RemoveModifier detaches the given instance. Other modifiers with equal
// fields stay attached.
func (p *Property) RemoveModifier(m *modifier.Modifier) bool {
	i := slices.Index(p.modifiers, m)
	if i < 0 {
		return false
	}

	p.modifiers = slices.Delete(p.modifiers, i, i+1)
	p.modifiersChanged(m.IsRandom())
	return true
}

// RemoveModifiersOfKind detaches every modifier of kind and returns how
// many were removed
func (p *Property) RemoveModifiersOfKind(kind modifier.Kind) int {
	removedRandom := false
	kept := p.modifiers[:0]
	removed := 0
	for _, m := range p.modifiers {
		if m.Kind() == kind {
			removed++
			removedRandom = removedRandom || m.IsRandom()
			continue
		}
		kept = append(kept, m)
	}
	clear(p.modifiers[len(kept):])
	p.modifiers = kept

	if removed > 0 {
		p.modifiersChanged(removedRandom)
	}
	return removed
}

// Modifiers returns a copy of the attached modifiers in insertion order
func (p *Property) Modifiers() []*modifier.Modifier {
	return slices.Clone(p.modifiers)
}

// IsDirty reports whether the cached value is stale
func (p *Property) IsDirty() bool {
	return p.dirty
}

// MarkDirty forces the next read to recompute, drawing fresh samples for
// range modifiers, and refreshes dependents immediately
func (p *Property) MarkDirty() {
	p.dirty = true
	p.version++
	if len(p.dependents) > 0 {
		p.triggerDependentUpdates(p.Value())
	}
}

// Subscribe registers handler for changes of the computed value. Release it
// with Unsubscribe.
func (p *Property) Subscribe(handler events.Handler) events.SubscriptionID {
	return p.engine.bus.Subscribe(events.ValueChanged, p.id, 0, handler)
}

// SubscribeBaseValue registers handler for base value replacements
func (p *Property) SubscribeBaseValue(handler events.Handler) events.SubscriptionID {
	return p.engine.bus.Subscribe(events.BaseValueChanged, p.id, 0, handler)
}

// Unsubscribe releases a handle returned by Subscribe or SubscribeBaseValue
func (p *Property) Unsubscribe(id events.SubscriptionID) bool {
	return p.engine.bus.Unsubscribe(id)
}

func (p *Property) modifiersChanged(randomnessChanged bool) {
	p.dirty = true
	p.version++
	if randomnessChanged {
		p.refreshRandomDependency()
	}
	if len(p.dependents) > 0 {
		p.triggerDependentUpdates(p.Value())
	}
}

// triggerDependentUpdates pushes newValue to each dependent in the order the
// edges were added. Dependents with a calculator get a new base value when it
// moves by more than epsilon; the rest are recomputed in place.
//
// A calculator may mutate p itself. The nested propagation then pushes the
// newer value to every dependent, so the outer walk stops and the stale
// calculator result is dropped.
func (p *Property) triggerDependentUpdates(newValue float64) {
	e := p.engine
	if len(p.dependents) == 0 {
		return
	}
	if e.propagating >= e.maxDepth {
		log.Printf("Property.triggerDependentUpdates: propagation from %q cut off at depth %d", p.id, e.maxDepth)
		return
	}
	e.propagating++
	defer func() { e.propagating-- }()

	version := p.version

	// calculators may edit the graph while we walk it
	for _, d := range slices.Clone(p.dependents) {
		if p.version != version {
			return
		}
		if calc, ok := d.calculators[p]; ok {
			next := calc(p, newValue)
			if p.version != version {
				return
			}
			if e.changed(next, d.base) {
				d.SetBaseValue(next)
			}
			continue
		}

		prev, fresh := d.value, d.computed && !d.dirty
		d.dirty = true
		v := d.Value()
		if !fresh || e.changed(prev, v) {
			d.triggerDependentUpdates(v)
		}
	}
}
