package property

import (
	"log"
	"slices"

	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/events"
)

// AddDependency records that p's value is computed from dep's value.
//
// With a calculator, p's base value is set to calc(dep, dep.Value()) now and
// every time dep changes. Without one, p is recomputed whenever dep changes.
// Self references, cycles and edges that would push any property past the
// depth ceiling are refused: the graph is left untouched, a
// DependencyRejected event is emitted and false is returned. Adding an edge
// that already exists replaces its calculator.
func (p *Property) AddDependency(dep *Property, calc Calculator) bool {
	if dep == nil {
		return p.reject(nil, "dependency is nil")
	}
	if dep.engine != p.engine {
		return p.reject(dep, "properties belong to different engines")
	}
	if dep == p {
		return p.reject(dep, "self reference")
	}

	if slices.Contains(p.dependencies, dep) {
		if calc == nil {
			delete(p.calculators, dep)
			return true
		}
		p.calculators[dep] = calc
		p.SetBaseValue(calc(dep, dep.Value()))
		return true
	}

	if dep.depth+1+p.heightAbove() > p.engine.maxDepth {
		return p.reject(dep, "depth ceiling exceeded")
	}
	if reachable(dep, p) {
		return p.reject(dep, "would create a cycle")
	}

	p.dependencies = append(p.dependencies, dep)
	dep.dependents = append(dep.dependents, p)
	if calc != nil {
		p.calculators[dep] = calc
	}

	p.updateDepth()
	p.refreshRandomDependency()

	if calc != nil {
		p.SetBaseValue(calc(dep, dep.Value()))
	}
	return true
}

// RemoveDependency deletes the edge p -> dep together with its calculator.
// It reports whether the edge existed.
func (p *Property) RemoveDependency(dep *Property) bool {
	i := slices.Index(p.dependencies, dep)
	if i < 0 {
		return false
	}

	p.dependencies = slices.Delete(p.dependencies, i, i+1)
	if j := slices.Index(dep.dependents, p); j >= 0 {
		dep.dependents = slices.Delete(dep.dependents, j, j+1)
	}
	delete(p.calculators, dep)

	p.updateDepth()
	p.refreshRandomDependency()
	return true
}

// ClearAll removes every edge touching p in both directions
func (p *Property) ClearAll() {
	for _, dep := range slices.Clone(p.dependencies) {
		p.RemoveDependency(dep)
	}
	for _, dependent := range slices.Clone(p.dependents) {
		dependent.RemoveDependency(p)
	}
}

// DependsOn reports whether p has a direct edge to dep
func (p *Property) DependsOn(dep *Property) bool {
	return slices.Contains(p.dependencies, dep)
}

// HasCalculator reports whether the edge p -> dep carries a calculator
func (p *Property) HasCalculator(dep *Property) bool {
	_, ok := p.calculators[dep]
	return ok
}

// Dependencies returns the properties p depends on, in insertion order
func (p *Property) Dependencies() []*Property {
	return slices.Clone(p.dependencies)
}

// Dependents returns the properties depending on p, in insertion order
func (p *Property) Dependents() []*Property {
	return slices.Clone(p.dependents)
}

// Depth is 0 for a property without dependencies, otherwise one more than
// its deepest dependency
func (p *Property) Depth() int {
	return p.depth
}

// HasRandomDependency reports whether p or anything it transitively depends
// on carries a sampled range modifier
func (p *Property) HasRandomDependency() bool {
	return p.randomDependency
}

func (p *Property) reject(dep *Property, reason string) bool {
	depID := "<nil>"
	if dep != nil {
		depID = dep.id
	}
	log.Printf("Property.AddDependency: rejected %q -> %q: %s", p.id, depID, reason)

	p.engine.emit(events.Event{
		Type:         events.DependencyRejected,
		PropertyID:   p.id,
		DependencyID: depID,
		Err: apperr.GraphRejectionf("dependency %q -> %q rejected: %s", p.id, depID, reason).
			WithMeta("reason", reason),
	})
	return false
}

// updateDepth recomputes p's depth and cascades to dependents when it moved
func (p *Property) updateDepth() {
	depth := 0
	for _, dep := range p.dependencies {
		depth = max(depth, dep.depth+1)
	}
	if depth == p.depth {
		return
	}

	p.depth = depth
	for _, dependent := range p.dependents {
		dependent.updateDepth()
	}
}

// heightAbove is the longest chain of dependents sitting on top of p
func (p *Property) heightAbove() int {
	memo := make(map[*Property]int)
	var walk func(n *Property) int
	walk = func(n *Property) int {
		if h, ok := memo[n]; ok {
			return h
		}
		h := 0
		for _, d := range n.dependents {
			h = max(h, walk(d)+1)
		}
		memo[n] = h
		return h
	}
	return walk(p)
}

// refreshRandomDependency recomputes the flag for p and everything that
// transitively depends on p
func (p *Property) refreshRandomDependency() {
	seen := map[*Property]bool{p: true}
	queue := []*Property{p}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		n.randomDependency = n.scanRandom()
		for _, d := range n.dependents {
			if !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}
}

// scanRandom walks p's dependencies breadth first looking for a sampled
// range modifier
func (p *Property) scanRandom() bool {
	seen := map[*Property]bool{p: true}
	queue := []*Property{p}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, m := range n.modifiers {
			if m.IsRandom() {
				return true
			}
		}
		for _, dep := range n.dependencies {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

// reachable reports whether to can be reached from from by following
// dependency edges. It grows a forward frontier from from and a backward
// frontier from to, always expanding the smaller one, and stops when they
// meet.
func reachable(from, to *Property) bool {
	if from == to {
		return true
	}

	forwardSeen := map[*Property]bool{from: true}
	backwardSeen := map[*Property]bool{to: true}
	forward := []*Property{from}
	backward := []*Property{to}

	for len(forward) > 0 && len(backward) > 0 {
		if len(forward) <= len(backward) {
			var next []*Property
			for _, n := range forward {
				for _, dep := range n.dependencies {
					if backwardSeen[dep] {
						return true
					}
					if !forwardSeen[dep] {
						forwardSeen[dep] = true
						next = append(next, dep)
					}
				}
			}
			forward = next
			continue
		}

		var next []*Property
		for _, n := range backward {
			for _, dependent := range n.dependents {
				if forwardSeen[dependent] {
					return true
				}
				if !backwardSeen[dependent] {
					backwardSeen[dependent] = true
					next = append(next, dependent)
				}
			}
		}
		backward = next
	}
	return false
}
