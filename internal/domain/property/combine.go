package property

import (
	"slices"

	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
)

// CombineCalculator derives the result's base value from the children
type CombineCalculator func(c *CombineProperty) float64

// CombineProperty exposes one result property computed on demand from
// named child properties. It does not join the dependency graph; Value
// re-runs the calculator every time it is called.
//
// Children made by CreateProperty are owned by the composite. Children
// registered with AddProperty are shared and may take part in edges the
// composite knows nothing about.
type CombineProperty struct {
	engine     *Engine
	id         string
	result     *Property
	children   map[string]*Property
	owned      map[string]bool
	order      []string
	calculator CombineCalculator
	disposed   bool
}

// NewCombineProperty creates a composite whose result property shares its id
func (e *Engine) NewCombineProperty(id string, calc CombineCalculator) (*CombineProperty, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("combine property id is required")
	}
	if calc == nil {
		return nil, apperr.InvalidArgumentf("combine property %q needs a calculator", id)
	}

	return &CombineProperty{
		engine:     e,
		id:         id,
		result:     e.NewProperty(id, 0),
		children:   make(map[string]*Property),
		owned:      make(map[string]bool),
		calculator: calc,
	}, nil
}

// ID returns the composite identity
func (c *CombineProperty) ID() string {
	return c.id
}

// Result returns the result property
func (c *CombineProperty) Result() *Property {
	return c.result
}

// AddProperty registers a shared child under subID
func (c *CombineProperty) AddProperty(subID string, child *Property) error {
	if c.disposed {
		return apperr.InvalidArgumentf("combine property %q is disposed", c.id)
	}
	if subID == "" {
		return apperr.InvalidArgument("sub id is required; the empty id names the result")
	}
	if child == nil {
		return apperr.InvalidArgumentf("child %q cannot be nil", subID)
	}
	if _, exists := c.children[subID]; exists {
		return apperr.AlreadyExistsf("combine property %q already has child %q", c.id, subID).
			WithMeta("sub_id", subID)
	}

	c.children[subID] = child
	c.order = append(c.order, subID)
	return nil
}

// CreateProperty makes a new child with the given base value and registers it
func (c *CombineProperty) CreateProperty(subID string, base float64) (*Property, error) {
	child := c.engine.NewProperty(c.id+"."+subID, base)
	if err := c.AddProperty(subID, child); err != nil {
		return nil, err
	}
	c.owned[subID] = true
	return child, nil
}

// GetProperty returns the result for an empty id, otherwise the named child
// or nil
func (c *CombineProperty) GetProperty(subID string) *Property {
	if subID == "" {
		return c.result
	}
	return c.children[subID]
}

// SubIDs lists child ids in registration order
func (c *CombineProperty) SubIDs() []string {
	return slices.Clone(c.order)
}

// Value applies the calculator to the result's base value and returns the
// result's computed value. After Dispose the calculator no longer runs and
// the result's last value is returned.
func (c *CombineProperty) Value() float64 {
	if !c.disposed {
		c.result.SetBaseValue(c.calculator(c))
	}
	return c.result.Value()
}

// Dispose detaches the result and owned children from the graph entirely.
// Shared children only lose edges to the result or to other members of this
// composite. Child references are dropped.
func (c *CombineProperty) Dispose() {
	if c.disposed {
		return
	}

	members := map[*Property]bool{c.result: true}
	for _, child := range c.children {
		members[child] = true
	}

	for _, subID := range c.order {
		child := c.children[subID]
		if c.owned[subID] {
			child.ClearAll()
			continue
		}
		for _, dep := range child.Dependencies() {
			if members[dep] {
				child.RemoveDependency(dep)
			}
		}
		for _, dependent := range child.Dependents() {
			if members[dependent] {
				dependent.RemoveDependency(child)
			}
		}
	}
	c.result.ClearAll()

	c.children = make(map[string]*Property)
	c.owned = make(map[string]bool)
	c.order = nil
	c.disposed = true
}
