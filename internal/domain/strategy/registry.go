package strategy

import (
	"log"

	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/random"
)

// canonicalOrder is the order every property folds its modifiers in.
// Changing it changes game-visible numbers.
var canonicalOrder = [...]modifier.Kind{
	modifier.KindAdd,
	modifier.KindPriorityAdd,
	modifier.KindMul,
	modifier.KindPriorityMul,
	modifier.KindAfterAdd,
	modifier.KindOverride,
	modifier.KindClamp,
}

// CanonicalOrder returns a copy of the fixed application order
func CanonicalOrder() []modifier.Kind {
	out := make([]modifier.Kind, len(canonicalOrder))
	copy(out, canonicalOrder[:])
	return out
}

// Registry maps kinds to strategies
type Registry struct {
	strategies map[modifier.Kind]Strategy
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[modifier.Kind]Strategy),
	}
}

// Init builds a registry holding the built-in strategy of every kind.
// The host process calls it once at startup and owns the result.
func Init() *Registry {
	r := NewRegistry()
	for _, kind := range canonicalOrder {
		s, _ := ForKind(kind)
		r.strategies[kind] = s
	}
	return r
}

// Register inserts or overwrites the strategy for kind
func (r *Registry) Register(kind modifier.Kind, s Strategy) error {
	if !kind.Valid() {
		return apperr.Configurationf("cannot register strategy for invalid kind %s", kind)
	}
	if s == nil {
		return apperr.Configurationf("strategy for %s cannot be nil", kind)
	}

	if _, exists := r.strategies[kind]; exists {
		log.Printf("StrategyRegistry: overwriting strategy for %s", kind)
	}
	r.strategies[kind] = s
	return nil
}

// Resolve returns the strategy registered for kind
func (r *Registry) Resolve(kind modifier.Kind) (Strategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, apperr.Configurationf("no strategy registered for modifier kind %s", kind).
			WithMeta("kind", kind.String())
	}
	return s, nil
}

// Validate checks that every kind in the canonical order resolves
func (r *Registry) Validate() error {
	for _, kind := range canonicalOrder {
		if _, err := r.Resolve(kind); err != nil {
			return err
		}
	}
	return nil
}

// Apply runs the full pipeline from base in canonical order
func (r *Registry) Apply(base float64, mods []*modifier.Modifier, src random.Source) (float64, error) {
	value := base
	for _, kind := range canonicalOrder {
		s, err := r.Resolve(kind)
		if err != nil {
			return 0, err
		}
		value = s(value, mods, src)
	}
	return value, nil
}
