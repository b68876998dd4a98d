// Package property implements reactive numeric attributes: a base value
// folded through a stack of modifiers, linked to other properties by an
// acyclic dependency graph that pushes updates eagerly.
//
// The engine is single-threaded. Every read and mutation is expected to run
// on the host's update loop; nothing here locks.
package property

import (
	"log"
	"math"

	"github.com/KirkDiggler/attribute-engine/internal/domain/strategy"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/events"
	"github.com/KirkDiggler/attribute-engine/internal/random"
)

const (
	// DefaultMaxDepth bounds both graph depth and nested propagation
	DefaultMaxDepth = 100

	// DefaultEpsilon is the smallest base value change a calculator must
	// produce before a dependent is updated
	DefaultEpsilon = 1e-4
)

// EngineConfig holds the collaborators an Engine is built from
type EngineConfig struct {
	// Registry resolves modifier strategies. Defaults to strategy.Init().
	Registry *strategy.Registry

	// Source samples range modifiers. Defaults to a clock-seeded source.
	Source random.Source

	// Bus delivers change and rejection notifications. Defaults to a new bus.
	Bus *events.Bus

	MaxDepth int
	Epsilon  float64
}

// Engine owns the state shared by every property it creates
type Engine struct {
	registry *strategy.Registry
	source   random.Source
	bus      *events.Bus
	maxDepth int
	epsilon  float64

	// current nesting of dependent propagation
	propagating int
}

// NewEngine validates cfg and creates an engine. A registry missing any
// kind is a configuration error.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = &EngineConfig{}
	}

	registry := cfg.Registry
	if registry == nil {
		registry = strategy.Init()
	}
	if err := registry.Validate(); err != nil {
		return nil, apperr.Wrap(err, "invalid strategy registry")
	}

	if cfg.MaxDepth < 0 {
		return nil, apperr.Configurationf("max depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.Epsilon < 0 || math.IsNaN(cfg.Epsilon) {
		return nil, apperr.Configurationf("epsilon must not be negative, got %g", cfg.Epsilon)
	}

	e := &Engine{
		registry: registry,
		source:   cfg.Source,
		bus:      cfg.Bus,
		maxDepth: cfg.MaxDepth,
		epsilon:  cfg.Epsilon,
	}
	if e.source == nil {
		e.source = random.NewSource(0)
	}
	if e.bus == nil {
		e.bus = events.NewBus(nil)
	}
	if e.maxDepth == 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.epsilon == 0 {
		e.epsilon = DefaultEpsilon
	}

	return e, nil
}

// MaxDepth returns the depth ceiling
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Epsilon returns the change threshold used during propagation
func (e *Engine) Epsilon() float64 {
	return e.epsilon
}

// SubscribeRejections registers handler for every refused dependency edge
func (e *Engine) SubscribeRejections(handler events.Handler) events.SubscriptionID {
	return e.bus.Subscribe(events.DependencyRejected, "", 0, handler)
}

// Unsubscribe releases a handle from SubscribeRejections or Property.Subscribe
func (e *Engine) Unsubscribe(id events.SubscriptionID) bool {
	return e.bus.Unsubscribe(id)
}

func (e *Engine) changed(a, b float64) bool {
	return math.Abs(a-b) > e.epsilon
}

func (e *Engine) emit(event events.Event) {
	if err := e.bus.Emit(event); err != nil {
		log.Printf("Engine.emit: %s for %q: %v", event.Type, event.PropertyID, err)
	}
}
