package events

// EventType identifies what happened
type EventType string

const (
	// ValueChanged fires when a recompute moves a property's cached value
	ValueChanged EventType = "property.value_changed"

	// BaseValueChanged fires when a property's base value is replaced
	BaseValueChanged EventType = "property.base_value_changed"

	// DependencyRejected fires when the graph refuses an edge
	DependencyRejected EventType = "graph.dependency_rejected"
)

// SubscriptionID is the handle returned by Subscribe
type SubscriptionID string

// Event carries a notification to subscribers
type Event struct {
	Type       EventType
	PropertyID string

	// Old and New hold values for ValueChanged and BaseValueChanged
	Old float64
	New float64

	// DependencyID and Err are set for DependencyRejected
	DependencyID string
	Err          error
}

// Handler processes an event
type Handler func(event Event) error
