package events

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/KirkDiggler/attribute-engine/internal/uuid"
)

type subscription struct {
	id         SubscriptionID
	propertyID string
	priority   int
	handler    Handler
}

// Bus delivers events synchronously, lowest priority value first.
// Subscriptions are released explicitly with Unsubscribe.
type Bus struct {
	mu    sync.RWMutex
	ids   uuid.Generator
	subs  map[EventType][]subscription
	index map[SubscriptionID]EventType
}

// NewBus creates a new event bus
func NewBus(ids uuid.Generator) *Bus {
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}
	return &Bus{
		ids:   ids,
		subs:  make(map[EventType][]subscription),
		index: make(map[SubscriptionID]EventType),
	}
}

// Subscribe registers handler for eventType. A non-empty propertyID limits
// delivery to events about that property.
func (b *Bus) Subscribe(eventType EventType, propertyID string, priority int, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := SubscriptionID(b.ids.New())
	b.subs[eventType] = append(b.subs[eventType], subscription{
		id:         id,
		propertyID: propertyID,
		priority:   priority,
		handler:    handler,
	})
	b.index[id] = eventType

	// Stable so equal priorities keep subscription order
	sort.SliceStable(b.subs[eventType], func(i, j int) bool {
		return b.subs[eventType][i].priority < b.subs[eventType][j].priority
	})

	return id
}

// Unsubscribe removes the subscription behind id. It reports whether the
// handle was live.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	eventType, ok := b.index[id]
	if !ok {
		return false
	}
	delete(b.index, id)

	subs := b.subs[eventType]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
		break
	}
	if len(b.subs[eventType]) == 0 {
		delete(b.subs, eventType)
	}
	return true
}

// Emit sends an event to every matching subscriber in priority order.
// Handlers may subscribe or unsubscribe while being called.
func (b *Bus) Emit(event Event) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[event.Type]))
	copy(subs, b.subs[event.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		if s.propertyID != "" && s.propertyID != event.PropertyID {
			continue
		}
		if err := s.handler(event); err != nil {
			return fmt.Errorf("subscriber %s failed on %s: %w", s.id, event.Type, err)
		}
	}
	return nil
}

// ListenerCount returns how many subscriptions exist for eventType
func (b *Bus) ListenerCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}

// Clear removes all subscriptions
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[EventType][]subscription)
	b.index = make(map[SubscriptionID]EventType)
	log.Printf("EventBus: Cleared all subscriptions")
}
