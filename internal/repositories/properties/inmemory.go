package properties

import (
	"context"
	"sync"

	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the property repository
// Useful for testing and development
type InMemoryRepository struct {
	mu     sync.RWMutex
	scopes map[string]map[string]*property.Data
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		scopes: make(map[string]map[string]*property.Data),
	}
}

// Save creates or replaces a snapshot
func (r *InMemoryRepository) Save(_ context.Context, scope string, data *property.Data) error {
	if err := validateData(scope, data); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	props, ok := r.scopes[scope]
	if !ok {
		props = make(map[string]*property.Data)
		r.scopes[scope] = props
	}
	props[data.ID] = cloneData(data)
	return nil
}

// Get retrieves a copy of a snapshot
func (r *InMemoryRepository) Get(_ context.Context, scope, id string) (*property.Data, error) {
	if err := validateKey(scope, id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.scopes[scope][id]
	if !ok {
		return nil, notFound(scope, id)
	}
	return cloneData(data), nil
}

// Delete removes a snapshot
func (r *InMemoryRepository) Delete(_ context.Context, scope, id string) error {
	if err := validateKey(scope, id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	props := r.scopes[scope]
	if _, ok := props[id]; !ok {
		return notFound(scope, id)
	}
	delete(props, id)
	if len(props) == 0 {
		delete(r.scopes, scope)
	}
	return nil
}

// ListByScope returns copies of every snapshot in scope ordered by id
func (r *InMemoryRepository) ListByScope(_ context.Context, scope string) ([]*property.Data, error) {
	if scope == "" {
		return nil, apperr.InvalidArgument("scope is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*property.Data, 0, len(r.scopes[scope]))
	for _, data := range r.scopes[scope] {
		result = append(result, cloneData(data))
	}
	sortByID(result)
	return result, nil
}
