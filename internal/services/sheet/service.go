// Package sheet persists and restores the properties belonging to one owner
package sheet

//go:generate mockgen -destination=mock/mock_service.go -package=mocksheet -source=service.go

import (
	"context"
	"log"

	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/repositories/properties"
)

// Repository is an alias for the property repository interface
type Repository = properties.Repository

// Service defines the sheet service interface
type Service interface {
	// Save snapshots each property into scope
	Save(ctx context.Context, scope string, props ...*property.Property) error

	// Load rebuilds a single property from scope
	Load(ctx context.Context, scope, id string) (*property.Property, error)

	// LoadAll rebuilds every property in scope, ordered by id
	LoadAll(ctx context.Context, scope string) ([]*property.Property, error)

	// Delete removes a property snapshot from scope
	Delete(ctx context.Context, scope, id string) error
}

// service implements the Service interface
type service struct {
	repository Repository
	engine     *property.Engine
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository Repository       // Required
	Engine     *property.Engine // Required, owns every restored property
}

// NewService creates a new sheet service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Engine == nil {
		panic("engine is required")
	}

	return &service{
		repository: cfg.Repository,
		engine:     cfg.Engine,
	}
}

// Save snapshots base values and modifiers. Dependency edges are not
// persisted; callers re-link restored properties.
func (s *service) Save(ctx context.Context, scope string, props ...*property.Property) error {
	if scope == "" {
		return apperr.InvalidArgument("scope is required")
	}

	for _, p := range props {
		if p == nil {
			return apperr.InvalidArgument("property cannot be nil")
		}
		if err := s.repository.Save(ctx, scope, p.ToData()); err != nil {
			return apperr.Wrapf(err, "failed to save property %q", p.ID())
		}
	}
	return nil
}

// Load rebuilds a single property
func (s *service) Load(ctx context.Context, scope, id string) (*property.Property, error) {
	data, err := s.repository.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	p, err := s.engine.FromData(data)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to restore property %q", id)
	}
	return p, nil
}

// LoadAll rebuilds every property in scope. A snapshot that fails to
// rebuild fails the whole load.
func (s *service) LoadAll(ctx context.Context, scope string) ([]*property.Property, error) {
	list, err := s.repository.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	result := make([]*property.Property, 0, len(list))
	for _, data := range list {
		p, err := s.engine.FromData(data)
		if err != nil {
			return nil, apperr.Wrapf(err, "failed to restore property %q", data.ID)
		}
		result = append(result, p)
	}

	log.Printf("SheetService.LoadAll: restored %d properties for scope %s", len(result), scope)
	return result, nil
}

// Delete removes a property snapshot
func (s *service) Delete(ctx context.Context, scope, id string) error {
	return s.repository.Delete(ctx, scope, id)
}
