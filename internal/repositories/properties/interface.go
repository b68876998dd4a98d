package properties

//go:generate mockgen -destination=mock/mock.go -package=mockproperties -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
)

// Repository persists property snapshots grouped by scope. A scope is the
// owner of a sheet of properties, e.g. a character id.
type Repository interface {
	// Save creates or replaces the snapshot of data.ID within scope
	Save(ctx context.Context, scope string, data *property.Data) error

	// Get retrieves one snapshot
	Get(ctx context.Context, scope, id string) (*property.Data, error)

	// Delete removes one snapshot
	Delete(ctx context.Context, scope, id string) error

	// ListByScope retrieves every snapshot in scope ordered by id
	ListByScope(ctx context.Context, scope string) ([]*property.Data, error)
}
