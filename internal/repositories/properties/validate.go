package properties

import (
	"slices"
	"strings"

	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
)

func validateKey(scope, id string) error {
	if scope == "" {
		return apperr.InvalidArgument("scope is required")
	}
	if id == "" {
		return apperr.InvalidArgument("property ID is required")
	}
	return nil
}

func validateData(scope string, data *property.Data) error {
	if data == nil {
		return apperr.InvalidArgument("property data cannot be nil")
	}
	if err := validateKey(scope, data.ID); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return apperr.Wrapf(err, "save property %q", data.ID)
	}
	return nil
}

func notFound(scope, id string) error {
	return apperr.NotFoundf("property '%s' not found in scope '%s'", id, scope).
		WithMeta("scope", scope).
		WithMeta("property_id", id)
}

// cloneData copies the modifier slice so stored snapshots never alias
// caller memory
func cloneData(d *property.Data) *property.Data {
	c := *d
	c.Modifiers = slices.Clone(d.Modifiers)
	if c.Modifiers == nil {
		c.Modifiers = []property.ModifierData{}
	}
	return &c
}

func sortByID(list []*property.Data) {
	slices.SortFunc(list, func(a, b *property.Data) int {
		return strings.Compare(a.ID, b.ID)
	})
}
