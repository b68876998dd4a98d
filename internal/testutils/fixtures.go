package testutils

import (
	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
)

// CreateTestPropertyData creates a snapshot with one scalar and two range
// modifiers
func CreateTestPropertyData(id string, base float64) *property.Data {
	return &property.Data{
		ID:        id,
		BaseValue: base,
		Modifiers: []property.ModifierData{
			{
				Type:       modifier.KindAdd,
				Priority:   0,
				FloatValue: 2,
			},
			{
				Type:       modifier.KindMul,
				Priority:   1,
				RangeValue: modifier.Range{X: 1, Y: 1.5},
				IsRange:    true,
			},
			{
				Type:       modifier.KindClamp,
				Priority:   10,
				RangeValue: modifier.Range{X: 0, Y: 30},
				IsRange:    true,
			},
		},
	}
}

// CreateTestAbilityData creates a bare ability score snapshot
func CreateTestAbilityData(id string, score float64) *property.Data {
	return &property.Data{
		ID:        id,
		BaseValue: score,
		Modifiers: []property.ModifierData{},
	}
}
