package property

import (
	"encoding/json"

	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
)

// ModifierData is the persisted form of a modifier
type ModifierData struct {
	Type       modifier.Kind  `json:"type"`
	Priority   int            `json:"priority"`
	FloatValue float64        `json:"floatValue"`
	RangeValue modifier.Range `json:"rangeValue"`
	IsRange    bool           `json:"isRange"`
}

// Data is the persisted form of a property. Dependency edges are not part of
// it; calculators are code and are re-attached after loading.
type Data struct {
	ID        string         `json:"id"`
	BaseValue float64        `json:"baseValue"`
	Modifiers []ModifierData `json:"modifiers"`
}

// wire shapes with pointers so missing fields can be told apart from zeros
type rawModifier struct {
	Type       *modifier.Kind  `json:"type"`
	Priority   *int            `json:"priority"`
	FloatValue *float64        `json:"floatValue"`
	RangeValue *modifier.Range `json:"rangeValue"`
	IsRange    *bool           `json:"isRange"`
}

type rawProperty struct {
	ID        *string        `json:"id"`
	BaseValue *float64       `json:"baseValue"`
	Modifiers *[]rawModifier `json:"modifiers"`
}

// ToData snapshots the property
func (p *Property) ToData() *Data {
	data := &Data{
		ID:        p.id,
		BaseValue: p.base,
		Modifiers: make([]ModifierData, 0, len(p.modifiers)),
	}
	for _, m := range p.modifiers {
		data.Modifiers = append(data.Modifiers, ModifierData{
			Type:       m.Kind(),
			Priority:   m.Priority(),
			FloatValue: m.Value(),
			RangeValue: m.Range(),
			IsRange:    m.IsRange(),
		})
	}
	return data
}

// MarshalJSON writes the persisted shape
func (p *Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToData())
}

// Validate checks the fields JSON decoding cannot
func (d *Data) Validate() error {
	if d.ID == "" {
		return apperr.Validation("property id is required")
	}
	for i, m := range d.Modifiers {
		if !m.Type.Valid() {
			return apperr.Validationf("property %q modifier %d has invalid type %s", d.ID, i, m.Type)
		}
	}
	return nil
}

// ParseData decodes and validates the persisted shape. Every field is
// required; floatValue only for scalar modifiers and rangeValue only for
// range modifiers.
func ParseData(raw []byte) (*Data, error) {
	var in rawProperty
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeValidation, "malformed property json")
	}

	switch {
	case in.ID == nil || *in.ID == "":
		return nil, apperr.Validation("property id is required")
	case in.BaseValue == nil:
		return nil, apperr.Validationf("property %q is missing baseValue", *in.ID)
	case in.Modifiers == nil:
		return nil, apperr.Validationf("property %q is missing modifiers", *in.ID)
	}

	data := &Data{
		ID:        *in.ID,
		BaseValue: *in.BaseValue,
		Modifiers: make([]ModifierData, 0, len(*in.Modifiers)),
	}
	for i, m := range *in.Modifiers {
		md, err := m.toData()
		if err != nil {
			return nil, apperr.Wrapf(err, "property %q modifier %d", data.ID, i)
		}
		data.Modifiers = append(data.Modifiers, md)
	}
	return data, nil
}

func (m rawModifier) toData() (ModifierData, error) {
	switch {
	case m.Type == nil:
		return ModifierData{}, apperr.Validation("missing type")
	case m.Priority == nil:
		return ModifierData{}, apperr.Validation("missing priority")
	case m.IsRange == nil:
		return ModifierData{}, apperr.Validation("missing isRange")
	case *m.IsRange && m.RangeValue == nil:
		return ModifierData{}, apperr.Validation("range modifier is missing rangeValue")
	case !*m.IsRange && m.FloatValue == nil:
		return ModifierData{}, apperr.Validation("scalar modifier is missing floatValue")
	}

	md := ModifierData{Type: *m.Type, Priority: *m.Priority, IsRange: *m.IsRange}
	if m.FloatValue != nil {
		md.FloatValue = *m.FloatValue
	}
	if m.RangeValue != nil {
		md.RangeValue = *m.RangeValue
	}
	return md, nil
}

// FromData rebuilds a property, re-adding modifiers in order. The result is
// dirty; nothing is computed until the first read.
func (e *Engine) FromData(d *Data) (*Property, error) {
	if d == nil {
		return nil, apperr.Validation("property data cannot be nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	p := e.NewProperty(d.ID, d.BaseValue)
	for _, md := range d.Modifiers {
		var m *modifier.Modifier
		if md.IsRange {
			m = modifier.NewRange(md.Type, md.Priority, md.RangeValue.X, md.RangeValue.Y)
		} else {
			m = modifier.NewScalar(md.Type, md.Priority, md.FloatValue)
		}
		if err := p.AddModifier(m); err != nil {
			return nil, apperr.WrapWithCode(err, apperr.CodeValidation, "rebuild modifier")
		}
	}
	return p, nil
}

// UnmarshalProperty parses raw JSON and rebuilds the property
func (e *Engine) UnmarshalProperty(raw []byte) (*Property, error) {
	data, err := ParseData(raw)
	if err != nil {
		return nil, err
	}
	return e.FromData(data)
}
