package validator

import (
	"errors"
	"fmt"

	"github.com/c360studio/conceptlib/concept"
)

// ErrUnknownConcept is returned when a template is requested for a type
// that does not exist in the registry.
var ErrUnknownConcept = errors.New("unknown concept type")

// PropertyTemplate describes a property slot in a template.
type PropertyTemplate struct {
	ValueType   concept.ValueType `json:"value_type"`
	ValueRange  *concept.Range    `json:"value_range,omitempty"`
	ValidValues []string          `json:"valid_values,omitempty"`
	Description string            `json:"description,omitempty"`
}

// ModifierTemplate describes a modifier slot in a template.
type ModifierTemplate struct {
	Values       []string `json:"values"`
	DefaultValue string   `json:"default_value,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// EntityTemplate describes how to author a valid entity of a given type.
type EntityTemplate struct {
	EntityType        string                      `json:"entity_type"`
	Description       string                      `json:"description,omitempty"`
	Parent            string                      `json:"parent,omitempty"`
	TypicalAttributes []string                    `json:"typical_attributes,omitempty"`
	Properties        map[string]PropertyTemplate `json:"properties"`
	Modifiers         map[string]ModifierTemplate `json:"modifiers"`
}

// RelationshipTemplate describes how to author a valid relationship of a
// given type.
type RelationshipTemplate struct {
	RelationshipType string                      `json:"relationship_type"`
	Description      string                      `json:"description,omitempty"`
	Domain           []string                    `json:"domain"`
	Range            []string                    `json:"range"`
	Directed         bool                        `json:"is_directed"`
	Properties       map[string]PropertyTemplate `json:"properties"`
	Modifiers        map[string]ModifierTemplate `json:"modifiers"`
}

// GetEntityTemplate builds an authoring template for an entity type:
// every applicable property and modifier with its type, range and
// vocabulary metadata. Asking for a type that does not exist is an error,
// not a soft validation failure; the caller wants to construct something
// that cannot exist.
func (v *Validator) GetEntityTemplate(entityType string) (*EntityTemplate, error) {
	e, ok := v.svc.GetEntityConcept(entityType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConcept, entityType)
	}

	tmpl := &EntityTemplate{
		EntityType:        e.Name,
		Description:       e.Description,
		Parent:            e.Parent,
		TypicalAttributes: append([]string(nil), e.TypicalAttributes...),
		Properties:        make(map[string]PropertyTemplate),
		Modifiers:         make(map[string]ModifierTemplate),
	}
	v.fillSlots(entityType, concept.CategoryEntity, tmpl.Properties, tmpl.Modifiers)
	return tmpl, nil
}

// GetRelationshipTemplate builds an authoring template for a connection
// type. Unknown types are an error.
func (v *Validator) GetRelationshipTemplate(relationshipType string) (*RelationshipTemplate, error) {
	c, ok := v.svc.GetConnectionConcept(relationshipType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConcept, relationshipType)
	}

	tmpl := &RelationshipTemplate{
		RelationshipType: c.Name,
		Description:      c.Description,
		Domain:           append([]string(nil), c.Domain...),
		Range:            append([]string(nil), c.Range...),
		Directed:         c.Directed,
		Properties:       make(map[string]PropertyTemplate),
		Modifiers:        make(map[string]ModifierTemplate),
	}
	v.fillSlots(relationshipType, concept.CategoryConnection, tmpl.Properties, tmpl.Modifiers)
	return tmpl, nil
}

// fillSlots populates property and modifier template maps for a concept
// type within a category.
func (v *Validator) fillSlots(conceptType, category string,
	props map[string]PropertyTemplate, mods map[string]ModifierTemplate,
) {
	for _, name := range v.svc.GetApplicableProperties(conceptType, category) {
		p, _ := v.svc.GetPropertyConcept(name)
		props[name] = PropertyTemplate{
			ValueType:   p.ValueType,
			ValueRange:  p.ValueRange,
			ValidValues: append([]string(nil), p.ValidValues...),
			Description: p.Description,
		}
	}
	for _, name := range v.svc.GetApplicableModifiers(conceptType, category) {
		m, _ := v.svc.GetModifierConcept(name)
		mods[name] = ModifierTemplate{
			Values:       append([]string(nil), m.Values...),
			DefaultValue: m.DefaultValue,
			Description:  m.Description,
		}
	}
}
