package concept

import (
	"fmt"
	"strings"
)

// Kind identifies the category a concept definition belongs to.
type Kind string

const (
	KindEntity     Kind = "entity"
	KindConnection Kind = "connection"
	KindProperty   Kind = "property"
	KindModifier   Kind = "modifier"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Category tokens accepted in applies_to lists alongside concrete type names.
const (
	CategoryEntity     = "Entity"
	CategoryConnection = "Connection"
)

// Wildcard is the domain/range sentinel meaning "any entity type".
const Wildcard = "*"

// Definition is the closed interface over the four concept variants.
// Only EntityConcept, ConnectionConcept, PropertyConcept and
// ModifierConcept implement it.
type Definition interface {
	// ConceptName returns the unique name within the concept's category.
	ConceptName() string

	// ConceptKind returns the category this definition belongs to.
	ConceptKind() Kind

	// Aliases returns the indigenous terms used for free-text search.
	Aliases() []string

	// Validate checks the record's required fields and intra-record
	// invariants. Loading skips records that fail validation.
	Validate() error
}

// Base holds the fields shared by all concept variants.
type Base struct {
	// Name is the concept's unique name within its category.
	Name string `yaml:"name" json:"name"`

	// IndigenousTerms lists aliases from source theories.
	IndigenousTerms []string `yaml:"indigenous_term,omitempty" json:"indigenous_term,omitempty"`

	// Description is a human-readable explanation of the concept.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ConceptName returns the concept's name.
func (b *Base) ConceptName() string { return b.Name }

// Aliases returns the concept's indigenous terms.
func (b *Base) Aliases() []string { return b.IndigenousTerms }

// MatchesAlias reports whether term matches any indigenous term,
// case-insensitively.
func (b *Base) MatchesAlias(term string) bool {
	for _, t := range b.IndigenousTerms {
		if strings.EqualFold(t, term) {
			return true
		}
	}
	return false
}

// EntityConcept defines an entity type, optionally as a subtype of
// another entity. Parent is held as a name, not a reference; the registry
// resolves it at traversal time.
type EntityConcept struct {
	Base `yaml:",inline"`

	// TypicalAttributes lists attributes commonly seen on this entity type.
	TypicalAttributes []string `yaml:"typical_attributes,omitempty" json:"typical_attributes,omitempty"`

	// Parent names the supertype entity, if any.
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// ConceptKind returns KindEntity.
func (e *EntityConcept) ConceptKind() Kind { return KindEntity }

// Validate checks required fields.
func (e *EntityConcept) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("entity concept missing required field: name")
	}
	return nil
}

// ConnectionConcept defines a relationship type between entities.
// Domain and Range constrain the source and target entity types; the
// Wildcard entry means unconstrained.
type ConnectionConcept struct {
	Base `yaml:",inline"`

	// Domain lists allowed source entity types, or Wildcard.
	Domain []string `yaml:"domain" json:"domain"`

	// Range lists allowed target entity types, or Wildcard.
	Range []string `yaml:"range" json:"range"`

	// Directed indicates whether the connection is directional.
	Directed bool `yaml:"is_directed" json:"is_directed"`
}

// ConceptKind returns KindConnection.
func (c *ConnectionConcept) ConceptKind() Kind { return KindConnection }

// Validate checks required fields.
func (c *ConnectionConcept) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("connection concept missing required field: name")
	}
	if len(c.Domain) == 0 {
		return fmt.Errorf("connection %q missing required field: domain", c.Name)
	}
	if len(c.Range) == 0 {
		return fmt.Errorf("connection %q missing required field: range", c.Name)
	}
	return nil
}

// AllowsSource reports whether entityType satisfies the domain constraint.
func (c *ConnectionConcept) AllowsSource(entityType string) bool {
	return containsOrWildcard(c.Domain, entityType)
}

// AllowsTarget reports whether entityType satisfies the range constraint.
func (c *ConnectionConcept) AllowsTarget(entityType string) bool {
	return containsOrWildcard(c.Range, entityType)
}

func containsOrWildcard(set []string, name string) bool {
	for _, s := range set {
		if s == Wildcard || s == name {
			return true
		}
	}
	return false
}

// PropertyConcept defines a typed attribute applicable to entity or
// connection types.
type PropertyConcept struct {
	Base `yaml:",inline"`

	// ValueType is the property's value domain.
	ValueType ValueType `yaml:"value_type" json:"value_type"`

	// ValueRange bounds numeric values, if set. Numeric only.
	ValueRange *Range `yaml:"value_range,omitempty" json:"value_range,omitempty"`

	// ValidValues enumerates the allowed values. Categorical only.
	ValidValues []string `yaml:"valid_values,omitempty" json:"valid_values,omitempty"`

	// AppliesTo lists concept type names or the category tokens
	// CategoryEntity / CategoryConnection this property is valid for.
	AppliesTo []string `yaml:"applies_to" json:"applies_to"`
}

// ConceptKind returns KindProperty.
func (p *PropertyConcept) ConceptKind() Kind { return KindProperty }

// Validate checks required fields and type-specific constraints.
func (p *PropertyConcept) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("property concept missing required field: name")
	}
	if !p.ValueType.Valid() {
		return fmt.Errorf("property %q has unknown value_type %q", p.Name, p.ValueType)
	}
	if p.ValueType == ValueCategorical && p.ValidValues != nil && len(p.ValidValues) == 0 {
		return fmt.Errorf("property %q declares empty valid_values", p.Name)
	}
	if p.ValidValues != nil && p.ValueType != ValueCategorical {
		return fmt.Errorf("property %q declares valid_values but is not categorical", p.Name)
	}
	if p.ValueRange != nil {
		if p.ValueType != ValueNumeric {
			return fmt.Errorf("property %q declares value_range but is not numeric", p.Name)
		}
		if p.ValueRange.Min > p.ValueRange.Max {
			return fmt.Errorf("property %q has inverted value_range [%g, %g]",
				p.Name, p.ValueRange.Min, p.ValueRange.Max)
		}
	}
	return nil
}

// AppliesToType reports whether this property applies to the given
// concept type name directly, or to its category as a fallback.
func (p *PropertyConcept) AppliesToType(conceptType, category string) bool {
	return appliesTo(p.AppliesTo, conceptType, category)
}

// ModifierConcept defines a controlled-vocabulary qualifier applicable to
// entity or connection types.
type ModifierConcept struct {
	Base `yaml:",inline"`

	// Values is the controlled vocabulary for this modifier.
	Values []string `yaml:"values" json:"values"`

	// DefaultValue is applied by enrichment when the modifier is absent.
	// Empty means no default.
	DefaultValue string `yaml:"default_value,omitempty" json:"default_value,omitempty"`

	// AppliesTo lists concept type names or category tokens.
	AppliesTo []string `yaml:"applies_to" json:"applies_to"`
}

// ConceptKind returns KindModifier.
func (m *ModifierConcept) ConceptKind() Kind { return KindModifier }

// Validate checks required fields and default membership.
func (m *ModifierConcept) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("modifier concept missing required field: name")
	}
	if len(m.Values) == 0 {
		return fmt.Errorf("modifier %q missing required field: values", m.Name)
	}
	if m.DefaultValue != "" && !m.AllowsValue(m.DefaultValue) {
		return fmt.Errorf("modifier %q default %q is not in values", m.Name, m.DefaultValue)
	}
	return nil
}

// AppliesToType reports whether this modifier applies to the given
// concept type name directly, or to its category as a fallback.
func (m *ModifierConcept) AppliesToType(conceptType, category string) bool {
	return appliesTo(m.AppliesTo, conceptType, category)
}

// AllowsValue reports whether v is in the modifier's controlled vocabulary.
func (m *ModifierConcept) AllowsValue(v string) bool {
	for _, allowed := range m.Values {
		if allowed == v {
			return true
		}
	}
	return false
}

func appliesTo(set []string, conceptType, category string) bool {
	for _, s := range set {
		if s == conceptType {
			return true
		}
	}
	// Category match is a fallback, not exclusive.
	for _, s := range set {
		if s == category {
			return true
		}
	}
	return false
}
