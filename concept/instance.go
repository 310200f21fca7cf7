package concept

// Entity is an entity instance produced by a tool, validated and enriched
// against the concept library. It is not a registry concept.
type Entity struct {
	// EntityType names the EntityConcept this instance claims to be.
	EntityType string `json:"entity_type"`

	// Properties maps property names to values.
	Properties map[string]any `json:"properties,omitempty"`

	// Modifiers maps modifier names to values from their controlled
	// vocabularies.
	Modifiers map[string]string `json:"modifiers,omitempty"`
}

// Relationship is a relationship instance between two entities.
type Relationship struct {
	// RelationshipType names the ConnectionConcept this instance claims
	// to be.
	RelationshipType string `json:"relationship_type"`

	// Properties maps property names to values.
	Properties map[string]any `json:"properties,omitempty"`

	// Modifiers maps modifier names to values.
	Modifiers map[string]string `json:"modifiers,omitempty"`
}

// SetModifier sets a modifier value, allocating the map on first use.
func (e *Entity) SetModifier(name, value string) {
	if e.Modifiers == nil {
		e.Modifiers = make(map[string]string)
	}
	e.Modifiers[name] = value
}

// SetModifier sets a modifier value, allocating the map on first use.
func (r *Relationship) SetModifier(name, value string) {
	if r.Modifiers == nil {
		r.Modifiers = make(map[string]string)
	}
	r.Modifiers[name] = value
}

// TheoryReference records that a theory uses a concept.
type TheoryReference struct {
	// TheoryName is the name of the referencing theory.
	TheoryName string `yaml:"theory_name" json:"theory_name"`

	// TheoryFile is the source file the theory was loaded from.
	TheoryFile string `yaml:"theory_file" json:"theory_file"`

	// Usage describes how the theory uses the concept.
	Usage string `yaml:"usage,omitempty" json:"usage,omitempty"`
}
