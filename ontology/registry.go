package ontology

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/c360studio/conceptlib/concept"
)

// Registry is the in-memory Master Concept Library store. Concept names
// are unique within each category but may coincide across categories;
// lookups by category disambiguate.
//
// The four concept maps are frozen after load. The only mutable state is
// the theory-usage index, which is guarded by its own mutex.
type Registry struct {
	entities    map[string]*concept.EntityConcept
	connections map[string]*concept.ConnectionConcept
	properties  map[string]*concept.PropertyConcept
	modifiers   map[string]*concept.ModifierConcept

	// children maps parent entity name to subtype names, derived from
	// EntityConcept.Parent links at build time.
	children map[string][]string

	theoryMu sync.Mutex
	theories map[string][]concept.TheoryReference
}

// Statistics summarizes registry contents.
type Statistics struct {
	Entities         int `json:"entities"`
	Connections      int `json:"connections"`
	Properties       int `json:"properties"`
	Modifiers        int `json:"modifiers"`
	SubtypeEdges     int `json:"subtype_edges"`
	TheoryReferences int `json:"theory_references"`
}

// Total returns the total concept count across all four categories.
func (s Statistics) Total() int {
	return s.Entities + s.Connections + s.Properties + s.Modifiers
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities:    make(map[string]*concept.EntityConcept),
		connections: make(map[string]*concept.ConnectionConcept),
		properties:  make(map[string]*concept.PropertyConcept),
		modifiers:   make(map[string]*concept.ModifierConcept),
		children:    make(map[string][]string),
		theories:    make(map[string][]concept.TheoryReference),
	}
}

// AddEntity adds an entity concept. Later additions with the same name
// replace earlier ones; the loader logs duplicates before calling this.
func (r *Registry) AddEntity(e *concept.EntityConcept) {
	r.entities[e.Name] = e
}

// AddConnection adds a connection concept.
func (r *Registry) AddConnection(c *concept.ConnectionConcept) {
	r.connections[c.Name] = c
}

// AddProperty adds a property concept.
func (r *Registry) AddProperty(p *concept.PropertyConcept) {
	r.properties[p.Name] = p
}

// AddModifier adds a modifier concept.
func (r *Registry) AddModifier(m *concept.ModifierConcept) {
	r.modifiers[m.Name] = m
}

// BuildRelations derives the subtype adjacency from entity parent links.
// Edges pointing at unknown parents are dropped; the loader reports them.
// Must be called once after all entities are added.
func (r *Registry) BuildRelations() {
	r.children = make(map[string][]string)
	for name, e := range r.entities {
		if e.Parent == "" {
			continue
		}
		if _, ok := r.entities[e.Parent]; !ok {
			continue
		}
		r.children[e.Parent] = append(r.children[e.Parent], name)
	}
	for _, kids := range r.children {
		sort.Strings(kids)
	}
}

// GetConcept looks a name up across all four categories and returns the
// first match in the fixed order entities, connections, properties,
// modifiers. The order is a tie-break contract: a name colliding across
// categories always resolves to the entity/connection view first.
func (r *Registry) GetConcept(name string) (concept.Definition, bool) {
	if e, ok := r.entities[name]; ok {
		return e, true
	}
	if c, ok := r.connections[name]; ok {
		return c, true
	}
	if p, ok := r.properties[name]; ok {
		return p, true
	}
	if m, ok := r.modifiers[name]; ok {
		return m, true
	}
	return nil, false
}

// GetEntity returns the entity concept with the given name.
func (r *Registry) GetEntity(name string) (*concept.EntityConcept, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// GetConnection returns the connection concept with the given name.
func (r *Registry) GetConnection(name string) (*concept.ConnectionConcept, bool) {
	c, ok := r.connections[name]
	return c, ok
}

// GetProperty returns the property concept with the given name.
func (r *Registry) GetProperty(name string) (*concept.PropertyConcept, bool) {
	p, ok := r.properties[name]
	return p, ok
}

// GetModifier returns the modifier concept with the given name.
func (r *Registry) GetModifier(name string) (*concept.ModifierConcept, bool) {
	m, ok := r.modifiers[name]
	return m, ok
}

// ValidateDomainRange reports whether a connection of connectionType may
// link sourceType to targetType. Unknown connection types fail closed.
func (r *Registry) ValidateDomainRange(connectionType, sourceType, targetType string) bool {
	c, ok := r.connections[connectionType]
	if !ok {
		return false
	}
	return c.AllowsSource(sourceType) && c.AllowsTarget(targetType)
}

// GetSubtypes returns all transitive subtypes of the named entity in
// breadth-first order. The visited set guards against malformed cyclic
// data; traversal always terminates.
func (r *Registry) GetSubtypes(name string) []string {
	var result []string
	visited := map[string]bool{name: true}
	queue := append([]string(nil), r.children[name]...)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)
		queue = append(queue, r.children[current]...)
	}
	return result
}

// GetConceptHierarchy returns a parent-to-children adjacency view of the
// subtype hierarchy. With a root it covers only the subtree below root;
// without one it covers every top-level entity (those with no parent).
func (r *Registry) GetConceptHierarchy(root string) map[string][]string {
	hierarchy := make(map[string][]string)

	var roots []string
	if root != "" {
		roots = []string{root}
	} else {
		for name, e := range r.entities {
			if e.Parent == "" {
				roots = append(roots, name)
			}
		}
	}

	visited := make(map[string]bool)
	queue := roots
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		kids := append([]string(nil), r.children[current]...)
		hierarchy[current] = kids
		queue = append(queue, kids...)
	}
	return hierarchy
}

// AddTheoryReference appends a usage record for a concept. Safe for
// concurrent use; this is the registry's only post-load mutation.
func (r *Registry) AddTheoryReference(conceptName string, ref concept.TheoryReference) {
	r.theoryMu.Lock()
	defer r.theoryMu.Unlock()
	r.theories[conceptName] = append(r.theories[conceptName], ref)
}

// TheoryReferences returns a copy of the usage records for a concept.
func (r *Registry) TheoryReferences(conceptName string) []concept.TheoryReference {
	r.theoryMu.Lock()
	defer r.theoryMu.Unlock()
	return append([]concept.TheoryReference(nil), r.theories[conceptName]...)
}

// Statistics returns concept and reference counts.
func (r *Registry) Statistics() Statistics {
	r.theoryMu.Lock()
	refs := 0
	for _, list := range r.theories {
		refs += len(list)
	}
	r.theoryMu.Unlock()

	edges := 0
	for _, kids := range r.children {
		edges += len(kids)
	}

	return Statistics{
		Entities:         len(r.entities),
		Connections:      len(r.connections),
		Properties:       len(r.properties),
		Modifiers:        len(r.modifiers),
		SubtypeEdges:     edges,
		TheoryReferences: refs,
	}
}

// EntityNames returns all entity concept names, sorted.
func (r *Registry) EntityNames() []string {
	return sortedKeys(r.entities)
}

// ConnectionNames returns all connection concept names, sorted.
func (r *Registry) ConnectionNames() []string {
	return sortedKeys(r.connections)
}

// PropertyNames returns all property concept names, sorted.
func (r *Registry) PropertyNames() []string {
	return sortedKeys(r.properties)
}

// ModifierNames returns all modifier concept names, sorted.
func (r *Registry) ModifierNames() []string {
	return sortedKeys(r.modifiers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON serializes the full registry for export tooling.
func (r *Registry) MarshalJSON() ([]byte, error) {
	r.theoryMu.Lock()
	theories := make(map[string][]concept.TheoryReference, len(r.theories))
	for name, refs := range r.theories {
		theories[name] = append([]concept.TheoryReference(nil), refs...)
	}
	r.theoryMu.Unlock()

	return json.Marshal(struct {
		Entities    map[string]*concept.EntityConcept     `json:"entities"`
		Connections map[string]*concept.ConnectionConcept `json:"connections"`
		Properties  map[string]*concept.PropertyConcept   `json:"properties"`
		Modifiers   map[string]*concept.ModifierConcept   `json:"modifiers"`
		Theories    map[string][]concept.TheoryReference  `json:"theories_using_concepts"`
		Statistics  Statistics                            `json:"statistics"`
	}{
		Entities:    r.entities,
		Connections: r.connections,
		Properties:  r.properties,
		Modifiers:   r.modifiers,
		Theories:    theories,
		Statistics:  r.Statistics(),
	})
}
