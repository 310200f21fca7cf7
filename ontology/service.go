package ontology

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/c360studio/conceptlib/concept"
)

// ServiceConfig tells the service where concept sources live. Either the
// four explicit file paths or a directory for pattern discovery; Dir wins
// when both are set.
type ServiceConfig struct {
	// Sources are explicit per-category file paths.
	Sources Sources `yaml:"sources" json:"sources"`

	// Dir is an ontology directory scanned with the category glob
	// patterns.
	Dir string `yaml:"dir" json:"dir"`
}

// Service owns exactly one Registry and exposes the typed query and
// validation surface over it. It delegates to the registry and adds
// existence checks; it holds no business logic of its own.
//
// Reload swaps the registry wholesale; readers always see a complete,
// consistent registry.
type Service struct {
	mu       sync.RWMutex
	registry *Registry

	config ServiceConfig
	loader *Loader
	logger *slog.Logger
}

// NewService builds a service and performs the initial load. An empty
// config yields a service over an empty registry.
func NewService(cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		config: cfg,
		loader: NewLoader(logger),
		logger: logger,
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewServiceFromRegistry wraps an already-built registry. Used by tests
// and by callers that assemble concepts programmatically.
func NewServiceFromRegistry(reg *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return &Service{
		registry: reg,
		loader:   NewLoader(logger),
		logger:   logger,
	}
}

// Reload rebuilds the registry from the configured sources and swaps it
// in. On load failure the previous registry stays in place.
func (s *Service) Reload() error {
	var (
		reg *Registry
		err error
	)
	switch {
	case s.config.Dir != "":
		reg, err = s.loader.LoadDir(s.config.Dir)
	case s.config.Sources != (Sources{}):
		reg, err = s.loader.LoadSources(s.config.Sources)
	default:
		reg = NewRegistry()
	}
	if err != nil {
		return fmt.Errorf("load concept sources: %w", err)
	}

	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()

	stats := reg.Statistics()
	s.logger.Info("Concept registry loaded",
		"entities", stats.Entities,
		"connections", stats.Connections,
		"properties", stats.Properties,
		"modifiers", stats.Modifiers)
	return nil
}

// Registry returns the current registry snapshot. The snapshot is safe
// for lock-free reads; it is never mutated after load.
func (s *Service) Registry() *Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

// GetConcept resolves a name across all categories using the registry's
// tie-break order.
func (s *Service) GetConcept(name string) (concept.Definition, bool) {
	return s.Registry().GetConcept(name)
}

// GetEntityConcept returns the entity concept with the given name.
func (s *Service) GetEntityConcept(name string) (*concept.EntityConcept, bool) {
	return s.Registry().GetEntity(name)
}

// GetConnectionConcept returns the connection concept with the given name.
func (s *Service) GetConnectionConcept(name string) (*concept.ConnectionConcept, bool) {
	return s.Registry().GetConnection(name)
}

// GetPropertyConcept returns the property concept with the given name.
func (s *Service) GetPropertyConcept(name string) (*concept.PropertyConcept, bool) {
	return s.Registry().GetProperty(name)
}

// GetModifierConcept returns the modifier concept with the given name.
func (s *Service) GetModifierConcept(name string) (*concept.ModifierConcept, bool) {
	return s.Registry().GetModifier(name)
}

// ValidateDomainRange reports whether a connection may link the given
// source and target entity types. Fails closed on unknown connections.
func (s *Service) ValidateDomainRange(connectionType, sourceType, targetType string) bool {
	return s.Registry().ValidateDomainRange(connectionType, sourceType, targetType)
}

// GetSubtypes returns all transitive subtypes of the named entity.
func (s *Service) GetSubtypes(name string) []string {
	return s.Registry().GetSubtypes(name)
}

// GetConceptHierarchy returns the subtype adjacency, rooted at root if
// given, else at all top-level entities.
func (s *Service) GetConceptHierarchy(root string) map[string][]string {
	return s.Registry().GetConceptHierarchy(root)
}

// ValidatePropertyValue reports whether value is acceptable for the named
// property. Unknown properties fail closed.
func (s *Service) ValidatePropertyValue(name string, value any) bool {
	prop, ok := s.Registry().GetProperty(name)
	if !ok {
		return false
	}

	switch prop.ValueType {
	case concept.ValueNumeric:
		n, ok := numericValue(value)
		if !ok {
			return false
		}
		if prop.ValueRange != nil && !prop.ValueRange.Contains(n) {
			return false
		}
		return true

	case concept.ValueCategorical:
		str, ok := value.(string)
		if !ok {
			return false
		}
		if prop.ValidValues == nil {
			// No vocabulary declared; any string passes.
			return true
		}
		for _, v := range prop.ValidValues {
			if v == str {
				return true
			}
		}
		return false

	case concept.ValueBoolean:
		_, ok := value.(bool)
		return ok

	case concept.ValueString:
		_, ok := value.(string)
		return ok

	default:
		return false
	}
}

// GetApplicableProperties returns the names of properties applicable to a
// concept type, either directly or through its category, sorted.
func (s *Service) GetApplicableProperties(conceptType, category string) []string {
	reg := s.Registry()
	var names []string
	for _, name := range reg.PropertyNames() {
		p, _ := reg.GetProperty(name)
		if p.AppliesToType(conceptType, category) {
			names = append(names, name)
		}
	}
	return names
}

// GetApplicableModifiers returns the names of modifiers applicable to a
// concept type, either directly or through its category, sorted.
func (s *Service) GetApplicableModifiers(conceptType, category string) []string {
	reg := s.Registry()
	var names []string
	for _, name := range reg.ModifierNames() {
		m, _ := reg.GetModifier(name)
		if m.AppliesToType(conceptType, category) {
			names = append(names, name)
		}
	}
	return names
}

// GetModifierValues returns the controlled vocabulary for a modifier.
func (s *Service) GetModifierValues(name string) ([]string, bool) {
	m, ok := s.Registry().GetModifier(name)
	if !ok {
		return nil, false
	}
	return append([]string(nil), m.Values...), true
}

// GetValidRelationships returns the names of all connection types whose
// domain admits sourceType and whose range admits targetType, sorted.
// Linear in the number of connection concepts; fine at hundreds of
// concepts, not built for thousands.
func (s *Service) GetValidRelationships(sourceType, targetType string) []string {
	reg := s.Registry()
	var names []string
	for _, name := range reg.ConnectionNames() {
		c, _ := reg.GetConnection(name)
		if c.AllowsSource(sourceType) && c.AllowsTarget(targetType) {
			names = append(names, name)
		}
	}
	return names
}

// SearchByIndigenousTerm returns every concept, across all four
// categories, whose alias set contains term (case-insensitive). This is a
// membership lookup, not ranked search.
func (s *Service) SearchByIndigenousTerm(term string) []concept.Definition {
	reg := s.Registry()
	var results []concept.Definition

	for _, name := range reg.EntityNames() {
		if e, _ := reg.GetEntity(name); e.MatchesAlias(term) {
			results = append(results, e)
		}
	}
	for _, name := range reg.ConnectionNames() {
		if c, _ := reg.GetConnection(name); c.MatchesAlias(term) {
			results = append(results, c)
		}
	}
	for _, name := range reg.PropertyNames() {
		if p, _ := reg.GetProperty(name); p.MatchesAlias(term) {
			results = append(results, p)
		}
	}
	for _, name := range reg.ModifierNames() {
		if m, _ := reg.GetModifier(name); m.MatchesAlias(term) {
			results = append(results, m)
		}
	}
	return results
}

// AddTheoryReference records that a theory uses a concept. The concept
// must exist in some category.
func (s *Service) AddTheoryReference(conceptName string, ref concept.TheoryReference) error {
	reg := s.Registry()
	if _, ok := reg.GetConcept(conceptName); !ok {
		return fmt.Errorf("unknown concept: %q", conceptName)
	}
	reg.AddTheoryReference(conceptName, ref)
	return nil
}

// Statistics returns counts for the current registry.
func (s *Service) Statistics() Statistics {
	return s.Registry().Statistics()
}

// ExportRegistry serializes the full registry to a JSON document at path,
// creating parent directories as needed. Tooling aid, not a hot path.
func (s *Service) ExportRegistry(path string) error {
	data, err := json.MarshalIndent(s.Registry(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write registry export: %w", err)
	}
	return nil
}

// numericValue coerces the numeric types seen in decoded YAML/JSON data.
// Booleans are not numeric.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
