package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/conceptlib/concept"
	"github.com/c360studio/conceptlib/ontology"
)

// Validator is a stateless façade over the ontology service. Every method
// takes the data to validate and returns accumulated error strings or the
// enriched object; nothing is cached between calls.
type Validator struct {
	svc *ontology.Service
}

// New creates a validator over an ontology service.
func New(svc *ontology.Service) *Validator {
	return &Validator{svc: svc}
}

// ValidateEntity checks an entity instance against the concept library.
// An unknown entity type yields exactly one error and short-circuits:
// there is no schema to check properties or modifiers against. Otherwise
// each property and modifier is checked independently.
func (v *Validator) ValidateEntity(entity *concept.Entity) []string {
	if _, ok := v.svc.GetEntityConcept(entity.EntityType); !ok {
		return []string{fmt.Sprintf("unknown entity type: %q", entity.EntityType)}
	}

	var errs []string
	errs = append(errs, v.checkProperties(entity.EntityType, concept.CategoryEntity, entity.Properties)...)
	errs = append(errs, v.checkModifiers(entity.EntityType, concept.CategoryEntity, entity.Modifiers)...)
	return errs
}

// ValidateRelationship checks a relationship instance. The domain/range
// check runs only when both endpoint entities are supplied; the validator
// never infers endpoint types itself.
func (v *Validator) ValidateRelationship(rel *concept.Relationship, source, target *concept.Entity) []string {
	conn, ok := v.svc.GetConnectionConcept(rel.RelationshipType)
	if !ok {
		return []string{fmt.Sprintf("unknown relationship type: %q", rel.RelationshipType)}
	}

	var errs []string
	errs = append(errs, v.checkProperties(rel.RelationshipType, concept.CategoryConnection, rel.Properties)...)
	errs = append(errs, v.checkModifiers(rel.RelationshipType, concept.CategoryConnection, rel.Modifiers)...)

	if source != nil && target != nil {
		if !v.svc.ValidateDomainRange(rel.RelationshipType, source.EntityType, target.EntityType) {
			errs = append(errs, fmt.Sprintf(
				"relationship %q does not allow %q -> %q (domain: %s, range: %s)",
				rel.RelationshipType, source.EntityType, target.EntityType,
				strings.Join(conn.Domain, ", "), strings.Join(conn.Range, ", ")))
		}
	}
	return errs
}

// checkProperties runs the three-tier check on each declared property:
// unknown name, known but inapplicable, applicable but invalid value.
// Properties are independent; one failure never hides another.
func (v *Validator) checkProperties(conceptType, category string, props map[string]any) []string {
	var errs []string
	for _, name := range sortedPropKeys(props) {
		prop, ok := v.svc.GetPropertyConcept(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown property: %q", name))
			continue
		}
		if !prop.AppliesToType(conceptType, category) {
			errs = append(errs, fmt.Sprintf("property %q does not apply to %q", name, conceptType))
			continue
		}
		if !v.svc.ValidatePropertyValue(name, props[name]) {
			errs = append(errs, fmt.Sprintf("invalid value for property %q: %v", name, props[name]))
		}
	}
	return errs
}

// checkModifiers mirrors checkProperties, with the extra rule that the
// value must come from the modifier's controlled vocabulary.
func (v *Validator) checkModifiers(conceptType, category string, mods map[string]string) []string {
	var errs []string
	for _, name := range sortedModKeys(mods) {
		mod, ok := v.svc.GetModifierConcept(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown modifier: %q", name))
			continue
		}
		if !mod.AppliesToType(conceptType, category) {
			errs = append(errs, fmt.Sprintf("modifier %q does not apply to %q", name, conceptType))
			continue
		}
		if !mod.AllowsValue(mods[name]) {
			errs = append(errs, fmt.Sprintf("invalid value for modifier %q: %q (valid: %s)",
				name, mods[name], strings.Join(mod.Values, ", ")))
		}
	}
	return errs
}

// EnrichEntity sets the default value for every applicable modifier the
// entity does not already carry. Enrichment is additive only; explicit
// values are never overwritten. Returns the same entity.
func (v *Validator) EnrichEntity(entity *concept.Entity) *concept.Entity {
	if _, ok := v.svc.GetEntityConcept(entity.EntityType); !ok {
		return entity
	}
	for _, name := range v.svc.GetApplicableModifiers(entity.EntityType, concept.CategoryEntity) {
		if _, set := entity.Modifiers[name]; set {
			continue
		}
		mod, _ := v.svc.GetModifierConcept(name)
		if mod.DefaultValue != "" {
			entity.SetModifier(name, mod.DefaultValue)
		}
	}
	return entity
}

// EnrichRelationship sets applicable modifier defaults on a relationship,
// additively. Returns the same relationship.
func (v *Validator) EnrichRelationship(rel *concept.Relationship) *concept.Relationship {
	if _, ok := v.svc.GetConnectionConcept(rel.RelationshipType); !ok {
		return rel
	}
	for _, name := range v.svc.GetApplicableModifiers(rel.RelationshipType, concept.CategoryConnection) {
		if _, set := rel.Modifiers[name]; set {
			continue
		}
		mod, _ := v.svc.GetModifierConcept(name)
		if mod.DefaultValue != "" {
			rel.SetModifier(name, mod.DefaultValue)
		}
	}
	return rel
}

// Statistics returns counts for the underlying registry.
func (v *Validator) Statistics() ontology.Statistics {
	return v.svc.Statistics()
}

// Deterministic error ordering: map iteration order would make test
// output and user-facing error lists unstable.
func sortedPropKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedModKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
