// Package tools provides the built-in ontology tools served by the tool
// execution service: instance validation, concept search and template
// construction. Each tool is plain ToolLogic; the execution adapter
// supplies contract validation, enrichment and metadata.
package tools

import (
	"context"
	"errors"
	"strconv"

	"github.com/c360studio/conceptlib/adapter"
	"github.com/c360studio/conceptlib/concept"
	"github.com/c360studio/conceptlib/ontology"
	"github.com/c360studio/conceptlib/validator"
)

// Built-in tool names.
const (
	ToolValidateEntities      = "validate_entities"
	ToolValidateRelationships = "validate_relationships"
	ToolSearchConcepts        = "search_concepts"
	ToolGetTemplate           = "get_template"
)

// ValidateEntities returns tool logic that validates a list of entity
// instances. Input: {"entities": [...]}; output: {"validated": n,
// "valid": n, "errors": {"<index>": [...]}}.
func ValidateEntities(v *validator.Validator) adapter.ToolLogic {
	return adapter.ToolFunc(func(ctx context.Context, input map[string]any) (map[string]any, error) {
		items, _ := input["entities"].([]any)
		errs := make(map[string]any)
		valid := 0

		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				errs[indexKey(i)] = []string{"entity must be an object"}
				continue
			}
			entity := entityFromMap(m)
			if found := v.ValidateEntity(entity); len(found) > 0 {
				errs[indexKey(i)] = found
			} else {
				valid++
			}
		}

		return map[string]any{
			"validated": len(items),
			"valid":     valid,
			"errors":    errs,
		}, nil
	})
}

// ValidateRelationships returns tool logic that validates a list of
// relationship instances. Endpoint entities may be supplied per item
// under "source" and "target" for the domain/range check.
func ValidateRelationships(v *validator.Validator) adapter.ToolLogic {
	return adapter.ToolFunc(func(ctx context.Context, input map[string]any) (map[string]any, error) {
		items, _ := input["relationships"].([]any)
		errs := make(map[string]any)
		valid := 0

		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				errs[indexKey(i)] = []string{"relationship must be an object"}
				continue
			}
			rel := relationshipFromMap(m)
			var source, target *concept.Entity
			if sm, ok := m["source"].(map[string]any); ok {
				source = entityFromMap(sm)
			}
			if tm, ok := m["target"].(map[string]any); ok {
				target = entityFromMap(tm)
			}
			if found := v.ValidateRelationship(rel, source, target); len(found) > 0 {
				errs[indexKey(i)] = found
			} else {
				valid++
			}
		}

		return map[string]any{
			"validated": len(items),
			"valid":     valid,
			"errors":    errs,
		}, nil
	})
}

// SearchConcepts returns tool logic that finds concepts by indigenous
// term. Input: {"term": "..."}; output: {"matches": [{kind, name}]}.
func SearchConcepts(svc *ontology.Service) adapter.ToolLogic {
	return adapter.ToolFunc(func(ctx context.Context, input map[string]any) (map[string]any, error) {
		term, _ := input["term"].(string)
		if term == "" {
			return nil, errors.New("term argument is required")
		}

		var matches []any
		for _, def := range svc.SearchByIndigenousTerm(term) {
			matches = append(matches, map[string]any{
				"kind": def.ConceptKind().String(),
				"name": def.ConceptName(),
			})
		}
		return map[string]any{"matches": matches}, nil
	})
}

// GetTemplate returns tool logic that builds authoring templates.
// Input: {"type": "...", "category": "entity"|"relationship"}.
func GetTemplate(v *validator.Validator) adapter.ToolLogic {
	return adapter.ToolFunc(func(ctx context.Context, input map[string]any) (map[string]any, error) {
		typeName, _ := input["type"].(string)
		if typeName == "" {
			return nil, errors.New("type argument is required")
		}
		category, _ := input["category"].(string)

		if category == "relationship" {
			tmpl, err := v.GetRelationshipTemplate(typeName)
			if err != nil {
				return nil, err
			}
			return map[string]any{"template": tmpl}, nil
		}

		tmpl, err := v.GetEntityTemplate(typeName)
		if err != nil {
			return nil, err
		}
		return map[string]any{"template": tmpl}, nil
	})
}

// Builtin returns all built-in tools keyed by name.
func Builtin(svc *ontology.Service, v *validator.Validator) map[string]adapter.ToolLogic {
	return map[string]adapter.ToolLogic{
		ToolValidateEntities:      ValidateEntities(v),
		ToolValidateRelationships: ValidateRelationships(v),
		ToolSearchConcepts:        SearchConcepts(svc),
		ToolGetTemplate:           GetTemplate(v),
	}
}

func indexKey(i int) string {
	return strconv.Itoa(i)
}

func entityFromMap(m map[string]any) *concept.Entity {
	entityType, _ := m["entity_type"].(string)
	entity := &concept.Entity{EntityType: entityType}
	if props, ok := m["properties"].(map[string]any); ok {
		entity.Properties = props
	}
	if mods, ok := m["modifiers"].(map[string]any); ok {
		entity.Modifiers = make(map[string]string, len(mods))
		for k, val := range mods {
			if s, ok := val.(string); ok {
				entity.Modifiers[k] = s
			}
		}
	}
	return entity
}

func relationshipFromMap(m map[string]any) *concept.Relationship {
	relType, _ := m["relationship_type"].(string)
	rel := &concept.Relationship{RelationshipType: relType}
	if props, ok := m["properties"].(map[string]any); ok {
		rel.Properties = props
	}
	if mods, ok := m["modifiers"].(map[string]any); ok {
		rel.Modifiers = make(map[string]string, len(mods))
		for k, val := range mods {
			if s, ok := val.(string); ok {
				rel.Modifiers[k] = s
			}
		}
	}
	return rel
}
