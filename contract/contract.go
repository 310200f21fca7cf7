// Package contract provides structural contract validation for tool
// inputs and outputs. Contracts declare JSON-like shapes per tool;
// validation here is purely structural and is reported separately from
// ontology semantics.
package contract

import "fmt"

// Contract declares the structural schema a tool's input and output must
// satisfy, plus optional ontology-integration capability metadata.
type Contract struct {
	// ToolName identifies the tool this contract covers.
	ToolName string `yaml:"tool_name" json:"tool_name"`

	// Type is the contract flavor (e.g. "default", "strict"). A tool may
	// carry several contract types.
	Type string `yaml:"type" json:"type"`

	// Description explains what the tool does.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Input is the schema for tool input maps.
	Input Schema `yaml:"input" json:"input"`

	// Output is the schema for tool result maps.
	Output Schema `yaml:"output" json:"output"`

	// OntologyIntegration, when present, tells the execution adapter to
	// run ontology enrichment on the named result fields. Read once from
	// the contract, not looked up per execution.
	OntologyIntegration *OntologyIntegration `yaml:"ontology_integration,omitempty" json:"ontology_integration,omitempty"`
}

// OntologyIntegration names the result fields carrying entity and
// relationship instances to enrich.
type OntologyIntegration struct {
	// EntitiesField is the result key holding a list of entities.
	EntitiesField string `yaml:"entities_field,omitempty" json:"entities_field,omitempty"`

	// RelationshipsField is the result key holding a list of relationships.
	RelationshipsField string `yaml:"relationships_field,omitempty" json:"relationships_field,omitempty"`
}

// Schema describes the expected shape of a data map.
type Schema struct {
	// Properties maps field names to their schemas. Unknown fields in
	// the data are allowed (lenient validation).
	Properties map[string]PropertySchema `yaml:"properties" json:"properties"`

	// Required lists field names that must be present.
	Required []string `yaml:"required,omitempty" json:"required,omitempty"`
}

// PropertySchema constrains a single field.
type PropertySchema struct {
	// Type is one of: string, int, float, bool, array, object.
	Type string `yaml:"type" json:"type"`

	// Description documents the field.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Enum restricts string fields to the listed values.
	Enum []string `yaml:"enum,omitempty" json:"enum,omitempty"`

	// Minimum and Maximum bound numeric fields, inclusive.
	Minimum *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
}

// Validate checks the contract declaration itself.
func (c *Contract) Validate() error {
	if c.ToolName == "" {
		return fmt.Errorf("contract missing required field: tool_name")
	}
	if c.Type == "" {
		c.Type = DefaultContractType
	}
	for name, prop := range c.Input.Properties {
		if !validPropertyType(prop.Type) {
			return fmt.Errorf("contract %s: input field %q has unknown type %q", c.ToolName, name, prop.Type)
		}
	}
	for name, prop := range c.Output.Properties {
		if !validPropertyType(prop.Type) {
			return fmt.Errorf("contract %s: output field %q has unknown type %q", c.ToolName, name, prop.Type)
		}
	}
	return nil
}

// DefaultContractType is used when a contract does not declare a type.
const DefaultContractType = "default"

func validPropertyType(t string) bool {
	switch t {
	case "string", "int", "float", "bool", "array", "object":
		return true
	default:
		return false
	}
}
