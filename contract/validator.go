package contract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Validator loads tool contracts from a directory and validates data maps
// against them. Contracts are cached after first load; the cache is safe
// for concurrent use.
//
// Contract files are named <tool_name>.<type>.yaml, or <tool_name>.yaml
// for the default type.
type Validator struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Contract
}

// NewValidator creates a contract validator over a contracts directory.
func NewValidator(dir string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]*Contract),
	}
}

// LoadContract returns the contract for a tool and contract type, or
// false if none is declared.
func (v *Validator) LoadContract(toolName, contractType string) (*Contract, bool) {
	if contractType == "" {
		contractType = DefaultContractType
	}
	key := toolName + "." + contractType

	v.mu.RLock()
	c, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return c, c != nil
	}

	c = v.readContract(toolName, contractType)

	v.mu.Lock()
	v.cache[key] = c
	v.mu.Unlock()

	return c, c != nil
}

// readContract reads a contract file from disk. A missing or malformed
// file yields nil; malformed files are logged.
func (v *Validator) readContract(toolName, contractType string) *Contract {
	candidates := []string{
		filepath.Join(v.dir, toolName+"."+contractType+".yaml"),
		filepath.Join(v.dir, toolName+"."+contractType+".yml"),
	}
	if contractType == DefaultContractType {
		candidates = append(candidates,
			filepath.Join(v.dir, toolName+".yaml"),
			filepath.Join(v.dir, toolName+".yml"))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		c := &Contract{}
		if err := yaml.Unmarshal(data, c); err != nil {
			v.logger.Warn("Malformed contract file", "file", path, "error", err)
			return nil
		}
		if c.ToolName == "" {
			c.ToolName = toolName
		}
		if c.Type == "" {
			c.Type = contractType
		}
		if err := c.Validate(); err != nil {
			v.logger.Warn("Invalid contract", "file", path, "error", err)
			return nil
		}
		return c
	}
	return nil
}

// ValidateInput checks data against the tool's input schema. A tool with
// no declared contract passes; validation is opt-in per tool.
func (v *Validator) ValidateInput(toolName string, data map[string]any, contractType string) (bool, []string) {
	c, ok := v.LoadContract(toolName, contractType)
	if !ok {
		return true, nil
	}
	errs := validateSchema(c.Input, data)
	return len(errs) == 0, errs
}

// ValidateOutput checks data against the tool's output schema.
func (v *Validator) ValidateOutput(toolName string, data map[string]any, contractType string) (bool, []string) {
	c, ok := v.LoadContract(toolName, contractType)
	if !ok {
		return true, nil
	}
	errs := validateSchema(c.Output, data)
	return len(errs) == 0, errs
}

// Reset drops the contract cache. Used by tests and after contract
// directory changes.
func (v *Validator) Reset() {
	v.mu.Lock()
	v.cache = make(map[string]*Contract)
	v.mu.Unlock()
}

// validateSchema checks required fields, then each declared property.
// Unknown fields in the data are allowed for forward compatibility.
func validateSchema(schema Schema, data map[string]any) []string {
	var errs []string

	for _, required := range schema.Required {
		if _, exists := data[required]; !exists {
			errs = append(errs, fmt.Sprintf("field %q is required", required))
		}
	}

	fields := make([]string, 0, len(data))
	for name := range data {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	for _, name := range fields {
		prop, declared := schema.Properties[name]
		if !declared {
			continue
		}
		errs = append(errs, validateProperty(name, data[name], prop)...)
	}
	return errs
}

// validateProperty checks one field against its schema. A type mismatch
// suppresses the remaining checks for that field.
func validateProperty(name string, value any, prop PropertySchema) []string {
	if err := checkType(name, value, prop.Type); err != "" {
		return []string{err}
	}

	var errs []string
	if len(prop.Enum) > 0 {
		if s, ok := value.(string); ok && !contains(prop.Enum, s) {
			errs = append(errs, fmt.Sprintf("field %q must be one of: %s",
				name, strings.Join(prop.Enum, ", ")))
		}
	}
	if prop.Minimum != nil || prop.Maximum != nil {
		if n, ok := asFloat(value); ok {
			if prop.Minimum != nil && n < *prop.Minimum {
				errs = append(errs, fmt.Sprintf("field %q must be >= %g", name, *prop.Minimum))
			}
			if prop.Maximum != nil && n > *prop.Maximum {
				errs = append(errs, fmt.Sprintf("field %q must be <= %g", name, *prop.Maximum))
			}
		}
	}
	return errs
}

// checkType validates a value against a declared type name. Integers
// arriving as float64 through JSON decoding are accepted for "int".
func checkType(name string, value any, typ string) string {
	switch typ {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("field %q must be a string", name)
		}
	case "int":
		switch value.(type) {
		case int, int32, int64, float64:
		default:
			return fmt.Sprintf("field %q must be an integer", name)
		}
	case "float":
		if _, ok := asFloat(value); !ok {
			return fmt.Sprintf("field %q must be a number", name)
		}
	case "bool":
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("field %q must be a boolean", name)
		}
	case "array":
		switch value.(type) {
		case []any, []string, []map[string]any:
		default:
			return fmt.Sprintf("field %q must be an array", name)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Sprintf("field %q must be an object", name)
		}
	}
	return ""
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
