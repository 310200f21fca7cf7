package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchContractYAML = `tool_name: search_concepts
description: Search the concept library by indigenous term.
input:
  properties:
    term:
      type: string
      description: Term to search for
    limit:
      type: int
      minimum: 1
      maximum: 100
    category:
      type: string
      enum: [entity, connection, property, modifier]
  required:
    - term
output:
  properties:
    matches:
      type: array
  required:
    - matches
`

func writeContract(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func testContractValidator(t *testing.T) (*Validator, string) {
	t.Helper()
	dir := t.TempDir()
	writeContract(t, dir, "search_concepts.yaml", searchContractYAML)
	return NewValidator(dir, nil), dir
}

func TestLoadContract(t *testing.T) {
	v, _ := testContractValidator(t)

	c, ok := v.LoadContract("search_concepts", "")
	require.True(t, ok)
	assert.Equal(t, "search_concepts", c.ToolName)
	assert.Equal(t, DefaultContractType, c.Type)
	assert.Contains(t, c.Input.Required, "term")
}

func TestLoadContractMissing(t *testing.T) {
	v, _ := testContractValidator(t)

	_, ok := v.LoadContract("no_such_tool", "")
	assert.False(t, ok)
}

func TestLoadContractTyped(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "search_concepts.strict.yaml", searchContractYAML)
	v := NewValidator(dir, nil)

	_, ok := v.LoadContract("search_concepts", "strict")
	assert.True(t, ok)

	// The typed file does not satisfy the default type.
	_, ok = v.LoadContract("search_concepts", "")
	assert.False(t, ok)
}

func TestValidateInput(t *testing.T) {
	v, _ := testContractValidator(t)

	tests := []struct {
		name     string
		data     map[string]any
		valid    bool
		contains string
	}{
		{"valid", map[string]any{"term": "actor", "limit": 10}, true, ""},
		{"missing required", map[string]any{"limit": 10}, false, `field "term" is required`},
		{"wrong type", map[string]any{"term": 42}, false, `field "term" must be a string`},
		{"below minimum", map[string]any{"term": "actor", "limit": 0}, false, `field "limit" must be >= 1`},
		{"above maximum", map[string]any{"term": "actor", "limit": 500}, false, `field "limit" must be <= 100`},
		{"bad enum", map[string]any{"term": "actor", "category": "ghost"}, false, `field "category" must be one of`},
		{"good enum", map[string]any{"term": "actor", "category": "entity"}, true, ""},
		{"unknown field allowed", map[string]any{"term": "actor", "extra": true}, true, ""},
		{"json float as int", map[string]any{"term": "actor", "limit": float64(5)}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, errs := v.ValidateInput("search_concepts", tt.data, "")
			assert.Equal(t, tt.valid, valid, "errors: %v", errs)
			if tt.contains != "" {
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0], tt.contains)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	v, _ := testContractValidator(t)

	valid, _ := v.ValidateOutput("search_concepts", map[string]any{"matches": []any{}}, "")
	assert.True(t, valid)

	valid, errs := v.ValidateOutput("search_concepts", map[string]any{}, "")
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `"matches" is required`)
}

func TestNoContractPasses(t *testing.T) {
	v := NewValidator(t.TempDir(), nil)

	valid, errs := v.ValidateInput("anything", map[string]any{"whatever": 1}, "")
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestMalformedContractSkipped(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "broken.yaml", "input: [not, a, schema")
	v := NewValidator(dir, nil)

	_, ok := v.LoadContract("broken", "")
	assert.False(t, ok)

	// Malformed contracts never block execution.
	valid, _ := v.ValidateInput("broken", map[string]any{}, "")
	assert.True(t, valid)
}

func TestCacheAndReset(t *testing.T) {
	v, dir := testContractValidator(t)

	_, ok := v.LoadContract("search_concepts", "")
	require.True(t, ok)

	// The cache serves the contract even after the file disappears.
	require.NoError(t, os.Remove(filepath.Join(dir, "search_concepts.yaml")))
	_, ok = v.LoadContract("search_concepts", "")
	assert.True(t, ok)

	v.Reset()
	_, ok = v.LoadContract("search_concepts", "")
	assert.False(t, ok)
}

func TestContractValidate(t *testing.T) {
	c := &Contract{}
	assert.Error(t, c.Validate(), "tool name is required")

	c.ToolName = "x"
	assert.NoError(t, c.Validate())
}
