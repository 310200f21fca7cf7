package ontology

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entitiesYAML = `
Person:
  description: A human actor
  indigenous_term: [actor, individual]
  typical_attributes: [name, age]
Organization:
  description: A group with structure
Leader:
  parent: Person
`

const connectionsYAML = `
WORKS_AT:
  domain: [Person]
  range: [Organization]
  is_directed: true
RELATED_TO:
  domain: ["*"]
  range: ["*"]
`

const propertiesYAML = `
age:
  value_type: numeric
  value_range: {min: 0, max: 150}
  applies_to: [Person]
role:
  value_type: categorical
  valid_values: [member, manager]
  applies_to: [Entity]
`

const modifiersYAML = `
certainty:
  values: [low, medium, high]
  default_value: medium
  applies_to: [Entity]
`

// writeSources lays out the four category files in a temp dir and
// returns the Sources pointing at them.
func writeSources(t *testing.T, entities, connections, properties, modifiers string) Sources {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		if content == "" {
			return ""
		}
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	return Sources{
		Entities:    write("entities.yaml", entities),
		Connections: write("connections.yaml", connections),
		Properties:  write("properties.yaml", properties),
		Modifiers:   write("modifiers.yaml", modifiers),
	}
}

func TestLoadSources(t *testing.T) {
	src := writeSources(t, entitiesYAML, connectionsYAML, propertiesYAML, modifiersYAML)

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	stats := reg.Statistics()
	assert.Equal(t, 3, stats.Entities)
	assert.Equal(t, 2, stats.Connections)
	assert.Equal(t, 2, stats.Properties)
	assert.Equal(t, 1, stats.Modifiers)
	assert.Equal(t, 1, stats.SubtypeEdges)

	person, ok := reg.GetEntity("Person")
	require.True(t, ok)
	assert.Equal(t, []string{"actor", "individual"}, person.IndigenousTerms)

	leader, ok := reg.GetEntity("Leader")
	require.True(t, ok)
	assert.Equal(t, "Person", leader.Parent)

	age, ok := reg.GetProperty("age")
	require.True(t, ok)
	require.NotNil(t, age.ValueRange)
	assert.Equal(t, 150.0, age.ValueRange.Max)
}

func TestLoadSkipsMalformedRecord(t *testing.T) {
	// "broken" has an unknown value_type; the rest of the collection
	// still loads.
	props := propertiesYAML + `
broken:
  value_type: quantum
  applies_to: [Person]
`
	src := writeSources(t, entitiesYAML, "", props, "")

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Statistics().Properties)
	_, ok := reg.GetProperty("broken")
	assert.False(t, ok)
}

func TestLoadSkipsUnknownEndpointRef(t *testing.T) {
	conns := connectionsYAML + `
MANAGES:
  domain: [Person]
  range: [Ghost]
`
	src := writeSources(t, entitiesYAML, conns, "", "")

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	_, ok := reg.GetConnection("MANAGES")
	assert.False(t, ok, "connection with unknown range entity should be skipped")
	_, ok = reg.GetConnection("WORKS_AT")
	assert.True(t, ok)
}

func TestLoadSkipsUnknownAppliesTo(t *testing.T) {
	props := `
weight:
  value_type: numeric
  applies_to: [Ghost]
`
	src := writeSources(t, entitiesYAML, "", props, "")

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	_, ok := reg.GetProperty("weight")
	assert.False(t, ok)
}

func TestLoadToleratesUnknownFields(t *testing.T) {
	entities := `
Person:
  description: ok
  future_field: something
`
	src := writeSources(t, entities, "", "", "")

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	_, ok := reg.GetEntity("Person")
	assert.True(t, ok, "unknown fields must not reject a record")
}

func TestLoadSeversUnknownParent(t *testing.T) {
	entities := `
Person:
  parent: Ghost
`
	src := writeSources(t, entities, "", "", "")

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	person, ok := reg.GetEntity("Person")
	require.True(t, ok)
	assert.Empty(t, person.Parent, "link to unknown parent should be severed")
}

func TestLoadSeversParentCycle(t *testing.T) {
	entities := `
A:
  parent: B
B:
  parent: A
`
	src := writeSources(t, entities, "", "", "")

	reg, err := NewLoader(slog.Default()).LoadSources(src)
	require.NoError(t, err)

	// The cycle is severed at the first entity in name order; the other
	// edge survives as a plain subtype link.
	a, _ := reg.GetEntity("A")
	assert.Empty(t, a.Parent)
	b, _ := reg.GetEntity("B")
	assert.Equal(t, "A", b.Parent)
	assert.Equal(t, []string{"B"}, reg.GetSubtypes("A"))
}

func TestLoadDeterminism(t *testing.T) {
	src := writeSources(t, entitiesYAML, connectionsYAML, propertiesYAML, modifiersYAML)
	loader := NewLoader(slog.Default())

	first, err := loader.LoadSources(src)
	require.NoError(t, err)
	second, err := loader.LoadSources(src)
	require.NoError(t, err)

	assert.Equal(t, first.Statistics(), second.Statistics())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0755))

	files := map[string]string{
		"core/entities.yaml":     entitiesYAML,
		"core/connections.yaml":  connectionsYAML,
		"properties.yaml":        propertiesYAML,
		"modifiers-default.yaml": modifiersYAML,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	reg, err := NewLoader(slog.Default()).LoadDir(dir)
	require.NoError(t, err)

	stats := reg.Statistics()
	assert.Equal(t, 3, stats.Entities)
	assert.Equal(t, 2, stats.Connections)
	assert.Equal(t, 2, stats.Properties)
	assert.Equal(t, 1, stats.Modifiers)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := NewLoader(slog.Default()).LoadSources(Sources{Entities: "/nonexistent/entities.yaml"})
	assert.Error(t, err)
}
