package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ontology", cfg.Ontology.Dir)
	assert.Equal(t, 500*time.Millisecond, cfg.Ontology.DebounceDelay)
	assert.Equal(t, "contracts", cfg.Contracts.Dir)
	assert.Equal(t, "concept.tool.execute.", cfg.NATS.SubjectPrefix)
	assert.Equal(t, 60*time.Second, cfg.Tools.Timeout)
	assert.Empty(t, cfg.Tools.Allowlist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"no ontology sources", func(c *Config) {
			c.Ontology = OntologyConfig{}
		}, "ontology sources are required"},
		{"explicit paths only", func(c *Config) {
			c.Ontology = OntologyConfig{Entities: "entities.yaml"}
		}, ""},
		{"zero timeout", func(c *Config) {
			c.Tools.Timeout = 0
		}, "tools.timeout must be positive"},
		{"empty subject prefix", func(c *Config) {
			c.NATS.SubjectPrefix = ""
		}, "nats.subject_prefix is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conceptlib.yaml")
	body := `ontology:
  dir: /etc/conceptlib/ontology
  watch: true
nats:
  url: nats://localhost:4222
tools:
  allowlist:
    - search_concepts
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	// File values override defaults; unset values keep defaults.
	assert.Equal(t, "/etc/conceptlib/ontology", cfg.Ontology.Dir)
	assert.True(t, cfg.Ontology.Watch)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, []string{"search_concepts"}, cfg.Tools.Allowlist)
	assert.Equal(t, "concept.tool.execute.", cfg.NATS.SubjectPrefix)
	assert.Equal(t, 60*time.Second, cfg.Tools.Timeout)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "conceptlib.yaml")

	cfg := DefaultConfig()
	cfg.Ontology.Dir = "/data/ontology"
	cfg.NATS.URL = "nats://broker:4222"
	cfg.Tools.Timeout = 30 * time.Second
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// A nil allowlist must survive the round trip as nil, not as an
	// empty slice serialized into the file.
	assert.Nil(t, loaded.Tools.Allowlist)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Ontology: OntologyConfig{Dir: "/override", Watch: true},
		NATS:     NATSConfig{URL: "nats://other:4222"},
		Tools:    ToolsConfig{Allowlist: []string{"get_template"}},
	})

	assert.Equal(t, "/override", base.Ontology.Dir)
	assert.True(t, base.Ontology.Watch)
	assert.Equal(t, "nats://other:4222", base.NATS.URL)
	assert.Equal(t, []string{"get_template"}, base.Tools.Allowlist)

	// Zero values in the overlay never clobber existing settings.
	assert.Equal(t, "concept.tool.execute.", base.NATS.SubjectPrefix)
	assert.Equal(t, 60*time.Second, base.Tools.Timeout)

	base.Merge(nil)
	assert.Equal(t, "/override", base.Ontology.Dir)
}

func TestToolAllowed(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.ToolAllowed("anything"), "empty allowlist allows all")

	cfg.Tools.Allowlist = []string{"search_concepts", "get_template"}
	assert.True(t, cfg.ToolAllowed("search_concepts"))
	assert.False(t, cfg.ToolAllowed("validate_entities"))
}
