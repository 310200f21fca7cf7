// Package config provides configuration loading and management for the
// concept library and tool execution service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete conceptlib configuration
type Config struct {
	Ontology  OntologyConfig  `yaml:"ontology"`
	Contracts ContractsConfig `yaml:"contracts"`
	NATS      NATSConfig      `yaml:"nats"`
	Tools     ToolsConfig     `yaml:"tools"`
}

// OntologyConfig configures the concept source locations
type OntologyConfig struct {
	// Dir is the ontology directory scanned for category files
	// (entities*.yaml, connections*.yaml, properties*.yaml,
	// modifiers*.yaml). Takes precedence over the explicit paths.
	Dir string `yaml:"dir"`

	// Entities, Connections, Properties and Modifiers are explicit
	// per-category file paths, used when Dir is empty.
	Entities    string `yaml:"entities"`
	Connections string `yaml:"connections"`
	Properties  string `yaml:"properties"`
	Modifiers   string `yaml:"modifiers"`

	// Watch enables automatic registry reload on source file changes
	Watch bool `yaml:"watch"`

	// DebounceDelay is how long to wait for more changes before reloading
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// ContractsConfig configures structural contract loading
type ContractsConfig struct {
	// Dir holds one contract file per tool (<tool>.yaml)
	Dir string `yaml:"dir"`
}

// NATSConfig configures the tool execution service transport
type NATSConfig struct {
	// URL is the NATS server URL (empty = service disabled)
	URL string `yaml:"url"`

	// SubjectPrefix prefixes tool execution subjects
	// (default: "concept.tool.execute.")
	SubjectPrefix string `yaml:"subject_prefix"`
}

// ToolsConfig configures tool execution settings
type ToolsConfig struct {
	// Timeout is the maximum time a tool logic call may run
	Timeout time.Duration `yaml:"timeout"`

	// Allowlist is the list of allowed tool names (empty = allow all)
	Allowlist []string `yaml:"allowlist,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Dir:           "ontology",
			Watch:         false,
			DebounceDelay: 500 * time.Millisecond,
		},
		Contracts: ContractsConfig{
			Dir: "contracts",
		},
		NATS: NATSConfig{
			URL:           "",
			SubjectPrefix: "concept.tool.execute.",
		},
		Tools: ToolsConfig{
			Timeout:   60 * time.Second,
			Allowlist: nil, // Allow all
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ontology.Dir == "" &&
		c.Ontology.Entities == "" && c.Ontology.Connections == "" &&
		c.Ontology.Properties == "" && c.Ontology.Modifiers == "" {
		return fmt.Errorf("ontology sources are required: set ontology.dir or per-category paths")
	}
	if c.Tools.Timeout <= 0 {
		return fmt.Errorf("tools.timeout must be positive")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	if other.Ontology.Dir != "" {
		c.Ontology.Dir = other.Ontology.Dir
	}
	if other.Ontology.Entities != "" {
		c.Ontology.Entities = other.Ontology.Entities
	}
	if other.Ontology.Connections != "" {
		c.Ontology.Connections = other.Ontology.Connections
	}
	if other.Ontology.Properties != "" {
		c.Ontology.Properties = other.Ontology.Properties
	}
	if other.Ontology.Modifiers != "" {
		c.Ontology.Modifiers = other.Ontology.Modifiers
	}
	if other.Ontology.Watch {
		c.Ontology.Watch = true
	}
	if other.Ontology.DebounceDelay != 0 {
		c.Ontology.DebounceDelay = other.Ontology.DebounceDelay
	}

	// Contracts
	if other.Contracts.Dir != "" {
		c.Contracts.Dir = other.Contracts.Dir
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.SubjectPrefix != "" {
		c.NATS.SubjectPrefix = other.NATS.SubjectPrefix
	}

	// Tools
	if other.Tools.Timeout != 0 {
		c.Tools.Timeout = other.Tools.Timeout
	}
	if len(other.Tools.Allowlist) > 0 {
		c.Tools.Allowlist = other.Tools.Allowlist
	}
}

// ToolAllowed reports whether a tool name passes the allowlist. An empty
// allowlist allows everything.
func (c *Config) ToolAllowed(name string) bool {
	if len(c.Tools.Allowlist) == 0 {
		return true
	}
	for _, allowed := range c.Tools.Allowlist {
		if allowed == name {
			return true
		}
	}
	return false
}
