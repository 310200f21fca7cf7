package server

import "fmt"

// Config configures the tool execution service.
type Config struct {
	// SubjectPrefix prefixes per-tool execution subjects. A tool named
	// "extract_entities" listens on SubjectPrefix + "extract_entities".
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix"`

	// QueueGroup load-balances requests across service instances.
	QueueGroup string `yaml:"queue_group" json:"queue_group"`
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		SubjectPrefix: "concept.tool.execute.",
		QueueGroup:    "conceptlib-tools",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SubjectPrefix == "" {
		return fmt.Errorf("subject_prefix is required")
	}
	if c.QueueGroup == "" {
		return fmt.Errorf("queue_group is required")
	}
	return nil
}
