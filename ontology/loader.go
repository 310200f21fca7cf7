package ontology

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/conceptlib/concept"
)

// Sources names the four concept collection files. Connections may
// reference entity names, so entities load first; the remaining order is
// fixed for determinism.
type Sources struct {
	Entities    string `yaml:"entities" json:"entities"`
	Connections string `yaml:"connections" json:"connections"`
	Properties  string `yaml:"properties" json:"properties"`
	Modifiers   string `yaml:"modifiers" json:"modifiers"`
}

// Category file patterns used by directory discovery. Doublestar globs,
// relative to the ontology directory.
var categoryPatterns = map[concept.Kind]string{
	concept.KindEntity:     "**/entities*.{yaml,yml}",
	concept.KindConnection: "**/connections*.{yaml,yml}",
	concept.KindProperty:   "**/properties*.{yaml,yml}",
	concept.KindModifier:   "**/modifiers*.{yaml,yml}",
}

// Loader builds a Registry from concept source files. Loading is tolerant:
// a malformed record is logged and skipped, and the rest of the collection
// still loads.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadSources builds a registry from the four named files. Empty paths
// are allowed and load nothing for that category.
func (l *Loader) LoadSources(src Sources) (*Registry, error) {
	reg := NewRegistry()

	if err := l.loadCategory(reg, concept.KindEntity, src.Entities); err != nil {
		return nil, err
	}
	if err := l.loadCategory(reg, concept.KindConnection, src.Connections); err != nil {
		return nil, err
	}
	if err := l.loadCategory(reg, concept.KindProperty, src.Properties); err != nil {
		return nil, err
	}
	if err := l.loadCategory(reg, concept.KindModifier, src.Modifiers); err != nil {
		return nil, err
	}

	l.finalize(reg)
	return reg, nil
}

// LoadDir builds a registry by discovering category files under dir using
// the doublestar patterns in categoryPatterns. Multiple files per category
// merge into one collection.
func (l *Loader) LoadDir(dir string) (*Registry, error) {
	reg := NewRegistry()

	for _, kind := range []concept.Kind{
		concept.KindEntity, concept.KindConnection,
		concept.KindProperty, concept.KindModifier,
	} {
		matches, err := doublestar.Glob(os.DirFS(dir), categoryPatterns[kind])
		if err != nil {
			return nil, fmt.Errorf("glob %s sources: %w", kind, err)
		}
		sort.Strings(matches)
		for _, rel := range matches {
			if err := l.loadCategory(reg, kind, filepath.Join(dir, rel)); err != nil {
				return nil, err
			}
		}
	}

	l.finalize(reg)
	return reg, nil
}

// loadCategory reads one collection file and adds its valid records to
// the registry. Returns an error only for I/O or top-level parse
// failures; individual bad records are logged and skipped.
func (l *Loader) loadCategory(reg *Registry, kind concept.Kind, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s source: %w", kind, err)
	}

	// Collections map concept name to record. Unknown record fields are
	// ignored for forward compatibility.
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s source %s: %w", kind, path, err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := raw[name]
		if err := l.addRecord(reg, kind, name, &node); err != nil {
			l.logger.Warn("Skipping malformed concept record",
				"category", kind.String(),
				"concept", name,
				"file", path,
				"error", err)
		}
	}
	return nil
}

// addRecord decodes and validates a single record, then adds it to the
// registry under the right category.
func (l *Loader) addRecord(reg *Registry, kind concept.Kind, name string, node *yaml.Node) error {
	switch kind {
	case concept.KindEntity:
		e := &concept.EntityConcept{}
		if err := node.Decode(e); err != nil {
			return err
		}
		if e.Name == "" {
			e.Name = name
		}
		if err := e.Validate(); err != nil {
			return err
		}
		if _, exists := reg.GetEntity(e.Name); exists {
			return fmt.Errorf("duplicate entity concept %q", e.Name)
		}
		reg.AddEntity(e)

	case concept.KindConnection:
		c := &concept.ConnectionConcept{}
		if err := node.Decode(c); err != nil {
			return err
		}
		if c.Name == "" {
			c.Name = name
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := l.checkEndpointRefs(reg, c); err != nil {
			return err
		}
		if _, exists := reg.GetConnection(c.Name); exists {
			return fmt.Errorf("duplicate connection concept %q", c.Name)
		}
		reg.AddConnection(c)

	case concept.KindProperty:
		p := &concept.PropertyConcept{}
		if err := node.Decode(p); err != nil {
			return err
		}
		if p.Name == "" {
			p.Name = name
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := l.checkAppliesTo(reg, p.Name, p.AppliesTo); err != nil {
			return err
		}
		if _, exists := reg.GetProperty(p.Name); exists {
			return fmt.Errorf("duplicate property concept %q", p.Name)
		}
		reg.AddProperty(p)

	case concept.KindModifier:
		m := &concept.ModifierConcept{}
		if err := node.Decode(m); err != nil {
			return err
		}
		if m.Name == "" {
			m.Name = name
		}
		if err := m.Validate(); err != nil {
			return err
		}
		if err := l.checkAppliesTo(reg, m.Name, m.AppliesTo); err != nil {
			return err
		}
		if _, exists := reg.GetModifier(m.Name); exists {
			return fmt.Errorf("duplicate modifier concept %q", m.Name)
		}
		reg.AddModifier(m)
	}
	return nil
}

// checkEndpointRefs enforces that every domain/range entry is either the
// wildcard or a known entity concept. Entities load before connections,
// so all legal references already resolve.
func (l *Loader) checkEndpointRefs(reg *Registry, c *concept.ConnectionConcept) error {
	for _, name := range c.Domain {
		if name == concept.Wildcard {
			continue
		}
		if _, ok := reg.GetEntity(name); !ok {
			return fmt.Errorf("domain references unknown entity %q", name)
		}
	}
	for _, name := range c.Range {
		if name == concept.Wildcard {
			continue
		}
		if _, ok := reg.GetEntity(name); !ok {
			return fmt.Errorf("range references unknown entity %q", name)
		}
	}
	return nil
}

// checkAppliesTo enforces that applies_to entries name a known entity or
// connection concept, or use the literal category tokens.
func (l *Loader) checkAppliesTo(reg *Registry, owner string, appliesTo []string) error {
	for _, target := range appliesTo {
		if target == concept.CategoryEntity || target == concept.CategoryConnection {
			continue
		}
		if _, ok := reg.GetEntity(target); ok {
			continue
		}
		if _, ok := reg.GetConnection(target); ok {
			continue
		}
		return fmt.Errorf("%q applies_to references unknown concept %q", owner, target)
	}
	return nil
}

// finalize severs parent edges that are unknown or would form a cycle,
// then derives the subtype adjacency. The registry is treated as frozen
// once this returns.
func (l *Loader) finalize(reg *Registry) {
	for _, name := range reg.EntityNames() {
		e, _ := reg.GetEntity(name)
		if e.Parent == "" {
			continue
		}
		if _, ok := reg.GetEntity(e.Parent); !ok {
			l.logger.Warn("Dropping subtype link to unknown parent",
				"entity", name,
				"parent", e.Parent)
			e.Parent = ""
			continue
		}
		if l.parentChainCycles(reg, name) {
			l.logger.Warn("Dropping subtype link that forms a cycle",
				"entity", name,
				"parent", e.Parent)
			e.Parent = ""
		}
	}
	reg.BuildRelations()
}

// parentChainCycles walks the parent chain from start and reports whether
// it revisits a node.
func (l *Loader) parentChainCycles(reg *Registry, start string) bool {
	visited := make(map[string]bool)
	current := start
	for current != "" {
		if visited[current] {
			return true
		}
		visited[current] = true
		e, ok := reg.GetEntity(current)
		if !ok {
			return false
		}
		current = e.Parent
	}
	return false
}
