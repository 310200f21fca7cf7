// Package ontology owns the Master Concept Library: the in-memory concept
// registry, the service that loads and queries it, and the process-wide
// singleton handle.
//
// The registry is built once from declarative YAML sources and is read-only
// afterwards, except for theory-reference appends. Lookups never lock;
// concurrent readers are safe by construction.
package ontology
