// Package concept defines the Master Concept Library data model: the four
// concept categories (entity, connection, property, modifier), the instance
// types validated against them, and theory usage references.
//
// Concept definitions are declarative records loaded from YAML collections.
// The closed set of variants is expressed as concrete structs implementing
// Definition, so consumers dispatch on Kind rather than probing fields.
package concept
