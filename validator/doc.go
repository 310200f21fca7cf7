// Package validator checks entity and relationship instances against the
// Master Concept Library and applies default-modifier enrichment.
//
// Validation accumulates human-readable error strings instead of failing
// fast; the caller decides severity. The one exceptional path is template
// construction for an unknown type, which returns an error.
package validator
