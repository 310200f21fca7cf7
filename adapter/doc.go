// Package adapter orchestrates ontology-constrained tool execution:
// structural input validation, tool logic, conditional ontology
// enrichment, metadata stamping and structural output validation.
//
// Execute never returns a Go error for tool-level failures. Every failure
// class (contract violations, tool faults, panics, timeouts) is converted
// into a uniform error result map so callers can distinguish a tool that
// failed from a tool that succeeded with a non-conformant shape.
package adapter
