package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/conceptlib/concept"
	"github.com/c360studio/conceptlib/contract"
	"github.com/c360studio/conceptlib/validator"
)

// Version is stamped into every result's execution metadata.
const Version = "1.0.0"

// defaultTimeout bounds tool logic when no timeout is configured. The
// adapter never lets a tool hang indefinitely.
const defaultTimeout = 60 * time.Second

// Stage identifies a pipeline stage for error reporting and metrics.
type Stage string

const (
	StageInput      Stage = "input"
	StageExecution  Stage = "execution"
	StageEnrichment Stage = "enrichment"
	StageMetadata   Stage = "metadata"
	StageOutput     Stage = "output"
)

// ContractValidator is the structural validator the adapter depends on.
// Its schema representation is its own concern; the adapter only reads
// the ontology-integration capability from the loaded contract.
type ContractValidator interface {
	ValidateInput(toolName string, data map[string]any, contractType string) (bool, []string)
	ValidateOutput(toolName string, data map[string]any, contractType string) (bool, []string)
	LoadContract(toolName, contractType string) (*contract.Contract, bool)
}

// ToolLogic is an opaque tool implementation returning a result map.
type ToolLogic interface {
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)
}

// ToolFunc adapts a function to ToolLogic.
type ToolFunc func(ctx context.Context, input map[string]any) (map[string]any, error)

// Execute calls the function.
func (f ToolFunc) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	return f(ctx, input)
}

// Adapter wraps one tool with the validation and enrichment pipeline.
// Adapters are stateless apart from registry reads; run as many instances
// concurrently as there are in-flight requests.
type Adapter struct {
	toolName     string
	contractType string
	logic        ToolLogic
	contracts    ContractValidator
	ontology     *validator.Validator
	integration  *contract.OntologyIntegration
	timeout      time.Duration
	logger       *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithOntology enables the enrichment stage using the given validator.
// Enrichment still only runs for tools whose contract declares
// ontology integration.
func WithOntology(v *validator.Validator) Option {
	return func(a *Adapter) { a.ontology = v }
}

// WithTimeout bounds the tool logic call.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithContractType selects a contract flavor other than the default.
func WithContractType(t string) Option {
	return func(a *Adapter) { a.contractType = t }
}

// WithLogger sets the adapter's logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New creates an adapter for one tool. The ontology-integration
// capability is read once from the tool's contract here, not per
// execution.
func New(toolName string, logic ToolLogic, contracts ContractValidator, opts ...Option) *Adapter {
	a := &Adapter{
		toolName:     toolName,
		contractType: contract.DefaultContractType,
		logic:        logic,
		contracts:    contracts,
		timeout:      defaultTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if c, ok := contracts.LoadContract(toolName, a.contractType); ok {
		a.integration = c.OntologyIntegration
	}
	return a
}

// ToolName returns the wrapped tool's name.
func (a *Adapter) ToolName() string {
	return a.toolName
}

// fault is a pipeline stage failure. Stages return (result, *fault) and
// Execute short-circuits on the first non-nil fault, so every exit path
// is explicit.
type fault struct {
	stage            Stage
	message          string
	validationErrors []string
	exceptionType    string
}

// Execute runs the full pipeline on input and returns either the tool's
// result map with execution metadata stamped in, or a uniform error
// result. It never returns a bare fault to the caller and never invokes
// tool logic when input validation fails.
func (a *Adapter) Execute(ctx context.Context, input map[string]any) map[string]any {
	start := time.Now()
	executionID := uuid.New().String()

	result, f := a.run(ctx, input)
	elapsed := time.Since(start)

	if f != nil {
		failuresTotal.WithLabelValues(a.toolName, string(f.stage)).Inc()
		executionsTotal.WithLabelValues(a.toolName, "error").Inc()
		executionDuration.WithLabelValues(a.toolName).Observe(elapsed.Seconds())

		a.logger.Warn("Tool execution failed",
			"tool", a.toolName,
			"execution_id", executionID,
			"stage", string(f.stage),
			"error", f.message)
		return a.errorResult(f, executionID, elapsed)
	}

	// Metadata is stamped before output validation ran inside run(); fix
	// up the final elapsed time so failure and success paths agree.
	result[KeyExecutionMetadata] = a.metadata(executionID, elapsed)

	executionsTotal.WithLabelValues(a.toolName, "success").Inc()
	executionDuration.WithLabelValues(a.toolName).Observe(elapsed.Seconds())

	a.logger.Debug("Tool execution succeeded",
		"tool", a.toolName,
		"execution_id", executionID,
		"duration", elapsed)
	return result
}

// run walks the stages in order, short-circuiting on the first fault.
func (a *Adapter) run(ctx context.Context, input map[string]any) (map[string]any, *fault) {
	if f := a.validateInput(input); f != nil {
		return nil, f
	}

	result, f := a.executeLogic(ctx, input)
	if f != nil {
		return nil, f
	}

	if a.shouldEnrich() {
		a.enrichResult(result)
	}

	// Stamp metadata before output validation so schema checks see the
	// final shape. Elapsed time is finalized by Execute.
	result[KeyExecutionMetadata] = a.metadata("", 0)

	if f := a.validateOutput(result); f != nil {
		return nil, f
	}
	return result, nil
}

// validateInput is the ValidatingInput stage.
func (a *Adapter) validateInput(input map[string]any) *fault {
	ok, errs := a.contracts.ValidateInput(a.toolName, input, a.contractType)
	if ok {
		return nil
	}
	return &fault{
		stage:            StageInput,
		message:          "input validation failed",
		validationErrors: errs,
	}
}

// executeLogic is the Executing stage. Tool logic runs in its own
// goroutine with a bounded deadline; panics and timeouts are converted to
// faults annotated with the fault's kind, never propagated.
func (a *Adapter) executeLogic(ctx context.Context, input map[string]any) (map[string]any, *fault) {
	execCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type outcome struct {
		result map[string]any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := a.logic.Execute(execCtx, input)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-execCtx.Done():
		exceptionType := "timeout"
		if ctx.Err() != nil {
			exceptionType = "canceled"
		}
		return nil, &fault{
			stage:         StageExecution,
			message:       fmt.Sprintf("tool execution aborted: %v", execCtx.Err()),
			exceptionType: exceptionType,
		}

	case out := <-done:
		if out.err != nil {
			return nil, &fault{
				stage:         StageExecution,
				message:       out.err.Error(),
				exceptionType: fmt.Sprintf("%T", out.err),
			}
		}
		if out.result == nil {
			out.result = make(map[string]any)
		}
		return out.result, nil
	}
}

// shouldEnrich reports whether the Enriching stage runs. Capability flag
// from the contract AND an ontology validator must both be present.
func (a *Adapter) shouldEnrich() bool {
	return a.integration != nil && a.ontology != nil
}

// enrichResult applies default-modifier enrichment to the entity and
// relationship lists named by the contract's ontology integration.
// Items that do not decode as instances are left untouched.
func (a *Adapter) enrichResult(result map[string]any) {
	if field := a.integration.EntitiesField; field != "" {
		if items, ok := result[field].([]any); ok {
			for i, item := range items {
				if m, ok := item.(map[string]any); ok {
					items[i] = a.enrichEntityMap(m)
				}
			}
		}
	}
	if field := a.integration.RelationshipsField; field != "" {
		if items, ok := result[field].([]any); ok {
			for i, item := range items {
				if m, ok := item.(map[string]any); ok {
					items[i] = a.enrichRelationshipMap(m)
				}
			}
		}
	}
}

// enrichEntityMap decodes an entity map, enriches it, and writes the
// modifiers back.
func (a *Adapter) enrichEntityMap(m map[string]any) map[string]any {
	entity := decodeEntity(m)
	if entity == nil {
		return m
	}
	a.ontology.EnrichEntity(entity)
	if len(entity.Modifiers) > 0 {
		m["modifiers"] = modifiersToAny(entity.Modifiers)
	}
	return m
}

// enrichRelationshipMap decodes a relationship map, enriches it, and
// writes the modifiers back.
func (a *Adapter) enrichRelationshipMap(m map[string]any) map[string]any {
	rel := decodeRelationship(m)
	if rel == nil {
		return m
	}
	a.ontology.EnrichRelationship(rel)
	if len(rel.Modifiers) > 0 {
		m["modifiers"] = modifiersToAny(rel.Modifiers)
	}
	return m
}

// Result map keys at the adapter boundary.
const (
	KeyStatus            = "status"
	KeyError             = "error"
	KeyErrorDetails      = "error_details"
	KeyExecutionMetadata = "execution_metadata"

	StatusError = "error"
)

// Metadata builds the execution metadata object stamped on every result.
// Exported so transports replying on a tool's behalf (for requests that
// never reach Execute) can produce the same shape.
func Metadata(toolName, executionID string, elapsed time.Duration) map[string]any {
	return map[string]any{
		"tool_name":          toolName,
		"execution_id":       executionID,
		"execution_time":     elapsed.Seconds(),
		"adapter_version":    Version,
		"validation_applied": true,
	}
}

func (a *Adapter) metadata(executionID string, elapsed time.Duration) map[string]any {
	return Metadata(a.toolName, executionID, elapsed)
}

// errorResult builds the uniform error result shape.
func (a *Adapter) errorResult(f *fault, executionID string, elapsed time.Duration) map[string]any {
	details := map[string]any{
		"stage": string(f.stage),
	}
	if len(f.validationErrors) > 0 {
		details["validation_errors"] = f.validationErrors
	}
	if f.exceptionType != "" {
		details["exception_type"] = f.exceptionType
	}

	return map[string]any{
		KeyStatus:            StatusError,
		KeyError:             f.message,
		KeyErrorDetails:      details,
		KeyExecutionMetadata: a.metadata(executionID, elapsed),
	}
}

// validateOutput is the ValidatingOutput stage. A tool that succeeded but
// produced a non-conformant shape must be distinguishable from total tool
// failure, so this still yields a well-formed error result upstream.
func (a *Adapter) validateOutput(result map[string]any) *fault {
	ok, errs := a.contracts.ValidateOutput(a.toolName, result, a.contractType)
	if ok {
		return nil
	}
	return &fault{
		stage:            StageOutput,
		message:          "output validation failed",
		validationErrors: errs,
	}
}

// decodeEntity builds an entity instance from a loosely-typed map.
// Returns nil when the map has no entity_type.
func decodeEntity(m map[string]any) *concept.Entity {
	entityType, _ := m["entity_type"].(string)
	if entityType == "" {
		return nil
	}
	return &concept.Entity{
		EntityType: entityType,
		Properties: anyMap(m["properties"]),
		Modifiers:  stringMap(m["modifiers"]),
	}
}

// decodeRelationship builds a relationship instance from a loosely-typed
// map. Returns nil when the map has no relationship_type.
func decodeRelationship(m map[string]any) *concept.Relationship {
	relType, _ := m["relationship_type"].(string)
	if relType == "" {
		return nil
	}
	return &concept.Relationship{
		RelationshipType: relType,
		Properties:       anyMap(m["properties"]),
		Modifiers:        stringMap(m["modifiers"]),
	}
}

func anyMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

func modifiersToAny(mods map[string]string) map[string]any {
	out := make(map[string]any, len(mods))
	for k, v := range mods {
		out[k] = v
	}
	return out
}
