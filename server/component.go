// Package server exposes tool execution adapters over NATS request-reply.
// Each registered tool listens on its own subject; requests carry the
// tool input map as JSON and replies carry the adapter result map,
// success or uniform error shape alike.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/conceptlib/adapter"
)

// Component is the tool execution service. Register adapters before
// Start; execution itself is stateless, so many requests run in parallel.
type Component struct {
	config Config
	conn   *nats.Conn
	logger *slog.Logger

	mu        sync.RWMutex
	running   bool
	startTime time.Time
	adapters  map[string]*adapter.Adapter
	subs      []*nats.Subscription

	requestsProcessed atomic.Int64
	requestErrors     atomic.Int64
}

// NewComponent creates a tool execution service over an established NATS
// connection.
func NewComponent(config Config, conn *nats.Conn, logger *slog.Logger) (*Component, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if conn == nil {
		return nil, fmt.Errorf("NATS connection required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Component{
		config:   config,
		conn:     conn,
		logger:   logger,
		adapters: make(map[string]*adapter.Adapter),
	}, nil
}

// Register adds a tool adapter. Must be called before Start.
func (c *Component) Register(a *adapter.Adapter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("cannot register tools while running")
	}
	name := a.ToolName()
	if _, exists := c.adapters[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	c.adapters[name] = a
	return nil
}

// ListTools returns the registered tool names.
func (c *Component) ListTools() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.adapters))
	for name := range c.adapters {
		names = append(names, name)
	}
	return names
}

// Start subscribes every registered tool to its execution subject.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("component already running")
	}

	for name, a := range c.adapters {
		subject := c.config.SubjectPrefix + name
		tool := a

		sub, err := c.conn.QueueSubscribe(subject, c.config.QueueGroup, func(msg *nats.Msg) {
			c.handleRequest(ctx, tool, msg)
		})
		if err != nil {
			c.unsubscribeLocked()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		c.subs = append(c.subs, sub)

		c.logger.Info("Tool subscribed",
			"tool", name,
			"subject", subject)
	}

	c.running = true
	c.startTime = time.Now()

	c.logger.Info("Tool execution service started",
		"tools", len(c.adapters),
		"queue_group", c.config.QueueGroup)
	return nil
}

// Stop unsubscribes all tools and stops the service.
func (c *Component) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return fmt.Errorf("component not running")
	}
	c.unsubscribeLocked()
	c.running = false

	c.logger.Info("Tool execution service stopped",
		"requests_processed", c.requestsProcessed.Load(),
		"errors", c.requestErrors.Load())
	return nil
}

func (c *Component) unsubscribeLocked() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
}

// handleRequest decodes one tool execution request, runs the adapter and
// replies with the result map. Decode failures reply with the adapter's
// uniform error shape so callers never need a second parser.
func (c *Component) handleRequest(ctx context.Context, tool *adapter.Adapter, msg *nats.Msg) {
	c.requestsProcessed.Add(1)

	var input map[string]any
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &input); err != nil {
			c.requestErrors.Add(1)
			c.reply(msg, decodeErrorResult(tool.ToolName(), err))
			return
		}
	}

	result := tool.Execute(ctx, input)
	if status, _ := result[adapter.KeyStatus].(string); status == adapter.StatusError {
		c.requestErrors.Add(1)
	}
	c.reply(msg, result)
}

// decodeErrorResult builds the reply for a request that failed to decode.
// It carries execution metadata like every adapter result, so callers
// parse one shape regardless of where the request died.
func decodeErrorResult(toolName string, err error) map[string]any {
	return map[string]any{
		adapter.KeyStatus: adapter.StatusError,
		adapter.KeyError:  fmt.Sprintf("invalid request payload: %v", err),
		adapter.KeyErrorDetails: map[string]any{
			"exception_type": "decode",
		},
		adapter.KeyExecutionMetadata: adapter.Metadata(toolName, "", 0),
	}
}

// reply marshals and sends a response, logging delivery failures.
func (c *Component) reply(msg *nats.Msg, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("Failed to marshal tool response", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		c.logger.Warn("Failed to deliver tool response", "error", err)
	}
}

// Status reports service health for diagnostics.
type Status struct {
	Running           bool          `json:"running"`
	Uptime            time.Duration `json:"uptime"`
	Tools             int           `json:"tools"`
	RequestsProcessed int64         `json:"requests_processed"`
	RequestErrors     int64         `json:"request_errors"`
}

// GetStatus returns a snapshot of service state.
func (c *Component) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var uptime time.Duration
	if c.running {
		uptime = time.Since(c.startTime)
	}
	return Status{
		Running:           c.running,
		Uptime:            uptime,
		Tools:             len(c.adapters),
		RequestsProcessed: c.requestsProcessed.Load(),
		RequestErrors:     c.requestErrors.Load(),
	}
}
