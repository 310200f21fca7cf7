package server

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/conceptlib/adapter"
	"github.com/c360studio/conceptlib/contract"
)

// testComponent builds a component around a placeholder connection; tests
// here never subscribe, so no server is needed.
func testComponent(t *testing.T) *Component {
	t.Helper()
	c, err := NewComponent(DefaultConfig(), &nats.Conn{}, nil)
	if err != nil {
		t.Fatalf("NewComponent: %v", err)
	}
	return c
}

func testAdapter(name string) *adapter.Adapter {
	contracts := contract.NewValidator("", nil)
	return adapter.New(name, adapter.ToolFunc(func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}), contracts)
}

func TestNewComponentValidation(t *testing.T) {
	if _, err := NewComponent(Config{}, &nats.Conn{}, nil); err == nil {
		t.Error("empty config must be rejected")
	}
	if _, err := NewComponent(DefaultConfig(), nil, nil); err == nil {
		t.Error("nil connection must be rejected")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.SubjectPrefix != "concept.tool.execute." {
		t.Errorf("subject_prefix = %q", cfg.SubjectPrefix)
	}

	cfg.QueueGroup = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing queue_group must be rejected")
	}
}

func TestRegister(t *testing.T) {
	c := testComponent(t)

	if err := c.Register(testAdapter("search_concepts")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.Register(testAdapter("search_concepts")); err == nil {
		t.Error("duplicate registration must be rejected")
	}

	c.running = true
	if err := c.Register(testAdapter("get_template")); err == nil {
		t.Error("registration while running must be rejected")
	}
}

func TestListTools(t *testing.T) {
	c := testComponent(t)

	if got := c.ListTools(); len(got) != 0 {
		t.Errorf("fresh component lists tools: %v", got)
	}

	_ = c.Register(testAdapter("search_concepts"))
	_ = c.Register(testAdapter("get_template"))

	if got := c.ListTools(); len(got) != 2 {
		t.Errorf("ListTools = %v", got)
	}
}

func TestStopNotRunning(t *testing.T) {
	c := testComponent(t)
	if err := c.Stop(); err == nil {
		t.Error("stopping a stopped component must error")
	}
}

func TestDecodeErrorResultShape(t *testing.T) {
	result := decodeErrorResult("search_concepts", errors.New("unexpected end of JSON input"))

	if result[adapter.KeyStatus] != adapter.StatusError {
		t.Errorf("status = %v", result[adapter.KeyStatus])
	}
	details, ok := result[adapter.KeyErrorDetails].(map[string]any)
	if !ok || details["exception_type"] != "decode" {
		t.Errorf("error_details = %v", result[adapter.KeyErrorDetails])
	}

	// Decode failures carry the same metadata shape as adapter results;
	// callers parse one shape regardless of where the request died.
	meta, ok := result[adapter.KeyExecutionMetadata].(map[string]any)
	if !ok {
		t.Fatalf("execution_metadata missing: %v", result)
	}
	if meta["tool_name"] != "search_concepts" {
		t.Errorf("tool_name = %v", meta["tool_name"])
	}
	if meta["adapter_version"] != adapter.Version {
		t.Errorf("adapter_version = %v", meta["adapter_version"])
	}
	if secs, ok := meta["execution_time"].(float64); !ok || secs != 0 {
		t.Errorf("execution_time = %v", meta["execution_time"])
	}
}

func TestGetStatus(t *testing.T) {
	c := testComponent(t)
	_ = c.Register(testAdapter("search_concepts"))

	status := c.GetStatus()
	if status.Running {
		t.Error("component reports running before Start")
	}
	if status.Tools != 1 {
		t.Errorf("tools = %d", status.Tools)
	}
	if status.RequestsProcessed != 0 || status.RequestErrors != 0 {
		t.Errorf("fresh counters non-zero: %+v", status)
	}
}
