package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Jaruso/bareclaw/internal/memory"
	"github.com/Jaruso/bareclaw/internal/security"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()
	pol, err := security.New(dir)
	if err != nil {
		t.Fatalf("security.New: %v", err)
	}
	return &Context{
		Policy: pol,
		Audit:  security.NewAuditLog(dir),
		Memory: memory.New(dir),
	}
}

func TestDispatchShapeAOpenAIStyle(t *testing.T) {
	ctx := newTestContext(t)
	reg := NewRegistry()
	var gotArgs string
	reg.Register(Tool{
		Name: "greet",
		Execute: func(_ *Context, raw json.RawMessage) ToolResult {
			gotArgs = string(raw)
			return ToolResult{Success: true, Output: "hi"}
		},
	})

	response := `I will call a tool. {"tool_calls":[{"function":{"name":"greet","arguments":"{\"who\":\"world\"}"}}]}`
	dispatched, buf := Dispatch(ctx, reg, response, "", 0)
	if !dispatched {
		t.Fatal("expected dispatched=true")
	}
	if !strings.Contains(buf, "[ok] greet: hi") {
		t.Fatalf("context buffer = %q", buf)
	}
	if gotArgs != `{"who":"world"}` {
		t.Fatalf("tool received args %q", gotArgs)
	}
}

func TestDispatchShapeBVariant(t *testing.T) {
	ctx := newTestContext(t)
	reg := NewRegistry()
	var gotArgs string
	reg.Register(Tool{
		Name: "greet",
		Execute: func(_ *Context, raw json.RawMessage) ToolResult {
			gotArgs = string(raw)
			return ToolResult{Success: true, Output: "hi"}
		},
	})

	response := `{"tool_calls":[{"function":"greet","arguments":{"who":"world"}}]}`
	dispatched, buf := Dispatch(ctx, reg, response, "", 0)
	if !dispatched {
		t.Fatal("expected dispatched=true")
	}
	if !strings.Contains(buf, "[ok] greet:") {
		t.Fatalf("context buffer = %q", buf)
	}
	if gotArgs != `{"who":"world"}` {
		t.Fatalf("tool received args %q", gotArgs)
	}
}

func TestDispatchNoToolCallsReturnsFalse(t *testing.T) {
	ctx := newTestContext(t)
	reg := NewRegistry()
	dispatched, buf := Dispatch(ctx, reg, "just a plain text answer", "prior", 0)
	if dispatched {
		t.Fatal("expected dispatched=false")
	}
	if buf != "prior" {
		t.Fatalf("context buffer should be unchanged, got %q", buf)
	}
}

func TestDispatchUnknownToolSilentlySkipped(t *testing.T) {
	ctx := newTestContext(t)
	reg := NewRegistry()
	response := `{"tool_calls":[{"function":{"name":"does_not_exist","arguments":"{}"}}]}`
	dispatched, buf := Dispatch(ctx, reg, response, "", 0)
	if !dispatched {
		t.Fatal("expected dispatched=true since tool_calls parsed successfully")
	}
	if buf != "" {
		t.Fatalf("expected no context entries for unknown tool, got %q", buf)
	}
}

func TestDispatchToolErrorCapturedAsResult(t *testing.T) {
	ctx := newTestContext(t)
	reg := NewRegistry()
	reg.Register(Tool{
		Name: "boom",
		Execute: func(_ *Context, _ json.RawMessage) ToolResult {
			return ToolResult{Success: false, Output: "tool error: kaboom"}
		},
	})
	response := `{"tool_calls":[{"function":{"name":"boom","arguments":"{}"}}]}`
	dispatched, buf := Dispatch(ctx, reg, response, "", 0)
	if !dispatched {
		t.Fatal("expected dispatched=true")
	}
	if !strings.Contains(buf, "[error] boom: tool error: kaboom") {
		t.Fatalf("context buffer = %q", buf)
	}
}

func TestAppendContextEvictsFromFrontPastBudget(t *testing.T) {
	buf := ""
	entry := strings.Repeat("a", 999) + "\n" // 1000 chars per entry
	for i := 0; i < 20; i++ {
		buf = AppendContext(buf, entry, DefaultContextChars)
	}
	if len(buf) > DefaultContextChars+len(entry) {
		t.Fatalf("buffer len %d exceeds budget+entry", len(buf))
	}
	if !strings.HasPrefix(buf, truncationMarker) {
		t.Fatalf("expected buffer to begin with truncation marker, got prefix %q", buf[:40])
	}
}

func TestAppendContextNoEvictionUnderBudget(t *testing.T) {
	buf := AppendContext("", "small entry\n", DefaultContextChars)
	if strings.Contains(buf, truncationMarker) {
		t.Fatal("did not expect truncation under budget")
	}
}
