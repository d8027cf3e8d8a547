// Package tools implements BareClaw's tool registry and dispatch: the
// built-in capabilities a model can invoke (shell, files, memory, HTTP,
// git, MCP proxy), the JSON extraction that recovers a tool call from
// noisy model output, and the context-budget bookkeeping between rounds.
package tools

import (
	"encoding/json"
	"strconv"

	"github.com/Jaruso/bareclaw/internal/mcp"
	"github.com/Jaruso/bareclaw/internal/memory"
	"github.com/Jaruso/bareclaw/internal/security"
)

// MinToolOutputChars and MaxToolOutputCharsCeil bound MAX_TOOL_OUTPUT_CHARS.
const (
	MinToolOutputChars     = 1000
	MaxToolOutputCharsCeil = 32000
	DefaultToolOutputChars = 8000
)

// ToolResult is the outcome of one execute_fn invocation.
type ToolResult struct {
	Success bool
	Output  string
}

// ExecuteFn performs a tool's work given the shared context and its raw
// JSON arguments.
type ExecuteFn func(ctx *Context, argsJSON json.RawMessage) ToolResult

// McpProxyMeta is the per-tool user_data carried by tools proxied from an
// MCP capability server: which server to start (argv) and which remote
// tool name to invoke.
type McpProxyMeta struct {
	Argv       []string
	RemoteName string
}

// Tool is one registry entry: a stable name the model emits, a
// description surfaced in the system prompt manifest, the function that
// performs the work, and optional closed-over state (MCP proxy metadata).
type Tool struct {
	Name        string
	Description string
	Execute     ExecuteFn
	UserData    any
}

// Context is the per-call environment handed to every ExecuteFn: the
// security policy, the memory backend, the optional capability-proxy
// session pool, and CurrentMeta: the dispatcher sets this to the
// invoked tool's UserData immediately before calling Execute, since
// ExecuteFn has no closure over its own Tool entry.
type Context struct {
	Policy       *security.Policy
	Audit        *security.AuditLog
	Memory       *memory.Store
	Sessions     *mcp.SessionPool
	CurrentMeta  any
	MaxOutputLen int
}

// clampOutput bounds n to [MinToolOutputChars, MaxToolOutputCharsCeil],
// substituting DefaultToolOutputChars when n is zero.
func (c *Context) clampOutput() int {
	n := c.MaxOutputLen
	if n == 0 {
		n = DefaultToolOutputChars
	}
	if n < MinToolOutputChars {
		n = MinToolOutputChars
	}
	if n > MaxToolOutputCharsCeil {
		n = MaxToolOutputCharsCeil
	}
	return n
}

// truncate bounds output to the context's configured limit, appending the
// spec-mandated trailing marker when truncation occurs.
func (c *Context) truncate(output string) string {
	limit := c.clampOutput()
	if len(output) <= limit {
		return output
	}
	return output[:limit] + "\n[... output truncated at " + strconv.Itoa(limit) + " chars ...]"
}
