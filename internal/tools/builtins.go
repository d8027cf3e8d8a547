package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Jaruso/bareclaw/internal/mcp"
)

const maxFileReadBytes = 4 << 20 // 4 MiB

// gitAllowedOps is the allowlist git_operations checks op against.
var gitAllowedOps = map[string]bool{
	"status": true, "log": true, "diff": true, "add": true, "commit": true,
	"push": true, "pull": true, "clone": true, "init": true, "branch": true,
	"checkout": true, "fetch": true, "stash": true,
}

// Register registers every built-in tool on r. MCP proxy tools are
// registered separately (see NewMcpProxyTool) and fail gracefully when
// Context.Sessions is nil.
func Register(r *Registry) {
	r.Register(Tool{Name: "shell", Description: "Run a shell command in the workspace and return its output.", Execute: shellTool})
	r.Register(Tool{Name: "file_read", Description: "Read a file's contents.", Execute: fileReadTool})
	r.Register(Tool{Name: "file_write", Description: "Write content to a file, creating parent directories as needed.", Execute: fileWriteTool})
	r.Register(Tool{Name: "memory_store", Description: "Store content under a memory key.", Execute: memoryStoreTool})
	r.Register(Tool{Name: "memory_recall", Description: "Recall content stored under a memory key.", Execute: memoryRecallTool})
	r.Register(Tool{Name: "memory_forget", Description: "Delete a memory key.", Execute: memoryForgetTool})
	r.Register(Tool{Name: "memory_list_keys", Description: "List every stored memory key.", Execute: memoryListKeysTool})
	r.Register(Tool{Name: "memory_delete_prefix", Description: "Delete every memory key starting with a prefix.", Execute: memoryDeletePrefixTool})
	r.Register(Tool{Name: "http_request", Description: "Make an HTTP GET or POST request.", Execute: httpRequestTool})
	r.Register(Tool{Name: "git_operations", Description: "Run a git subcommand against a repository path.", Execute: gitOperationsTool})
	r.Register(Tool{Name: "agent_status", Description: "Report workspace, memory, and policy status.", Execute: agentStatusTool})
	r.Register(Tool{Name: "audit_log_read", Description: "Read the last N lines of the audit log.", Execute: auditLogReadTool})
}

func fail(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Output: fmt.Sprintf(format, args...)}
}

func ok(output string) ToolResult {
	return ToolResult{Success: true, Output: output}
}

func shellTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return fail("tool error: invalid arguments: %v", err)
	}
	ctx.Audit.Log("shell", args.Command)
	if !ctx.Policy.AllowShellCommand(args.Command) {
		return fail("shell command denied by policy: %s", args.Command)
	}

	cmd := exec.Command("/bin/sh", "-c", args.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	output := stdout.String()
	if strings.TrimSpace(output) == "" {
		output = stderr.String()
	}
	return ToolResult{Success: err == nil, Output: ctx.truncate(output)}
}

func fileReadTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return fail("tool error: invalid arguments: %v", err)
	}
	ctx.Audit.Log("file_read", args.Path)
	if !ctx.Policy.AllowPath(args.Path) {
		return fail("file_read: path outside workspace is not allowed")
	}
	path := args.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(ctx.Policy.WorkspaceDir(), path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fail("tool error: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileReadBytes))
	if err != nil {
		return fail("tool error: %v", err)
	}
	return ok(ctx.truncate(string(data)))
}

func fileWriteTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return fail("tool error: invalid arguments: %v", err)
	}
	ctx.Audit.Log("file_write", args.Path)
	if !ctx.Policy.AllowPath(args.Path) {
		return fail("path denied by policy: %s", args.Path)
	}
	path := args.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(ctx.Policy.WorkspaceDir(), path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail("tool error: %v", err)
	}
	if err := os.WriteFile(path, []byte(args.Content), 0o644); err != nil {
		return fail("tool error: %v", err)
	}
	return ok(fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path))
}

func memoryStoreTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Key     string `json:"key"`
		Content string `json:"content"`
	}
	_ = json.Unmarshal(raw, &args)
	if args.Key == "" {
		args.Key = "default"
	}
	ctx.Audit.Log("memory_store", args.Key)
	if err := ctx.Memory.Store(args.Key, args.Content); err != nil {
		return fail("tool error: %v", err)
	}
	return ok(fmt.Sprintf("stored under %s", args.Key))
}

func memoryRecallTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Key string `json:"key"`
	}
	_ = json.Unmarshal(raw, &args)
	ctx.Audit.Log("memory_recall", args.Key)
	out, err := ctx.Memory.Recall(args.Key)
	if err != nil {
		return fail("tool error: %v", err)
	}
	return ok(ctx.truncate(out))
}

func memoryForgetTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Key string `json:"key"`
	}
	_ = json.Unmarshal(raw, &args)
	ctx.Audit.Log("memory_forget", args.Key)
	if err := ctx.Memory.Forget(args.Key); err != nil {
		return fail("tool error: %v", err)
	}
	return ok(fmt.Sprintf("forgot %s", args.Key))
}

func memoryListKeysTool(ctx *Context, _ json.RawMessage) ToolResult {
	ctx.Audit.Log("memory_list_keys", "")
	out, err := ctx.Memory.ListKeys()
	if err != nil {
		return fail("tool error: %v", err)
	}
	return ok(out)
}

func memoryDeletePrefixTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Prefix string `json:"prefix"`
	}
	_ = json.Unmarshal(raw, &args)
	ctx.Audit.Log("memory_delete_prefix", args.Prefix)
	n, err := ctx.Memory.DeletePrefix(args.Prefix)
	if err != nil {
		return fail("tool error: %v", err)
	}
	return ok(fmt.Sprintf("deleted %d entries", n))
}

func httpRequestTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		URL    string `json:"url"`
		Method string `json:"method"`
		Body   string `json:"body"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return fail("tool error: invalid arguments: %v", err)
	}
	ctx.Audit.Log("http_request", args.URL)

	method := "GET"
	if args.Method == "POST" {
		method = "POST"
	}
	var bodyReader io.Reader
	if method == "POST" {
		bodyReader = strings.NewReader(args.Body)
	}
	req, err := http.NewRequest(method, args.URL, bodyReader)
	if err != nil {
		return fail("tool error: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fail("tool error: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileReadBytes))
	if err != nil {
		return fail("tool error: %v", err)
	}
	body := ctx.truncate(string(data))
	if resp.StatusCode >= 400 {
		return fail("HTTP %d: %s", resp.StatusCode, body)
	}
	return ok(body)
}

func gitOperationsTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		Op   string `json:"op"`
		Path string `json:"path"`
		Args string `json:"args"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return fail("tool error: invalid arguments: %v", err)
	}
	if args.Path == "" {
		args.Path = "."
	}
	ctx.Audit.Log("git_operations", args.Op+" "+args.Path)

	if !gitAllowedOps[args.Op] {
		return fail("git operation not allowed: %s", args.Op)
	}
	if !ctx.Policy.AllowPath(args.Path) {
		return fail("path denied by policy: %s", args.Path)
	}

	argv := []string{"-C", args.Path, args.Op}
	if args.Args != "" {
		argv = append(argv, strings.Fields(args.Args)...)
	}
	cmd := exec.Command("git", argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	output := stdout.String()
	if strings.TrimSpace(output) == "" {
		output = stderr.String()
	}
	return ToolResult{Success: err == nil, Output: ctx.truncate(output)}
}

func agentStatusTool(ctx *Context, _ json.RawMessage) ToolResult {
	ctx.Audit.Log("agent_status", "")
	keys, _ := ctx.Memory.ListKeys()
	entryCount := 0
	if keys != "(no memory entries)" {
		entryCount = len(strings.Split(keys, "\n"))
	}
	summary := fmt.Sprintf(
		"workspace: %s\nmemory entries: %d\npolicy: path allowlist + shell blocklist active",
		ctx.Policy.WorkspaceDir(), entryCount,
	)
	return ok(summary)
}

func auditLogReadTool(ctx *Context, raw json.RawMessage) ToolResult {
	var args struct {
		N int `json:"n"`
	}
	_ = json.Unmarshal(raw, &args)
	if args.N == 0 {
		args.N = 50
	}
	ctx.Audit.Log("audit_log_read", fmt.Sprintf("n=%d", args.N))
	return ok(ctx.Audit.Tail(args.N))
}

// NewMcpProxyTool builds a registry entry for a tool discovered on a
// capability server: its name becomes "<serverKey>__<remoteName>" and its
// UserData carries the McpProxyMeta the dispatcher restores into
// ctx.CurrentMeta before invocation.
func NewMcpProxyTool(serverKey string, argv []string, remote mcp.ToolSummary) Tool {
	meta := McpProxyMeta{Argv: argv, RemoteName: remote.Name}
	return Tool{
		Name:        serverKey + "__" + remote.Name,
		Description: remote.Description,
		UserData:    meta,
		Execute:     mcpProxyTool,
	}
}

func mcpProxyTool(ctx *Context, raw json.RawMessage) ToolResult {
	meta, ok := ctx.CurrentMeta.(McpProxyMeta)
	if !ok {
		return fail("tool error: missing MCP proxy metadata")
	}
	ctx.Audit.Log("mcp_tool", meta.RemoteName)
	if ctx.Sessions == nil {
		return fail("tool error: no capability-proxy session pool configured")
	}
	session, err := ctx.Sessions.GetOrStart(meta.Argv)
	if err != nil {
		return fail("tool error: %v", err)
	}
	out, err := session.CallTool(meta.RemoteName, raw)
	if err != nil {
		return fail("tool error: %v", err)
	}
	return ToolResult{Success: true, Output: out}
}
