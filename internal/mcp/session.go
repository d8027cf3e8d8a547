package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/Jaruso/bareclaw/internal/errkind"
)

// ProbeTimeout bounds a single read on a probe session so a hung capability
// server cannot stall startup.
const ProbeTimeout = 8 * time.Second

// Session owns one capability-proxy child process: its piped stdin/stdout
// and a monotone JSON-RPC request ID counter. stderr is discarded.
//
// Requests are serialized: a Session is never used by two concurrent
// callers, matching the spec's single-session-per-caller guarantee.
type Session struct {
	argv []string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	nextID  int64
	mu      sync.Mutex
	timeout time.Duration // 0 = blocking read, no deadline
}

// NewPoolSession returns a session configured for blocking reads, for use
// by the long-lived SessionPool.
func NewPoolSession(argv []string) *Session {
	return &Session{argv: argv}
}

// NewProbeSession returns a session configured with the 8-second per-read
// deadline used to validate a server before trusting it.
func NewProbeSession(argv []string) *Session {
	return &Session{argv: argv, timeout: ProbeTimeout}
}

// Argv returns the process argv this session was constructed with.
func (s *Session) Argv() []string {
	return s.argv
}

// Start spawns the child process and performs the mandatory MCP handshake:
// initialize (response discarded) followed by the initialized notification.
func (s *Session) Start() error {
	if len(s.argv) == 0 {
		return fmt.Errorf("mcp: empty argv: %w", errkind.InvalidInput)
	}
	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("mcp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("mcp: stdout pipe: %w", err)
	}
	// cmd.Stderr left nil: exec connects it to /dev/null.

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("mcp: start %s: %w", s.argv[0], errkind.ResourceError)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReaderSize(stdout, 64*1024)

	initParams, _ := json.Marshal(map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
	})
	if _, err := s.call("initialize", initParams); err != nil {
		_ = s.Close()
		return fmt.Errorf("mcp: initialize: %w", err)
	}
	if err := s.notify("notifications/initialized", json.RawMessage(`{}`)); err != nil {
		_ = s.Close()
		return fmt.Errorf("mcp: initialized notification: %w", err)
	}
	return nil
}

// Close terminates the session: closes stdin and waits for the child to
// exit.
func (s *Session) Close() error {
	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		return s.cmd.Wait()
	}
	return nil
}

// call sends a JSON-RPC request and waits for its response, honoring the
// session's read deadline (if any).
func (s *Session) call(method string, params json.RawMessage) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	req := request{JSONRPC: "2.0", ID: s.nextID, Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal request: %w", err)
	}
	if _, err := s.stdin.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("mcp: write request: %w", errkind.ResourceError)
	}

	type readResult struct {
		line []byte
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := s.stdout.ReadBytes('\n')
		ch <- readResult{line: line, err: err}
	}()

	var line []byte
	if s.timeout > 0 {
		select {
		case r := <-ch:
			if r.err != nil {
				return nil, fmt.Errorf("mcp: read response: %w", errkind.ProtocolError)
			}
			line = r.line
		case <-time.After(s.timeout):
			return nil, fmt.Errorf("mcp: read timed out after %s: %w", s.timeout, errkind.Timeout)
		}
	} else {
		r := <-ch
		if r.err != nil {
			return nil, fmt.Errorf("mcp: read response: %w", errkind.ProtocolError)
		}
		line = r.line
	}

	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("mcp: parse response: %w", errkind.ProtocolError)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// notify sends a JSON-RPC notification (no id, no response expected).
func (s *Session) notify(method string, params json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := request{JSONRPC: "2.0", Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("mcp: marshal notification: %w", err)
	}
	if _, err := s.stdin.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("mcp: write notification: %w", errkind.ResourceError)
	}
	return nil
}

// ListTools performs capability discovery via tools/list. Malformed or
// missing results are tolerated leniently and yield an empty slice.
func (s *Session) ListTools() []ToolSummary {
	result, err := s.call("tools/list", json.RawMessage(`{}`))
	if err != nil {
		return nil
	}
	var parsed listToolsResult
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil
	}
	return parsed.Tools
}

// CallTool invokes a remote tool via tools/call and renders the response
// into plain text per the lenient-decoding rules in the spec: an object
// with isError/content[], a bare content array, or a bare string.
func (s *Session) CallTool(name string, argsJSON json.RawMessage) (string, error) {
	if len(argsJSON) == 0 {
		argsJSON = json.RawMessage(`{}`)
	}
	params, _ := json.Marshal(map[string]any{
		"name":      name,
		"arguments": json.RawMessage(argsJSON),
	})
	result, err := s.call("tools/call", params)
	if err != nil {
		// The error.message case: the transport succeeded, the remote
		// tool's own failure is surfaced as text, not as a Go error.
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return fmt.Sprintf("(mcp error: %s)", rpcErr.Message), nil
		}
		return fmt.Sprintf("(mcp error: %s)", err), nil
	}
	return renderCallResult(result), nil
}

func renderCallResult(raw json.RawMessage) string {
	var asObject callToolResult
	if err := json.Unmarshal(raw, &asObject); err == nil && len(asObject.Content) > 0 {
		return joinText(asObject.Content, asObject.IsError)
	}

	var asArray []contentBlock
	if err := json.Unmarshal(raw, &asArray); err == nil && len(asArray) > 0 {
		return joinText(asArray, false)
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return asString
	}

	if asObject.IsError {
		return "(mcp: tool returned empty error)"
	}
	return "(ok)"
}

func joinText(blocks []contentBlock, isError bool) string {
	var texts []string
	for _, b := range blocks {
		if b.Type == "text" {
			texts = append(texts, b.Text)
		}
	}
	if len(texts) == 0 {
		if isError {
			return "(mcp: tool returned empty error)"
		}
		return "(ok)"
	}
	joined := texts[0]
	for _, t := range texts[1:] {
		joined += "\n" + t
	}
	return joined
}
