package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AuditLog is the append-only per-event log at <workspace>/audit.log. One
// line per invocation: "<unix_ts>\t<tool>\t<detail>\n".
type AuditLog struct {
	mu   sync.Mutex
	path string
}

// NewAuditLog returns an AuditLog rooted at the given workspace directory.
func NewAuditLog(workspaceDir string) *AuditLog {
	return &AuditLog{path: filepath.Join(workspaceDir, "audit.log")}
}

// Log appends one entry. It is best-effort: a write failure never aborts
// the caller's tool call, so errors are swallowed here by design.
func (a *AuditLog) Log(toolName, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	detail = strings.ReplaceAll(detail, "\t", " ")
	detail = strings.ReplaceAll(detail, "\n", " ")
	line := fmt.Sprintf("%d\t%s\t%s\n", time.Now().Unix(), toolName, detail)
	_, _ = f.WriteString(line)
}

// Tail returns the last n lines of the audit log (or fewer if the log is
// shorter), newline-joined, or a placeholder if the log does not exist.
func (a *AuditLog) Tail(n int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= 0 {
		n = 50
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		return "(no audit entries)"
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return "(no audit entries)"
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Path returns the audit log file path.
func (a *AuditLog) Path() string {
	return a.path
}
