// Package memory implements BareClaw's persistent key/value memory: one
// Markdown file per logical key under <workspace>/memory/, with nested
// keys supported via path separators.
package memory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a file-per-key Markdown memory backend rooted at a workspace
// directory's memory/ subdirectory.
type Store struct {
	dir string
}

// New returns a Store rooted at <workspaceDir>/memory.
func New(workspaceDir string) *Store {
	return &Store{dir: filepath.Join(workspaceDir, "memory")}
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+".md")
}

// keyFor converts an on-disk path (relative to s.dir) back into a logical
// key, inverting pathFor.
func (s *Store) keyFor(rel string) string {
	return strings.TrimSuffix(filepath.ToSlash(rel), ".md")
}

// Store writes content (plus a trailing newline) to the file for key,
// creating any missing parent directories and truncating an existing file.
func (s *Store) Store(key, content string) error {
	if key == "" {
		return fmt.Errorf("memory: key is required")
	}
	target := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("memory: create parent dir: %w", err)
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("memory: write %s: %w", key, err)
	}
	return nil
}

// allEntries walks the memory directory and returns (key, absolute path)
// for every stored Markdown entry. A missing directory yields no entries.
func (s *Store) allEntries() []struct{ key, path string } {
	var out []struct{ key, path string }
	_ = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d == nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(s.dir, path)
		if relErr != nil {
			return nil
		}
		out = append(out, struct{ key, path string }{key: s.keyFor(rel), path: path})
		return nil
	})
	return out
}

// Recall returns the content stored under key. If no exact file exists,
// it falls back to a substring scan of every entry's key and concatenates
// the matches.
func (s *Store) Recall(key string) (string, error) {
	exact := s.pathFor(key)
	if data, err := os.ReadFile(exact); err == nil {
		return string(data), nil
	}

	if _, err := os.Stat(s.dir); err != nil {
		return "(no memory yet)", nil
	}

	var matches []string
	for _, e := range s.allEntries() {
		if !strings.Contains(e.key, key) {
			continue
		}
		data, err := os.ReadFile(e.path)
		if err != nil {
			continue
		}
		matches = append(matches, fmt.Sprintf("%s:\n%s", e.key, string(data)))
	}
	if len(matches) == 0 {
		return "(no matching memory found)", nil
	}
	return strings.Join(matches, "\n---\n"), nil
}

// Forget deletes the file for key. Deleting a non-existent key is
// idempotent and reports success.
func (s *Store) Forget(key string) error {
	err := os.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("memory: forget %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every stored key, newline-separated.
func (s *Store) ListKeys() (string, error) {
	entries := s.allEntries()
	if len(entries) == 0 {
		return "(no memory entries)", nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.key)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n"), nil
}

// DeletePrefix deletes every entry whose key starts with prefix and
// returns the count removed.
func (s *Store) DeletePrefix(prefix string) (int, error) {
	count := 0
	for _, e := range s.allEntries() {
		if !strings.HasPrefix(e.key, prefix) {
			continue
		}
		if err := os.Remove(e.path); err == nil {
			count++
		}
	}
	return count, nil
}
