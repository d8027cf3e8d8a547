package tools

import "strings"

// Registry holds the ordered set of tools a model may invoke. Lookup is a
// linear scan, first match wins, matching the dispatcher's documented
// semantics.
type Registry struct {
	tools []Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a tool. Built-ins and MCP-proxied entries share the
// same registration path.
func (r *Registry) Register(t Tool) {
	r.tools = append(r.tools, t)
}

// Lookup returns the first tool named name, or false if none matches.
func (r *Registry) Lookup(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// All returns the registered tools in registration order.
func (r *Registry) All() []Tool {
	return r.tools
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Manifest renders the system-prompt tool listing: one "- name:
// description" line per tool, in registration order.
func (r *Registry) Manifest() string {
	var b strings.Builder
	for _, t := range r.tools {
		b.WriteString("- ")
		b.WriteString(t.Name)
		b.WriteString(": ")
		b.WriteString(t.Description)
		b.WriteString("\n")
	}
	return b.String()
}
