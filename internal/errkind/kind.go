// Package errkind defines the sentinel error kinds used across BareClaw's
// core subsystems so callers can classify a failure with errors.Is instead
// of matching strings.
package errkind

import "errors"

// Sentinel kinds. Wrap these with fmt.Errorf("...: %w", Kind) at the call
// site so errors.Is still matches while the message stays specific.
var (
	// PolicyDenied covers path traversal, forbidden prefixes, sensitive
	// paths, and blocked shell command patterns.
	PolicyDenied = errors.New("policy denied")

	// InvalidInput covers unparseable tool arguments, missing required
	// fields, and unsupported operations.
	InvalidInput = errors.New("invalid input")

	// TransportError covers network failures, DNS/TLS errors, and non-2xx
	// HTTP responses from a provider or tool.
	TransportError = errors.New("transport error")

	// ProtocolError covers malformed capability-proxy responses.
	ProtocolError = errors.New("protocol error")

	// ResourceError covers filesystem and subprocess-spawn failures.
	ResourceError = errors.New("resource error")

	// Timeout covers capability-proxy probe reads and transport deadlines.
	Timeout = errors.New("timeout")

	// Exhaustion covers the agent loop exceeding its round budget.
	Exhaustion = errors.New("exhausted")
)
