package providers

import "context"

// EchoProvider is the explicit no-network fallback used when a keyed
// backend has no credentials configured.
type EchoProvider struct{}

// NewEchoProvider returns an EchoProvider.
func NewEchoProvider() *EchoProvider {
	return &EchoProvider{}
}

// Name returns "echo".
func (p *EchoProvider) Name() string {
	return "echo"
}

// Chat always succeeds, echoing the user's message back with a fixed
// preamble so callers can see no model is actually configured.
func (p *EchoProvider) Chat(_ context.Context, _, user, _ string, _ float64) (string, error) {
	return "BareClaw echo (no API key configured): " + user, nil
}
