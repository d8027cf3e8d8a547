// Package providers implements BareClaw's provider abstraction: a single
// chat contract over Anthropic, OpenAI, OpenAI-compatible, OpenRouter,
// Ollama, and a keyless Echo fallback, plus a Router that tries providers
// in order and returns the first success.
package providers

import (
	"context"
	"fmt"
)

// DefaultAnthropicMaxTokens is Anthropic's required max_tokens when the
// caller does not specify one.
const DefaultAnthropicMaxTokens = 8096

// Provider is the single contract every backend implements: one
// synchronous chat turn in, one response string out.
type Provider interface {
	// Name identifies the backend for logging and router diagnostics.
	Name() string
	// Chat sends system and user content to model at the given
	// temperature and returns the model's reply as plain text.
	Chat(ctx context.Context, system, user, model string, temperature float64) (string, error)
}

// Router holds providers in priority order and delegates each Chat call
// to the first one that returns without error.
type Router struct {
	providers []Provider
}

// NewRouter returns a Router that tries providers in the given order.
func NewRouter(providers ...Provider) *Router {
	return &Router{providers: providers}
}

// Chat tries each provider in order, returning the first successful
// response. If every provider fails, it returns the last error seen.
func (r *Router) Chat(ctx context.Context, system, user, model string, temperature float64) (string, error) {
	if len(r.providers) == 0 {
		return "", fmt.Errorf("providers: router has no providers configured")
	}
	var lastErr error
	for _, p := range r.providers {
		out, err := p.Chat(ctx, system, user, model, temperature)
		if err == nil {
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
	}
	return "", lastErr
}
