package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Jaruso/bareclaw/internal/errkind"
	"github.com/Jaruso/bareclaw/internal/providers"
	"github.com/Jaruso/bareclaw/internal/tools"
)

// MaxToolRounds is the hard bound on how many provider round-trips a
// single agent turn may consume before giving up.
const MaxToolRounds = 8

const systemPreamble = "You are BareClaw, a tool-using assistant running in an embedded agent loop. " +
	"Answer directly and concisely."

const toolCallInstructions = "\n\nWhen you need a tool, respond with exactly one JSON object and nothing else:\n" +
	`{"tool_calls":[{"function":{"name":"<tool name>","arguments":"<JSON-encoded argument object as a string>"}}]}` +
	"\nAfter you receive tool results, respond in plain friendly text. Do NOT output any JSON or tool_calls."

const exhaustedMessage = "(agent reached max tool-call rounds)"

// Deps bundles the references a single agent turn needs: the fallback
// router, the tool registry and its shared per-call context, and the
// model identifier to request.
type Deps struct {
	Router      *providers.Router
	Registry    *tools.Registry
	ToolContext *tools.Context
	Model       string
}

// buildSystemPrompt renders the fixed preamble plus, when the registry is
// non-empty, the tool manifest and call-shape instructions.
func buildSystemPrompt(registry *tools.Registry) string {
	if registry == nil || registry.Len() == 0 {
		return systemPreamble
	}
	return systemPreamble + "\n\nAvailable tools:\n" + registry.Manifest() + toolCallInstructions
}

// Run drives one agent turn to completion: it alternates provider calls
// with tool dispatch for up to MaxToolRounds rounds, writing the final
// plain-text answer to out (if non-nil) and always returning it. On
// round exhaustion it returns the fixed exhaustedMessage and a nil error,
// per the documented "emits a fixed message and returns normally"
// behavior; the exhaustion is still logged as a diagnostic event.
func Run(ctx context.Context, deps Deps, userMessage string, out io.Writer) (string, error) {
	system := buildSystemPrompt(deps.Registry)
	contextBuf := ""

	for round := 1; round <= MaxToolRounds; round++ {
		effectiveUser := userMessage
		if round > 1 {
			effectiveUser = userMessage +
				"\n\n[Tool results]\n" + contextBuf +
				"\n[Instructions] Use the tool results above to respond in plain friendly text. Do NOT output any JSON or tool_calls."
		}

		response, err := deps.Router.Chat(ctx, system, effectiveUser, deps.Model, 0.7)
		if err != nil {
			return "", fmt.Errorf("agent: provider chat failed: %w", err)
		}

		dispatched, newBuf := tools.Dispatch(deps.ToolContext, deps.Registry, response, contextBuf, 0)
		if !dispatched {
			if deps.ToolContext != nil && deps.ToolContext.Memory != nil {
				_ = deps.ToolContext.Memory.Store("last_message", userMessage)
			}
			writeTo(out, response)
			return response, nil
		}
		contextBuf = newBuf
	}

	slog.Warn("agent loop exhausted round budget", "err", fmt.Errorf("agent: %w", errkind.Exhaustion))
	writeTo(out, exhaustedMessage)
	return exhaustedMessage, nil
}

func writeTo(out io.Writer, s string) {
	if out == nil {
		return
	}
	_, _ = io.WriteString(out, s)
}
