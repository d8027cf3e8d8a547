package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Context-budget bounds for MAX_CONTEXT_CHARS.
const (
	MinContextChars     = 4000
	MaxContextCharsCeil = 64000
	DefaultContextChars = 12000
)

const truncationMarker = "[... earlier tool results truncated due to context budget ...]\n"

// ClampContextChars bounds n to [MinContextChars, MaxContextCharsCeil],
// substituting DefaultContextChars when n is zero.
func ClampContextChars(n int) int {
	if n == 0 {
		n = DefaultContextChars
	}
	if n < MinContextChars {
		n = MinContextChars
	}
	if n > MaxContextCharsCeil {
		n = MaxContextCharsCeil
	}
	return n
}

// AppendContext appends entry to buf and evicts from the front if the
// result exceeds maxChars: eviction cuts at the next '\n' boundary past
// the overflow amount, and the truncation marker is prepended to what
// remains.
func AppendContext(buf, entry string, maxChars int) string {
	buf += entry
	maxChars = ClampContextChars(maxChars)
	if len(buf) <= maxChars {
		return buf
	}
	overflow := len(buf) - maxChars
	rest := buf[overflow:]
	if idx := strings.IndexByte(rest, '\n'); idx != -1 {
		buf = rest[idx+1:]
	} else {
		buf = rest
	}
	return truncationMarker + buf
}

type rawToolCall struct {
	Function  json.RawMessage `json:"function"`
	Arguments json.RawMessage `json:"arguments"`
}

type functionObject struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type extractedCalls struct {
	ToolCalls []rawToolCall `json:"tool_calls"`
}

// resolveCall accepts the two documented tool-call shapes and returns the
// tool name and its arguments as a JSON object. Shape A nests
// {"function":{"name":N,"arguments":A}} where A is a JSON string; shape B
// is {"function":N,"arguments":A_obj} where A_obj is already an object.
func resolveCall(call rawToolCall) (name string, args json.RawMessage, ok bool) {
	var asName string
	if err := json.Unmarshal(call.Function, &asName); err == nil {
		args := call.Arguments
		if !looksLikeObject(args) {
			args = json.RawMessage(`{}`)
		}
		return asName, args, asName != ""
	}

	var obj functionObject
	if err := json.Unmarshal(call.Function, &obj); err == nil && obj.Name != "" {
		var inner string
		if err := json.Unmarshal(obj.Arguments, &inner); err == nil {
			if looksLikeObject(json.RawMessage(inner)) {
				return obj.Name, json.RawMessage(inner), true
			}
			return obj.Name, json.RawMessage(`{}`), true
		}
		if looksLikeObject(obj.Arguments) {
			return obj.Name, obj.Arguments, true
		}
		return obj.Name, json.RawMessage(`{}`), true
	}
	return "", nil, false
}

func looksLikeObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

// Dispatch extracts the first balanced JSON object from response,
// interprets its tool_calls array (if any), executes each recognized
// tool in emission order, and appends "[ok|error] name: output\n" to
// contextBuf for each, applying the context-budget eviction rule.
//
// It reports dispatched=false when no tool_calls were found or parsed,
// signalling to the caller that response is itself the final answer.
func Dispatch(ctx *Context, registry *Registry, response string, contextBuf string, maxContextChars int) (dispatched bool, newContextBuf string) {
	obj, found := ExtractJSONObject(response)
	if !found {
		return false, contextBuf
	}

	var parsed extractedCalls
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil || len(parsed.ToolCalls) == 0 {
		return false, contextBuf
	}

	buf := contextBuf
	for _, call := range parsed.ToolCalls {
		name, args, ok := resolveCall(call)
		if !ok {
			continue
		}
		tool, found := registry.Lookup(name)
		if !found {
			// Unknown tool names are silently skipped per the documented
			// open question: a noisy model inventing a tool name should
			// not abort the whole turn.
			continue
		}

		ctx.CurrentMeta = tool.UserData
		result := tool.Execute(ctx, args)

		status := "ok"
		if !result.Success {
			status = "error"
		}
		entry := fmt.Sprintf("[%s] %s: %s\n", status, name, result.Output)
		buf = AppendContext(buf, entry, maxContextChars)
	}
	return true, buf
}
