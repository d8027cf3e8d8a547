package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicProvider speaks the /v1/messages wire format directly, since
// translating its content-block shape into BareClaw's internal
// OpenAI-style tool_calls representation is the one piece of logic the
// official SDK does not need to expose and BareClaw's dispatcher does.
type AnthropicProvider struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	maxTokens int
}

// NewAnthropicProvider returns a provider against baseURL (defaulting to
// https://api.anthropic.com when empty) with the given API key.
func NewAnthropicProvider(baseURL, apiKey string) *AnthropicProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicProvider{
		client:    &http.Client{Timeout: 60 * time.Second},
		baseURL:   baseURL,
		apiKey:    apiKey,
		maxTokens: DefaultAnthropicMaxTokens,
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

// Chat posts to /v1/messages and renders the response's content blocks:
// text blocks are newline-joined; tool_use blocks are translated into the
// internal OpenAI-style {"tool_calls":[...]} shape BareClaw's dispatcher
// already knows how to parse, keeping the agent loop provider-agnostic.
func (p *AnthropicProvider) Chat(ctx context.Context, system, user, model string, _ float64) (string, error) {
	payload := anthropicRequest{
		Model:     model,
		MaxTokens: p.maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("providers: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("providers: build request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("providers: anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("providers: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("providers: parse response: %w", err)
	}
	return renderAnthropicContent(parsed.Content), nil
}

func renderAnthropicContent(blocks []anthropicContentBlock) string {
	var texts []string
	var toolCalls []map[string]any
	for _, b := range blocks {
		switch b.Type {
		case "text":
			texts = append(texts, b.Text)
		case "tool_use":
			toolCalls = append(toolCalls, map[string]any{
				"function": map[string]any{
					"name":      b.Name,
					"arguments": string(b.Input),
				},
			})
		}
	}

	var out strings.Builder
	if len(texts) > 0 {
		out.WriteString(strings.Join(texts, "\n"))
	}
	if len(toolCalls) > 0 {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		encoded, _ := json.Marshal(map[string]any{"tool_calls": toolCalls})
		out.Write(encoded)
	}
	return out.String()
}
