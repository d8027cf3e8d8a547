package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIKind selects which wire variant an OpenAIStyleProvider speaks.
// The three backends share one request/response shape; only the base URL,
// auth header, and (for OpenRouter) two extra headers differ.
type OpenAIKind int

const (
	KindOpenAI OpenAIKind = iota
	KindOpenAICompatible
	KindOpenRouter
)

func (k OpenAIKind) String() string {
	switch k {
	case KindOpenAI:
		return "openai"
	case KindOpenAICompatible:
		return "openai_compatible"
	case KindOpenRouter:
		return "openrouter"
	default:
		return "openai_style"
	}
}

// openRouterHeaders attaches the app-identification headers OpenRouter asks
// callers to send, without disturbing the request otherwise.
type openRouterHeaders struct {
	base http.RoundTripper
}

func (t openRouterHeaders) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", "https://bareclaw.local")
	req.Header.Set("X-Title", "BareClaw")
	return t.base.RoundTrip(req)
}

// OpenAIStyleProvider implements the chat-completions wire format shared
// by OpenAI, arbitrary OpenAI-compatible servers, and OpenRouter, via
// go-openai's client.
type OpenAIStyleProvider struct {
	kind   OpenAIKind
	client *openai.Client
}

// NewOpenAIStyleProvider returns a provider for the given kind, base URL
// (e.g. "https://api.openai.com/v1"), and API key.
func NewOpenAIStyleProvider(kind OpenAIKind, baseURL, apiKey string) *OpenAIStyleProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if kind == KindOpenRouter {
		transport := http.DefaultTransport
		cfg.HTTPClient = &http.Client{Transport: openRouterHeaders{base: transport}}
	}
	return &OpenAIStyleProvider{
		kind:   kind,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Name returns the backend identifier.
func (p *OpenAIStyleProvider) Name() string {
	return p.kind.String()
}

// Chat posts a chat-completions request and extracts
// choices[0].message.content. A non-2xx API response is surfaced as a
// successful "HTTP <code>: <body>" result rather than a Go error; only
// transport-level failures (connection refused, timeout) are returned as
// errors so the router only fails over on those.
func (p *OpenAIStyleProvider) Chat(ctx context.Context, system, user, model string, temperature float64) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		if msg, ok := asHTTPFailure(err); ok {
			return msg, nil
		}
		return "", fmt.Errorf("providers: %s request failed: %w", p.kind, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("providers: %s response had no choices", p.kind)
	}
	return resp.Choices[0].Message.Content, nil
}

// asHTTPFailure recognizes go-openai's typed API error shapes and renders
// them as "HTTP <code>: <body>". It returns ok=false for anything else
// (DNS failures, connection refused, context deadlines), which callers
// should treat as a genuine transport error.
func asHTTPFailure(err error) (string, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message), true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("HTTP %d: %s", reqErr.HTTPStatusCode, reqErr.Err), true
	}
	return "", false
}
