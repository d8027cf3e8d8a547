package main

import (
	"fmt"
	"os"

	"github.com/Jaruso/bareclaw/internal/agent"
	"github.com/Jaruso/bareclaw/internal/config"
	"github.com/Jaruso/bareclaw/internal/mcp"
	"github.com/Jaruso/bareclaw/internal/memory"
	"github.com/Jaruso/bareclaw/internal/providers"
	"github.com/Jaruso/bareclaw/internal/security"
	"github.com/Jaruso/bareclaw/internal/tools"
)

// runtime bundles every subsystem a subcommand might need, built once
// from a loaded Config. Subcommands read only the fields they use.
type runtime struct {
	cfg       *config.Config
	policy    *security.Policy
	audit     *security.AuditLog
	memory    *memory.Store
	registry  *tools.Registry
	agentDeps agent.Deps
}

func loadConfig() (*config.Config, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return nil, fmt.Errorf("bareclaw: HOME is not set")
	}
	return config.Load(config.DefaultPath(home), home)
}

// buildRuntime loads configuration and wires the security policy, memory
// backend, tool registry, and provider router together into one agent.Deps.
func buildRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.WorkspaceDir, 0o755); err != nil {
		return nil, fmt.Errorf("bareclaw: create workspace: %w", err)
	}
	policy, err := security.New(cfg.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	audit := security.NewAuditLog(cfg.WorkspaceDir)
	mem := memory.New(cfg.WorkspaceDir)

	sessions := mcp.NewSessionPool()

	registry := tools.NewRegistry()
	tools.Register(registry)
	for _, server := range cfg.McpServers {
		registerMcpServer(registry, sessions, server)
	}

	router := buildRouter(cfg)

	toolCtx := &tools.Context{
		Policy:   policy,
		Audit:    audit,
		Memory:   mem,
		Sessions: sessions,
	}

	return &runtime{
		cfg:      cfg,
		policy:   policy,
		audit:    audit,
		memory:   mem,
		registry: registry,
		agentDeps: agent.Deps{
			Router:      router,
			Registry:    registry,
			ToolContext: toolCtx,
			Model:       cfg.DefaultModel,
		},
	}, nil
}

// registerMcpServer probes a configured capability server for its tool
// list and registers one proxy tool per remote tool, named "<server>__<remote>".
func registerMcpServer(registry *tools.Registry, sessions *mcp.SessionPool, server config.McpServer) {
	summaries, err := sessions.Probe(server.Argv)
	if err != nil {
		return
	}
	for _, summary := range summaries {
		registry.Register(tools.NewMcpProxyTool(server.Name, server.Argv, summary))
	}
}

// buildRouter constructs the provider fallback chain: the configured
// default provider first, then each configured fallback, in order.
func buildRouter(cfg *config.Config) *providers.Router {
	names := append([]string{cfg.DefaultProvider}, cfg.FallbackProviders...)
	var chain []providers.Provider
	seen := make(map[string]bool)
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if p := buildProvider(name, cfg); p != nil {
			chain = append(chain, p)
		}
	}
	if len(chain) == 0 {
		chain = append(chain, providers.NewEchoProvider())
	}
	return providers.NewRouter(chain...)
}

func buildProvider(name string, cfg *config.Config) providers.Provider {
	switch name {
	case "anthropic":
		key := providers.ResolveAPIKey("ANTHROPIC_API_KEY", cfg.APIKey)
		if key == "" {
			return nil
		}
		return providers.NewAnthropicProvider("", key)
	case "openai":
		key := providers.ResolveAPIKey("OPENAI_API_KEY", cfg.APIKey)
		if key == "" {
			return nil
		}
		return providers.NewOpenAIStyleProvider(providers.KindOpenAI, "https://api.openai.com/v1", key)
	case "openai-compatible":
		key := providers.ResolveAPIKey("OPENAI_API_KEY", cfg.APIKey)
		baseURL := cfg.APIURL
		if baseURL == "" {
			return nil
		}
		return providers.NewOpenAIStyleProvider(providers.KindOpenAICompatible, baseURL, key)
	case "openrouter":
		key := providers.ResolveAPIKey("OPENROUTER_API_KEY", cfg.APIKey)
		if key == "" {
			return nil
		}
		return providers.NewOpenAIStyleProvider(providers.KindOpenRouter, "https://openrouter.ai/api/v1", key)
	case "ollama":
		baseURL := cfg.OllamaURL
		return providers.NewOllamaProvider(baseURL)
	case "echo":
		return providers.NewEchoProvider()
	default:
		return nil
	}
}
