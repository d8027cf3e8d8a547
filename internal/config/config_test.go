package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(filepath.Join(home, "nope.toml"), home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProvider != "echo" || cfg.MemoryBackend != "markdown" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.WorkspaceDir != filepath.Join(home, ".bareclaw", "workspace") {
		t.Fatalf("WorkspaceDir = %q", cfg.WorkspaceDir)
	}
}

func TestLoadParsesFlatAssignments(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	content := `# a comment
default_provider = "anthropic"
default_model = "claude-3-5-sonnet"
fallback_providers = "openai, ollama"
api_key = "sk-test"
mcp_servers = "fs=mcp-server-fs /tmp|git=mcp-server-git --verbose"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path, home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProvider != "anthropic" {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if cfg.DefaultModel != "claude-3-5-sonnet" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if len(cfg.FallbackProviders) != 2 || cfg.FallbackProviders[0] != "openai" || cfg.FallbackProviders[1] != "ollama" {
		t.Errorf("FallbackProviders = %+v", cfg.FallbackProviders)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if len(cfg.McpServers) != 2 {
		t.Fatalf("McpServers = %+v", cfg.McpServers)
	}
	if cfg.McpServers[0].Name != "fs" || len(cfg.McpServers[0].Argv) != 2 {
		t.Errorf("McpServers[0] = %+v", cfg.McpServers[0])
	}
	if cfg.McpServers[1].Name != "git" || cfg.McpServers[1].Argv[0] != "mcp-server-git" {
		t.Errorf("McpServers[1] = %+v", cfg.McpServers[1])
	}
}

func TestParseMcpServersIgnoresMalformedEntries(t *testing.T) {
	servers := parseMcpServers("ok=run me|noequals|=missingname cmd")
	if len(servers) != 1 || servers[0].Name != "ok" {
		t.Fatalf("parseMcpServers = %+v", servers)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte(`api_key = "from-file"`+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("BARECLAW_API_KEY", "from-env")
	t.Setenv("API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "anthro-key")
	t.Setenv("DISCORD_BOT_TOKEN", "discord-env-token")

	cfg, err := Load(path, home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", cfg.APIKey)
	}
	if cfg.AnthropicAPIKey != "anthro-key" {
		t.Errorf("AnthropicAPIKey = %q", cfg.AnthropicAPIKey)
	}
	if cfg.DiscordToken != "discord-env-token" {
		t.Errorf("DiscordToken = %q, want env override", cfg.DiscordToken)
	}
}

func TestDefaultPathJoinsHome(t *testing.T) {
	got := DefaultPath("/home/bob")
	want := filepath.Join("/home/bob", ".bareclaw", "config.toml")
	if got != want {
		t.Fatalf("DefaultPath = %q, want %q", got, want)
	}
}
