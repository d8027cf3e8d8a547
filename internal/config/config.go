// Package config loads BareClaw's configuration file: a minimal,
// dependency-free flat-assignment grammar (not YAML, not full TOML),
// layered with environment variable overrides.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// McpServer is one configured capability-proxy backend: a logical name
// plus the argv used to spawn it.
type McpServer struct {
	Name string
	Argv []string
}

// Config is the parsed contents of config.toml plus environment overrides.
type Config struct {
	DefaultProvider   string
	DefaultModel      string
	MemoryBackend     string
	FallbackProviders []string
	APIKey            string
	DiscordToken      string
	DiscordWebhook    string
	TelegramToken     string
	McpServers        []McpServer

	// AnthropicAPIKey, OpenAIAPIKey and OpenRouterAPIKey hold the
	// backend-specific keys read from the environment at load time.
	// providers.ResolveAPIKey reads the same variables itself and does
	// not consult these fields.
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	OpenRouterAPIKey string
	OllamaURL        string
	APIURL           string

	// Home and WorkspaceDir are resolved at load time, not read from
	// the file itself.
	Home         string
	WorkspaceDir string
}

// Default returns the configuration used when no config file exists:
// the echo provider, markdown memory, and a workspace rooted at
// <home>/.bareclaw/workspace.
func Default(home string) *Config {
	return &Config{
		DefaultProvider: "echo",
		DefaultModel:    "",
		MemoryBackend:   "markdown",
		Home:            home,
		WorkspaceDir:    filepath.Join(home, ".bareclaw", "workspace"),
	}
}

// DefaultPath returns "<home>/.bareclaw/config.toml".
func DefaultPath(home string) string {
	return filepath.Join(home, ".bareclaw", "config.toml")
}

// Load reads the config file at path, if present, and layers environment
// variable overrides on top. A missing file is not an error; Default(home)
// applies in that case before the environment layer runs.
func Load(path, home string) (*Config, error) {
	cfg := Default(home)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := parseInto(cfg, f); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func parseInto(cfg *Config, f *os.File) error {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseAssignment(line)
		if !ok {
			continue
		}
		applyKey(cfg, key, value)
	}
	return scanner.Err()
}

// parseAssignment splits "key = \"value\"" into key and an unquoted
// value. Lines that do not contain "=" are ignored rather than treated
// as errors, matching the grammar's tolerance for stray lines.
func parseAssignment(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return key, value, key != ""
}

func applyKey(cfg *Config, key, value string) {
	switch key {
	case "default_provider":
		cfg.DefaultProvider = value
	case "default_model":
		cfg.DefaultModel = value
	case "memory_backend":
		cfg.MemoryBackend = value
	case "fallback_providers":
		cfg.FallbackProviders = splitNonEmpty(value, ",")
	case "api_key":
		cfg.APIKey = value
	case "discord_token":
		cfg.DiscordToken = value
	case "discord_webhook":
		cfg.DiscordWebhook = value
	case "telegram_token":
		cfg.TelegramToken = value
	case "mcp_servers":
		cfg.McpServers = parseMcpServers(value)
	}
}

// parseMcpServers parses "name=cmd arg1 arg2|name2=cmd2 arg3" into a
// slice of McpServer, splitting on "|" between entries, the first "="
// within each entry, and whitespace within the command string.
func parseMcpServers(value string) []McpServer {
	if value == "" {
		return nil
	}
	var servers []McpServer
	for _, entry := range strings.Split(value, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		idx := strings.Index(entry, "=")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(entry[:idx])
		argv := strings.Fields(entry[idx+1:])
		if name == "" || len(argv) == 0 {
			continue
		}
		servers = append(servers, McpServer{Name: name, Argv: argv})
	}
	return servers
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applyEnv layers the documented environment variables over cfg. These
// take precedence over whatever the config file set.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BARECLAW_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("BARECLAW_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.DiscordToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("HOME"); v != "" {
		cfg.Home = v
	}
}
