package providers

import "os"

// ResolveAPIKey implements the documented key-resolution order for a
// keyed backend: the backend-specific environment variable, then
// BARECLAW_API_KEY, then the config file value.
func ResolveAPIKey(backendEnvVar, configValue string) string {
	if v := os.Getenv(backendEnvVar); v != "" {
		return v
	}
	if v := os.Getenv("BARECLAW_API_KEY"); v != "" {
		return v
	}
	return configValue
}
