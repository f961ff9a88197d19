package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAgentverseBaseURL is assumed when AGENTVERSE_BASE_URL is unset.
const DefaultAgentverseBaseURL = "https://agentverse.ai/"

// Reply text sources for /chat.
const (
	ResponderPlaceholder = "placeholder"
	ResponderKnowledge   = "knowledge"
)

// Config holds all configuration for the application. It is constructed
// once at process start and read-only thereafter.
type Config struct {
	Port string
	Env  string

	// Agentverse mailbox credentials and endpoint.
	AgentverseAPIKey  string
	AgentverseBaseURL string
	AgentSeedPhrase   string
	AgentID           string

	// Reply text source for /chat: "placeholder" or "knowledge".
	ChatResponder string

	// Optional delivery journal backends.
	DatabaseURL string
	SQLitePath  string

	// Optional Redis-backed rate limiting.
	RedisURL           string
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations
}

// Load reads configuration from environment variables.
// In development, it loads from .env (or FOLDSPACE_ENV_FILE) if present.
// Missing Agentverse credentials are not fatal in server mode; the
// dependent features degrade instead.
func Load() *Config {
	if envFile := os.Getenv("FOLDSPACE_ENV_FILE"); envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		Env:               getEnv("ENV", "development"),
		AgentverseAPIKey:  os.Getenv("AGENTVERSE_API_KEY"),
		AgentverseBaseURL: ensureTrailingSlash(getEnv("AGENTVERSE_BASE_URL", DefaultAgentverseBaseURL)),
		AgentSeedPhrase:   os.Getenv("AGENT_SEED_PHRASE"),
		AgentID:           os.Getenv("AGENT_ID"),
		ChatResponder:     getEnv("CHAT_RESPONDER", ResponderPlaceholder),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        os.Getenv("SQLITE_PATH"),
		RedisURL:          os.Getenv("REDIS_URL"),
		AutoBlockEnabled:  getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	return cfg
}

// SubmitURL returns the mailbox envelope submission endpoint.
func (c *Config) SubmitURL() string {
	return c.AgentverseBaseURL + "v1/submit"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func ensureTrailingSlash(value string) string {
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
