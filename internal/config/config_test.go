package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "AGENTVERSE_API_KEY", "AGENTVERSE_BASE_URL",
		"AGENT_SEED_PHRASE", "CHAT_RESPONDER", "RATE_LIMIT_WHITELIST",
		"AUTO_BLOCK_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.AgentverseBaseURL != DefaultAgentverseBaseURL {
		t.Errorf("AgentverseBaseURL = %q", cfg.AgentverseBaseURL)
	}
	if cfg.ChatResponder != ResponderPlaceholder {
		t.Errorf("ChatResponder = %q", cfg.ChatResponder)
	}
	if cfg.AutoBlockEnabled {
		t.Error("AutoBlockEnabled should default to false")
	}
}

func TestLoadBaseURLTrailingSlash(t *testing.T) {
	t.Setenv("AGENTVERSE_BASE_URL", "https://staging.agentverse.ai")
	cfg := Load()
	if cfg.AgentverseBaseURL != "https://staging.agentverse.ai/" {
		t.Fatalf("AgentverseBaseURL = %q, want trailing slash", cfg.AgentverseBaseURL)
	}
	if cfg.SubmitURL() != "https://staging.agentverse.ai/v1/submit" {
		t.Fatalf("SubmitURL = %q", cfg.SubmitURL())
	}
}

func TestSubmitURLDefault(t *testing.T) {
	t.Setenv("AGENTVERSE_BASE_URL", "")
	cfg := Load()
	if cfg.SubmitURL() != "https://agentverse.ai/v1/submit" {
		t.Fatalf("SubmitURL = %q", cfg.SubmitURL())
	}
}

func TestRateLimitWhitelistParsing(t *testing.T) {
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1 , 192.168.0.0/16 ,, ")
	cfg := Load()
	want := []string{"10.0.0.1", "192.168.0.0/16"}
	if len(cfg.RateLimitWhitelist) != len(want) {
		t.Fatalf("whitelist = %v, want %v", cfg.RateLimitWhitelist, want)
	}
	for i := range want {
		if cfg.RateLimitWhitelist[i] != want[i] {
			t.Fatalf("whitelist = %v, want %v", cfg.RateLimitWhitelist, want)
		}
	}
}
