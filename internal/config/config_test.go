package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "development" || cfg.HTTPAddr != ":8000" {
		t.Errorf("env/addr = %q/%q", cfg.Env, cfg.HTTPAddr)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.OpenAIModel)
	}
	if cfg.MaxToolRounds != 8 {
		t.Errorf("max tool rounds = %d", cfg.MaxToolRounds)
	}
	if cfg.TurnTimeout != 120*time.Second {
		t.Errorf("turn timeout = %v", cfg.TurnTimeout)
	}
	if cfg.ThreadTTL != 24*time.Hour {
		t.Errorf("thread ttl = %v", cfg.ThreadTTL)
	}
	if cfg.AMS360TicketTTL != 15*time.Minute {
		t.Errorf("ticket ttl = %v", cfg.AMS360TicketTTL)
	}
	if cfg.IntakeDataDir != "insurance_requests" {
		t.Errorf("intake dir = %q", cfg.IntakeDataDir)
	}
	if cfg.EmailEnabled {
		t.Error("email should be disabled without an SMTP host")
	}
}

func TestLoadRequiresModelKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without OPENAI_API_KEY")
	}
}

func TestLoadRejectsBadBounds(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	t.Setenv("MAX_TOOL_ROUNDS", "0")
	if _, err := Load(); err == nil {
		t.Error("Load should reject MAX_TOOL_ROUNDS below 1")
	}
	t.Setenv("MAX_TOOL_ROUNDS", "8")

	t.Setenv("TURN_TIMEOUT", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Error("Load should reject an unparseable TURN_TIMEOUT")
	}
	t.Setenv("TURN_TIMEOUT", "120s")

	t.Setenv("THREAD_TTL", "1d")
	if _, err := Load(); err == nil {
		t.Error("Load should reject an unparseable THREAD_TTL")
	}
	t.Setenv("THREAD_TTL", "-1h")
	if _, err := Load(); err == nil {
		t.Error("Load should reject a negative THREAD_TTL")
	}
	t.Setenv("THREAD_TTL", "24h")

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_FROM_ADDRESS", "")
	if _, err := Load(); err == nil {
		t.Error("Load should require a from address when email is enabled")
	}
}

func TestLoadAllowsZeroThreadTTL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("THREAD_TTL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ThreadTTL != 0 {
		t.Errorf("thread ttl = %v, want 0 (eviction disabled)", cfg.ThreadTTL)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" http://a.test , http://b.test ,, ")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("splitCSV = %v", got)
	}
}
