package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll bool
	CORSOrigins  []string

	// Model invocation
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Temperature   float32

	// Tool dispatch loop
	MaxToolRounds int
	TurnTimeout   time.Duration

	// Conversation thread store
	ThreadTTL time.Duration

	// Local persistence of intake records
	IntakeDataDir string

	// AMS360 legacy backend
	AMS360BaseURL   string
	AMS360AgencyNo  string
	AMS360LoginID   string
	AMS360Password  string
	AMS360TicketTTL time.Duration

	// AgencyZoom CRM
	AgencyZoomAPIKey   string
	AgencyZoomBaseURL  string
	AgencyZoomAgencyID string

	// Outbound confirmation email
	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	// Zero is meaningful here (it disables thread eviction), so a typo must
	// not silently collapse to it.
	threadTTL, err := time.ParseDuration(getEnv("THREAD_TTL", "24h"))
	if err != nil || threadTTL < 0 {
		return nil, fmt.Errorf("THREAD_TTL must be a non-negative duration, 0 disables eviction")
	}

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8000"),
		CORSAllowAll: strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature:   float32(mustFloat(getEnv("OPENAI_TEMPERATURE", "0.7"))),

		MaxToolRounds: mustInt(getEnv("MAX_TOOL_ROUNDS", "8")),
		TurnTimeout:   mustDuration(getEnv("TURN_TIMEOUT", "120s")),
		ThreadTTL:     threadTTL,

		IntakeDataDir: getEnv("INTAKE_DATA_DIR", "insurance_requests"),

		AMS360BaseURL:   getEnv("AMS360_BASE_URL", "https://wsapi.ams360.com/v3/WSAPIService.svc"),
		AMS360AgencyNo:  getEnv("AMS360_AGENCY_NO", ""),
		AMS360LoginID:   getEnv("AMS360_LOGIN_ID", ""),
		AMS360Password:  getEnv("AMS360_PASSWORD", ""),
		AMS360TicketTTL: mustDuration(getEnv("AMS360_TICKET_TTL", "15m")),

		AgencyZoomAPIKey:   getEnv("AGENCYZOOM_API_KEY", ""),
		AgencyZoomBaseURL:  getEnv("AGENCYZOOM_BASE_URL", "https://api.agencyzoom.com/v1"),
		AgencyZoomAgencyID: getEnv("AGENCYZOOM_AGENCY_ID", ""),

		EmailEnabled:     emailEnabled && smtpHost != "",
		SMTPHost:         smtpHost,
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Insurance Intake"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.MaxToolRounds < 1 {
		return nil, fmt.Errorf("MAX_TOOL_ROUNDS must be at least 1")
	}
	if cfg.TurnTimeout <= 0 {
		return nil, fmt.Errorf("TURN_TIMEOUT must be a positive duration")
	}
	if cfg.AMS360TicketTTL <= 0 {
		return nil, fmt.Errorf("AMS360_TICKET_TTL must be a positive duration")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
