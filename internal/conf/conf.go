package conf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// Config represents application configuration
type Config struct {
	// IMAP mailbox configuration
	IMAP IMAPConfig

	// Lark notifier configuration
	Lark LarkConfig

	// Scorer configuration (optional)
	Scorer ScorerConfig

	// SMTP configuration for the email digest channel (optional)
	SMTP SMTPConfig

	// Monitor configuration
	Monitor MonitorConfig

	// Digest configuration
	Digest DigestConfig

	// Log level (zerolog level string)
	LogLevel string
}

// IMAPConfig contains mailbox connection settings
type IMAPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// LarkConfig contains chat notifier settings
type LarkConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// ScorerConfig contains the zero-shot scorer settings
type ScorerConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Threshold float64
}

// SMTPConfig contains outbound email settings
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// MonitorConfig contains poll loop settings
type MonitorConfig struct {
	CheckInterval  int // seconds between polls
	Labels         []string
	NotifyKeywords []string
	NotifyDomains  []string
}

// DigestConfig contains digest and retention settings
type DigestConfig struct {
	SummaryTime    string // "HH:MM"
	CleanupDays    int
	DBPath         string
	EmailRecipient string
	GroupsFile     string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return &Config{
		IMAP: IMAPConfig{
			Host:     os.Getenv("IMAP_HOST"),
			Port:     envOr("IMAP_PORT", "993"),
			User:     os.Getenv("IMAP_USER"),
			Password: os.Getenv("IMAP_PASSWORD"),
		},
		Lark: LarkConfig{
			AppID:     os.Getenv("LARK_APP_ID"),
			AppSecret: os.Getenv("LARK_APP_SECRET"),
			ChatID:    os.Getenv("LARK_CHAT_ID"),
		},
		Scorer: ScorerConfig{
			APIKey:    os.Getenv("SCORER_API_KEY"),
			BaseURL:   os.Getenv("SCORER_BASE_URL"),
			Model:     os.Getenv("SCORER_MODEL"),
			Threshold: envFloat("SCORER_THRESHOLD", 0.5),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envOr("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		Monitor: MonitorConfig{
			CheckInterval:  envInt("CHECK_INTERVAL", 60),
			Labels:         splitList(envOr("LABEL_CANDIDATES", "Urgente,Importante,Otros")),
			NotifyKeywords: splitList(envOr("NOTIFY_KEYWORDS", "urgente,problema,factura,vencimiento,fallo,error grave")),
			NotifyDomains:  splitList(os.Getenv("NOTIFY_DOMAINS")),
		},
		Digest: DigestConfig{
			SummaryTime:    envOr("DAILY_SUMMARY_TIME", "21:00"),
			CleanupDays:    envInt("CLEANUP_DAYS", 30),
			DBPath:         envOr("DB_PATH", "data/mailwatch.db"),
			EmailRecipient: os.Getenv("SUMMARY_EMAIL_RECIPIENT"),
			GroupsFile:     os.Getenv("SENDER_GROUPS_FILE"),
		},
		LogLevel: envOr("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration. Errors here are fatal at
// startup; the process must not run with undefined behavior.
func (c *Config) Validate() error {
	if c.IMAP.Host == "" || c.IMAP.User == "" || c.IMAP.Password == "" {
		return &ConfigError{Field: "IMAP_HOST/IMAP_USER/IMAP_PASSWORD", Message: "required"}
	}
	if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
		return &ConfigError{Field: "LARK_APP_ID/LARK_APP_SECRET", Message: "required"}
	}
	if c.Lark.ChatID == "" {
		return &ConfigError{Field: "LARK_CHAT_ID", Message: "required"}
	}
	if _, err := time.Parse("15:04", c.Digest.SummaryTime); err != nil {
		return &ConfigError{Field: "DAILY_SUMMARY_TIME", Message: "must be HH:MM"}
	}
	if c.Monitor.CheckInterval <= 0 {
		return &ConfigError{Field: "CHECK_INTERVAL", Message: "must be a positive number of seconds"}
	}
	if c.Digest.CleanupDays <= 0 {
		return &ConfigError{Field: "CLEANUP_DAYS", Message: "must be positive"}
	}
	if c.Digest.EmailRecipient != "" {
		if c.SMTP.Host == "" || c.SMTP.User == "" || c.SMTP.Password == "" {
			return &ConfigError{Field: "SMTP_HOST/SMTP_USER/SMTP_PASSWORD", Message: "required when SUMMARY_EMAIL_RECIPIENT is set"}
		}
	}
	return nil
}

// SummaryCutoff returns the daily digest cutoff as "HH:MM:SS"
func (c *Config) SummaryCutoff() string {
	return c.Digest.SummaryTime + ":00"
}

// ToPolicyConfig converts to the domain policy configuration
func (c *Config) ToPolicyConfig() domain.PolicyConfig {
	return domain.PolicyConfig{
		Keywords: c.Monitor.NotifyKeywords,
		Domains:  c.Monitor.NotifyDomains,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
