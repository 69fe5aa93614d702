package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the daybrief system
type Config struct {
	General      GeneralConfig      `mapstructure:"general"`
	Server       ServerConfig       `mapstructure:"server"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Workflow     WorkflowConfig     `mapstructure:"workflow"`
	Google       GoogleConfig       `mapstructure:"google"`
	Notification NotificationConfig `mapstructure:"notification"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Storage      StorageConfig      `mapstructure:"storage"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type       string              `mapstructure:"type"` // openai only, for now
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Models     map[string]LLMModel `mapstructure:"models"`
	MaxRetries int                 `mapstructure:"max_retries"`
	Timeout    time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string  `mapstructure:"name"`
	APIName         string  `mapstructure:"api_name"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	CostPer1K       float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// LLMRoutingConfig defines which model to use for different tasks
type LLMRoutingConfig struct {
	Email    string `mapstructure:"email"`    // email classification
	Calendar string `mapstructure:"calendar"` // meeting importance analysis
	Notes    string `mapstructure:"notes"`    // transcript structuring
	Fallback string `mapstructure:"fallback"` // fallback model
}

// WorkflowConfig lifts the pipeline's tunables into explicit configuration.
// Defaults match the documented behaviour of the daily workflow.
type WorkflowConfig struct {
	MaxEmails          int           `mapstructure:"max_emails"`
	LookaheadHours     int           `mapstructure:"lookahead_hours"`
	ReminderWindowMin  time.Duration `mapstructure:"reminder_window_min"`
	ReminderWindowMax  time.Duration `mapstructure:"reminder_window_max"`
	PromptTruncation   int           `mapstructure:"prompt_truncation"`
	EmailFallbackChars int           `mapstructure:"email_fallback_chars"`
	NotesFallbackChars int           `mapstructure:"notes_fallback_chars"`
	DigestMeetings     int           `mapstructure:"digest_meetings"`
	Cron               string        `mapstructure:"cron"`
}

// Normalize applies the documented defaults for unset workflow values.
func (w WorkflowConfig) Normalize() WorkflowConfig {
	if w.MaxEmails <= 0 {
		w.MaxEmails = 10
	}
	if w.LookaheadHours <= 0 {
		w.LookaheadHours = 24
	}
	if w.ReminderWindowMin <= 0 {
		w.ReminderWindowMin = 15 * time.Minute
	}
	if w.ReminderWindowMax <= 0 {
		w.ReminderWindowMax = 30 * time.Minute
	}
	if w.PromptTruncation <= 0 {
		w.PromptTruncation = 2000
	}
	if w.EmailFallbackChars <= 0 {
		w.EmailFallbackChars = 200
	}
	if w.NotesFallbackChars <= 0 {
		w.NotesFallbackChars = 500
	}
	if w.DigestMeetings <= 0 {
		w.DigestMeetings = 3
	}
	if strings.TrimSpace(w.Cron) == "" {
		w.Cron = "*/15 * * * *"
	}
	return w
}

// Validate ensures the reminder window is coherent.
func (w WorkflowConfig) Validate() error {
	if w.ReminderWindowMin > w.ReminderWindowMax {
		return fmt.Errorf("workflow.reminder_window_min must not exceed workflow.reminder_window_max")
	}
	return nil
}

// GoogleConfig contains credential material for the Gmail/Calendar/Docs services
type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	CalendarID      string `mapstructure:"calendar_id"`
}

func (g GoogleConfig) Validate() error {
	if strings.TrimSpace(g.CredentialsFile) == "" {
		return fmt.Errorf("google.credentials_file is required")
	}
	return nil
}

// NotificationConfig contains chat notification settings
type NotificationConfig struct {
	SlackToken     string `mapstructure:"slack_token"`
	DefaultChannel string `mapstructure:"default_channel"`
	Username       string `mapstructure:"username"`
}

// Normalize applies defaults for unset notification values.
func (n NotificationConfig) Normalize() NotificationConfig {
	if strings.TrimSpace(n.DefaultChannel) == "" {
		n.DefaultChannel = "#general"
	}
	if strings.TrimSpace(n.Username) == "" {
		n.Username = "AI Assistant"
	}
	return n
}

func (n NotificationConfig) Validate() error {
	if strings.TrimSpace(n.SlackToken) == "" {
		return fmt.Errorf("notification.slack_token is required")
	}
	return nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsPort  int    `mapstructure:"metrics_port"`
	CostTracking bool   `mapstructure:"cost_tracking"`
	PeriodicLogs bool   `mapstructure:"periodic_logs"`
	LogFile      string `mapstructure:"log_file"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort < 0 {
		return fmt.Errorf("telemetry.metrics_port must be >= 0 when telemetry is enabled")
	}
	return nil
}

// StorageConfig contains storage settings; redis backs the reminder ledger
// and the scheduler lock. Both degrade gracefully when redis is absent.
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether redis is configured at all.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func (r RedisConfig) Validate() error {
	if !r.Enabled() {
		return nil
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required when host is set")
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.SetDefault("general.default_timeout", "60s")
	v.SetDefault("server.address", ":10010")
	v.SetDefault("google.calendar_id", "primary")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("DAYBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Workflow = cfg.Workflow.Normalize()
	cfg.Notification = cfg.Notification.Normalize()

	if err := cfg.Workflow.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Google.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notification.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Redis.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
