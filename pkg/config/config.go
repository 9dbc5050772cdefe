package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the mirror job
type Config struct {
	// Target profile settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Supabase collaborators
	Supabase SupabaseConfig `yaml:"supabase" json:"supabase"`

	// Retention window
	Retention RetentionConfig `yaml:"retention" json:"retention"`

	// Outbound call pacing
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Transport retry settings
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// HTTP timeouts
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Scheduled-run mode
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`
}

// InstagramConfig holds upstream-specific configuration
type InstagramConfig struct {
	Username  string `yaml:"username" json:"username"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	SessionID string `yaml:"session_id" json:"session_id"`
}

// SupabaseConfig holds record and blob collaborator settings
type SupabaseConfig struct {
	URL        string `yaml:"url" json:"url"`
	ServiceKey string `yaml:"service_key" json:"service_key"`
	DSN        string `yaml:"dsn" json:"dsn"`
	Table      string `yaml:"table" json:"table"`
	Bucket     string `yaml:"bucket" json:"bucket"`
}

// RetentionConfig bounds the mirrored dataset
type RetentionConfig struct {
	KeepCount int `yaml:"keep_count" json:"keep_count"`
}

// PacingConfig governs mandatory delays around outbound calls
type PacingConfig struct {
	CallDelay         time.Duration `yaml:"call_delay" json:"call_delay"`
	FailureMultiplier float64       `yaml:"failure_multiplier" json:"failure_multiplier"`
	MaxFailureDelay   time.Duration `yaml:"max_failure_delay" json:"max_failure_delay"`
	LongPauseEvery    int           `yaml:"long_pause_every" json:"long_pause_every"`
	LongPauseDuration time.Duration `yaml:"long_pause_duration" json:"long_pause_duration"`
}

// RetryConfig holds transport retry settings
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// HTTPConfig holds per-transport timeouts
type HTTPConfig struct {
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// ScheduleConfig holds the cron expression for schedule mode
type ScheduleConfig struct {
	Cron string `yaml:"cron" json:"cron"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Supabase: SupabaseConfig{
			Table:  "instagram_posts",
			Bucket: "instagram-images",
		},
		Retention: RetentionConfig{
			KeepCount: 12,
		},
		Pacing: PacingConfig{
			CallDelay:         2 * time.Second,
			FailureMultiplier: 2.0,
			MaxFailureDelay:   2 * time.Minute,
			LongPauseEvery:    10,
			LongPauseDuration: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    60 * time.Second,
		},
		HTTP: HTTPConfig{
			RequestTimeout:  15 * time.Second,
			DownloadTimeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Schedule: ScheduleConfig{
			Cron: "0 */6 * * *",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if username := os.Getenv("IGMIRROR_USERNAME"); username != "" {
		c.Instagram.Username = username
	}
	if userAgent := os.Getenv("IGMIRROR_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}
	if sessionID := os.Getenv("IGMIRROR_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}

	// Supabase credentials follow the names the hosted project hands out.
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		c.Supabase.URL = url
	}
	if key := os.Getenv("SUPABASE_KEY"); key != "" {
		c.Supabase.ServiceKey = key
	}
	if dsn := os.Getenv("SUPABASE_DSN"); dsn != "" {
		c.Supabase.DSN = dsn
	}
	if table := os.Getenv("IGMIRROR_TABLE"); table != "" {
		c.Supabase.Table = table
	}
	if bucket := os.Getenv("IGMIRROR_BUCKET"); bucket != "" {
		c.Supabase.Bucket = bucket
	}

	if keep := os.Getenv("IGMIRROR_KEEP_COUNT"); keep != "" {
		if val, err := strconv.Atoi(keep); err == nil && val >= 0 {
			c.Retention.KeepCount = val
		}
	}

	if delay := os.Getenv("IGMIRROR_CALL_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Pacing.CallDelay = d
		}
	}

	if logLevel := os.Getenv("IGMIRROR_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if cronExpr := os.Getenv("IGMIRROR_SCHEDULE"); cronExpr != "" {
		c.Schedule.Cron = cronExpr
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igmirror.yaml",
		".igmirror.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igmirror", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igmirror.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.Username == "" {
		errs = append(errs, errors.New("target username is required"))
	}
	if c.Supabase.DSN == "" {
		errs = append(errs, errors.New("supabase DSN is required"))
	}
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("supabase URL is required"))
	}
	if c.Supabase.Table == "" {
		errs = append(errs, errors.New("record table name is required"))
	}
	if c.Supabase.Bucket == "" {
		errs = append(errs, errors.New("storage bucket name is required"))
	}

	if c.Retention.KeepCount < 0 {
		errs = append(errs, errors.New("keep count cannot be negative"))
	}

	if c.Pacing.CallDelay < 0 {
		errs = append(errs, errors.New("call delay cannot be negative"))
	}
	if c.Pacing.FailureMultiplier < 1 {
		errs = append(errs, errors.New("failure multiplier must be at least 1"))
	}
	if c.Pacing.LongPauseEvery < 0 {
		errs = append(errs, errors.New("long pause interval cannot be negative"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry attempts must be positive"))
	}

	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.HTTP.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igmirror.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	config.LoadFromEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
