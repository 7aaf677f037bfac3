package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"theme-tracker/internal/models"
)

// ErrMissingCredential reports an absent API credential. Credentials are
// opaque strings supplied by the environment; only presence is checked.
var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	YouTube  YouTubeConfig `yaml:"youtube"`
	AI       AIConfig      `yaml:"ai"`
	Email    EmailConfig   `yaml:"email"`
	Server   ServerConfig  `yaml:"server"`
	Schedule string        `yaml:"schedule"` // optional cron refresh of all windows; empty disables
	Cohort   string        `yaml:"cohort"`   // default cohort for one-shot runs
}

type YouTubeConfig struct {
	APIKey     string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	Query      string `yaml:"query"`
	MaxResults int64  `yaml:"max_results"`
}

type AIConfig struct {
	GeminiAPIKey   string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether the optional theme digest email is configured.
func (e EmailConfig) Enabled() bool {
	return e.ToEmail != ""
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	// The config file is optional; env vars and defaults cover a bare setup.
	data, err := os.ReadFile(configFile)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Email.Username == "" {
		cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if cfg.Email.Password == "" {
		cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}

	if cfg.YouTube.Query == "" {
		cfg.YouTube.Query = "spirituality philosophy meaning of life"
	}
	if cfg.YouTube.MaxResults == 0 {
		cfg.YouTube.MaxResults = 20
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.5-flash"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 120
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cohort == "" {
		cfg.Cohort = string(models.Cohort40to50)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("%w: YouTube API key (set YOUTUBE_API_KEY or youtube.api_key)", ErrMissingCredential)
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("%w: Gemini API key (set GEMINI_API_KEY or ai.gemini_api_key)", ErrMissingCredential)
	}
	if c.YouTube.MaxResults < 5 || c.YouTube.MaxResults > 50 {
		return fmt.Errorf("youtube.max_results must be between 5 and 50, got %d", c.YouTube.MaxResults)
	}
	if _, err := models.ParseCohort(c.Cohort); err != nil {
		return fmt.Errorf("invalid cohort: %w", err)
	}
	if c.Email.Enabled() {
		if c.Email.SMTPServer == "" || c.Email.SMTPPort == 0 {
			return fmt.Errorf("email.smtp_server and email.smtp_port are required when email.to_email is set")
		}
		if c.Email.Username == "" || c.Email.Password == "" {
			return fmt.Errorf("%w: email credentials (set EMAIL_USERNAME and EMAIL_PASSWORD)", ErrMissingCredential)
		}
	}
	return nil
}
