package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = "8080"
	defaultDatabaseURL   = "postgres=host=localhost user=postgres password=postgres dbname=newsroom port=5432 sslmode=disable"
	defaultSessionSecret = "secret_key_change_me"
	defaultFallbackEmail = "moderators@newsroom.local"
)

// SMTP holds outbound mail settings. Mail is disabled unless every field is set.
type SMTP struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port" validate:"omitempty,numeric"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from" validate:"omitempty,email"`
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != "" && s.From != ""
}

// Contact is shown on the /contact page.
type Contact struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email" validate:"omitempty,email"`
}

type Config struct {
	Port          string `yaml:"port" validate:"required,numeric"`
	DatabaseURL   string `yaml:"database_url" validate:"required"`
	SessionSecret string `yaml:"session_secret" validate:"required,min=8"`
	SiteURL       string `yaml:"site_url" validate:"required,url"`
	AppName       string `yaml:"app_name" validate:"required"`

	SMTP SMTP `yaml:"smtp"`

	// FallbackNotifyEmail receives comment alerts when no moderator exists.
	FallbackNotifyEmail string `yaml:"fallback_notify_email" validate:"required,email"`
	// ModeratorEmail receives the daily digest. Empty disables the digest mail.
	ModeratorEmail string `yaml:"moderator_email" validate:"omitempty,email"`
	// DigestSchedule is a cron expression; empty means the server does not
	// schedule the digest itself.
	DigestSchedule string `yaml:"digest_schedule"`
	Timezone       string `yaml:"timezone" validate:"required"`

	SoftRejectComments bool `yaml:"soft_reject_comments"`

	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=text json"`

	Contact Contact `yaml:"contact"`
}

// Location resolves Timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then
// environment variables, which win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading config from environment")
	}

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.SiteURL, "SITE_URL")
	setString(&c.AppName, "APP_NAME")

	setString(&c.SMTP.Host, "SMTP_HOST")
	setString(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.Username, "SMTP_USER")
	setString(&c.SMTP.Password, "SMTP_PASS")
	setString(&c.SMTP.From, "SMTP_FROM")

	setString(&c.FallbackNotifyEmail, "FALLBACK_NOTIFY_EMAIL")
	setString(&c.ModeratorEmail, "MODERATOR_EMAIL")
	setString(&c.DigestSchedule, "DIGEST_SCHEDULE")
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if v := os.Getenv("SOFT_REJECT_COMMENTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SoftRejectComments = b
		} else {
			slog.Warn("ignoring invalid SOFT_REJECT_COMMENTS", "value", v)
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.DatabaseURL == "" {
		// Fallback for local dev if not set
		c.DatabaseURL = defaultDatabaseURL
	}
	if c.SessionSecret == "" {
		slog.Warn("SESSION_SECRET not set, using an insecure default")
		c.SessionSecret = defaultSessionSecret
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:" + c.Port
	}
	c.SiteURL = strings.TrimSuffix(c.SiteURL, "/")
	if c.AppName == "" {
		c.AppName = "Newsroom"
	}
	if c.FallbackNotifyEmail == "" {
		c.FallbackNotifyEmail = defaultFallbackEmail
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
}

// Validate checks struct constraints plus the values validator tags cannot express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
