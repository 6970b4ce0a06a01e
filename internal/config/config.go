package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "GOLDEN_TICKETS_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	githubTokenEnv     = "GITHUB_TOKEN"
	googleCredsEnv     = "GOOGLE_APPLICATION_CREDENTIALS"
	googleCredsJSONEnv = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	databaseDSNEnv     = "DATABASE_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	sendgridAPIKeyEnv  = "SENDGRID_API_KEY"
)

// History sources understood by the application.
const (
	HistorySourceGitHub   = "github"
	HistorySourcePostgres = "postgres"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Calendar      CalendarConfig     `yaml:"calendar"`
	GitHub        GitHubConfig       `yaml:"github"`
	History       HistoryConfig      `yaml:"history"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig sets the slog level (debug, info, warn, error) and format.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// CalendarConfig describes the Google Calendar that receives the entries.
type CalendarConfig struct {
	Name            string `yaml:"name" validate:"required"`
	CredentialsFile string `yaml:"credentialsFile"`
	CredentialsJSON string `yaml:"-"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
}

// GitHubConfig points at the repository whose issues are scheduled.
type GitHubConfig struct {
	BaseURL             string        `yaml:"baseUrl" validate:"required,url"`
	Token               string        `yaml:"token"`
	Owner               string        `yaml:"owner" validate:"required"`
	Repo                string        `yaml:"repo" validate:"required"`
	UserAgent           string        `yaml:"userAgent"`
	Timeout             time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxRetries          int           `yaml:"maxRetries" validate:"gte=0,lte=10"`
	MaxPages            int           `yaml:"maxPages" validate:"gte=1"`
	IncludePullRequests bool          `yaml:"includePullRequests"`
}

// HistoryConfig selects where activity timestamps come from.
type HistoryConfig struct {
	Source   string   `yaml:"source" validate:"oneof=github postgres"`
	Actor    string   `yaml:"actor"`
	PageSize int      `yaml:"pageSize" validate:"gte=1"`
	Kinds    []string `yaml:"kinds"`
}

// ScheduleConfig tunes slot derivation and the watch loop.
type ScheduleConfig struct {
	GoldenHours  int            `yaml:"goldenHours" validate:"gte=1,lte=168"`
	SlotDuration time.Duration  `yaml:"slotDuration" validate:"gt=0"`
	Interval     time.Duration  `yaml:"interval" validate:"gt=0"`
	RunTimeout   time.Duration  `yaml:"runTimeout" validate:"gte=0"`
	Timezone     string         `yaml:"timezone"`
	DryRun       bool           `yaml:"dryRun"`
	location     *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DatabaseConfig describes the Postgres history store.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// NotificationConfig encapsulates outbound report channels.
type NotificationConfig struct {
	SubjectPrefix string         `yaml:"subjectPrefix"`
	Telegram      TelegramConfig `yaml:"telegram"`
	SendGrid      SendGridConfig `yaml:"sendgrid"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SendGridConfig describes the email report channel.
type SendGridConfig struct {
	APIKey    string   `yaml:"apiKey"`
	BaseURL   string   `yaml:"baseUrl" validate:"omitempty,url"`
	FromEmail string   `yaml:"fromEmail" validate:"omitempty,email"`
	FromName  string   `yaml:"fromName"`
	To        []string `yaml:"to" validate:"dive,email"`
}

// Enabled reports whether the email channel has a key, a sender and recipients.
func (s SendGridConfig) Enabled() bool {
	return s.APIKey != "" && s.FromEmail != "" && len(s.To) > 0
}

// MetricsConfig enables pushing run metrics to a Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl" validate:"omitempty,url"`
	Job            string `yaml:"job"`
}

// Load reads the YAML file named by GOLDEN_TICKETS_CONFIG (if set).
func Load() (Config, error) {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML configuration (if present) over the defaults, applies
// environment overrides and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: cannot parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if cfg.History.Actor == "" {
		cfg.History.Actor = cfg.GitHub.Owner
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-section requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var errs []error
	if c.History.Source == HistorySourcePostgres && c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required when history.source is postgres"))
	}
	if c.History.Source == HistorySourceGitHub && c.History.PageSize > 100 {
		errs = append(errs, errors.New("history.pageSize cannot exceed 100 for the github source"))
	}
	if c.History.Actor == "" {
		errs = append(errs, errors.New("history.actor is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(githubTokenEnv); v != "" {
		c.GitHub.Token = v
	}

	if v := os.Getenv(googleCredsEnv); v != "" {
		c.Calendar.CredentialsFile = v
	}
	if v := os.Getenv(googleCredsJSONEnv); v != "" {
		c.Calendar.CredentialsJSON = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(sendgridAPIKeyEnv); v != "" {
		c.Notifications.SendGrid.APIKey = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Schedule.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Calendar: CalendarConfig{Name: "Golden Tickets"},
		GitHub: GitHubConfig{
			BaseURL:    "https://api.github.com",
			UserAgent:  "GoldenTickets/1.0",
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			MaxPages:   10,
		},
		History: HistoryConfig{Source: HistorySourceGitHub, PageSize: 100},
		Schedule: ScheduleConfig{
			GoldenHours:  10,
			SlotDuration: time.Hour,
			Interval:     24 * time.Hour,
			RunTimeout:   2 * time.Minute,
			Timezone:     defaultTimezone,
			location:     tz,
		},
		Database: DatabaseConfig{Table: "activity_events"},
		Notifications: NotificationConfig{
			SubjectPrefix: "[Golden Tickets]",
			SendGrid:      SendGridConfig{BaseURL: "https://api.sendgrid.com", FromName: "Golden Tickets"},
		},
		Metrics: MetricsConfig{Job: "golden_tickets"},
	}
}
