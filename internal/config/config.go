package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PolicyClassify = "classify"
	PolicyReview   = "review"

	StorageLocal = "local"
	StorageHTTP  = "http"
)

type Config struct {
	SiteName      string        `mapstructure:"SITE_NAME"`
	ListenAddr    string        `mapstructure:"LISTEN_ADDR"`
	PublicBaseURL string        `mapstructure:"PUBLIC_BASE_URL"`
	TemplateDir   string        `mapstructure:"TEMPLATE_DIR"`
	DBDriver      string        `mapstructure:"DB_DRIVER"`
	DatabasePath  string        `mapstructure:"DB_PATH"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	AdminUser     string        `mapstructure:"ADMIN_USER"`
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`
	IntakePolicy  string        `mapstructure:"INTAKE_POLICY"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	StorageURL     string `mapstructure:"STORAGE_URL"`
	StorageKey     string `mapstructure:"STORAGE_KEY"`
	StorageBucket  string `mapstructure:"STORAGE_BUCKET"`
	MaxPhotoBytes  int64  `mapstructure:"MAX_PHOTO_BYTES"`

	SubmitRate  float64 `mapstructure:"SUBMIT_RATE"`
	SubmitBurst int     `mapstructure:"SUBMIT_BURST"`

	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`

	InterviewProject    string `mapstructure:"INTERVIEW_PROJECT"`
	InterviewLocation   string `mapstructure:"INTERVIEW_LOCATION"`
	InterviewModel      string `mapstructure:"INTERVIEW_MODEL"`
	InterviewMaxAnswers int    `mapstructure:"INTERVIEW_MAX_ANSWERS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads CREWDESK_* environment variables, falling back to an
// optional .env file in the working directory.
func LoadConfig() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SITE_NAME", "CrewDesk Installer Hiring")
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("TEMPLATE_DIR", "web/templates")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "crewdesk.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("INTAKE_POLICY", PolicyClassify)
	v.SetDefault("CACHE_TTL", "5s")

	v.SetDefault("STORAGE_BACKEND", StorageLocal)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("STORAGE_URL", "")
	v.SetDefault("STORAGE_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "applicant-photos")
	v.SetDefault("MAX_PHOTO_BYTES", 10<<20)

	v.SetDefault("SUBMIT_RATE", 0.2)
	v.SetDefault("SUBMIT_BURST", 5)

	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)

	v.SetDefault("INTERVIEW_PROJECT", "")
	v.SetDefault("INTERVIEW_LOCATION", "us-central1")
	v.SetDefault("INTERVIEW_MODEL", "gemini-1.5-flash")
	v.SetDefault("INTERVIEW_MAX_ANSWERS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetEnvPrefix("CREWDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		// Ignore err if .env doesn't exist
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate refuses to start against an unconfigured backend.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			errs = append(errs, errors.New("DB_PATH is required when DB_DRIVER=sqlite"))
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	if strings.TrimSpace(c.AdminPassword) == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required"))
	}

	switch c.IntakePolicy {
	case PolicyClassify, PolicyReview:
	default:
		errs = append(errs, fmt.Errorf("INTAKE_POLICY must be %q or %q, got %q", PolicyClassify, PolicyReview, c.IntakePolicy))
	}

	switch c.StorageBackend {
	case StorageLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required when STORAGE_BACKEND=local"))
		}
	case StorageHTTP:
		if c.StorageURL == "" || c.StorageKey == "" || c.StorageBucket == "" {
			errs = append(errs, errors.New("STORAGE_URL, STORAGE_KEY and STORAGE_BUCKET are required when STORAGE_BACKEND=http"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}
	if c.InterviewEnabled() && c.InterviewMaxAnswers <= 0 {
		errs = append(errs, errors.New("INTERVIEW_MAX_ANSWERS must be > 0"))
	}
	if c.SubmitRate <= 0 || c.SubmitBurst <= 0 {
		errs = append(errs, errors.New("SUBMIT_RATE and SUBMIT_BURST must be > 0"))
	}

	return errors.Join(errs...)
}

// TelegramEnabled reports whether priority alerts should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// InterviewEnabled reports whether applicants are offered the skills interview.
func (c *Config) InterviewEnabled() bool {
	return c.InterviewProject != ""
}
