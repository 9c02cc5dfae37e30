package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	EmailBackendConsole = "console"
	EmailBackendSMTP    = "smtp"
	EmailBackendSES     = "ses"
)

type Config struct {
	IsTestMode     bool     `env:"TEST_MODE" envDefault:"false"`
	Port           int      `env:"PORT" envDefault:"9090"`
	Secret         string   `env:"SECRET,required"`
	PostgresqlURL  string   `env:"POSTGRESQL_URL,required"`
	RedisURL       string   `env:"REDIS_URL,required"`
	MigrateOnStart bool     `env:"MIGRATE_ON_START" envDefault:"false"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SentryDSN      string   `env:"SENTRY_DSN"`

	BcryptHasherCost int `env:"BCRYPT_HASHER_COST" envDefault:"10"`

	PasswordResetTokenTTL         time.Duration `env:"PASSWORD_RESET_TOKEN_TTL" envDefault:"1h"`
	PasswordMinLength             int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordResetSweepPeriod      time.Duration `env:"PASSWORD_RESET_SWEEP_PERIOD" envDefault:"15m"`
	PasswordResetRequestsPerHour  uint16        `env:"PASSWORD_RESET_REQUESTS_PER_HOUR" envDefault:"3"`
	PasswordResetBaseURL          url.URL       `env:"PASSWORD_RESET_BASE_URL" envDefault:"http://localhost:5000/reset-password"`
	RabbitmqURL                   string        `env:"RABBITMQ_URL"`
	RabbitmqPasswordResetExchange string        `env:"RABBITMQ_PASSWORD_RESET_EXCHANGE" envDefault:"password_reset"`

	EmailBackend    string `env:"EMAIL_BACKEND" envDefault:"console"`
	EmailSender     string `env:"EMAIL_SENDER" envDefault:"no-reply@localhost"`
	EmailSenderName string `env:"EMAIL_SENDER_NAME"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"25"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	AwsRegion                                 string `env:"AWS_REGION"`
	AwsAccessKey                              string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                              string `env:"AWS_SECRET_KEY"`
	AwsEmailPasswordResetTemplate             string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE" envDefault:"password-reset"`
	AwsEmailPasswordResetConfirmationTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_CONFIRMATION_TEMPLATE" envDefault:"password-reset-confirmation"`
}

func Load() (*Config, error) {
	return LoadFrom(env.Options{})
}

// LoadFrom parses the configuration using the given options, which allows
// tests to supply the environment explicitly.
func LoadFrom(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PasswordResetTokenTTL <= 0 {
		return fmt.Errorf("PASSWORD_RESET_TOKEN_TTL must be positive")
	}
	if c.PasswordResetSweepPeriod <= 0 {
		return fmt.Errorf("PASSWORD_RESET_SWEEP_PERIOD must be positive")
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1")
	}
	if c.PasswordResetRequestsPerHour < 1 {
		return fmt.Errorf("PASSWORD_RESET_REQUESTS_PER_HOUR must be at least 1")
	}
	switch c.EmailBackend {
	case EmailBackendConsole, EmailBackendSMTP:
	case EmailBackendSES:
		if c.AwsRegion == "" {
			return fmt.Errorf("AWS_REGION must be set for the ses email backend")
		}
	default:
		return fmt.Errorf("invalid EMAIL_BACKEND value: %q", c.EmailBackend)
	}
	return nil
}
