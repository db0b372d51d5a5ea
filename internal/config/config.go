package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is read from the environment. A .env file in the working directory
// is loaded first when present; real environment variables win over it.
type Config struct {
	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" env-default:"true"`

	Stripe   StripeConfig
	RabbitMQ RabbitMQConfig
	Mail     MailConfig
	Auth     AuthConfig
	Webhook  WebhookConfig

	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

type StripeConfig struct {
	SecretKey    string        `env:"STRIPE_SECRET_KEY"`
	Timeout      time.Duration `env:"STRIPE_TIMEOUT" env-default:"15s"`
	// SyncInterval is how often unlinked prices are retried; zero disables it.
	SyncInterval time.Duration `env:"STRIPE_PRICE_SYNC_INTERVAL" env-default:"5m"`
}

type RabbitMQConfig struct {
	// URL is empty when activities should be written synchronously.
	URL      string `env:"RABBITMQ_URL"`
	Prefetch int    `env:"RABBITMQ_PREFETCH" env-default:"20"`
}

type MailConfig struct {
	Host     string `env:"MAIL_HOST"`
	Port     int    `env:"MAIL_PORT" env-default:"587"`
	User     string `env:"MAIL_USER"`
	Password string `env:"MAIL_PASS"`
	From     string `env:"MAIL_FROM" env-default:"no-reply@leaniverse.io"`
	SalesTo  string `env:"MAIL_SALES_TO"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`
}

// WebhookConfig identifies inbound messaging webhooks and the owner that
// captured leads are assigned to.
type WebhookConfig struct {
	Token          string `env:"WEBHOOK_TOKEN"`
	OrganizationID string `env:"WEBHOOK_ORGANIZATION_ID"`
	OwnerID        string `env:"WEBHOOK_OWNER_ID"`
}

func (w WebhookConfig) Enabled() bool {
	return w.Token != "" && w.OrganizationID != "" && w.OwnerID != ""
}

func Load() (*Config, error) {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.Stripe.SecretKey != "" && !strings.HasPrefix(c.Stripe.SecretKey, "sk_") && !strings.HasPrefix(c.Stripe.SecretKey, "rk_") {
		return errors.New("STRIPE_SECRET_KEY must be a secret or restricted key")
	}
	if c.Webhook.Token != "" && (c.Webhook.OrganizationID == "" || c.Webhook.OwnerID == "") {
		return errors.New("WEBHOOK_ORGANIZATION_ID and WEBHOOK_OWNER_ID are required when WEBHOOK_TOKEN is set")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
