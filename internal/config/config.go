package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string `env:"APP_ENV" envDefault:"dev"`
	Addr      string `env:"APP_ADDR" envDefault:"127.0.0.1:8080"`
	PublicURL string `env:"APP_PUBLIC_URL"`
	LogLevel  string `env:"APP_LOG_LEVEL" envDefault:"info"`

	MongoURI      string `env:"APP_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"APP_MONGO_DB" envDefault:"midtown"`

	JWTSecret      string        `env:"APP_JWT_SECRET"`
	SessionTTL     time.Duration `env:"APP_SESSION_TTL" envDefault:"720h"`
	VerifyTokenTTL time.Duration `env:"APP_VERIFY_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL  time.Duration `env:"APP_RESET_TOKEN_TTL" envDefault:"10m"`

	PostmarkServerToken  string `env:"APP_POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"APP_POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"APP_SENDER_EMAIL"`
	EnquiryInbox         string `env:"APP_ENQUIRY_INBOX"`

	AdminBootstrapEmail    string `env:"APP_ADMIN_BOOTSTRAP_EMAIL"`
	AdminBootstrapName     string `env:"APP_ADMIN_BOOTSTRAP_NAME" envDefault:"Administrator"`
	AdminBootstrapPassword string `env:"APP_ADMIN_BOOTSTRAP_PASSWORD"`

	publicURL *url.URL
}

// Load reads an optional .env file, parses the environment and validates the
// result. The .env file is a development convenience; a missing file is fine.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "test", "prod":
	default:
		return errors.New("APP_ENV: must be one of dev, test, prod")
	}

	if c.PublicURL != "" {
		parsed, err := url.Parse(c.PublicURL)
		if err != nil {
			return fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		c.publicURL = parsed
	}

	if c.SessionTTL <= 0 {
		return errors.New("APP_SESSION_TTL: must be > 0")
	}
	if c.VerifyTokenTTL <= 0 {
		return errors.New("APP_VERIFY_TOKEN_TTL: must be > 0")
	}
	if c.ResetTokenTTL <= 0 {
		return errors.New("APP_RESET_TOKEN_TTL: must be > 0")
	}

	c.AdminBootstrapEmail = strings.TrimSpace(strings.ToLower(c.AdminBootstrapEmail))
	if c.AdminBootstrapPassword != "" && c.AdminBootstrapEmail == "" {
		return errors.New("APP_ADMIN_BOOTSTRAP_EMAIL: required when APP_ADMIN_BOOTSTRAP_PASSWORD is set")
	}

	if c.IsProd() {
		if c.PublicURL == "" {
			return errors.New("APP_PUBLIC_URL: required in prod")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("APP_JWT_SECRET: must be at least 32 bytes in prod")
		}
	}

	return nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) ParsedPublicURL() *url.URL { return c.publicURL }

func (c Config) CookieSecure() bool {
	if c.publicURL != nil {
		return c.publicURL.Scheme == "https"
	}
	return c.IsProd()
}

// EmailEnabled reports whether a real delivery provider is configured.
// Without it the server falls back to logging outbound mail.
func (c Config) EmailEnabled() bool {
	return c.PostmarkServerToken != "" && c.SenderEmail != ""
}
