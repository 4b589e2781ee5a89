package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const minSecretLength = 32

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
	"default-secret-change-in-production", "changeme123",
}

type Config struct {
	Port               int      `env:"PORT" envDefault:"8080"`
	AppEnv             string   `env:"APP_ENV" envDefault:"development"`
	DatabaseURL        string   `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret          string   `env:"JWT_SECRET,required,notEmpty"`
	TokenTTLHours      int      `env:"TOKEN_TTL_HOURS" envDefault:"168"`
	RedisURL           string   `env:"REDIS_URL"`
	LoginMaxAttempts   int      `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
}

// DatabaseConfig is read by the migrate and seed commands, which never sign
// tokens and so do not require JWT_SECRET.
type DatabaseConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects configurations the server must not start with. There is no
// fallback signing secret: tokens signed with a guessable key are forgeable.
func (c *Config) Validate() error {
	if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
		return err
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	if c.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}

	if c.IsProduction() {
		if c.RedisURL != "" && strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				log.Warn().Msg("CORS_ALLOWED_ORIGINS allows any origin in production")
				break
			}
		}
	}

	return nil
}

// ValidateSeedAdmin checks the credentials used by the seed command.
func (c *DatabaseConfig) ValidateSeedAdmin() error {
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must both be set to seed an admin user")
	}
	if len([]rune(c.AdminPassword)) < MinPasswordLength {
		return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters long", MinPasswordLength)
	}
	if len(c.AdminPassword) > MaxPasswordBytes {
		return fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes long", MaxPasswordBytes)
	}
	for _, weak := range knownWeakSecrets {
		if c.AdminPassword == weak {
			return fmt.Errorf("ADMIN_PASSWORD is a known weak default; choose another password")
		}
	}
	return nil
}

func validateSecret(name, value string) error {
	if len(value) < minSecretLength {
		return fmt.Errorf("%s must be at least %d characters (generate with: openssl rand -base64 32)", name, minSecretLength)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func LoadDatabase() (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
