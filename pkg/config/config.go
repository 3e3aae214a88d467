package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port               string   `yaml:"port"                 env:"PORT"                 env-default:"8080"`
	DatabaseURL        string   `yaml:"database_url"         env:"DATABASE_URL"         env-default:"file:db.sqlite"`
	AppEnv             string   `yaml:"app_env"              env:"APP_ENV"              env-default:"local"`
	BaseURL            string   `yaml:"base_url"             env:"BASE_URL"             env-default:"http://localhost:8080"`
	FrontendURL        string   `yaml:"frontend_url"         env:"FRONTEND_URL"         env-default:"http://localhost:8080/dashboard"`
	GoogleClientID     string   `yaml:"google_client_id"     env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `yaml:"google_client_secret" env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string   `yaml:"google_redirect_url"  env:"GOOGLE_REDIRECT_URL"  env-default:"http://localhost:8080/auth/google/callback"`
	JWTSecret          string   `yaml:"jwt_secret"           env:"JWT_SECRET"           env-default:"secret"`
	AllowedEmails      []string `yaml:"allowed_emails"       env:"ALLOWED_EMAILS"       env-separator:","`

	JWTTTL time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"72h"`

	AnalyticsIPSalt string `yaml:"analytics_ip_salt" env:"ANALYTICS_IP_SALT"`

	PublicCacheTTL  time.Duration `yaml:"public_cache_ttl"  env:"PUBLIC_CACHE_TTL"  env-default:"60s"`
	PublicCacheSize int           `yaml:"public_cache_size" env:"PUBLIC_CACHE_SIZE" env-default:"512"`

	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"  env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"` // json | console
}

// Load reads an optional .env file, then CONFIG_PATH (YAML) when set, else
// the environment with defaults. The result is validated.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	emails := c.AllowedEmails[:0]
	for _, e := range c.AllowedEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	c.AllowedEmails = emails
	c.LogFormat = strings.ToLower(c.LogFormat)
}

// Validate checks the rules that struct defaults cannot express.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production (got %d)", len(c.JWTSecret))
		}
		if c.AnalyticsIPSalt == "" {
			return fmt.Errorf("ANALYTICS_IP_SALT is required in production")
		}
	}
	if c.PublicCacheTTL <= 0 {
		return fmt.Errorf("PUBLIC_CACHE_TTL must be > 0 (got %s)", c.PublicCacheTTL)
	}
	if c.PublicCacheSize <= 0 {
		return fmt.Errorf("PUBLIC_CACHE_SIZE must be > 0 (got %d)", c.PublicCacheSize)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0 (got %s)", c.JWTTTL)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.LogFormat)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// EmailAllowed reports whether email may sign in. An empty allow-list admits
// everyone.
func (c *Config) EmailAllowed(email string) bool {
	if len(c.AllowedEmails) == 0 {
		return true
	}
	return slices.Contains(c.AllowedEmails, strings.ToLower(strings.TrimSpace(email)))
}
