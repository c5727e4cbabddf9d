// Package config assembles server settings from defaults, an optional .env
// file, the process environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime settings for the notes server.
//
//   - DatabaseDriver is "postgres" or "sqlite"; DatabaseURL is its DSN.
//   - JWTKey signs the auth cookie and must be set.
//   - RedisAddr enables cross-instance live events when non-empty.
//   - AllowedOrigins is the CORS allow list; AllowAllOrigins reflects any origin.
type Config struct {
	Addr            string
	Env             string
	DatabaseDriver  string
	DatabaseURL     string
	JWTKey          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	AllowedOrigins  []string
	AllowAllOrigins bool
	LogFile         string
	DBLogLevel      string
}

func (c *Config) LoadDefaults() {
	c.Addr = ":8081"
	c.Env = EnvDevelopment
	c.DatabaseDriver = "postgres"
	c.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	c.LogFile = "app.error_logger"
	c.DBLogLevel = "warn"
}

// LoadConfig applies defaults, then .env (if present), environment and flags.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		if strings.Contains(v, ":") {
			c.Addr = v
		} else {
			c.Addr = ":" + v
		}
	}
	str("APP_ENV", &c.Env)
	str("DATABASE_DRIVER", &c.DatabaseDriver)
	str("DATABASE_URL", &c.DatabaseURL)
	str("JWT_KEY", &c.JWTKey)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PW", &c.RedisPassword)
	str("LOG_FILE", &c.LogFile)
	str("DB_LOG_LEVEL", &c.DBLogLevel)

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.RedisDB = db
	}

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		if strings.TrimSpace(v) == "*" {
			c.AllowAllOrigins = true
			c.AllowedOrigins = nil
		} else {
			c.AllowedOrigins = splitList(v)
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.JWTKey == "" {
		return errors.New("no JWT_KEY found in environment")
	}
	if c.DatabaseURL == "" {
		return errors.New("no DATABASE_URL found in environment")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
