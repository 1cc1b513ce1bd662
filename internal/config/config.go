package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Analytics AnalyticsConfig
	Session   SessionConfig
	Logger    LoggerConfig
	Security  SecurityConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type AnalyticsConfig struct {
	File     string
	CacheDir string
}

type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	SweepInterval time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Unset or malformed values
// fall back to their defaults.
func LoadFrom(getenv func(string) string) (*Config, error) {
	e := env(getenv)
	cfg := &Config{
		Server: ServerConfig{
			Host:            e.str("SERVER_HOST", "localhost"),
			Port:            e.integer("SERVER_PORT", 8084),
			ReadTimeout:     e.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    e.duration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     e.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Analytics: AnalyticsConfig{
			File:     e.str("ANALYTICS_FILE", "analytics.json"),
			CacheDir: e.str("ANALYTICS_CACHE_DIR", ".cache"),
		},
		Session: SessionConfig{
			CookieName:    e.str("SESSION_COOKIE", "locations_session"),
			TTL:           e.duration("SESSION_TTL", 30*time.Minute),
			SweepInterval: e.duration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Logger: LoggerConfig{
			Level:  e.str("LOG_LEVEL", "info"),
			Format: e.str("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: e.boolean("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    e.integer("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  e.integer("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  e.list("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  e.list("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
		Metrics: MetricsConfig{
			Enabled: e.boolean("METRICS_ENABLED", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Port >= 1 && c.Server.Port <= 65535, "server port must be between 1 and 65535, got %d", c.Server.Port)
	check(c.Server.ReadTimeout > 0 && c.Server.WriteTimeout > 0, "server read and write timeouts must be positive")
	check(c.Analytics.File != "", "analytics file path cannot be empty")
	check(c.Session.CookieName != "", "session cookie name cannot be empty")
	check(c.Session.TTL > 0 && c.Session.SweepInterval > 0, "session TTL and sweep interval must be positive")
	check(slices.Contains(logLevels, c.Logger.Level), "invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(logLevels, ", "))
	check(slices.Contains(logFormats, c.Logger.Format), "invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(logFormats, ", "))
	check(c.Security.RateLimitRPS > 0 && c.Security.RateLimitBurst > 0, "rate limit RPS and burst must be positive")

	return errors.Join(errs...)
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// env is a variable lookup with typed accessors.
type env func(string) string

func (e env) str(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e env) integer(key string, def int) int {
	if n, err := strconv.Atoi(e(key)); err == nil {
		return n
	}
	return def
}

func (e env) boolean(key string, def bool) bool {
	if b, err := strconv.ParseBool(e(key)); err == nil {
		return b
	}
	return def
}

func (e env) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e(key)); err == nil {
		return d
	}
	return def
}

func (e env) list(key string, def []string) []string {
	v := e(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
