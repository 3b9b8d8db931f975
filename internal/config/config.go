// Package config loads service configuration from the environment, after
// merging an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers understood by the services.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures the runtime configuration of one service.
type Config struct {
	App       AppConfig
	DB        DBConfig
	HTTP      HTTPConfig
	SeedCount int
}

// AppConfig contains process level settings.
type AppConfig struct {
	Name     string
	Env      string
	Port     int
	Version  string
	LogLevel slog.Level
}

// IsDevelopment reports whether the service runs in development mode, where
// tables are created on start and sample records are seeded.
func (c AppConfig) IsDevelopment() bool { return c.Env == "development" }

// Addr is the listen address for the HTTP server.
func (c AppConfig) Addr() string { return ":" + strconv.Itoa(c.Port) }

// DBConfig holds the connection settings of the relational store.
type DBConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
}

// DSN renders the settings as a postgres:// connection URL.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// HTTPConfig tunes the middleware stack.
type HTTPConfig struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	BodyLimitBytes   int64
	RequestTimeout   time.Duration
	CORSAllowOrigins []string
}

// Defaults are the per-service values used when a key is not set.
type Defaults struct {
	ServiceName string
	Port        int
	Database    string
}

// Load merges the named env files into the environment and reads the
// configuration. With no files named it merges ".env", which may be absent.
// A named file that is missing, or any file that does not parse, is an
// error.
func Load(d Defaults, files ...string) (*Config, error) {
	if err := loadEnvFiles(files); err != nil {
		return nil, err
	}
	return FromEnv(os.LookupEnv, d)
}

func loadEnvFiles(files []string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return fmt.Errorf("load env files: %w", err)
		}
		return nil
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// FromEnv reads the configuration through lookup. Every invalid key is
// reported in the returned error, not just the first.
func FromEnv(lookup func(string) (string, bool), d Defaults) (*Config, error) {
	ldr := &envLoader{lookup: lookup}

	cfg := &Config{}
	cfg.App.Name = ldr.getString("SERVICE_NAME", d.ServiceName)
	cfg.App.Env = ldr.getString("APP_ENV", "development")
	cfg.App.Port = ldr.getInt("PORT", d.Port)
	cfg.App.Version = ldr.getString("SERVICE_VERSION", "1.0.0")
	cfg.App.LogLevel = ldr.getLevel("LOG_LEVEL", slog.LevelInfo)

	cfg.DB.Driver = ldr.getString("DB_DRIVER", DriverPostgres)
	cfg.DB.Host = ldr.getString("DB_HOST", "localhost")
	cfg.DB.Port = ldr.getInt("DB_PORT", 5432)
	cfg.DB.User = ldr.getString("DB_USERNAME", "postgres")
	cfg.DB.Password = ldr.getString("DB_PASSWORD", "postgres")
	cfg.DB.Database = ldr.getString("DB_DATABASE", d.Database)
	cfg.DB.SSLMode = ldr.getString("DB_SSLMODE", "disable")
	cfg.DB.MaxConns = ldr.getInt("DB_MAX_CONNS", 10)

	cfg.SeedCount = ldr.getInt("SEED_COUNT", 20)

	cfg.HTTP.RateLimitRPS = ldr.getFloat("RATE_LIMIT_RPS", 50)
	cfg.HTTP.RateLimitBurst = ldr.getInt("RATE_LIMIT_BURST", 100)
	cfg.HTTP.BodyLimitBytes = int64(ldr.getInt("BODY_LIMIT_BYTES", 1<<20))
	cfg.HTTP.RequestTimeout = ldr.getDuration("REQUEST_TIMEOUT", 15*time.Second)
	cfg.HTTP.CORSAllowOrigins = ldr.getStringSlice("CORS_ALLOW_ORIGINS", []string{"*"})

	if cfg.App.Name == "" {
		ldr.addError("SERVICE_NAME is required")
	}
	if cfg.App.Port < 1 || cfg.App.Port > 65535 {
		ldr.addError("PORT must be between 1 and 65535")
	}
	if !slices.Contains([]string{DriverPostgres, DriverMemory}, cfg.DB.Driver) {
		ldr.addError(fmt.Sprintf("DB_DRIVER must be %q or %q", DriverPostgres, DriverMemory))
	}
	if cfg.DB.Driver == DriverPostgres && cfg.DB.Database == "" {
		ldr.addError("DB_DATABASE is required")
	}
	if cfg.DB.MaxConns < 1 {
		ldr.addError("DB_MAX_CONNS must be positive")
	}
	if cfg.SeedCount < 0 {
		ldr.addError("SEED_COUNT must not be negative")
	}

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envLoader struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

// raw returns the trimmed value of key and whether it is set and non-empty.
func (l *envLoader) raw(key string) (string, bool) {
	val, ok := l.lookup(key)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func (l *envLoader) getString(key, def string) string {
	if val, ok := l.raw(key); ok {
		return val
	}
	return def
}

func (l *envLoader) getInt(key string, def int) int {
	val, ok := l.raw(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getFloat(key string, def float64) float64 {
	val, ok := l.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid number", key))
		return def
	}
	return f
}

func (l *envLoader) getDuration(key string, def time.Duration) time.Duration {
	val, ok := l.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid duration", key))
		return def
	}
	return d
}

func (l *envLoader) getLevel(key string, def slog.Level) slog.Level {
	val, ok := l.raw(key)
	if !ok {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(val)); err != nil {
		l.addError(fmt.Sprintf("%s must be one of debug, info, warn, error", key))
		return def
	}
	return lvl
}

func (l *envLoader) getStringSlice(key string, def []string) []string {
	val, ok := l.raw(key)
	if !ok {
		return def
	}
	var out []string
	for p := range strings.SplitSeq(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
