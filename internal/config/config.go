// Package config loads service configuration from defaults, an optional YAML
// file, environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sawpanic/selicinsights/internal/breakers"
	"github.com/sawpanic/selicinsights/internal/cache"
	"github.com/sawpanic/selicinsights/internal/infrastructure/db"
	"github.com/sawpanic/selicinsights/internal/source"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Log      LogConfig         `yaml:"log"`
	Source   SourceConfig      `yaml:"source"`
	Database db.Config         `yaml:"database"`
	Cache    cache.Config      `yaml:"cache"`
	Breaker  breakers.Settings `yaml:"breaker"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

// LogConfig selects level and output format (auto, console or json).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SourceConfig selects where observations are loaded from.
type SourceConfig struct {
	Kind            string        `yaml:"kind"`
	File            string        `yaml:"file"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Default returns a local-only configuration serving the embedded sample.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			RequestTimeout: 5 * time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Source: SourceConfig{
			Kind:            source.KindEmbedded,
			RefreshInterval: 5 * time.Minute,
		},
		Database: db.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
		Breaker:  breakers.DefaultSettings(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and environment overrides. Flags are applied separately with
// ApplyFlags.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg, os.LookupEnv)
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnvOverrides(cfg *Config, lookup lookupFunc) {
	if v, ok := lookup("HTTP_HOST"); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := lookup("HTTP_PORT"); ok && v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup("DATA_SOURCE"); ok && v != "" {
		cfg.Source.Kind = v
	}
	if v, ok := lookup("DATA_FILE"); ok && v != "" {
		cfg.Source.File = v
		if cfg.Source.Kind == source.KindEmbedded {
			cfg.Source.Kind = source.KindFile
		}
	}
	// A DSN enables the database like --pg-dsn does; PG_ENABLED can still
	// turn it off.
	if v, ok := lookup("PG_DSN"); ok && v != "" {
		cfg.Database.DSN = v
		cfg.Database.Enabled = true
	}
	if v, ok := lookup("PG_ENABLED"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.Enabled = b
		}
	}
	if v, ok := lookup("PG_QUERY_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Database.QueryTimeout = d
		}
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		cfg.Cache.RedisAddr = v
	}
}

// Flag names shared by the commands.
const (
	FlagHost     = "host"
	FlagPort     = "port"
	FlagLogLevel = "log-level"
	FlagSource   = "source"
	FlagDataFile = "data-file"
	FlagPGDSN    = "pg-dsn"
	FlagRedis    = "redis-addr"
)

// RegisterFlags declares the override flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagHost, "", "HTTP listen host")
	fs.Int(FlagPort, 0, "HTTP listen port")
	fs.String(FlagLogLevel, "", "Log level (debug|info|warn|error)")
	fs.String(FlagSource, "", "Data source (embedded|file|postgres)")
	fs.String(FlagDataFile, "", "YAML data file for the file source")
	fs.String(FlagPGDSN, "", "PostgreSQL DSN (enables the database)")
	fs.String(FlagRedis, "", "Redis address for the dataset cache")
}

// ApplyFlags copies every flag the user actually set onto cfg.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var errs []error
	str := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	str(FlagHost, &cfg.Server.Host)
	str(FlagLogLevel, &cfg.Log.Level)
	str(FlagSource, &cfg.Source.Kind)
	str(FlagDataFile, &cfg.Source.File)
	str(FlagRedis, &cfg.Cache.RedisAddr)

	if f := fs.Lookup(FlagPort); f != nil && f.Changed {
		p, err := fs.GetInt(FlagPort)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.Server.Port = p
	}
	if f := fs.Lookup(FlagPGDSN); f != nil && f.Changed {
		cfg.Database.DSN = f.Value.String()
		cfg.Database.Enabled = true
	}
	if fs.Changed(FlagDataFile) && !fs.Changed(FlagSource) {
		cfg.Source.Kind = source.KindFile
	}
	return errors.Join(errs...)
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
		"server.request_timeout": c.Server.RequestTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("rate limit values cannot be negative"))
	} else if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst == 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit_burst must be at least 1 when rate limiting is on"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be auto, console or json", c.Log.Format))
	}

	switch c.Source.Kind {
	case source.KindEmbedded:
	case source.KindFile:
		if c.Source.File == "" {
			errs = append(errs, fmt.Errorf("source.file is required for the file source"))
		}
	case source.KindPostgres:
		if !c.Database.Enabled {
			errs = append(errs, fmt.Errorf("postgres source requires database.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source kind %q", c.Source.Kind))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}

// Addr is the host:port the server listens on.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
