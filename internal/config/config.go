package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zerovacancy/zerovacancy/internal/announce"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/session"
	"github.com/zerovacancy/zerovacancy/internal/storage/archive"
)

// EnvPrefix namespaces environment overrides, e.g. ZV_SERVER_PORT.
const EnvPrefix = "ZV"

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Log      LogConfig       `mapstructure:"log"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Archive  ArchiveConfig   `mapstructure:"archive"`
	Session  session.Config  `mapstructure:"session"`
	Announce announce.Config `mapstructure:"announce"`
	Client   ClientConfig    `mapstructure:"client"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// StorageConfig selects the marketplace store.
type StorageConfig struct {
	Driver       string `mapstructure:"driver"` // "memory", "sqlite" or "postgres"
	DSN          string `mapstructure:"dsn"`
	FixturesPath string `mapstructure:"fixtures_path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type ArchiveConfig struct {
	Type string           `mapstructure:"type"` // "localfs" or "s3"
	Path string           `mapstructure:"path"` // For localfs
	S3   archive.S3Config `mapstructure:"s3"`   // For S3
}

// Storage converts to the archive package's config.
func (a ArchiveConfig) Storage() archive.Config {
	return archive.Config{Type: a.Type, Path: a.Path, S3: a.S3}
}

// ClientConfig configures the CLI's API client.
type ClientConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Simulated        bool          `mapstructure:"simulated"`
	SimulatedLatency time.Duration `mapstructure:"simulated_latency"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from path, layered over Defaults. An empty path
// loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Driver:       "memory",
			MaxOpenConns: 10,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "./data/archive",
		},
		Session: session.Config{
			Store:  "archive",
			TTL:    session.DefaultTTL,
			Issuer: "zerovacancy",
		},
		Announce: announce.Config{
			LoginPath:     announce.DefaultLoginPath,
			RedirectDelay: announce.DefaultRedirectDelay,
		},
		Client: ClientConfig{
			BaseURL:          "http://localhost:8080",
			Timeout:          10 * time.Second,
			SimulatedLatency: 500 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// setDefaults registers every key with viper so env-only overrides are seen
// by Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.fixtures_path", d.Storage.FixturesPath)
	v.SetDefault("storage.max_open_conns", d.Storage.MaxOpenConns)

	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.s3.bucket", d.Archive.S3.Bucket)
	v.SetDefault("archive.s3.endpoint", d.Archive.S3.Endpoint)
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.access_key", d.Archive.S3.AccessKey)
	v.SetDefault("archive.s3.secret_key", d.Archive.S3.SecretKey)
	v.SetDefault("archive.s3.prefix", d.Archive.S3.Prefix)

	v.SetDefault("session.store", d.Session.Store)
	v.SetDefault("session.secret", d.Session.Secret)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.issuer", d.Session.Issuer)
	v.SetDefault("session.redis_url", d.Session.RedisURL)
	v.SetDefault("session.key", d.Session.Key)

	v.SetDefault("announce.login_path", d.Announce.LoginPath)
	v.SetDefault("announce.redirect_delay", d.Announce.RedirectDelay)
	v.SetDefault("announce.webhook_url", d.Announce.WebhookURL)

	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.simulated", d.Client.Simulated)
	v.SetDefault("client.simulated_latency", d.Client.SimulatedLatency)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Validate checks the configuration for errors. Empty selectors fall back to
// the in-memory defaults.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Storage.Driver {
	case "", "memory":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage dsn required when driver is %s", c.Storage.Driver))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Archive.Type))
	}

	switch c.Session.Store {
	case "", "memory", "archive":
	case "redis":
		if c.Session.RedisURL == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("session redis_url required when store is redis"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown session store %q", c.Session.Store))
	}
	if c.Session.TTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session ttl cannot be negative, got %s", c.Session.TTL))
	}

	if c.Announce.RedirectDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("announce redirect_delay cannot be negative, got %s", c.Announce.RedirectDelay))
	}
	if c.Announce.LoginPath != "" && !strings.HasPrefix(c.Announce.LoginPath, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("announce login_path must start with /, got %q", c.Announce.LoginPath))
	}

	if c.Client.Timeout < 0 || c.Client.SimulatedLatency < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("client durations cannot be negative"))
	}

	return nil
}
