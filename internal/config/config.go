package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	SourceTMDB   = "tmdb"
	SourceMemory = "memory"
	SourceNone   = "none"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Source  SourceConfig
	Misc    MiscConfig
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutDownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins string
}

// StorageConfig selects the durable medium behind the watchlist.
// Path is a directory for the file backend and a database file for bolt and sqlite.
type StorageConfig struct {
	Backend         string
	Path            string
	Key             string
	WatchEnabled    bool
	RefreshInterval time.Duration
	MemoryQuota     int
}

// SourceConfig selects the remote movie metadata source.
type SourceConfig struct {
	Type     string
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

type MiscConfig struct {
	LogLevel          string
	GinMode           string
	HoneybadgerAPIKey string
	Env               string
}

// LoadConfig reads .env, config.yaml and GO_WATCHLIST_* environment variables,
// validates the result and makes sure the storage location exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot read .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnvOrDefault("GO_WATCHLIST_CONFIG_PATH", "./config"))

	setDefaults(v)

	v.SetEnvPrefix("GO_WATCHLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		logger.WithComponent("config").Debug("no config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort(v, "PORT", "server.port")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               port,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(v.GetString("storage.backend")),
			Path:            v.GetString("storage.path"),
			Key:             v.GetString("storage.key"),
			WatchEnabled:    v.GetBool("storage.watch"),
			RefreshInterval: v.GetDuration("storage.refresh_interval"),
			MemoryQuota:     v.GetInt("storage.memory_quota"),
		},
		Source: SourceConfig{
			Type:     strings.ToLower(v.GetString("source.type")),
			BaseURL:  v.GetString("source.base_url"),
			APIKey:   v.GetString("source.api_key"),
			Language: v.GetString("source.language"),
			Timeout:  v.GetDuration("source.timeout"),
		},
		Misc: MiscConfig{
			LogLevel:          v.GetString("misc.log_level"),
			GinMode:           v.GetString("misc.gin_mode"),
			HoneybadgerAPIKey: getEnvOrDefault("HONEYBADGER_API_KEY", v.GetString("misc.honeybadger_api_key")),
			Env:               getEnvOrDefault("GO_ENV", v.GetString("misc.env")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.ensureStoragePath(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8084)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 2*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", "./config/data")
	v.SetDefault("storage.key", "saved_movies")
	v.SetDefault("storage.watch", true)
	v.SetDefault("storage.refresh_interval", time.Duration(0))
	v.SetDefault("storage.memory_quota", 0)

	v.SetDefault("source.type", SourceNone)
	v.SetDefault("source.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("source.language", "en-US")
	v.SetDefault("source.timeout", 10*time.Second)

	v.SetDefault("misc.log_level", "info")
	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.env", "development")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	timeouts := map[string]time.Duration{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"idle_timeout":     c.Server.IdleTimeout,
		"shutdown_timeout": c.Server.ShutDownTimeout,
		"request_timeout":  c.Server.RequestTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("server %s must be positive, got %v", name, d)
		}
	}

	switch c.Storage.Backend {
	case BackendFile, BackendBolt, BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage path is required for backend %q", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %q (supported: %s, %s, %s, %s)",
			c.Storage.Backend, BackendFile, BackendBolt, BackendSQLite, BackendMemory)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key is required")
	}
	if c.Storage.RefreshInterval < 0 {
		return fmt.Errorf("storage refresh_interval must not be negative, got %v", c.Storage.RefreshInterval)
	}
	if c.Storage.MemoryQuota < 0 {
		return fmt.Errorf("storage memory_quota must not be negative, got %d", c.Storage.MemoryQuota)
	}

	switch c.Source.Type {
	case SourceTMDB:
		if strings.TrimSpace(c.Source.APIKey) == "" {
			return errors.New("source api_key is required for tmdb")
		}
		if strings.TrimSpace(c.Source.BaseURL) == "" {
			return errors.New("source base_url is required for tmdb")
		}
		if c.Source.Timeout <= 0 {
			return fmt.Errorf("source timeout must be positive, got %v", c.Source.Timeout)
		}
	case SourceMemory, SourceNone, "":
	default:
		return fmt.Errorf("unknown source type: %q (supported: %s, %s, %s)", c.Source.Type, SourceTMDB, SourceMemory, SourceNone)
	}
	return nil
}

// ensureStoragePath creates the directory that will hold the durable medium.
func (c *Config) ensureStoragePath() error {
	dir := ""
	switch c.Storage.Backend {
	case BackendFile:
		dir = c.Storage.Path
	case BackendBolt, BackendSQLite:
		dir = filepath.Dir(c.Storage.Path)
	default:
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvOrViperPort(v *viper.Viper, envKey, viperKey string) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", envKey, val, err)
		}
		return port, nil
	}
	return v.GetInt(viperKey), nil
}
