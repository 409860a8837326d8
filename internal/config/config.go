// Package config loads ListTube configuration from a YAML file and
// LISTTUBE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix  = "LISTTUBE"
	configName = "listtube"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	Session SessionConfig `mapstructure:"session"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CORSOrigin     string        `mapstructure:"cors_origin"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

type StoreConfig struct {
	Driver          string        `mapstructure:"driver"` // memory, bolt, postgres or mongo
	PostgresDSN     string        `mapstructure:"postgres_dsn"`
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDatabase   string        `mapstructure:"mongo_database"`
	MongoCollection string        `mapstructure:"mongo_collection"`
	BoltPath        string        `mapstructure:"bolt_path"`
	BoltTimeout     time.Duration `mapstructure:"bolt_timeout"`
}

type RedisConfig struct {
	URL       string        `mapstructure:"url"` // empty disables the search cache
	SearchTTL time.Duration `mapstructure:"search_ttl"`
}

type YouTubeConfig struct {
	APIKey   string        `mapstructure:"api_key"` // empty means offline lookups
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	AccessTTL          time.Duration `mapstructure:"access_ttl"`
	RefreshTTL         time.Duration `mapstructure:"refresh_ttl"`
	GoogleClientID     string        `mapstructure:"google_client_id"`
	GoogleClientSecret string        `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string        `mapstructure:"google_redirect_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
	File   string `mapstructure:"file"`   // empty logs to stderr
}

// SessionConfig holds the CLI's signed-in state.
type SessionConfig struct {
	Token string `mapstructure:"token"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			RequestTimeout: 15 * time.Second,
			CORSOrigin:     "*",
			MaxBodyBytes:   64 << 10,
		},
		Store: StoreConfig{
			Driver:          DriverMemory,
			MongoDatabase:   "listtube",
			MongoCollection: "playlists",
			BoltPath:        filepath.Join(dataDir(), "listtube.db"),
			BoltTimeout:     time.Second,
		},
		Redis: RedisConfig{
			SearchTTL: 10 * time.Minute,
		},
		YouTube: YouTubeConfig{
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "listtube")
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "listtube")
}

// Loader reads and writes configuration through its own viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. When file is non-empty it is read instead of
// searching the default locations.
func NewLoader(file string) *Loader {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())
	return &Loader{v: v}
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.request_timeout", d.HTTP.RequestTimeout)
	v.SetDefault("http.cors_origin", d.HTTP.CORSOrigin)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.postgres_dsn", d.Store.PostgresDSN)
	v.SetDefault("store.mongo_uri", d.Store.MongoURI)
	v.SetDefault("store.mongo_database", d.Store.MongoDatabase)
	v.SetDefault("store.mongo_collection", d.Store.MongoCollection)
	v.SetDefault("store.bolt_path", d.Store.BoltPath)
	v.SetDefault("store.bolt_timeout", d.Store.BoltTimeout)

	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("redis.search_ttl", d.Redis.SearchTTL)

	v.SetDefault("youtube.api_key", d.YouTube.APIKey)
	v.SetDefault("youtube.endpoint", d.YouTube.Endpoint)
	v.SetDefault("youtube.timeout", d.YouTube.Timeout)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.access_ttl", d.Auth.AccessTTL)
	v.SetDefault("auth.refresh_ttl", d.Auth.RefreshTTL)
	v.SetDefault("auth.google_client_id", d.Auth.GoogleClientID)
	v.SetDefault("auth.google_client_secret", d.Auth.GoogleClientSecret)
	v.SetDefault("auth.google_redirect_url", d.Auth.GoogleRedirectURL)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)

	v.SetDefault("session.token", d.Session.Token)
}

// Load reads the configuration. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToken persists the CLI session token into the config file, creating
// it under Dir when none was loaded.
func (l *Loader) SaveToken(token string) error {
	l.v.Set("session.token", token)

	path := l.v.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(Dir(), configName+".yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := l.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverBolt:
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("config: store.postgres_dsn is required for the postgres driver")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("config: store.mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}
