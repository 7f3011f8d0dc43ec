package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the TOML file.
const (
	EnvPassphrase   = "EDUBRASIL_PASSPHRASE"
	EnvDefaultTrack = "EDUBRASIL_DEFAULT_TRACK"
	EnvDatabasePath = "EDUBRASIL_DATABASE_PATH"
	EnvRedisAddr    = "EDUBRASIL_REDIS_ADDR"
	EnvRedisPass    = "EDUBRASIL_REDIS_PASSWORD"
	EnvServerPort   = "EDUBRASIL_SERVER_PORT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Player   PlayerConfig   `toml:"player"`
	Admin    AdminConfig    `toml:"admin"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Blobs    BlobsConfig    `toml:"blobs"`
	Server   ServerConfig   `toml:"server"`
}

// PlayerConfig contains branding and track source settings.
type PlayerConfig struct {
	Brand            string   `toml:"brand"`
	Subtitle         string   `toml:"subtitle"`
	DefaultTrack     string   `toml:"default_track"`
	StorageKey       string   `toml:"storage_key"`
	ProgressInterval Duration `toml:"progress_interval"`
}

// AdminConfig contains the admin gate settings.
//
// The passphrase is compared in plaintext. It is not a secret from anyone who can read the config or the binary.
type AdminConfig struct {
	Passphrase        string `toml:"passphrase"`
	AttemptsPerMinute int    `toml:"attempts_per_minute"`
}

// StorageConfig selects the persistent key-value backend.
type StorageConfig struct {
	Driver string `toml:"driver"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains connection settings for the redis storage driver.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// BlobsConfig contains settings for the uploaded track store.
type BlobsConfig struct {
	Dir string `toml:"dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MaxUploadMB int64  `toml:"max_upload_mb"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Duration wraps [time.Duration] so it can be decoded from TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = v
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults, and environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads variables from a .env file without overriding ones already set.
//
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values with EDUBRASIL_* environment variables.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvPassphrase); ok {
		c.Admin.Passphrase = v
	}
	if v, ok := os.LookupEnv(EnvDefaultTrack); ok {
		c.Player.DefaultTrack = v
	}
	if v, ok := os.LookupEnv(EnvDatabasePath); ok {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv(EnvRedisPass); ok {
		c.Redis.Password = v
	}
	if v, ok := os.LookupEnv(EnvServerPort); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate reports configuration values the player cannot run with.
func (c *Config) Validate() error {
	if c.Player.StorageKey == "" {
		return fmt.Errorf("%w: player.storage_key is empty", ErrInvalidConfig)
	}
	if c.Admin.AttemptsPerMinute < 0 {
		return fmt.Errorf("%w: admin.attempts_per_minute must not be negative", ErrInvalidConfig)
	}
	switch c.Storage.Driver {
	case StorageSQLite, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	return nil
}

// Storage drivers
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)
