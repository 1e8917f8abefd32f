package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Storage backends
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Environment variables that override the config file
const (
	EnvDBPath    = "AUCTION_DB_PATH"
	EnvStorage   = "AUCTION_STORAGE"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvSeedDemo  = "AUCTION_SEED_DEMO"
)

type Config struct {
	DBPath    string `toml:"db_path"`
	Storage   string `toml:"storage"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	SeedDemo  bool   `toml:"seed_demo"`
}

// Default returns the settings used when nothing else is configured
func Default() Config {
	return Config{
		DBPath:    "data/auction.db",
		Storage:   StorageSQLite,
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load builds the configuration from defaults, the optional TOML file at path,
// the optional dotenv files and finally the process environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot run with
func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("config: db_path is required for sqlite storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	d := toml.NewDecoder(file)
	d.DisallowUnknownFields()
	if err := d.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.DBPath = getEnvAsString(EnvDBPath, cfg.DBPath)
	cfg.Storage = strings.ToLower(getEnvAsString(EnvStorage, cfg.Storage))
	cfg.LogLevel = getEnvAsString(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(getEnvAsString(EnvLogFormat, cfg.LogFormat))

	if v := os.Getenv(EnvSeedDemo); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeedDemo, err)
		}
		cfg.SeedDemo = seed
	}
	return nil
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
