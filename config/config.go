package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName        = "booking-client"
	EnvFileName    = "config.env"
	ConfigFileName = "config.yaml"
	DBFileName     = "booking-client.db"
)

// Store backends for saved preferences.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	APIURL      string        `yaml:"api_url"`
	Store       string        `yaml:"store"`
	DBPath      string        `yaml:"db_path"`
	TokenKey    string        `yaml:"token_key"`
	RedisAddr   string        `yaml:"redis_addr"`
	Timeout     time.Duration `yaml:"timeout"`
	SuggestRate float64       `yaml:"suggest_rate"`
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
}

// Dir is the per-user config directory, or "" when it cannot be determined.
func Dir() string {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configBase, AppName)
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	dir := Dir()
	if dir == "" {
		return
	}
	_ = godotenv.Load(filepath.Join(dir, EnvFileName))
}

func Default() Config {
	cfg := Config{
		APIURL:      "http://localhost:8000/",
		Store:       StoreSQLite,
		DBPath:      DBFileName,
		RedisAddr:   "localhost:6379",
		Timeout:     30 * time.Second,
		SuggestRate: 4,
		LogLevel:    "info",
	}
	if dir := Dir(); dir != "" {
		cfg.DBPath = filepath.Join(dir, DBFileName)
	}
	return cfg
}

// Load builds the config from defaults, then the YAML file named by
// BOOKING_CONFIG (or config.yaml in Dir), then BOOKING_* environment
// variables. A missing YAML file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("BOOKING_CONFIG")
	explicit := path != ""
	if !explicit && Dir() != "" {
		path = filepath.Join(Dir(), ConfigFileName)
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strVars := map[string]*string{
		"BOOKING_API_URL":    &cfg.APIURL,
		"BOOKING_STORE":      &cfg.Store,
		"BOOKING_DB_PATH":    &cfg.DBPath,
		"BOOKING_TOKEN_KEY":  &cfg.TokenKey,
		"BOOKING_REDIS_ADDR": &cfg.RedisAddr,
		"BOOKING_LOG_LEVEL":  &cfg.LogLevel,
		"BOOKING_LOG_FILE":   &cfg.LogFile,
	}
	for name, target := range strVars {
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	if v := os.Getenv("BOOKING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BOOKING_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("BOOKING_SUGGEST_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid BOOKING_SUGGEST_RATE: %w", err)
		}
		cfg.SuggestRate = r
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
