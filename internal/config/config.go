package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	instance *Config
	once     sync.Once
)

const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultTimeout  = 30 * time.Second
	DefaultCrop     = "Wheat"
	DefaultLocation = "Punjab, India"
)

// Config holds everything the CLI and the companion server need
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`
	Storage struct {
		Driver    string `yaml:"driver"` // file, redis, mysql, memory
		Path      string `yaml:"path"`
		Namespace string `yaml:"namespace"`
	} `yaml:"storage"`
	Redis    RedisConfig `yaml:"redis"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Defaults struct {
		Crop     string `yaml:"crop"`
		Location string `yaml:"location"`
	} `yaml:"defaults"`
}

// Load reads the YAML file at configPath (a missing file means defaults),
// then applies .env and environment overrides. Only the first call does any work.
func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = build(configPath)
	})
	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func build(configPath string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = DefaultBaseURL
	cfg.API.Timeout = DefaultTimeout
	cfg.Storage.Driver = "file"
	cfg.Storage.Path = DefaultStatePath()
	cfg.Storage.Namespace = "default"
	cfg.Redis = RedisConfig{Addr: "localhost:6379"}
	cfg.Logging.Level = "info"
	cfg.Server.Addr = ":8080"
	cfg.Defaults.Crop = DefaultCrop
	cfg.Defaults.Location = DefaultLocation
	return cfg
}

// DefaultStatePath is ~/.cropsense/state.json, or ./.cropsense/state.json without a home directory
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cropsense", "state.json")
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CROPSENSE_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CROPSENSE_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CROPSENSE_API_TIMEOUT: %s", v)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("CROPSENSE_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("CROPSENSE_STATE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CROPSENSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CROPSENSE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	c.Redis = c.Redis.withEnv()
	if dsn := GetDatabaseDSN(); dsn != "" {
		c.Database.DSN = dsn
	}
	return nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path cannot be empty for the file driver")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr cannot be empty for the redis driver")
		}
	case "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn (or DATABASE_DSN) is required for the mysql driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}
