package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RedisConfig holds the Redis connection settings for the redis backend
type RedisConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	// Backend is one of "file" (default), "memory" or "redis"
	Backend string `yaml:"backend,omitempty"`

	// Dir is the data directory of the file backend. A leading ~ is expanded.
	Dir string `yaml:"dir,omitempty"`

	Redis RedisConfig `yaml:"redis,omitempty"`
}

type Config struct {
	// Currency is an ISO 4217 code. Empty means detect from the system locale.
	Currency string `yaml:"currency,omitempty"`

	// LogLevel is debug, info, warn or error
	LogLevel string `yaml:"log_level,omitempty"`

	// Categories are offered in addition to DefaultCategories
	Categories []string `yaml:"categories,omitempty"`

	Storage StorageConfig `yaml:"storage,omitempty"`
}

// DefaultDataDir returns ~/.subtrack, or .subtrack if the home directory is unknown
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subtrack"
	}
	return filepath.Join(home, ".subtrack")
}

// DefaultConfigPath returns the default config file path (~/.subtrack/config.yaml)
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// NewDefaultConfig returns the configuration used when no config file exists
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultDataDir()
	}
	c.Storage.Dir = ExpandHome(c.Storage.Dir)
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Storage.Redis.KeyPrefix == "" {
		c.Storage.Redis.KeyPrefix = defaultRedisKeyPrefix
	}
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigOrDefault loads path if it exists. A missing file gives the defaults,
// unless the path was given explicitly by the user.
func LoadConfigOrDefault(path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return NewDefaultConfig(), nil
	}
	return LoadConfig(path)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from SUBTRACK_* variables. lookup is normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("SUBTRACK_STORAGE"); ok && v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("SUBTRACK_DATA_DIR"); ok && v != "" {
		c.Storage.Dir = ExpandHome(v)
	}
	if v, ok := lookup("SUBTRACK_REDIS_ADDR"); ok && v != "" {
		c.Storage.Redis.Addr = v
	}
	if v, ok := lookup("SUBTRACK_REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := lookup("SUBTRACK_REDIS_DB"); ok {
		if db, err := strconv.Atoi(v); err == nil {
			c.Storage.Redis.DB = db
		}
	}
	if v, ok := lookup("SUBTRACK_CURRENCY"); ok && v != "" {
		c.Currency = v
	}
	if v, ok := lookup("SUBTRACK_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	copied := *c
	copied.Categories = slices.Clone(c.Categories)
	return &copied
}

// AllCategories returns the defaults followed by configured extras, without duplicates
func (c *Config) AllCategories() []string {
	all := slices.Clone(DefaultCategories)
	if c == nil {
		return all
	}
	for _, cat := range c.Categories {
		if NormalizeCategory(cat, all) == cat && !slices.Contains(all, cat) {
			all = append(all, cat)
		}
	}
	return all
}

// GenerateConfigTemplate creates a config that lists every category in use that
// is not already a default, so it can be edited by hand. base should be the
// config as read from file, before env and flag overrides. The Redis password is
// never written; it belongs in SUBTRACK_REDIS_PASSWORD or .env.
func GenerateConfigTemplate(subs []Subscription, base *Config) *Config {
	cfg := NewDefaultConfig()
	if base != nil {
		cfg = base.Clone()
	}
	cfg.Storage.Redis.Password = ""
	for _, sub := range subs {
		if sub.Category == "" {
			continue
		}
		if NormalizeCategory(sub.Category, cfg.Categories) != sub.Category {
			continue // differs only in case from a known one
		}
		if slices.Contains(DefaultCategories, sub.Category) || slices.Contains(cfg.Categories, sub.Category) {
			continue
		}
		cfg.Categories = append(cfg.Categories, sub.Category)
	}
	return cfg
}
