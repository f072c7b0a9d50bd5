package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
)

// Config holds the barcodex service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Render  RenderConfig  `yaml:"render"`
	Batch   BatchConfig   `yaml:"batch"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty = auth disabled
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// RenderConfig holds the options applied when a request omits them.
type RenderConfig struct {
	DefaultHeightMM float64 `yaml:"default_height_mm"`
	DefaultWidthMM  float64 `yaml:"default_width_mm"`
	DefaultFormat   string  `yaml:"default_format"` // png, svg, eps
	Fallback        *bool   `yaml:"fallback"`       // generic Code 128 PNG fallback (default: true)
}

// FallbackEnabled reports whether the PNG fallback stage is wired.
func (r RenderConfig) FallbackEnabled() bool {
	return r.Fallback == nil || *r.Fallback
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	WorkDir     string `yaml:"work_dir"`
	Concurrency int    `yaml:"concurrency"`
	MaxCodes    int    `yaml:"max_codes"`
}

// CacheConfig holds preview cache settings. An empty driver disables the cache.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // "", valkey, redis
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a preview cache is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != "" }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Render.DefaultHeightMM <= 0 {
		c.Render.DefaultHeightMM = 32
	}
	if c.Render.DefaultWidthMM <= 0 {
		c.Render.DefaultWidthMM = 2
	}
	if c.Render.DefaultFormat == "" {
		c.Render.DefaultFormat = "png"
	}
	if c.Batch.WorkDir == "" {
		c.Batch.WorkDir = filepath.Join(os.TempDir(), "barcodex")
	}
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = runtime.NumCPU() * 2
	}
	if c.Batch.MaxCodes <= 0 {
		c.Batch.MaxCodes = 1000
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "barcodex:"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Render.DefaultFormat {
	case "png", "svg", "eps":
		// ok
	default:
		return fmt.Errorf("render.default_format must be png, svg or eps, got %q", c.Render.DefaultFormat)
	}
	if c.Render.DefaultHeightMM > render.MaxHeightMM || c.Render.DefaultWidthMM > render.MaxWidthMM {
		return fmt.Errorf("render default dimensions must not exceed %v x %v mm", render.MaxHeightMM, render.MaxWidthMM)
	}
	switch c.Cache.Driver {
	case "":
		// cache disabled
	case "valkey", "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when cache.driver is %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"valkey\" or \"redis\", got %q", c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
