package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidDefaultFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Render.DefaultFormat = "gif"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	expected := `render.default_format must be png, svg or eps, got "gif"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_CacheDrivers(t *testing.T) {
	for _, driver := range []string{"", "valkey", "redis"} {
		t.Run("driver="+driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache.Driver = driver
			cfg.Cache.Addrs = []string{"localhost:6379"}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for driver %q: %v", driver, err)
			}
		})
	}
}

func TestValidate_UnknownCacheDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = "memcached"
	cfg.Cache.Addrs = []string{"localhost:11211"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestValidate_MissingCacheAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = "valkey"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing cache addrs")
	}
}

func TestValidate_OversizedDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Render.DefaultHeightMM = 201

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for oversized default height")
	}

	cfg = validConfig()
	cfg.Render.DefaultWidthMM = 11
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for oversized default width")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.MaxBodyBytes != 1<<20 {
		t.Errorf("expected MaxBodyBytes=1MiB, got %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Render.DefaultHeightMM != 32 || cfg.Render.DefaultWidthMM != 2 {
		t.Errorf("unexpected render defaults: %+v", cfg.Render)
	}
	if cfg.Render.DefaultFormat != "png" {
		t.Errorf("expected DefaultFormat=png, got %q", cfg.Render.DefaultFormat)
	}
	if !cfg.Render.FallbackEnabled() {
		t.Error("fallback should be enabled by default")
	}
	if cfg.Batch.WorkDir != filepath.Join(os.TempDir(), "barcodex") {
		t.Errorf("unexpected WorkDir %q", cfg.Batch.WorkDir)
	}
	if cfg.Batch.Concurrency != runtime.NumCPU()*2 {
		t.Errorf("expected Concurrency=%d, got %d", runtime.NumCPU()*2, cfg.Batch.Concurrency)
	}
	if cfg.Batch.MaxCodes != 1000 {
		t.Errorf("expected MaxCodes=1000, got %d", cfg.Batch.MaxCodes)
	}
	if cfg.Cache.KeyPrefix != "barcodex:" {
		t.Errorf("expected KeyPrefix='barcodex:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected TTLSec=3600, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Cache.Enabled() {
		t.Error("cache should be disabled without a driver")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	off := false
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30},
		Render: RenderConfig{DefaultFormat: "svg", Fallback: &off},
		Batch:  BatchConfig{WorkDir: "/data/work", Concurrency: 3},
		Cache:  CacheConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Render.DefaultFormat != "svg" {
		t.Errorf("expected DefaultFormat=svg, got %q", cfg.Render.DefaultFormat)
	}
	if cfg.Render.FallbackEnabled() {
		t.Error("explicit fallback=false must be kept")
	}
	if cfg.Batch.WorkDir != "/data/work" || cfg.Batch.Concurrency != 3 {
		t.Errorf("batch overridden: %+v", cfg.Batch)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BARCODEX_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("port: ${BARCODEX_TEST_PORT}\nlevel: ${BARCODEX_TEST_UNSET:-info}\nkey: ${BARCODEX_TEST_UNSET}")))
	want := "port: 9090\nlevel: info\nkey: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Cache.Enabled() {
		t.Error("local config should run without a cache")
	}
}

func TestLoad_MissingEnv(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
