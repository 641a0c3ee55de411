package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rx3lixir/ambient/internal/dsp"
	"github.com/rx3lixir/ambient/internal/generator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cm, err := NewConfigManager("")
	if err != nil {
		t.Fatalf("NewConfigManager error: %v", err)
	}
	c := cm.GetConfig()

	if c.GeneralParams.Env != "dev" {
		t.Errorf("Env = %q, want dev", c.GeneralParams.Env)
	}
	if c.GeneralParams.OutputDir != "public/ambient" {
		t.Errorf("OutputDir = %q, want public/ambient", c.GeneralParams.OutputDir)
	}
	if c.GeneralParams.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", c.GeneralParams.SampleRate)
	}
	if c.GeneralParams.Seed != 0 {
		t.Errorf("Seed = %d, want 0", c.GeneralParams.Seed)
	}
	if c.HTTPParams.Address != ":8080" {
		t.Errorf("Address = %q, want :8080", c.HTTPParams.Address)
	}
	if c.HTTPParams.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %v, want 15m", c.HTTPParams.TokenTTL)
	}
	if c.CacheParams.TTL != time.Hour {
		t.Errorf("cache TTL = %v, want 1h", c.CacheParams.TTL)
	}
	if c.CatalogParams.Enabled() || c.CacheParams.Enabled() || c.S3Params.Enabled() {
		t.Error("optional subsystems should be disabled by default")
	}

	want := generator.DefaultPresets()
	if len(c.Presets) != len(want) {
		t.Fatalf("got %d presets, want %d", len(c.Presets), len(want))
	}
	for i := range want {
		if c.Presets[i] != want[i] {
			t.Errorf("preset[%d] = %+v, want %+v", i, c.Presets[i], want[i])
		}
	}

	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
general_params:
  env: test
  output_dir: /tmp/ambient
  sample_rate: 22050
  seed: 7
http_params:
  address: 127.0.0.1:9000
  secret_key: s3cret
  token_ttl: 5m
s3_params:
  endpoint: localhost:9001
  access_key_id: minio
  secret_access_key: minio123
  bucket_name: ambient
presets:
  - name: drizzle
    duration_seconds: 3
    amplitude: 0.2
    filter: HighPass
    cutoff_hz: 900
    normalize_target: 0.3
  - name: harbor
    duration_seconds: 4.5
    sample_rate: 48000
    amplitude: 0.25
    filter: lowpass
    cutoff_hz: 400
    normalize_target: 0.2
    output_path: /tmp/harbor.wav
`)

	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatalf("NewConfigManager error: %v", err)
	}
	c := cm.GetConfig()

	if c.GeneralParams.Env != "test" || c.GeneralParams.OutputDir != "/tmp/ambient" {
		t.Errorf("general params = %+v", c.GeneralParams)
	}
	if c.GeneralParams.SampleRate != 22050 || c.GeneralParams.Seed != 7 {
		t.Errorf("sample rate/seed = %d/%d", c.GeneralParams.SampleRate, c.GeneralParams.Seed)
	}
	if c.HTTPParams.TokenTTL != 5*time.Minute || c.HTTPParams.SecretKey != "s3cret" {
		t.Errorf("http params = %+v", c.HTTPParams)
	}
	if !c.S3Params.Enabled() || c.S3Params.URLExpiry != time.Hour {
		t.Errorf("s3 params = %+v", c.S3Params)
	}

	if len(c.Presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(c.Presets))
	}
	drizzle := c.Presets[0]
	if drizzle.Name != "drizzle" || drizzle.Filter != dsp.FilterHighpass || drizzle.SampleRate != 22050 ||
		drizzle.DurationSeconds != 3 || drizzle.CutoffHz != 900 {
		t.Errorf("drizzle = %+v", drizzle)
	}
	harbor := c.Presets[1]
	if harbor.SampleRate != 48000 || harbor.DurationSeconds != 4.5 || harbor.OutputPath != "/tmp/harbor.wav" {
		t.Errorf("harbor = %+v", harbor)
	}

	if err := c.ValidateServer(); err != nil {
		t.Errorf("ValidateServer error: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AMBIENT_GENERAL_PARAMS_OUTPUT_DIR", "/srv/ambient")
	t.Setenv("AMBIENT_GENERAL_PARAMS_SAMPLE_RATE", "48000")
	t.Setenv("AMBIENT_HTTP_PARAMS_SECRET_KEY", "from-env")
	t.Setenv("AMBIENT_CACHE_PARAMS_ADDRESS", "localhost:6379")

	cm, err := NewConfigManager("")
	if err != nil {
		t.Fatal(err)
	}
	c := cm.GetConfig()

	if c.GeneralParams.OutputDir != "/srv/ambient" {
		t.Errorf("OutputDir = %q, want env override", c.GeneralParams.OutputDir)
	}
	if c.GeneralParams.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", c.GeneralParams.SampleRate)
	}
	for _, p := range c.Presets {
		if p.SampleRate != 48000 {
			t.Errorf("preset %s sample rate = %d, want 48000", p.Name, p.SampleRate)
		}
	}
	if c.HTTPParams.SecretKey != "from-env" {
		t.Errorf("SecretKey = %q, want env override", c.HTTPParams.SecretKey)
	}
	if !c.CacheParams.Enabled() {
		t.Error("cache should be enabled by env")
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := NewConfigManager(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestUnknownFilterInFile(t *testing.T) {
	path := writeConfig(t, `
presets:
  - name: hum
    duration_seconds: 1
    amplitude: 0.2
    filter: bandpass
    cutoff_hz: 100
    normalize_target: 0.3
`)
	if _, err := NewConfigManager(path); err == nil {
		t.Error("expected error for unknown filter kind")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cm, err := NewConfigManager("")
		if err != nil {
			t.Fatal(err)
		}
		return cm.GetConfig()
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad env", func(c *Config) { c.GeneralParams.Env = "staging" }},
		{"bad log level", func(c *Config) { c.GeneralParams.LogLevel = "verbose" }},
		{"empty output dir", func(c *Config) { c.GeneralParams.OutputDir = "" }},
		{"zero sample rate", func(c *Config) { c.GeneralParams.SampleRate = 0 }},
		{"no presets", func(c *Config) { c.Presets = nil }},
		{"duplicate preset", func(c *Config) { c.Presets = append(c.Presets, c.Presets[0]) }},
		{"invalid preset", func(c *Config) { c.Presets[0].CutoffHz = 0 }},
		{"catalog without user", func(c *Config) { c.CatalogParams.Host = "db"; c.CatalogParams.Name = "ambient" }},
		{"s3 without bucket", func(c *Config) {
			c.S3Params.Endpoint = "minio:9000"
			c.S3Params.AccessKeyID = "a"
			c.S3Params.SecretAccessKey = "b"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	cm, err := NewConfigManager("")
	if err != nil {
		t.Fatal(err)
	}
	c := cm.GetConfig()

	if err := c.ValidateServer(); err == nil {
		t.Error("expected error without secret key")
	}

	c.HTTPParams.SecretKey = "key"
	if err := c.ValidateServer(); err != nil {
		t.Errorf("ValidateServer error: %v", err)
	}

	c.HTTPParams.Address = "no-port"
	if err := c.ValidateServer(); err == nil {
		t.Error("expected error for address without port")
	}
}

func TestGetDSN(t *testing.T) {
	p := CatalogParams{Username: "u", Password: "p", Host: "db", Port: 5432, Name: "ambient", Timeout: 3}
	want := "postgres://u:p@db:5432/ambient?connect_timeout=3&sslmode=disable"
	if got := p.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
