package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rx3lixir/ambient/internal/dsp"
	"github.com/rx3lixir/ambient/internal/generator"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralParams GeneralParams
	HTTPParams    HTTPParams
	CatalogParams CatalogParams
	CacheParams   CacheParams
	S3Params      S3Params
	Presets       []generator.Preset
}

type GeneralParams struct {
	Env        string
	LogLevel   string
	OutputDir  string
	SampleRate int
	Seed       uint64
}

type HTTPParams struct {
	Address   string
	SecretKey string
	TokenTTL  time.Duration
}

type CatalogParams struct {
	Username string
	Password string
	Name     string
	Port     int
	Host     string
	Timeout  int
}

type CacheParams struct {
	Address  string
	Password string
	TTL      time.Duration
}

type S3Params struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	URLExpiry       time.Duration
}

type ConfigManager struct {
	v      *viper.Viper
	config *Config
}

// NewConfigManager loads configuration from an optional yaml file and
// AMBIENT_* environment variables on top of built-in defaults. An empty
// configPath skips the file.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("AMBIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cm := &ConfigManager{v: v}

	if err := cm.loadConfig(); err != nil {
		return nil, err
	}

	return cm, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general_params.env", "dev")
	v.SetDefault("general_params.log_level", "info")
	v.SetDefault("general_params.output_dir", "public/ambient")
	v.SetDefault("general_params.sample_rate", generator.DefaultSampleRate)
	v.SetDefault("general_params.seed", 0)

	v.SetDefault("http_params.address", ":8080")
	v.SetDefault("http_params.token_ttl", "15m")

	v.SetDefault("catalog_params.db_port", 5432)
	v.SetDefault("catalog_params.db_timeout", 3)

	v.SetDefault("cache_params.ttl_seconds", 3600)

	v.SetDefault("s3_params.url_expiry", "1h")
}

// Extracting data from viper into Config
func (cm *ConfigManager) loadConfig() error {
	cm.config = &Config{
		GeneralParams: GeneralParams{
			Env:        cm.v.GetString("general_params.env"),
			LogLevel:   cm.v.GetString("general_params.log_level"),
			OutputDir:  cm.v.GetString("general_params.output_dir"),
			SampleRate: cm.v.GetInt("general_params.sample_rate"),
			Seed:       cm.v.GetUint64("general_params.seed"),
		},
		HTTPParams: HTTPParams{
			Address:   cm.v.GetString("http_params.address"),
			SecretKey: cm.v.GetString("http_params.secret_key"),
			TokenTTL:  cm.v.GetDuration("http_params.token_ttl"),
		},
		CatalogParams: CatalogParams{
			Username: cm.v.GetString("catalog_params.db_username"),
			Password: cm.v.GetString("catalog_params.db_password"),
			Name:     cm.v.GetString("catalog_params.db_name"),
			Port:     cm.v.GetInt("catalog_params.db_port"),
			Host:     cm.v.GetString("catalog_params.db_host"),
			Timeout:  cm.v.GetInt("catalog_params.db_timeout"),
		},
		CacheParams: CacheParams{
			Address:  cm.v.GetString("cache_params.address"),
			Password: cm.v.GetString("cache_params.password"),
			TTL:      time.Duration(cm.v.GetInt("cache_params.ttl_seconds")) * time.Second,
		},
		S3Params: S3Params{
			Endpoint:        cm.v.GetString("s3_params.endpoint"),
			AccessKeyID:     cm.v.GetString("s3_params.access_key_id"),
			SecretAccessKey: cm.v.GetString("s3_params.secret_access_key"),
			UseSSL:          cm.v.GetBool("s3_params.use_ssl"),
			BucketName:      cm.v.GetString("s3_params.bucket_name"),
			URLExpiry:       cm.v.GetDuration("s3_params.url_expiry"),
		},
	}

	presets, err := cm.loadPresets()
	if err != nil {
		return err
	}
	cm.config.Presets = presets

	return nil
}

// Presets come from the "presets" list; without one the rain and sea
// defaults are used at the configured sample rate.
func (cm *ConfigManager) loadPresets() ([]generator.Preset, error) {
	var presets []generator.Preset

	if cm.v.IsSet("presets") {
		if err := cm.v.UnmarshalKey("presets", &presets); err != nil {
			return nil, fmt.Errorf("failed to decode presets: %w", err)
		}
	} else {
		presets = generator.DefaultPresets()
		for i := range presets {
			presets[i].SampleRate = cm.config.GeneralParams.SampleRate
		}
	}

	for i := range presets {
		if presets[i].SampleRate == 0 {
			presets[i].SampleRate = cm.config.GeneralParams.SampleRate
		}
		if presets[i].Filter != "" {
			kind, err := dsp.ParseFilterKind(string(presets[i].Filter))
			if err != nil {
				return nil, fmt.Errorf("preset %q: %w", presets[i].Name, err)
			}
			presets[i].Filter = kind
		}
	}

	return presets, nil
}

// Geting config instance
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// Compiling a string to connect to the catalog db
func (db *CatalogParams) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=%d&sslmode=disable",
		db.Username,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Timeout,
	)
}

// Enabled reports whether a catalog database is configured.
func (db *CatalogParams) Enabled() bool {
	return db.Host != ""
}

func (c *CacheParams) Enabled() bool {
	return c.Address != ""
}

func (s *S3Params) Enabled() bool {
	return s.Endpoint != ""
}

func (c *Config) Validate() error {
	// Checking out enviroment variable
	switch c.GeneralParams.Env {
	case "dev", "prod", "test":
	default:
		return fmt.Errorf("env parameter is invalid: %s. try dev/prod/test instead", c.GeneralParams.Env)
	}

	switch strings.ToLower(c.GeneralParams.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level parameter is invalid: %s. try debug/info/warn/error instead", c.GeneralParams.LogLevel)
	}

	if c.GeneralParams.OutputDir == "" {
		return fmt.Errorf("parameter output_dir is required")
	}
	if c.GeneralParams.SampleRate <= 0 {
		return fmt.Errorf("parameter sample_rate must be positive")
	}

	// Checking presets
	if len(c.Presets) == 0 {
		return fmt.Errorf("at least one preset is required")
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("preset %s is defined more than once", p.Name)
		}
		seen[p.Name] = true
	}

	// Checking catalog params
	if c.CatalogParams.Enabled() {
		if c.CatalogParams.Username == "" {
			return fmt.Errorf("catalog: username is required")
		}
		if c.CatalogParams.Name == "" {
			return fmt.Errorf("catalog: db name is required")
		}
		if c.CatalogParams.Port <= 0 || c.CatalogParams.Port > 65535 {
			return fmt.Errorf("catalog: port is invalid")
		}
	}

	// Checking S3 params
	if c.S3Params.Enabled() {
		if c.S3Params.AccessKeyID == "" {
			return fmt.Errorf("S3 access_key id is required")
		}
		if c.S3Params.SecretAccessKey == "" {
			return fmt.Errorf("S3 secret_access_key is required")
		}
		if c.S3Params.BucketName == "" {
			return fmt.Errorf("S3 bucket name is required")
		}
	}

	return nil
}

// ValidateServer adds the checks only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}

	// Checking http address
	if c.HTTPParams.Address == "" {
		return fmt.Errorf("parameter http_params.address is requred")
	}
	if _, port, err := net.SplitHostPort(c.HTTPParams.Address); err != nil {
		return fmt.Errorf("http address is invalid: %w", err)
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("http port must be between 0 and 65535")
	}

	// Checking secret key
	if c.HTTPParams.SecretKey == "" {
		return fmt.Errorf("parameter secret_key is required")
	}
	if c.HTTPParams.TokenTTL <= 0 {
		return fmt.Errorf("parameter token_ttl must be positive")
	}

	return nil
}
