package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvironmentNative = "native"
	EnvironmentWeb    = "web"
)

type Config struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Environment selects the gallery strategy: "native" for hosts with a
	// durable filesystem, "web" for browser-like hosts.
	Environment   string `yaml:"environment"`
	PublicBaseURL string `yaml:"public_base_url"`

	FileStore string `yaml:"file_store"` // "local" or "r2"
	DataDir   string `yaml:"data_dir"`
	SpoolDir  string `yaml:"spool_dir"`

	R2Endpoint         string `yaml:"r2_endpoint"`
	R2Bucket           string `yaml:"r2_bucket"`
	R2Prefix           string `yaml:"r2_prefix"`
	R2AccessKeyID      string `yaml:"r2_access_key_id"`
	R2AccessKeySecret  string `yaml:"r2_access_key_secret"`
	R2URLExpiryMinutes int    `yaml:"r2_url_expiry_minutes"`

	KVDriver string `yaml:"kv_driver"` // "bolt", "sqlite" or "postgres"
	KVDSN    string `yaml:"kv_dsn"`

	CaptureQuality      int `yaml:"capture_quality"`
	HydrationLimit      int `yaml:"hydration_limit"`
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Address:             ":4000",
		Environment:         EnvironmentNative,
		PublicBaseURL:       "http://localhost:4000",
		FileStore:           "local",
		DataDir:             "./data/photos",
		SpoolDir:            "./data/spool",
		R2URLExpiryMinutes:  30,
		KVDriver:            "bolt",
		CaptureQuality:      100,
		HydrationLimit:      8,
		FetchTimeoutSeconds: 30,
	}
}

// Load reads ./.env if present, then the YAML file named by
// GALLERY_CONFIG_FILE, then environment variables. Later sources win.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("GALLERY_CONFIG_FILE")); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Address = getEnv("GALLERY_SERVER_ADDR", cfg.Address)
	if origins := splitAndClean(os.Getenv("GALLERY_ALLOWED_ORIGINS")); origins != nil {
		cfg.AllowedOrigins = origins
	}
	cfg.Environment = strings.ToLower(getEnv("GALLERY_ENVIRONMENT", cfg.Environment))
	cfg.PublicBaseURL = getEnv("GALLERY_PUBLIC_URL", cfg.PublicBaseURL)

	cfg.FileStore = strings.ToLower(getEnv("GALLERY_FILE_STORE", cfg.FileStore))
	cfg.DataDir = getEnv("GALLERY_DATA_DIR", cfg.DataDir)
	cfg.SpoolDir = getEnv("GALLERY_SPOOL_DIR", cfg.SpoolDir)

	cfg.R2Endpoint = getEnv("R2_ENDPOINT", cfg.R2Endpoint)
	cfg.R2Bucket = getEnv("R2_BUCKET", cfg.R2Bucket)
	cfg.R2Prefix = getEnv("R2_PREFIX", cfg.R2Prefix)
	cfg.R2AccessKeyID = getEnv("R2_ACCESS_KEY_ID", cfg.R2AccessKeyID)
	cfg.R2AccessKeySecret = getEnv("R2_ACCESS_KEY_SECRET", cfg.R2AccessKeySecret)

	cfg.KVDriver = strings.ToLower(getEnv("GALLERY_KV_DRIVER", cfg.KVDriver))
	cfg.KVDSN = getEnv("GALLERY_KV_DSN", cfg.KVDSN)

	var err error
	if cfg.R2URLExpiryMinutes, err = getEnvInt("R2_URL_EXPIRY_MINUTES", cfg.R2URLExpiryMinutes); err != nil {
		return Config{}, err
	}
	if cfg.CaptureQuality, err = getEnvInt("GALLERY_CAPTURE_QUALITY", cfg.CaptureQuality); err != nil {
		return Config{}, err
	}
	if cfg.HydrationLimit, err = getEnvInt("GALLERY_HYDRATION_LIMIT", cfg.HydrationLimit); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeoutSeconds, err = getEnvInt("GALLERY_FETCH_TIMEOUT", cfg.FetchTimeoutSeconds); err != nil {
		return Config{}, err
	}

	if cfg.KVDSN == "" && cfg.KVDriver != "postgres" {
		cfg.KVDSN = filepath.Join(filepath.Dir(filepath.Clean(cfg.DataDir)), "index."+cfg.KVDriver)
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerated fields and ranges.
func (c Config) Validate() error {
	var errs []error
	switch c.Environment {
	case EnvironmentNative, EnvironmentWeb:
	default:
		errs = append(errs, fmt.Errorf("environment must be %q or %q, got %q", EnvironmentNative, EnvironmentWeb, c.Environment))
	}
	switch c.FileStore {
	case "local":
	case "r2":
		if c.R2Bucket == "" {
			errs = append(errs, errors.New("r2 file store needs R2_BUCKET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown file store %q", c.FileStore))
	}
	switch c.KVDriver {
	case "bolt", "sqlite":
	case "postgres":
		if c.KVDSN == "" {
			errs = append(errs, errors.New("postgres kv driver needs GALLERY_KV_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kv driver %q", c.KVDriver))
	}
	if c.CaptureQuality < 1 || c.CaptureQuality > 100 {
		errs = append(errs, fmt.Errorf("capture quality must be within 1..100, got %d", c.CaptureQuality))
	}
	return errors.Join(errs...)
}

// Durable reports whether the configured environment has durable file access.
func (c Config) Durable() bool {
	return c.Environment == EnvironmentNative
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitAndClean(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
