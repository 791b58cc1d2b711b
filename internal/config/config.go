// Package config loads service settings from the environment, optionally
// layered over a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Pathstore connection
	PathstoreURL    string `yaml:"pathstore_url"`
	PathstoreAPIKey string `yaml:"pathstore_api_key"`
	PathstorePrefix string `yaml:"pathstore_prefix"`

	// Auth
	DocforgeAPIKey string `yaml:"docforge_api_key"`

	// Signature table
	HostOrganization   string   `yaml:"host_organization"`
	DefaultCategory    string   `yaml:"default_category"`
	RequiredCategories []string `yaml:"required_categories"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Assets
	MaxConcurrentFetch int           `yaml:"max_concurrent_fetch"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout"`
	MaxAssetBytes      int64         `yaml:"max_asset_bytes"`
	AssetDir           string        `yaml:"asset_dir"`

	// Content limits
	MaxContentDepth int   `yaml:"max_content_depth"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF import
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		PathstoreURL:         "http://localhost:8080",
		PathstorePrefix:      "docforge/records",
		DefaultCategory:      "Approvers",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxConcurrentFetch:   4,
		FetchTimeout:         10 * time.Second,
		MaxAssetBytes:        10 << 20,
		MaxContentDepth:      32,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		PDFFallbackPdftotext: true,
	}
}

// Load starts from Defaults, applies the YAML file named by DOCFORGE_CONFIG
// if set, then applies environment variables. Environment wins.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DOCFORGE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.PathstoreURL = envOr("PATHSTORE_URL", cfg.PathstoreURL)
	cfg.PathstoreAPIKey = envOr("PATHSTORE_API_KEY", cfg.PathstoreAPIKey)
	cfg.PathstorePrefix = envOr("PATHSTORE_PREFIX", cfg.PathstorePrefix)

	cfg.DocforgeAPIKey = envOr("DOCFORGE_API_KEY", cfg.DocforgeAPIKey)

	cfg.HostOrganization = envOr("HOST_ORGANIZATION", cfg.HostOrganization)
	cfg.DefaultCategory = envOr("DEFAULT_CATEGORY", cfg.DefaultCategory)
	cfg.RequiredCategories = envList("REQUIRED_CATEGORIES", cfg.RequiredCategories)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)

	cfg.MaxConcurrentFetch = envInt("MAX_CONCURRENT_FETCH", cfg.MaxConcurrentFetch)
	cfg.FetchTimeout = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.MaxAssetBytes = envInt64("MAX_ASSET_BYTES", cfg.MaxAssetBytes)
	cfg.AssetDir = envOr("ASSET_DIR", cfg.AssetDir)

	cfg.MaxContentDepth = envInt("MAX_CONTENT_DEPTH", cfg.MaxContentDepth)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// fillDefaults replaces non-positive limits with the built-in values.
func (c *Config) fillDefaults() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxConcurrentFetch <= 0 {
		c.MaxConcurrentFetch = d.MaxConcurrentFetch
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.MaxAssetBytes <= 0 {
		c.MaxAssetBytes = d.MaxAssetBytes
	}
	if c.MaxContentDepth <= 0 {
		c.MaxContentDepth = d.MaxContentDepth
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
}

// Validate checks the keys the server cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.PathstoreURL == "" {
		errs = append(errs, errors.New("PATHSTORE_URL is required"))
	}
	if c.PathstoreAPIKey == "" {
		errs = append(errs, errors.New("PATHSTORE_API_KEY is required"))
	}
	if c.DocforgeAPIKey == "" {
		errs = append(errs, errors.New("DOCFORGE_API_KEY is required"))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT %q is not a number", c.Port))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated value, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
