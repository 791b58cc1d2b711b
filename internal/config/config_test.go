package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"DOCFORGE_CONFIG", "PORT", "PATHSTORE_URL", "PATHSTORE_API_KEY", "PATHSTORE_PREFIX",
	"DOCFORGE_API_KEY", "HOST_ORGANIZATION", "DEFAULT_CATEGORY", "REQUIRED_CATEGORIES",
	"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_FETCH", "FETCH_TIMEOUT",
	"MAX_ASSET_BYTES", "ASSET_DIR", "MAX_CONTENT_DEPTH", "MAX_UPLOAD_BYTES", "JOB_TTL",
	"PDF_FALLBACK_PDFTOTEXT",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("REQUIRED_CATEGORIES", " Legal, ,Quality ")
	t.Setenv("MAX_QUEUE_SIZE", "-1")
	t.Setenv("MAX_CONTENT_DEPTH", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"Legal", "Quality"}, cfg.RequiredCategories)
	assert.Equal(t, 100, cfg.MaxQueueSize, "non-positive falls back to default")
	assert.Equal(t, 32, cfg.MaxContentDepth, "unparsable keeps the default")
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
host_organization: Acme
required_categories: [Legal]
job_ttl: 30m
worker_count: 2
`), 0o644))
	t.Setenv("DOCFORGE_CONFIG", path)
	t.Setenv("WORKER_COUNT", "6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "Acme", cfg.HostOrganization)
	assert.Equal(t, []string{"Legal"}, cfg.RequiredCategories)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
	assert.Equal(t, 6, cfg.WorkerCount, "env wins over file")
	assert.Equal(t, "http://localhost:8080", cfg.PathstoreURL, "unset keys keep defaults")
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCFORGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o644))
	t.Setenv("DOCFORGE_CONFIG", path)
	_, err = Load()
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "PATHSTORE_API_KEY")
	assert.ErrorContains(t, err, "DOCFORGE_API_KEY")

	cfg.PathstoreAPIKey = "p"
	cfg.DocforgeAPIKey = "d"
	assert.NoError(t, cfg.Validate())

	cfg.Port = "http"
	assert.ErrorContains(t, cfg.Validate(), "PORT")
}
