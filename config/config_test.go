package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "5002", cfg.App.Port)
	assert.Equal(t, "/rubi-price-ticket", cfg.App.BasePath)
	assert.Equal(t, "fs", cfg.Output.Backend)
	assert.Equal(t, "generated_tickets", cfg.Output.Dir)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "pricetag_sid", cfg.Session.CookieName)
	assert.Equal(t, "products.json", cfg.Data.ProductsFile)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
[app]
port = "8080"
base_path = "/tickets"

[output]
backend = "s3"

[output.s3]
bucket = "sheets"
endpoint = "minio:9000"

[session]
backend = "redis"
ttl = "2h"

[render]
name_overflow = "ellipsis"
price_center = "legacy"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "/tickets", cfg.App.BasePath)
	assert.Equal(t, "s3", cfg.Output.Backend)
	assert.Equal(t, "sheets", cfg.Output.S3.Bucket)
	assert.True(t, cfg.Output.S3.UsePathStyle)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "ellipsis", cfg.Render.NameOverflow)
	assert.Equal(t, "legacy", cfg.Render.PriceCenter)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[output]\ndir = \"from-file\"\n")
	t.Setenv("PRICETAG_OUTPUT_DIR", "from-env")
	t.Setenv("PRICETAG_APP_PORT", "9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, "9999", cfg.App.Port)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"unknown output backend": "[output]\nbackend = \"ftp\"\n",
		"s3 without bucket":      "[output]\nbackend = \"s3\"\n",
		"unknown session store":  "[session]\nbackend = \"file\"\n",
		"bad overflow":           "[render]\nname_overflow = \"shrink\"\n",
		"bad centring":           "[render]\nprice_center = \"top\"\n",
	}
	for name, content := range cases {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, name)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
