package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, raw string) *Config {
	t.Helper()
	v := viper.New()
	v.SetConfigType("json")
	require.NoError(t, v.ReadConfig(strings.NewReader(raw)))
	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "test-data", cfg.DatasetName)
	assert.Equal(t, 10, cfg.PreviewRows)
	assert.Equal(t, 10000, cfg.MaxRows)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "local", cfg.Artifacts.Driver)
	assert.Equal(t, "postgresql", cfg.Database.Provider)
	assert.Equal(t, "DATABASE_URL", cfg.Database.URLEnv)
	assert.Equal(t, 60*time.Second, cfg.Overlay.Timeout)
	assert.False(t, cfg.OverlayEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	cfg := load(t, `{
		"dataset_name": "customers",
		"max_rows": 500,
		"preview_rows": 25,
		"overlay": {"url": "http://localhost:9000/enhance", "timeout": "5s"},
		"artifacts": {"driver": "s3", "s3": {"bucket": "exports", "use_path_style": true}},
		"database": {"provider": "sqlite"}
	}`)

	assert.Equal(t, "customers", cfg.DatasetName)
	assert.Equal(t, 500, cfg.MaxRows)
	assert.Equal(t, 25, cfg.PreviewRows)
	assert.Equal(t, 5*time.Second, cfg.Overlay.Timeout)
	assert.True(t, cfg.OverlayEnabled())
	assert.Equal(t, "exports", cfg.Artifacts.S3.Bucket)
	assert.True(t, cfg.Artifacts.S3.UsePathStyle)
	assert.Equal(t, 15*time.Minute, cfg.Artifacts.S3.PresignTTL)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"provider", func(c *Config) { c.Database.Provider = "oracle" }, "unsupported database provider"},
		{"max rows", func(c *Config) { c.MaxRows = -1 }, "max_rows"},
		{"preview rows", func(c *Config) { c.PreviewRows = 20000 }, "preview_rows"},
		{"storage", func(c *Config) { c.Storage.Driver = "mongo" }, "unsupported storage driver"},
		{"artifacts", func(c *Config) { c.Artifacts.Driver = "ftp" }, "unsupported artifacts driver"},
		{"bucket", func(c *Config) { c.Artifacts.Driver = "s3" }, "bucket"},
		{"export path", func(c *Config) { c.ExportPath = "" }, "export_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvironmentLookups(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.URLEnv = "SEEDFORGE_TEST_DB"
	cfg.Storage.RedisURLEnv = "SEEDFORGE_TEST_REDIS"
	cfg.Overlay.APIKeyEnv = "SEEDFORGE_TEST_KEY"

	_, err := cfg.GetDatabaseURL()
	assert.Error(t, err)
	_, err = cfg.GetRedisURL()
	assert.Error(t, err)

	t.Setenv("SEEDFORGE_TEST_DB", "file::memory:")
	t.Setenv("SEEDFORGE_TEST_REDIS", "redis://localhost:6379/0")
	t.Setenv("SEEDFORGE_TEST_KEY", "secret")

	url, err := cfg.GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "file::memory:", url)
	url, err = cfg.GetRedisURL()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", url)
	assert.Equal(t, "secret", cfg.OverlayAPIKey())
}

func TestInitializeProject(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.False(t, IsInitialized())
	require.NoError(t, InitializeProject(""))
	assert.True(t, IsInitialized())

	for _, d := range []string{"exports", "schemas"} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	v := viper.New()
	v.SetConfigFile(FileName)
	require.NoError(t, v.ReadInConfig())
	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Error(t, InitializeProject("sqlite"))
}
