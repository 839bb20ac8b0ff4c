package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/logger"
	"github.com/spf13/viper"
)

const (
	FileName = "seedforge.config.json"

	DefaultDatasetName = "test-data"
	DefaultPreviewRows = 10
	DefaultMaxRows     = 10000
)

type Config struct {
	Version     string        `json:"version" mapstructure:"version"`
	DatasetName string        `json:"dataset_name" mapstructure:"dataset_name"`
	PreviewRows int           `json:"preview_rows" mapstructure:"preview_rows"`
	MaxRows     int           `json:"max_rows" mapstructure:"max_rows"`
	ExportPath  string        `json:"export_path" mapstructure:"export_path"`
	Log         logger.Config `json:"log" mapstructure:"log"`
	Server      Server        `json:"server" mapstructure:"server"`
	Storage     Storage       `json:"storage" mapstructure:"storage"`
	Overlay     Overlay       `json:"overlay" mapstructure:"overlay"`
	Artifacts   Artifacts     `json:"artifacts" mapstructure:"artifacts"`
	Database    Database      `json:"database" mapstructure:"database"`
}

type Server struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	BodyLimit int    `json:"body_limit" mapstructure:"body_limit"` // bytes
}

// Storage selects where saved schemas live: file, sql or redis.
type Storage struct {
	Driver      string `json:"driver" mapstructure:"driver"`
	Dir         string `json:"dir,omitempty" mapstructure:"dir"`
	Table       string `json:"table,omitempty" mapstructure:"table"`
	RedisURLEnv string `json:"redis_url_env,omitempty" mapstructure:"redis_url_env"`
	RedisKey    string `json:"redis_key,omitempty" mapstructure:"redis_key"`
}

type Overlay struct {
	URL       string        `json:"url,omitempty" mapstructure:"url"`
	APIKeyEnv string        `json:"api_key_env,omitempty" mapstructure:"api_key_env"`
	Timeout   time.Duration `json:"timeout,omitempty" mapstructure:"timeout"`
	Provider  string        `json:"provider,omitempty" mapstructure:"provider"`
	Model     string        `json:"model,omitempty" mapstructure:"model"`
}

// Artifacts configures where exported files are written: local, s3 or
// none to only return them to the caller.
type Artifacts struct {
	Driver string `json:"driver" mapstructure:"driver"`
	S3     S3     `json:"s3,omitempty" mapstructure:"s3"`
}

type S3 struct {
	Bucket       string        `json:"bucket,omitempty" mapstructure:"bucket"`
	Region       string        `json:"region,omitempty" mapstructure:"region"`
	Endpoint     string        `json:"endpoint,omitempty" mapstructure:"endpoint"`
	Prefix       string        `json:"prefix,omitempty" mapstructure:"prefix"`
	AccessKeyEnv string        `json:"access_key_env,omitempty" mapstructure:"access_key_env"`
	SecretKeyEnv string        `json:"secret_key_env,omitempty" mapstructure:"secret_key_env"`
	UsePathStyle bool          `json:"use_path_style,omitempty" mapstructure:"use_path_style"`
	PresignTTL   time.Duration `json:"presign_ttl,omitempty" mapstructure:"presign_ttl"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

// Load reads the process-wide viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultConfig is the configuration written by InitializeProject.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.DatasetName == "" {
		c.DatasetName = DefaultDatasetName
	}
	if c.PreviewRows == 0 {
		c.PreviewRows = DefaultPreviewRows
	}
	if c.MaxRows == 0 {
		c.MaxRows = DefaultMaxRows
	}
	if c.ExportPath == "" {
		c.ExportPath = "exports"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BodyLimit == 0 {
		c.Server.BodyLimit = 4 * 1024 * 1024
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "schemas"
	}
	if c.Storage.Table == "" {
		c.Storage.Table = "seedforge_schemas"
	}
	if c.Storage.RedisURLEnv == "" {
		c.Storage.RedisURLEnv = "REDIS_URL"
	}
	if c.Storage.RedisKey == "" {
		c.Storage.RedisKey = "seedforge:schemas"
	}
	if c.Overlay.APIKeyEnv == "" {
		c.Overlay.APIKeyEnv = "SEEDFORGE_OVERLAY_KEY"
	}
	if c.Overlay.Timeout == 0 {
		c.Overlay.Timeout = 60 * time.Second
	}
	if c.Artifacts.Driver == "" {
		c.Artifacts.Driver = "local"
	}
	if c.Artifacts.S3.AccessKeyEnv == "" {
		c.Artifacts.S3.AccessKeyEnv = "AWS_ACCESS_KEY_ID"
	}
	if c.Artifacts.S3.SecretKeyEnv == "" {
		c.Artifacts.S3.SecretKeyEnv = "AWS_SECRET_ACCESS_KEY"
	}
	if c.Artifacts.S3.PresignTTL == 0 {
		c.Artifacts.S3.PresignTTL = 15 * time.Minute
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
}

func (c *Config) Validate() error {
	if !database.Supported(c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: postgresql, mysql, sqlite", c.Database.Provider)
	}
	if c.MaxRows < 1 {
		return fmt.Errorf("max_rows must be positive, got %d", c.MaxRows)
	}
	if c.PreviewRows < 0 || c.PreviewRows > c.MaxRows {
		return fmt.Errorf("preview_rows must be between 0 and %d, got %d", c.MaxRows, c.PreviewRows)
	}
	if c.ExportPath == "" {
		return fmt.Errorf("export_path cannot be empty")
	}

	switch c.Storage.Driver {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir cannot be empty for the file driver")
		}
	case "sql", "redis":
	default:
		return fmt.Errorf("unsupported storage driver: %s. Supported drivers: file, sql, redis", c.Storage.Driver)
	}

	switch c.Artifacts.Driver {
	case "local", "none":
	case "s3":
		if c.Artifacts.S3.Bucket == "" {
			return fmt.Errorf("artifacts.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unsupported artifacts driver: %s. Supported drivers: local, s3, none", c.Artifacts.Driver)
	}

	if c.Overlay.Timeout < 0 {
		return fmt.Errorf("overlay.timeout cannot be negative")
	}
	return nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) GetRedisURL() (string, error) {
	url := os.Getenv(c.Storage.RedisURLEnv)
	if url == "" {
		return "", fmt.Errorf("redis URL not found in environment variable %s", c.Storage.RedisURLEnv)
	}
	return url, nil
}

// OverlayAPIKey may be empty; the collaborator decides whether that is
// acceptable.
func (c *Config) OverlayAPIKey() string {
	return os.Getenv(c.Overlay.APIKeyEnv)
}

// OverlayEnabled reports whether an enhancement collaborator URL is set.
func (c *Config) OverlayEnabled() bool {
	return strings.TrimSpace(c.Overlay.URL) != ""
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ExportPath}
	if c.Storage.Driver == "file" {
		dirs = append(dirs, c.Storage.Dir)
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func IsInitialized() bool {
	_, err := os.Stat(FileName)
	return err == nil
}

// InitializeProject writes a default config file in the working directory
// and creates its directories. It refuses to overwrite an existing file.
// An empty provider keeps the default.
func InitializeProject(provider string) error {
	if IsInitialized() {
		return fmt.Errorf("%s already exists", FileName)
	}
	cfg := DefaultConfig()
	if provider != "" {
		cfg.Database.Provider = provider
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(FileName, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return cfg.EnsureDirectories()
}
