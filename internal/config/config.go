package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

const (
	dbFileName = "content.db"
	configName = "nggmigrate"
	envPrefix  = "NGGMIGRATE"
)

// Config holds resolved configuration for the workspace directory, the
// databases and the migration run.
type Config struct {
	Dir        string // resolved .nggmigrate directory path
	DBPath     string // full path or DSN of the host database
	EnvVarSet  bool   // whether NGGMIGRATE_PATH was used
	ConfigFile string // config file that was read, if any

	DB      DBConfig      `mapstructure:"db"`
	Legacy  LegacyConfig  `mapstructure:"legacy"`
	Site    SiteConfig    `mapstructure:"site"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	S3      S3Config      `mapstructure:"s3"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Migrate MigrateConfig `mapstructure:"migrate"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LegacyConfig points at the legacy gallery tables. An empty DSN reads
// them from the host database.
type LegacyConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	TablePrefix string `mapstructure:"table_prefix"`
}

type SiteConfig struct {
	URL string `mapstructure:"url"`
}

type UploadsConfig struct {
	Backend string `mapstructure:"backend"` // fs or s3
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PathStyle       bool   `mapstructure:"path_style"`
	PublicURL       string `mapstructure:"public_url"`
}

type IngestConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	MaxBytes      int64         `mapstructure:"max_bytes"`
	UserAgent     string        `mapstructure:"user_agent"`
}

type MigrateConfig struct {
	TimeBudget  time.Duration `mapstructure:"time_budget"`
	Workers     int           `mapstructure:"workers"`
	GalleryMode string        `mapstructure:"gallery_mode"`
}

type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	AdminToken string `mapstructure:"admin_token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"db.driver":              "sqlite",
	"db.dsn":                 "",
	"legacy.driver":          "",
	"legacy.dsn":             "",
	"legacy.table_prefix":    "",
	"site.url":               "http://localhost",
	"uploads.backend":        "fs",
	"uploads.dir":            "",
	"uploads.base_url":       "",
	"s3.bucket":              "",
	"s3.region":              "us-east-1",
	"s3.endpoint":            "",
	"s3.access_key_id":       "",
	"s3.secret_access_key":   "",
	"s3.path_style":          false,
	"s3.public_url":          "",
	"ingest.timeout":         "30s",
	"ingest.rate_per_second": 5.0,
	"ingest.max_bytes":       int64(32 << 20),
	"ingest.user_agent":      "nggmigrate",
	"migrate.time_budget":    "10m",
	"migrate.workers":        1,
	"migrate.gallery_mode":   string(model.GalleryModeExclude),
	"server.addr":            ":8080",
	"server.admin_token":     "",
	"log.level":              "info",
	"log.format":             "text",
}

// Resolve returns the current configuration. The workspace directory comes
// from NGGMIGRATE_PATH, falling back to $PWD/.nggmigrate. Settings are
// layered: defaults, then nggmigrate.yaml in the workspace or the current
// directory, then NGGMIGRATE_* environment variables (after loading any
// .env file).
func Resolve() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	if err := loadDotEnv(filepath.Join(cwd, ".env")); err != nil {
		return nil, err
	}

	var dir string
	var envVarSet bool
	if envPath := os.Getenv(envPrefix + "_PATH"); envPath != "" {
		dir = envPath
		envVarSet = true
	} else {
		dir = filepath.Join(cwd, ".nggmigrate")
	}

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(cwd)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Dir = dir
	cfg.EnvVarSet = envVarSet
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.DBPath = filepath.Join(dir, dbFileName)
	if cfg.DB.DSN != "" {
		cfg.DBPath = cfg.DB.DSN
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = filepath.Join(dir, "uploads")
	}
	if cfg.Uploads.BaseURL == "" {
		cfg.Uploads.BaseURL = strings.TrimRight(cfg.Site.URL, "/") + "/wp-content/uploads"
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.DB.Driver != "sqlite" {
		return fmt.Errorf("invalid db.driver %q: the content store only supports sqlite", c.DB.Driver)
	}
	if _, err := model.ParseGalleryMode(c.Migrate.GalleryMode); err != nil {
		return err
	}
	switch c.Uploads.Backend {
	case "fs":
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("uploads.backend is s3 but s3.bucket is empty")
		}
	default:
		return fmt.Errorf("invalid uploads.backend %q: must be one of [fs s3]", c.Uploads.Backend)
	}
	if c.Migrate.Workers < 1 {
		return fmt.Errorf("migrate.workers must be at least 1, got %d", c.Migrate.Workers)
	}
	if strings.TrimSpace(c.Site.URL) == "" {
		return fmt.Errorf("site.url is required")
	}
	if c.Legacy.TablePrefix != "" && c.Legacy.DSN == "" {
		return fmt.Errorf("legacy.table_prefix %q requires legacy.dsn: the host database tables are unprefixed", c.Legacy.TablePrefix)
	}
	return nil
}

// Exists checks if the workspace directory and DB file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	if _, err := os.Stat(c.Dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := os.Stat(c.DBPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Entry is one displayed configuration setting.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Entries lists the effective settings in a stable order with secrets
// masked.
func (c *Config) Entries() []Entry {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	return []Entry{
		{"db.driver", c.DB.Driver},
		{"db.path", c.DBPath},
		{"legacy.driver", c.Legacy.Driver},
		{"legacy.dsn", mask(c.Legacy.DSN)},
		{"legacy.table_prefix", c.Legacy.TablePrefix},
		{"site.url", c.Site.URL},
		{"uploads.backend", c.Uploads.Backend},
		{"uploads.dir", c.Uploads.Dir},
		{"uploads.base_url", c.Uploads.BaseURL},
		{"s3.bucket", c.S3.Bucket},
		{"s3.region", c.S3.Region},
		{"s3.endpoint", c.S3.Endpoint},
		{"s3.access_key_id", mask(c.S3.AccessKeyID)},
		{"s3.secret_access_key", mask(c.S3.SecretAccessKey)},
		{"ingest.timeout", c.Ingest.Timeout.String()},
		{"ingest.rate_per_second", fmt.Sprintf("%g", c.Ingest.RatePerSecond)},
		{"ingest.max_bytes", fmt.Sprintf("%d", c.Ingest.MaxBytes)},
		{"migrate.time_budget", c.Migrate.TimeBudget.String()},
		{"migrate.workers", fmt.Sprintf("%d", c.Migrate.Workers)},
		{"migrate.gallery_mode", c.Migrate.GalleryMode},
		{"server.addr", c.Server.Addr},
		{"server.admin_token", mask(c.Server.AdminToken)},
		{"log.level", c.Log.Level},
		{"log.format", c.Log.Format},
	}
}

var (
	defaultAuthor     string
	defaultAuthorOnce sync.Once
)

// DefaultAuthor returns the name recorded in the activity log for body
// rewrites. It tries git config user.name first and falls back to the OS
// username. The result is cached for the lifetime of the process.
func DefaultAuthor() string {
	defaultAuthorOnce.Do(func() {
		defaultAuthor = resolveAuthor()
	})
	return defaultAuthor
}

func resolveAuthor() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", "config", "user.name").Output()
	if err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name
		}
	}

	u, err := user.Current()
	if err == nil && u.Username != "" {
		return u.Username
	}

	return "nggmigrate"
}
