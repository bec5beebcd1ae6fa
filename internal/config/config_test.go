package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NGGMIGRATE_PATH", dir)

	cfg, err := Resolve()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.True(t, cfg.EnvVarSet)
	assert.Equal(t, filepath.Join(dir, "content.db"), cfg.DBPath)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "fs", cfg.Uploads.Backend)
	assert.Equal(t, filepath.Join(dir, "uploads"), cfg.Uploads.Dir)
	assert.Equal(t, "http://localhost/wp-content/uploads", cfg.Uploads.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Ingest.Timeout)
	assert.Equal(t, int64(32<<20), cfg.Ingest.MaxBytes)
	assert.Equal(t, 10*time.Minute, cfg.Migrate.TimeBudget)
	assert.Equal(t, 1, cfg.Migrate.Workers)
	assert.Equal(t, "exclude", cfg.Migrate.GalleryMode)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.ConfigFile)
	assert.NoError(t, cfg.Validate())
}

func TestResolveReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NGGMIGRATE_PATH", dir)

	yaml := `site:
  url: https://blog.example.org/
migrate:
  gallery_mode: ids
  time_budget: 90s
  workers: 4
legacy:
  table_prefix: wp_
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nggmigrate.yaml"), []byte(yaml), 0o644))

	cfg, err := Resolve()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "nggmigrate.yaml"), cfg.ConfigFile)
	assert.Equal(t, "https://blog.example.org/", cfg.Site.URL)
	assert.Equal(t, "https://blog.example.org/wp-content/uploads", cfg.Uploads.BaseURL)
	assert.Equal(t, "ids", cfg.Migrate.GalleryMode)
	assert.Equal(t, 90*time.Second, cfg.Migrate.TimeBudget)
	assert.Equal(t, 4, cfg.Migrate.Workers)
	assert.Equal(t, "wp_", cfg.Legacy.TablePrefix)
}

func TestResolveEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NGGMIGRATE_PATH", dir)
	t.Setenv("NGGMIGRATE_MIGRATE_WORKERS", "8")
	t.Setenv("NGGMIGRATE_DB_DSN", "postgres://localhost/blog")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nggmigrate.yaml"), []byte("migrate:\n  workers: 2\n"), 0o644))

	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Migrate.Workers)
	assert.Equal(t, "postgres://localhost/blog", cfg.DBPath)
}

func TestResolveLoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NGGMIGRATE_PATH", dir)
	t.Cleanup(func() { os.Unsetenv("NGGMIGRATE_SERVER_ADMIN_TOKEN") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NGGMIGRATE_SERVER_ADMIN_TOKEN=from-dotenv\n"), 0o600))

	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Server.AdminToken)
}

func TestResolveMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NGGMIGRATE_PATH", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nggmigrate.yaml"), []byte("site: [unterminated\n"), 0o644))

	_, err := Resolve()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DB:      DBConfig{Driver: "sqlite"},
			Site:    SiteConfig{URL: "https://example.com"},
			Uploads: UploadsConfig{Backend: "fs"},
			Migrate: MigrateConfig{Workers: 1, GalleryMode: "exclude"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"postgres content store", func(c *Config) { c.DB.Driver = "postgres" }},
		{"bad gallery mode", func(c *Config) { c.Migrate.GalleryMode = "everything" }},
		{"unknown backend", func(c *Config) { c.Uploads.Backend = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Uploads.Backend = "s3" }},
		{"zero workers", func(c *Config) { c.Migrate.Workers = 0 }},
		{"blank site", func(c *Config) { c.Site.URL = " " }},
		{"prefix on host tables", func(c *Config) { c.Legacy.TablePrefix = "wp_" }},
	}

	require.NoError(t, base().Validate())

	prefixed := base()
	prefixed.Legacy = LegacyConfig{Driver: "postgres", DSN: "postgres://localhost/wp", TablePrefix: "wp_"}
	require.NoError(t, prefixed.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Dir: filepath.Join(dir, ".nggmigrate"), DBPath: filepath.Join(dir, ".nggmigrate", "content.db")}

	ok, err := cfg.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(cfg.Dir, 0o750))
	require.NoError(t, os.WriteFile(cfg.DBPath, nil, 0o600))

	ok, err = cfg.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntriesMaskSecrets(t *testing.T) {
	cfg := &Config{
		S3:     S3Config{SecretAccessKey: "abc"},
		Server: ServerConfig{AdminToken: ""},
	}
	got := map[string]string{}
	for _, e := range cfg.Entries() {
		got[e.Key] = e.Value
	}
	assert.Equal(t, "********", got["s3.secret_access_key"])
	assert.Equal(t, "", got["server.admin_token"])
}

func TestDefaultAuthorIsStable(t *testing.T) {
	a := DefaultAuthor()
	assert.NotEmpty(t, a)
	assert.Equal(t, a, DefaultAuthor())
}
