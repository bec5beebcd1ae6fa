package db

import (
	"database/sql"
	"testing"
	"time"
)

func mustOpen(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustInit(t *testing.T) *sql.DB {
	t.Helper()
	db := mustOpen(t)
	if err := Initialize(db); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return db
}

func TestOpenSetsForeignKeys(t *testing.T) {
	db := mustOpen(t)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("querying foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestOpenSetsBusyTimeout(t *testing.T) {
	db := mustOpen(t)

	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("querying busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestOpenDriverRejectsUnknown(t *testing.T) {
	if _, err := OpenDriver("oracle", "x"); err == nil {
		t.Error("expected error for unknown driver, got nil")
	}
}

func TestInitializeCreatesAllTables(t *testing.T) {
	db := mustInit(t)

	tables := []string{"meta", "posts", "postmeta", "ngg_gallery", "ngg_pictures", "activity_log"}

	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := mustInit(t)

	if err := Initialize(db); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema_version = %d after double init, want %d", v, currentSchemaVersion)
	}
}

func TestCascadeDeletePostRemovesAttachments(t *testing.T) {
	db := mustInit(t)

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(
		"INSERT INTO posts (title, content, created_at, updated_at) VALUES ('p', '', ?, ?)", now, now,
	)
	if err != nil {
		t.Fatalf("inserting post: %v", err)
	}
	postID, _ := res.LastInsertId()

	if _, err := db.Exec(
		"INSERT INTO posts (parent_id, post_type, status, created_at, updated_at) VALUES (?, 'attachment', 'inherit', ?, ?)",
		postID, now, now,
	); err != nil {
		t.Fatalf("inserting attachment: %v", err)
	}

	if _, err := db.Exec("DELETE FROM posts WHERE id = ?", postID); err != nil {
		t.Fatalf("deleting post: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts WHERE parent_id = ?", postID).Scan(&count); err != nil {
		t.Fatalf("counting attachments: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 attachments after cascade delete, got %d", count)
	}
}

func TestMigrateNoOpAtLatestVersion(t *testing.T) {
	db := mustInit(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema_version = %d after Migrate, want %d", v, currentSchemaVersion)
	}
}

func TestMigrateFromV1ToV2(t *testing.T) {
	db := mustOpen(t)

	v1DDL := `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);
CREATE TABLE IF NOT EXISTS posts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id    INTEGER REFERENCES posts(id) ON DELETE CASCADE,
	post_type    TEXT NOT NULL DEFAULT 'post',
	status       TEXT NOT NULL DEFAULT 'publish',
	title        TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL DEFAULT '',
	excerpt      TEXT NOT NULL DEFAULT '',
	menu_order   INTEGER NOT NULL DEFAULT 0,
	mime_type    TEXT NOT NULL DEFAULT '',
	guid         TEXT NOT NULL DEFAULT '',
	ingest_token TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
`
	if _, err := db.Exec(v1DDL); err != nil {
		t.Fatalf("creating v1 schema: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', '1')`); err != nil {
		t.Fatalf("setting schema version: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("schema_version = %d after migration, want 2", v)
	}

	var name string
	if err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='activity_log'",
	).Scan(&name); err != nil {
		t.Errorf("activity_log table should exist after migration: %v", err)
	}
}

func TestDialectRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{DialectSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{DialectPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{DialectPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		if got := tt.dialect.Rebind(tt.in); got != tt.want {
			t.Errorf("%s.Rebind(%q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	if DialectFor("postgres") != DialectPostgres {
		t.Error("DialectFor(postgres) should be DialectPostgres")
	}
	if DialectFor("") != DialectSQLite {
		t.Error("DialectFor(\"\") should be DialectSQLite")
	}
}
