package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	resources "github.com/goliatone/go-resources"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) != 2 {
			t.Fatalf("expected 2 %s up migrations, got %d", entry.Dialect, len(matches))
		}
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(" SQLite "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 1 || calls[0] != DialectSQLite {
		t.Fatalf("expected a single sqlite registration, got %#v", calls)
	}
}

func TestDialectForDriver(t *testing.T) {
	tests := map[string]string{
		"sqlite3":  DialectSQLite,
		"postgres": DialectPostgres,
		"pgx":      DialectPostgres,
	}
	for driver, expected := range tests {
		got, err := DialectForDriver(driver)
		if err != nil || got != expected {
			t.Fatalf("DialectForDriver(%q): expected %q, got %q (%v)", driver, expected, got, err)
		}
	}
	if _, err := DialectForDriver("mysql"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestRegisterForDriver(t *testing.T) {
	var registered []fs.FS
	if err := RegisterForDriver(context.Background(), "sqlite3", func(fsys fs.FS) {
		registered = append(registered, fsys)
	}); err != nil {
		t.Fatalf("register for driver: %v", err)
	}
	if len(registered) != 1 {
		t.Fatalf("expected one filesystem, got %d", len(registered))
	}
	content, err := fs.ReadFile(registered[0], "00001_resources_mirror_schema.up.sql")
	if err != nil {
		t.Fatalf("read sqlite migration: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("expected sqlite migration content")
	}
}

func TestSQLiteMirrorSchema_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-mirror-schema?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	sqliteMigrations, err := fs.Sub(resources.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	ctx := context.Background()
	for _, migration := range []string{
		"00001_resources_mirror_schema.up.sql",
		"00002_resources_entity_updated_index.up.sql",
	} {
		if err := execSQLMigration(ctx, db, sqliteMigrations, migration); err != nil {
			t.Fatalf("apply %s: %v", migration, err)
		}
	}

	insert := `INSERT INTO resource_entities (id, resource, entity_key, payload) VALUES (?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, "row-1", "products", "1", `{"id":1}`); err != nil {
		t.Fatalf("insert entity: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "row-2", "products", "1", `{"id":1}`); err == nil {
		t.Fatalf("expected unique (resource, entity_key) violation")
	}
	if _, err := db.ExecContext(ctx, insert, "row-3", "orders", "1", `{"id":1}`); err != nil {
		t.Fatalf("expected same key under another resource to be accepted: %v", err)
	}

	for _, migration := range []string{
		"00002_resources_entity_updated_index.down.sql",
		"00001_resources_mirror_schema.down.sql",
	} {
		if err := execSQLMigration(ctx, db, sqliteMigrations, migration); err != nil {
			t.Fatalf("rollback %s: %v", migration, err)
		}
	}
	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='resource_entities'`,
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected table to be dropped")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
