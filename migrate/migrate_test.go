package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/GoCodeAlone/mediamigrate/store"
)

// execFixture applies statements to the SQLite database at path, creating
// it if needed.
func execFixture(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture %s: %v", path, err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("create fixture %s: %v", path, err)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// newSourceHandle builds a library fixture on disk and opens it the way
// production does, read-only.
func newSourceHandle(t *testing.T, stmts ...string) *store.Handle {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MyVideos121.db")
	execFixture(t, path, stmts...)
	h, err := store.OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

// newTargetHandle opens a writable SQLite database standing in for the
// MySQL target. Pragmas ride on the DSN so they hold on every pooled
// connection.
func newTargetHandle(t *testing.T, path string, stmts ...string) *store.Handle {
	t.Helper()
	execFixture(t, path, stmts...)
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open target %s: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return &store.Handle{DB: db, Dialect: store.SQLite}
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
