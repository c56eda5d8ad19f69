package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
)

// createFixture writes a SQLite database at path with the given statements
// applied.
func createFixture(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

func TestOpenSourceMissingFile(t *testing.T) {
	if _, err := OpenSource(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatal("OpenSource on a missing file succeeded")
	}
}

func TestOpenSourceIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MyVideos121.db")
	createFixture(t, path, "CREATE TABLE movie (idMovie INTEGER PRIMARY KEY)")

	h, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	if _, err := h.DB.Exec("INSERT INTO movie (idMovie) VALUES (1)"); err == nil {
		t.Fatal("write through a source handle succeeded")
	}
}

func TestHasTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	createFixture(t, path, "CREATE TABLE movie (id INTEGER PRIMARY KEY)")

	h, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	ctx := context.Background()
	ok, err := h.HasTable(ctx, "movie")
	if err != nil || !ok {
		t.Fatalf("HasTable(movie) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = h.HasTable(ctx, "episode")
	if err != nil || ok {
		t.Fatalf("HasTable(episode) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestTableNamesExcludesInternalTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	// AUTOINCREMENT forces sqlite to create its sqlite_sequence table.
	createFixture(t, path,
		"CREATE TABLE song (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT)",
		"CREATE TABLE album (id INTEGER PRIMARY KEY)",
		"INSERT INTO song (title) VALUES ('x')",
	)

	h, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	names, err := h.TableNames(context.Background())
	if err != nil {
		t.Fatalf("TableNames: %v", err)
	}
	want := []string{"album", "song"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("TableNames = %v, want %v", names, want)
	}
}

func TestCloseNilHandle(t *testing.T) {
	var h *Handle
	if err := h.Close(); err != nil {
		t.Fatalf("Close on nil handle: %v", err)
	}
}
