package store

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// OpenSource opens a local SQLite library database for reading. The file
// must already exist; the connection is opened read-only so a migration can
// never mutate the source library. A busy timeout is set through the DSN so
// it applies to every pooled connection, which matters because the catalog
// cursor and table reads run on separate connections.
func OpenSource(path string) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source database: %w", err)
	}
	dsn := "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Handle{DB: db, Dialect: SQLite}, nil
}
