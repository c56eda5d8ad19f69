// Package store provides the database access layer of the migrator: SQL
// dialects for the engines involved, read-only handles on local SQLite
// library files, and an administrative wrapper around a MySQL or MariaDB
// server.
package store

import (
	"fmt"
	"regexp"
	"strings"
)

// validIdentPattern matches safe SQL identifiers (alphanumeric with
// underscores and dots, not starting with a digit).
var validIdentPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// ValidateIdentifier rejects table, column and database names that could
// smuggle SQL into an interpolated statement.
func ValidateIdentifier(name string) error {
	if !validIdentPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

// Dialect generates the engine-specific SQL the migrator needs. Only
// statements that differ between engines live behind this interface.
type Dialect interface {
	// Name reports the engine name for logs.
	Name() string
	// QuoteIdentifier wraps an identifier in the engine's quoting
	// characters, escaping any embedded quote.
	QuoteIdentifier(name string) string
	// InsertIgnore builds a parameterized insert that silently drops rows
	// whose primary or unique key already exists.
	InsertIgnore(table string, columns []string) (string, error)
	// TableExistsQuery returns a one-placeholder query yielding a row
	// exactly when the named table exists.
	TableExistsQuery() string
	// ListTablesQuery enumerates user tables by name, excluding the
	// engine's internal bookkeeping tables.
	ListTablesQuery() string
}

// The two engines the migrator talks to.
var (
	MySQL  Dialect = mysqlDialect{}
	SQLite Dialect = sqliteDialect{}
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d mysqlDialect) InsertIgnore(table string, columns []string) (string, error) {
	return buildInsert("INSERT IGNORE", table, columns, d.QuoteIdentifier)
}

func (mysqlDialect) TableExistsQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

func (mysqlDialect) ListTablesQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d sqliteDialect) InsertIgnore(table string, columns []string) (string, error) {
	return buildInsert("INSERT OR IGNORE", table, columns, d.QuoteIdentifier)
}

func (sqliteDialect) TableExistsQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (sqliteDialect) ListTablesQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
}

// buildInsert assembles "<verb> INTO t (c1, c2) VALUES (?, ?)" after
// validating every identifier it interpolates.
func buildInsert(verb, table string, columns []string, quote func(string) string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s: no columns to insert", table)
	}
	if err := ValidateIdentifier(table); err != nil {
		return "", err
	}
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		if err := ValidateIdentifier(col); err != nil {
			return "", err
		}
		quoted[i] = quote(col)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb, quote(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", ")), nil
}
