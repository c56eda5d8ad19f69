package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Handle bundles an open database connection with the dialect that knows
// how to talk to it.
type Handle struct {
	DB      *sql.DB
	Dialect Dialect
}

// Close releases the underlying connection pool. Closing a nil or
// already-closed handle is safe.
func (h *Handle) Close() error {
	if h == nil || h.DB == nil {
		return nil
	}
	return h.DB.Close()
}

// HasTable reports whether the named table exists in the connected
// database.
func (h *Handle) HasTable(ctx context.Context, name string) (bool, error) {
	row := h.DB.QueryRowContext(ctx, h.Dialect.TableExistsQuery(), name)
	var found string
	err := row.Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

// TableNames returns every user table in the connected database, sorted by
// name.
func (h *Handle) TableNames(ctx context.Context) ([]string, error) {
	rows, err := h.DB.QueryContext(ctx, h.Dialect.ListTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}
