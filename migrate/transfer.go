package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoCodeAlone/mediamigrate/store"
)

// Copier bulk-copies single tables from the source into the target, one
// transaction per table.
type Copier struct {
	source *store.Handle
	target *store.Handle
	logger *slog.Logger
}

// NewCopier builds a Copier over an open source and target handle. A nil
// logger falls back to slog.Default().
func NewCopier(source, target *store.Handle, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Copier{source: source, target: target, logger: logger}
}

// tableData holds a full table scan: the ordered column list and every row.
type tableData struct {
	columns []string
	rows    [][]any
}

// CopyTable copies every row of the named table into the target. The copy
// is idempotent: rows whose primary or unique key already exists in the
// target are dropped silently and never overwritten. Any failure rolls
// back this table alone and is reported in the result, not returned.
func (c *Copier) CopyTable(ctx context.Context, table string) TableResult {
	data, err := c.readAll(ctx, table)
	if err != nil {
		c.logger.Error("table transfer failed", "table", table, "error", err)
		return TableResult{Table: table, Outcome: OutcomeFailed, Err: err}
	}
	if len(data.rows) == 0 {
		c.logger.Info("table migrated", "table", table, "rows", 0)
		return TableResult{Table: table, Rows: 0, Outcome: OutcomeMigrated}
	}
	if err := c.insertAll(ctx, table, data); err != nil {
		c.logger.Error("table transfer failed", "table", table, "error", err)
		return TableResult{Table: table, Outcome: OutcomeFailed, Err: err}
	}
	c.logger.Info("table migrated", "table", table, "rows", len(data.rows))
	return TableResult{Table: table, Rows: len(data.rows), Outcome: OutcomeMigrated}
}

// readAll scans the whole table into memory. Library tables are small
// enough that buffering beats holding a read cursor open across the whole
// target transaction.
func (c *Copier) readAll(ctx context.Context, table string) (tableData, error) {
	if err := store.ValidateIdentifier(table); err != nil {
		return tableData{}, err
	}
	rows, err := c.source.DB.QueryContext(ctx, "SELECT * FROM "+c.source.Dialect.QuoteIdentifier(table))
	if err != nil {
		return tableData{}, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return tableData{}, fmt.Errorf("columns of %s: %w", table, err)
	}

	data := tableData{columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return tableData{}, fmt.Errorf("scan %s: %w", table, err)
		}
		data.rows = append(data.rows, values)
	}
	if err := rows.Err(); err != nil {
		return tableData{}, fmt.Errorf("read %s: %w", table, err)
	}
	return data, nil
}

// insertAll writes all rows inside a single transaction and commits only if
// every insert succeeded.
func (c *Copier) insertAll(ctx context.Context, table string, data tableData) error {
	insert, err := c.target.Dialect.InsertIgnore(table, data.columns)
	if err != nil {
		return err
	}
	tx, err := c.target.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range data.rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
