package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/GoCodeAlone/mediamigrate/store"
)

// Bridge decides which source tables can be copied: a table qualifies when
// it exists in both the source and target catalogs. Source tables the
// target schema does not know are skipped, not failed, since the two sides
// may have been created by different application versions.
type Bridge struct {
	source *store.Handle
	target *store.Handle
	logger *slog.Logger
}

// NewBridge builds a Bridge over an open source and target handle. A nil
// logger falls back to slog.Default().
func NewBridge(source, target *store.Handle, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{source: source, target: target, logger: logger}
}

// Tables starts a scan of the source catalog. The iterator wraps the live
// catalog cursor, so it is single-pass; call Tables again for a fresh scan.
// The caller must Close it.
func (b *Bridge) Tables(ctx context.Context) (*TableIter, error) {
	rows, err := b.source.DB.QueryContext(ctx, b.source.Dialect.ListTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("list source tables: %w", err)
	}
	return &TableIter{rows: rows, target: b.target, logger: b.logger}, nil
}

// TableIter walks the source catalog one table at a time, yielding only
// names the target also has. Names missing from the target are logged and
// collected in Skipped.
type TableIter struct {
	rows    *sql.Rows
	target  *store.Handle
	logger  *slog.Logger
	skipped []string
	err     error
}

// Next advances to the next table present in both catalogs. It reports
// false when the scan is exhausted or broken; check Err afterwards.
func (it *TableIter) Next(ctx context.Context) (string, bool) {
	if it.err != nil {
		return "", false
	}
	for it.rows.Next() {
		var name string
		if err := it.rows.Scan(&name); err != nil {
			it.err = fmt.Errorf("scan source table name: %w", err)
			return "", false
		}
		ok, err := it.target.HasTable(ctx, name)
		if err != nil {
			it.err = err
			return "", false
		}
		if !ok {
			it.logger.Warn("skipping table missing in target schema", "table", name)
			it.skipped = append(it.skipped, name)
			continue
		}
		return name, true
	}
	it.err = it.rows.Err()
	return "", false
}

// Skipped lists the tables passed over so far because the target schema
// lacks them.
func (it *TableIter) Skipped() []string { return it.skipped }

// Err reports a catalog scan failure, if any.
func (it *TableIter) Err() error { return it.err }

// Close releases the catalog cursor.
func (it *TableIter) Close() error { return it.rows.Close() }
