package migrate

import "errors"

// Fatal failure kinds returned from Orchestrator.Migrate, matched with
// errors.Is. Per-table problems are never errors; they are recorded as
// TableResult outcomes so one broken table cannot abort a run.
var (
	// ErrConfiguration reports missing or contradictory migration inputs,
	// such as an unresolvable target database name or absent connection
	// fields.
	ErrConfiguration = errors.New("invalid migration configuration")

	// ErrSourceNotFound reports that no local database file matched the
	// source pattern, or that the matched file could not be opened.
	ErrSourceNotFound = errors.New("source database not found")

	// ErrConnection reports that the target server could not be reached,
	// authenticated against, or provisioned.
	ErrConnection = errors.New("target connection failed")
)
