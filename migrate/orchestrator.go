// Package migrate moves a local SQLite library database into a MySQL or
// MariaDB server: it resolves which file and which target database a run
// concerns, provisions the target, and copies every shared table
// idempotently, one transaction per table.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/mediamigrate/store"
	"github.com/GoCodeAlone/mediamigrate/version"
)

// HostEnv resolves media-center virtual paths and file patterns against
// the local host. kodi.Env is the production implementation.
type HostEnv interface {
	// TranslatePath maps a virtual path such as "special://database/" to a
	// real filesystem path. Plain paths pass through unchanged.
	TranslatePath(path string) string
	// Glob expands a filesystem pattern to matching paths.
	Glob(pattern string) ([]string, error)
}

// TargetServer provisions and opens databases on the migration target.
// *store.Server implements it.
type TargetServer interface {
	EnsureDatabase(ctx context.Context, name string) error
	OpenDatabase(ctx context.Context, name string) (*store.Handle, error)
}

// LibraryConfig names the target database for one library, either directly
// or as a schema-version suffix appended to the kind prefix.
type LibraryConfig struct {
	// Database is the explicit target database name. It wins over
	// VersionSuffix when both are set.
	Database string
	// VersionSuffix is appended to the kind prefix when Database is empty,
	// so kind "MyVideos" with suffix "121" targets MyVideos121.
	VersionSuffix string
}

// Request carries everything one migration run needs. Build one per run;
// requests are not reused.
type Request struct {
	Kind version.Kind
	// SourcePattern locates the local database file: a glob pattern whose
	// directory part may use virtual path prefixes. An empty filename part
	// defaults to "<kind>*.db".
	SourcePattern string
	Server        store.ConnParams
	Library       LibraryConfig
}

// ResolveDatabaseName applies the target naming rules: the explicit
// database name when configured, otherwise the kind prefix with the
// version suffix appended. Neither configured is ErrConfiguration.
func ResolveDatabaseName(kind version.Kind, lib LibraryConfig) (string, error) {
	if name := strings.TrimSpace(lib.Database); name != "" {
		return name, nil
	}
	if suffix := strings.TrimSpace(lib.VersionSuffix); suffix != "" {
		return string(kind) + suffix, nil
	}
	return "", fmt.Errorf("%w: no target database name or version suffix for %s", ErrConfiguration, kind)
}

// Orchestrator drives migration runs: resolve inputs, provision the
// target, copy, report.
type Orchestrator struct {
	env    HostEnv
	server TargetServer
	logger *slog.Logger
}

// NewOrchestrator builds an Orchestrator. A nil logger falls back to
// slog.Default().
func NewOrchestrator(env HostEnv, server TargetServer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{env: env, server: server, logger: logger}
}

// Migrate runs one migration. Per-table failures and skips are recorded in
// the summary and do not fail the run; the returned error is non-nil only
// for the fatal kinds (ErrConfiguration, ErrSourceNotFound, ErrConnection).
// Inputs are resolved before anything touches the network, so a bad
// request never opens a connection.
func (o *Orchestrator) Migrate(ctx context.Context, req Request) (*Summary, error) {
	database, err := ResolveDatabaseName(req.Kind, req.Library)
	if err != nil {
		return nil, err
	}
	sourcePath, err := o.resolveSourcePath(req)
	if err != nil {
		return nil, err
	}
	if missing := req.Server.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing connection fields: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	summary := &Summary{RunID: uuid.New(), Database: database, SourcePath: sourcePath}
	logger := o.logger.With("run_id", summary.RunID.String(), "database", database)
	logger.Info("starting migration", "source", sourcePath)

	if err := o.server.EnsureDatabase(ctx, database); err != nil {
		return nil, fmt.Errorf("%w: provision %s: %v", ErrConnection, database, err)
	}
	target, err := o.server.OpenDatabase(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, database, err)
	}
	defer target.Close()

	source, err := store.OpenSource(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	defer source.Close()

	if err := o.copyTables(ctx, source, target, summary, logger); err != nil {
		return nil, err
	}

	logger.Info("migration complete",
		"tables_migrated", summary.MigratedTables,
		"tables_skipped", len(summary.Skipped()),
		"tables_failed", len(summary.Failed()))
	return summary, nil
}

// copyTables walks the shared tables and copies each one, recording every
// outcome on the summary.
func (o *Orchestrator) copyTables(ctx context.Context, source, target *store.Handle, summary *Summary, logger *slog.Logger) error {
	bridge := NewBridge(source, target, logger)
	copier := NewCopier(source, target, logger)

	iter, err := bridge.Tables(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer iter.Close()

	for {
		table, ok := iter.Next(ctx)
		if !ok {
			break
		}
		result := copier.CopyTable(ctx, table)
		summary.Tables = append(summary.Tables, result)
		if result.Outcome == OutcomeMigrated {
			summary.MigratedTables++
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	for _, name := range iter.Skipped() {
		summary.Tables = append(summary.Tables, TableResult{Table: name, Outcome: OutcomeSkipped})
	}
	return nil
}

// resolveSourcePath expands the source pattern to a concrete file. When
// several files match, the lexicographically greatest wins, which picks
// the highest schema suffix among library databases.
func (o *Orchestrator) resolveSourcePath(req Request) (string, error) {
	dir, file := filepath.Split(req.SourcePattern)
	if file == "" {
		file = string(req.Kind) + "*.db"
	}
	pattern := filepath.Join(o.env.TranslatePath(dir), file)

	matches, err := o.env.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: bad source pattern %q: %v", ErrSourceNotFound, pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: nothing matches %q", ErrSourceNotFound, pattern)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
