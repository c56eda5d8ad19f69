// Package compat classifies the library databases already present on a
// target server against the schema versions the running application
// expects. It answers whether migrating into that server is advisable; it
// never blocks a migration.
package compat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/GoCodeAlone/mediamigrate/version"
)

// State is the overall verdict of a compatibility check.
type State string

const (
	// StateCompatible means every discovered library database meets or
	// exceeds its expected schema version.
	StateCompatible State = "compatible"
	// StateIncompatible means at least one discovered database is older
	// than the running application expects.
	StateIncompatible State = "incompatible"
	// StateNoDatabases means the server is reachable but holds no library
	// databases yet. A fresh server, not an error.
	StateNoDatabases State = "no-databases"
	// StateConnectionError means the server could not be queried.
	StateConnectionError State = "connection-error"
)

// Database describes one library database discovered on the server.
type Database struct {
	Kind version.Kind
	Name string
	// Suffix is the numeric schema version parsed from the name, or -1
	// when the name carries no parsable suffix.
	Suffix int
}

// Result partitions the discovered databases and carries the overall
// verdict.
type Result struct {
	State        State
	Compatible   []Database
	Incompatible []Database
	// Err holds the underlying failure for StateConnectionError.
	Err error
}

// DatabaseLister enumerates server databases whose names start with a
// prefix. *store.Server implements it.
type DatabaseLister interface {
	ListDatabases(ctx context.Context, prefix string) ([]string, error)
}

// Checker inspects a server for existing library databases.
type Checker struct {
	lister   DatabaseLister
	versions version.Map
	kinds    []version.Kind
	logger   *slog.Logger
}

// NewChecker builds a Checker that scans for the given library kinds and
// judges them against the version map. A nil logger falls back to
// slog.Default().
func NewChecker(lister DatabaseLister, versions version.Map, kinds []version.Kind, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{lister: lister, versions: versions, kinds: kinds, logger: logger}
}

// Check lists the databases for every configured library kind and
// classifies each against the schema suffix expected for appVersion. A
// database older than expected is incompatible; newer or equal is
// compatible; kinds without a recorded expectation are compatible by
// default.
func (c *Checker) Check(ctx context.Context, appVersion string) Result {
	expected := c.versions.Expected(appVersion)

	var discovered []Database
	for _, kind := range c.kinds {
		names, err := c.lister.ListDatabases(ctx, string(kind))
		if err != nil {
			return Result{
				State: StateConnectionError,
				Err:   fmt.Errorf("list %s databases: %w", kind, err),
			}
		}
		for _, name := range names {
			discovered = append(discovered, c.describe(kind, name))
		}
	}

	if len(discovered) == 0 {
		return Result{State: StateNoDatabases}
	}

	res := Result{State: StateCompatible}
	for _, db := range discovered {
		if compatible(db, expected) {
			res.Compatible = append(res.Compatible, db)
		} else {
			res.Incompatible = append(res.Incompatible, db)
		}
	}
	if len(res.Incompatible) > 0 {
		res.State = StateIncompatible
	}
	return res
}

// describe parses the schema suffix out of a discovered database name.
func (c *Checker) describe(kind version.Kind, name string) Database {
	raw := strings.TrimPrefix(name, string(kind))
	suffix, err := strconv.Atoi(raw)
	if err != nil {
		c.logger.Warn("database name has no parsable schema suffix",
			"database", name, "kind", string(kind))
		return Database{Kind: kind, Name: name, Suffix: -1}
	}
	return Database{Kind: kind, Name: name, Suffix: suffix}
}

// compatible applies the version rule: suffix must meet or exceed the
// expectation for its kind. Unparsable suffixes never pass.
func compatible(db Database, expected map[version.Kind]int) bool {
	if db.Suffix < 0 {
		return false
	}
	want, ok := expected[db.Kind]
	if !ok {
		return true
	}
	return db.Suffix >= want
}
