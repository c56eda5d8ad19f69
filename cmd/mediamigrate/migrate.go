package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/GoCodeAlone/mediamigrate/config"
	"github.com/GoCodeAlone/mediamigrate/kodi"
	"github.com/GoCodeAlone/mediamigrate/migrate"
	"github.com/GoCodeAlone/mediamigrate/store"
	"github.com/GoCodeAlone/mediamigrate/version"
)

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	sf := addServerFlags(fs)
	library := fs.String("library", "both", "Library to migrate: video, music or both")
	source := fs.String("source", "", "Glob locating the source database file (default special://database/)")
	database := fs.String("database", "", "Explicit target database name")
	suffix := fs.String("suffix", "", "Schema version suffix for the target database name")
	kodiHome := fs.String("kodi-home", "", "Kodi data directory (default: the platform's)")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	configPath := fs.String("config", "", "Path to a config file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: mediamigrate migrate [options]

Copy the local Kodi library databases onto a MySQL/MariaDB server. The
target database is created when missing, and rows already present are
left alone, so re-running after a failure is safe.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds, err := libraryKinds(*library)
	if err != nil {
		fs.Usage()
		return err
	}
	if len(kinds) > 1 && (*database != "" || *suffix != "") {
		return fmt.Errorf("-database and -suffix apply to a single library; pass -library video or music")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	params := sf.params(cfg)
	env := kodi.Env{Home: firstNonEmpty(*kodiHome, cfg.Kodi.Home, kodi.DefaultHome())}
	logger := newLogger(*logLevel)

	server, err := store.NewServer(params)
	if err != nil {
		return err
	}
	defer server.Close()
	orch := migrate.NewOrchestrator(env, server, logger)

	failed := 0
	for _, kind := range kinds {
		lib := libraryConfig(cfg, kind)
		summary, err := orch.Migrate(context.Background(), migrate.Request{
			Kind:          kind,
			SourcePattern: firstNonEmpty(*source, lib.Source, "special://database/"),
			Server:        params,
			Library: migrate.LibraryConfig{
				Database:      firstNonEmpty(*database, lib.Database),
				VersionSuffix: firstNonEmpty(*suffix, lib.VersionSuffix),
			},
		})
		if err != nil {
			return fmt.Errorf("migrate %s: %w", kind, err)
		}
		printSummary(summary)
		failed += len(summary.Failed())
	}

	if failed > 0 {
		return fmt.Errorf("%d table(s) failed; fix the cause and re-run to migrate the rest", failed)
	}
	return nil
}

// libraryKinds maps the -library flag to the library kinds to migrate.
func libraryKinds(name string) ([]version.Kind, error) {
	switch name {
	case "video":
		return []version.Kind{kodi.KindVideo}, nil
	case "music":
		return []version.Kind{kodi.KindMusic}, nil
	case "both", "":
		return kodi.Kinds(), nil
	}
	return nil, fmt.Errorf("unknown library %q (want video, music or both)", name)
}

// libraryConfig picks the configured section for one library kind.
func libraryConfig(cfg *config.Config, kind version.Kind) config.LibraryConfig {
	if kind == kodi.KindMusic {
		return cfg.Music
	}
	return cfg.Video
}

// printSummary renders one library's outcome, one line per table.
func printSummary(s *migrate.Summary) {
	fmt.Printf("\n%s <- %s\n", s.Database, s.SourcePath)
	for _, r := range s.Tables {
		switch r.Outcome {
		case migrate.OutcomeMigrated:
			fmt.Printf("  %-24s %d row(s)\n", r.Table, r.Rows)
		case migrate.OutcomeSkipped:
			fmt.Printf("  %-24s skipped (not in target schema)\n", r.Table)
		case migrate.OutcomeFailed:
			fmt.Printf("  %-24s FAILED: %v\n", r.Table, r.Err)
		}
	}
	fmt.Printf("%d of %d tables migrated\n", s.MigratedTables, len(s.Tables))
}
