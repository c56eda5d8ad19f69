package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/GoCodeAlone/mediamigrate/compat"
	"github.com/GoCodeAlone/mediamigrate/config"
	"github.com/GoCodeAlone/mediamigrate/kodi"
	"github.com/GoCodeAlone/mediamigrate/store"
	"github.com/GoCodeAlone/mediamigrate/version"
)

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	sf := addServerFlags(fs)
	appVersion := fs.String("app-version", "", `Kodi version the databases must suit, for example "21"`)
	configPath := fs.String("config", "", "Path to a config file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: mediamigrate check [options]

List the library databases already on a server and judge each against
the schema versions the given Kodi release expects. A database older
than expected would be ignored by that Kodi; it should be migrated from
a matching Kodi version instead.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	params := sf.params(cfg)
	if params.Host == "" {
		fs.Usage()
		return fmt.Errorf("server host is required")
	}
	kodiVersion := firstNonEmpty(*appVersion, cfg.Kodi.Version)
	if kodiVersion == "" {
		fs.Usage()
		return fmt.Errorf("-app-version or a configured kodi version is required")
	}

	server, err := store.NewServer(params)
	if err != nil {
		return err
	}
	defer server.Close()

	versions := kodi.DefaultVersionMap()
	checker := compat.NewChecker(server, versions, kodi.Kinds(), newLogger("info"))
	result := checker.Check(context.Background(), kodiVersion)
	if result.State == compat.StateConnectionError {
		return result.Err
	}

	printCheckResult(params.Addr(), kodiVersion, versions.Expected(kodiVersion), result)
	if result.State == compat.StateIncompatible {
		return fmt.Errorf("%d database(s) too old for Kodi %s", len(result.Incompatible), kodiVersion)
	}
	return nil
}

// printCheckResult renders the partition and the overall verdict.
func printCheckResult(addr, kodiVersion string, expected map[version.Kind]int, r compat.Result) {
	fmt.Printf("Server %s, Kodi %s\n", addr, kodiVersion)
	if r.State == compat.StateNoDatabases {
		fmt.Println("\nNo library databases found; a migration would start fresh.")
		return
	}

	if len(r.Compatible) > 0 {
		fmt.Printf("\nCompatible databases:\n")
		for _, db := range r.Compatible {
			fmt.Printf("  %s\n", db.Name)
		}
	}
	if len(r.Incompatible) > 0 {
		fmt.Printf("\nIncompatible databases:\n")
		for _, db := range r.Incompatible {
			if db.Suffix < 0 {
				fmt.Printf("  %s  (no schema suffix)\n", db.Name)
				continue
			}
			fmt.Printf("  %s  (schema %d, want %d or newer)\n", db.Name, db.Suffix, expected[db.Kind])
		}
	}

	switch r.State {
	case compat.StateCompatible:
		fmt.Println("\nCompatibility: PASS")
	case compat.StateIncompatible:
		fmt.Println("\nCompatibility: FAIL")
	}
}
