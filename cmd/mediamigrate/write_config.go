package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/GoCodeAlone/mediamigrate/config"
	"github.com/GoCodeAlone/mediamigrate/kodi"
)

func runWriteConfig(args []string) error {
	fs := flag.NewFlagSet("write-config", flag.ContinueOnError)
	sf := addServerFlags(fs)
	out := fs.String("out", "", "Output path (default: the profile's advancedsettings.xml)")
	kodiHome := fs.String("kodi-home", "", "Kodi data directory (default: the platform's)")
	configPath := fs.String("config", "", "Path to a config file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: mediamigrate write-config [options]

Write the advancedsettings.xml that points Kodi's video and music
libraries at the server. Kodi reads it on startup; an existing file at
the target path is replaced atomically.

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
	if missing := params.Missing(); len(missing) > 0 {
		fs.Usage()
		return fmt.Errorf("missing connection fields: %s", strings.Join(missing, ", "))
	}

	env := kodi.Env{Home: firstNonEmpty(*kodiHome, cfg.Kodi.Home, kodi.DefaultHome())}
	path := *out
	if path == "" {
		if env.Home == "" {
			return fmt.Errorf("cannot resolve the Kodi profile directory; pass -out")
		}
		path = kodi.DefaultSettingsPath(env)
	}

	settings := &kodi.AdvancedSettings{
		VideoDatabase: kodi.NewDatabaseSection(params, cfg.Video.Database),
		MusicDatabase: kodi.NewDatabaseSection(params, cfg.Music.Database),
		VideoLibrary:  importSettings(cfg),
		MusicLibrary:  importSettings(cfg),
	}
	if err := settings.WriteFile(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// importSettings maps the configured import preferences onto the library
// settings block Kodi reads.
func importSettings(cfg *config.Config) *kodi.LibrarySettings {
	return &kodi.LibrarySettings{
		ImportWatchedState: cfg.Import.WatchedState,
		ImportResumePoints: cfg.Import.ResumePoints,
		CleanOnUpdate:      cfg.Import.CleanOnUpdate,
	}
}
