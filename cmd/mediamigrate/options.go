package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/GoCodeAlone/mediamigrate/config"
	"github.com/GoCodeAlone/mediamigrate/store"
)

// serverFlags holds the connection flags shared by every command that
// talks to a server. Flag values win over the config file and the
// environment.
type serverFlags struct {
	host     *string
	port     *int
	user     *string
	password *string
}

func addServerFlags(fs *flag.FlagSet) *serverFlags {
	return &serverFlags{
		host:     fs.String("host", "", "Server hostname or IP"),
		port:     fs.Int("port", 0, "Server port (default 3306)"),
		user:     fs.String("user", "", "Server user"),
		password: fs.String("password", "", "Server password"),
	}
}

// params merges the parsed flags over the configured server settings.
func (f *serverFlags) params(cfg *config.Config) store.ConnParams {
	p := store.ConnParams{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		User:     cfg.Server.User,
		Password: cfg.Server.Password,
	}
	if *f.host != "" {
		p.Host = *f.host
	}
	if *f.port != 0 {
		p.Port = *f.port
	}
	if *f.user != "" {
		p.User = *f.user
	}
	if *f.password != "" {
		p.Password = *f.password
	}
	return p
}

// newLogger builds the text logger commands hand to the engine. Logs go
// to stderr so reports on stdout stay clean.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
