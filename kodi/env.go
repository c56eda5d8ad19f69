package kodi

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/GoCodeAlone/mediamigrate/version"
)

// Env resolves Kodi's special:// protocol paths against a concrete data
// directory on the local filesystem. It satisfies the host-environment
// interface the migration engine expects.
type Env struct {
	// Home is the Kodi data directory (".kodi" under the user's home on
	// Linux). special:// paths resolve beneath it; an empty Home makes
	// them resolve relative to the working directory.
	Home string
}

// specialRoots maps a special:// root name to its path below Home. Only
// the roots the migrator meets are covered; Kodi knows more.
var specialRoots = map[string][]string{
	"home":          {},
	"profile":       {"userdata"},
	"masterprofile": {"userdata"},
	"database":      {"userdata", "Database"},
	"temp":          {"temp"},
}

// TranslatePath maps a special:// path such as "special://database/" to
// the real filesystem path beneath Home. Paths without the prefix, and
// special:// roots the migrator does not know, pass through unchanged.
func (e Env) TranslatePath(path string) string {
	rest, ok := strings.CutPrefix(path, "special://")
	if !ok {
		return path
	}
	root, tail, _ := strings.Cut(rest, "/")
	below, ok := specialRoots[root]
	if !ok {
		return path
	}
	parts := append([]string{e.Home}, below...)
	if tail != "" {
		parts = append(parts, filepath.FromSlash(tail))
	}
	return filepath.Join(parts...)
}

// Glob expands a filesystem pattern. Patterns are matched after
// TranslatePath has already run, so they contain no special:// prefix.
func (e Env) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// DatabaseGlob returns the virtual pattern matching every schema
// generation of one library kind, for example
// "special://database/MyVideos*.db".
func DatabaseGlob(kind version.Kind) string {
	return "special://database/" + string(kind) + "*.db"
}

// DefaultHome returns the conventional Kodi data directory for this
// platform, or the empty string when the user's home directory cannot be
// determined.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "Kodi")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Kodi")
	default:
		return filepath.Join(home, ".kodi")
	}
}
