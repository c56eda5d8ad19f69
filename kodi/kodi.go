// Package kodi binds the migrator to a Kodi installation: the library
// kinds a stock install maintains, the schema versions each Kodi release
// ships, the special:// virtual paths under the Kodi data directory, and
// the advancedsettings.xml file that points Kodi at a database server.
package kodi

import (
	"github.com/GoCodeAlone/mediamigrate/version"
)

// The library databases a stock Kodi installation maintains. Each value
// is the database-name prefix Kodi uses for that library.
const (
	KindVideo version.Kind = "MyVideos"
	KindMusic version.Kind = "MyMusic"
)

// Kinds returns the library kinds in a stable order.
func Kinds() []version.Kind {
	return []version.Kind{KindVideo, KindMusic}
}

// DefaultVersionMap returns the library schema versions shipped by each
// Kodi release, keyed by release major (17 Krypton through 21 Omega).
// Kodi appends these numbers to the database names it creates, so a
// MyVideos121 database was written by a version 20 install.
func DefaultVersionMap() version.Map {
	return version.NewMap(map[int]map[version.Kind]int{
		17: {KindVideo: 107, KindMusic: 60},
		18: {KindVideo: 116, KindMusic: 72},
		19: {KindVideo: 119, KindMusic: 82},
		20: {KindVideo: 121, KindMusic: 82},
		21: {KindVideo: 122, KindMusic: 84},
	})
}
