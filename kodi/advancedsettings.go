package kodi

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoCodeAlone/mediamigrate/store"
)

// DatabaseSection points one Kodi library at a server-hosted database.
// It renders as the <videodatabase> or <musicdatabase> element of
// advancedsettings.xml.
type DatabaseSection struct {
	Type string `xml:"type"`
	Host string `xml:"host"`
	Port int    `xml:"port,omitempty"`
	User string `xml:"user"`
	Pass string `xml:"pass"`
	Name string `xml:"name,omitempty"`
}

// NewDatabaseSection builds the section for one library database on the
// given server.
func NewDatabaseSection(params store.ConnParams, database string) *DatabaseSection {
	port := params.Port
	if port == 0 {
		port = store.DefaultPort
	}
	return &DatabaseSection{
		Type: "mysql",
		Host: params.Host,
		Port: port,
		User: params.User,
		Pass: params.Password,
		Name: database,
	}
}

// LibrarySettings carries the import preferences Kodi honors for a
// library backed by a shared database.
type LibrarySettings struct {
	ImportWatchedState bool `xml:"importwatchedstate"`
	ImportResumePoints bool `xml:"importresumepoints"`
	CleanOnUpdate      bool `xml:"cleanonupdate"`
}

// AdvancedSettings is the subset of Kodi's advancedsettings.xml the
// migrator writes: database sections for the libraries moved to a server
// plus the import preferences for each.
type AdvancedSettings struct {
	XMLName       xml.Name         `xml:"advancedsettings"`
	VideoDatabase *DatabaseSection `xml:"videodatabase,omitempty"`
	MusicDatabase *DatabaseSection `xml:"musicdatabase,omitempty"`
	VideoLibrary  *LibrarySettings `xml:"videolibrary,omitempty"`
	MusicLibrary  *LibrarySettings `xml:"musiclibrary,omitempty"`
}

// DefaultSettingsPath returns where Kodi reads advancedsettings.xml from,
// resolved through env.
func DefaultSettingsPath(env Env) string {
	return env.TranslatePath("special://profile/advancedsettings.xml")
}

// Encode renders the document with the XML declaration Kodi expects.
func (s *AdvancedSettings) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(s, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode advancedsettings: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// WriteFile writes the document to path, creating parent directories as
// needed. The content lands via a temp file renamed into place so Kodi
// can never observe a half-written settings file.
func (s *AdvancedSettings) WriteFile(path string) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".advancedsettings-*.xml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // clean up if rename failed
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
