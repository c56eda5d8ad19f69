// Package version maps application releases to the schema versions their
// library databases are expected to carry. Media centers suffix each
// library database name with a schema number (MyVideos121, MyMusic82);
// the tables here answer which suffix a given application version ships.
package version

import (
	"sort"
	"strconv"
	"strings"
)

// Kind identifies a library category. Its value is the canonical
// database-name prefix for that category, for example "MyVideos".
type Kind string

// entry pairs one application major version with the schema suffix each
// library kind ships at that version.
type entry struct {
	major    int
	expected map[Kind]int
}

// Map is an immutable table of application major versions to expected
// schema suffixes per library kind. The zero value is an empty map and
// yields no expectations.
type Map struct {
	entries []entry
}

// NewMap builds a Map from rows keyed by application major version. The
// input is copied, so later mutation of the argument does not affect the
// returned Map.
func NewMap(rows map[int]map[Kind]int) Map {
	entries := make([]entry, 0, len(rows))
	for major, expected := range rows {
		cp := make(map[Kind]int, len(expected))
		for kind, suffix := range expected {
			cp[kind] = suffix
		}
		entries = append(entries, entry{major: major, expected: cp})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].major < entries[j].major })
	return Map{entries: entries}
}

// Empty reports whether the map carries no entries.
func (m Map) Empty() bool { return len(m.entries) == 0 }

// Majors returns the application major versions the map knows, ascending.
func (m Map) Majors() []int {
	majors := make([]int, len(m.entries))
	for i, e := range m.entries {
		majors[i] = e.major
	}
	return majors
}

// Kinds returns every library kind named anywhere in the map, sorted.
func (m Map) Kinds() []Kind {
	seen := make(map[Kind]bool)
	for _, e := range m.entries {
		for kind := range e.expected {
			seen[kind] = true
		}
	}
	kinds := make([]Kind, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ExpectedForMajor returns the expected schema suffix per kind for an
// application major version. The entry chosen is the greatest known major
// that does not exceed the query; queries below every known major clamp to
// the oldest entry, queries above every known major clamp to the newest.
// An empty map returns an empty result.
func (m Map) ExpectedForMajor(major int) map[Kind]int {
	if len(m.entries) == 0 {
		return map[Kind]int{}
	}
	chosen := m.entries[0]
	for _, e := range m.entries {
		if major < e.major {
			break
		}
		chosen = e
	}
	return copyExpected(chosen.expected)
}

// Expected resolves a full version string such as "20.1". Strings whose
// major component cannot be parsed resolve against the newest known major,
// so an unrecognized future build is held to the newest expectations.
func (m Map) Expected(version string) map[Kind]int {
	if major, ok := ParseMajor(version); ok {
		return m.ExpectedForMajor(major)
	}
	if len(m.entries) == 0 {
		return map[Kind]int{}
	}
	return copyExpected(m.entries[len(m.entries)-1].expected)
}

// ParseMajor extracts the leading integer major component from a version
// string ("20.1" yields 20). It reports false when no leading integer is
// present and never returns an error.
func ParseMajor(version string) (int, bool) {
	version = strings.TrimSpace(version)
	if version == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(version, ".")
	head, _, _ = strings.Cut(head, " ")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return major, true
}

func copyExpected(expected map[Kind]int) map[Kind]int {
	out := make(map[Kind]int, len(expected))
	for kind, suffix := range expected {
		out[kind] = suffix
	}
	return out
}
