package version

import (
	"reflect"
	"testing"
)

const (
	kindAlpha Kind = "Alpha"
	kindBeta  Kind = "Beta"
)

func testMap() Map {
	return NewMap(map[int]map[Kind]int{
		18: {kindAlpha: 116, kindBeta: 72},
		19: {kindAlpha: 119, kindBeta: 82},
		21: {kindAlpha: 122, kindBeta: 84},
	})
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in    string
		major int
		ok    bool
	}{
		{"20.1", 20, true},
		{"19", 19, true},
		{"21.0-beta2", 21, true},
		{"20 Nexus", 20, true},
		{"", 0, false},
		{"nightly", 0, false},
		{"v20", 0, false},
	}
	for _, tt := range tests {
		major, ok := ParseMajor(tt.in)
		if major != tt.major || ok != tt.ok {
			t.Errorf("ParseMajor(%q) = (%d, %v), want (%d, %v)", tt.in, major, ok, tt.major, tt.ok)
		}
	}
}

func TestExpectedForMajorClamping(t *testing.T) {
	m := testMap()
	tests := []struct {
		name  string
		major int
		want  map[Kind]int
	}{
		{"below all keys clamps to oldest", 15, map[Kind]int{kindAlpha: 116, kindBeta: 72}},
		{"exact key", 19, map[Kind]int{kindAlpha: 119, kindBeta: 82}},
		{"between keys picks greatest not exceeding", 20, map[Kind]int{kindAlpha: 119, kindBeta: 82}},
		{"above all keys clamps to newest", 30, map[Kind]int{kindAlpha: 122, kindBeta: 84}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ExpectedForMajor(tt.major)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExpectedForMajor(%d) = %v, want %v", tt.major, got, tt.want)
			}
		})
	}
}

func TestExpectedUnparsableVersionUsesNewest(t *testing.T) {
	m := testMap()
	got := m.Expected("nightly-build")
	want := map[Kind]int{kindAlpha: 122, kindBeta: 84}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected(unparsable) = %v, want %v", got, want)
	}
}

func TestExpectedEmptyMap(t *testing.T) {
	var m Map
	if !m.Empty() {
		t.Fatal("zero Map should be empty")
	}
	if got := m.Expected("20.1"); len(got) != 0 {
		t.Fatalf("empty map returned expectations: %v", got)
	}
	if got := m.ExpectedForMajor(20); len(got) != 0 {
		t.Fatalf("empty map returned expectations: %v", got)
	}
}

// Raising the application version must never lower an expectation, given a
// table whose rows do not regress.
func TestExpectedMonotonic(t *testing.T) {
	m := testMap()
	prev := map[Kind]int{}
	for major := 0; major <= 40; major++ {
		got := m.ExpectedForMajor(major)
		for kind, suffix := range got {
			if last, ok := prev[kind]; ok && suffix < last {
				t.Fatalf("major %d lowered %s expectation from %d to %d", major, kind, last, suffix)
			}
			prev[kind] = suffix
		}
	}
}

func TestNewMapCopiesInput(t *testing.T) {
	rows := map[int]map[Kind]int{18: {kindAlpha: 116}}
	m := NewMap(rows)
	rows[18][kindAlpha] = 999
	if got := m.ExpectedForMajor(18)[kindAlpha]; got != 116 {
		t.Fatalf("map shares storage with constructor input: got %d", got)
	}
}

func TestKindsAndMajors(t *testing.T) {
	m := testMap()
	if got, want := m.Kinds(), []Kind{kindAlpha, kindBeta}; !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
	if got, want := m.Majors(), []int{18, 19, 21}; !reflect.DeepEqual(got, want) {
		t.Errorf("Majors() = %v, want %v", got, want)
	}
}
