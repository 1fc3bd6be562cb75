package source

import (
	"go/token"
	"path/filepath"
	"testing"
)

func TestFromPosition(t *testing.T) {
	loc := FromPosition(token.Position{Filename: "a/b.go", Line: 3, Column: 7})
	if loc.String() != "a/b.go:3:7" {
		t.Fatalf("unexpected location %q", loc.String())
	}
	if !loc.IsValid() {
		t.Fatalf("expected valid location")
	}

	invalid := FromPosition(token.Position{})
	if invalid != NoLocation || invalid.IsValid() {
		t.Fatalf("expected NoLocation, got %+v", invalid)
	}
	if invalid.String() != "-" {
		t.Errorf("unexpected string for empty location: %q", invalid.String())
	}
}

func TestLocationLess(t *testing.T) {
	a := Location{Path: "a.go", Line: 2, Col: 1}
	b := Location{Path: "a.go", Line: 2, Col: 5}
	c := Location{Path: "b.go", Line: 1, Col: 1}
	if !a.Less(b) || b.Less(a) {
		t.Errorf("column ordering broken")
	}
	if !b.Less(c) {
		t.Errorf("path ordering broken")
	}
}

func TestFormatPath(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "pkg", "file.go")

	if got := FormatPath(path, PathModeRelative, base); got != "pkg/file.go" {
		t.Errorf("relative: got %q", got)
	}
	if got := FormatPath(path, PathModeBasename, base); got != "file.go" {
		t.Errorf("basename: got %q", got)
	}
	if got := FormatPath("x/y.go", PathModeAuto, base); got != "x/y.go" {
		t.Errorf("auto short: got %q", got)
	}

	loc := Location{Path: path, Line: 4, Col: 2}
	if got := loc.Format(PathModeRelative, base); got != "pkg/file.go:4:2" {
		t.Errorf("format: got %q", got)
	}

	if _, ok := ParsePathMode("weird"); ok {
		t.Errorf("expected unknown path mode to fail")
	}
}
