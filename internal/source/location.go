package source

import (
	"fmt"
	"go/token"

	"fortio.org/safecast"
)

// Location is a human-readable position in a Go source file.
type Location struct {
	Path string
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// NoLocation is used for diagnostics that are not tied to a declaration.
var NoLocation = Location{}

// FromPosition converts a go/token position. Invalid positions map to NoLocation.
func FromPosition(pos token.Position) Location {
	if !pos.IsValid() {
		return NoLocation
	}
	line, err := safecast.Conv[uint32](pos.Line)
	if err != nil {
		return Location{Path: pos.Filename}
	}
	col, err := safecast.Conv[uint32](pos.Column)
	if err != nil {
		col = 0
	}
	return Location{Path: pos.Filename, Line: line, Col: col}
}

// IsValid reports whether the location points into a file.
func (l Location) IsValid() bool {
	return l.Path != "" && l.Line > 0
}

func (l Location) String() string {
	switch {
	case l.Path == "":
		return "-"
	case l.Line == 0:
		return l.Path
	case l.Col == 0:
		return fmt.Sprintf("%s:%d", l.Path, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Col)
}

// Less orders locations by path, line, column.
func (l Location) Less(other Location) bool {
	if l.Path != other.Path {
		return l.Path < other.Path
	}
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Col < other.Col
}

// Format renders the location with its path shown per mode.
func (l Location) Format(mode PathMode, baseDir string) string {
	if l.Path == "" {
		return l.String()
	}
	l.Path = FormatPath(l.Path, mode, baseDir)
	return l.String()
}
