package diag

import (
	"fmt"
	"sort"
	"strings"

	"busindex/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Loc      source.Location
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and tests. Paths are made relative to
// baseDir and entries are sorted deterministically.
func FormatGoldenDiagnostics(diags []Diagnostic, baseDir string, includeNotes bool) string {
	return formatDiagnostics(diags, source.PathModeRelative, baseDir, includeNotes)
}

// FormatShortDiagnostics renders the same layout for CLI short output.
func FormatShortDiagnostics(diags []Diagnostic, mode source.PathMode, baseDir string, includeNotes bool) string {
	return formatDiagnostics(diags, mode, baseDir, includeNotes)
}

func formatDiagnostics(diags []Diagnostic, mode source.PathMode, baseDir string, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = appendDiagnostic(rendered, d, mode, baseDir, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Loc != dj.Loc {
			return di.Loc.Less(dj.Loc)
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, d.Loc.String(), d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d Diagnostic, mode source.PathMode, baseDir string, includeNotes bool) []goldenDiagnostic {
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Loc:      relocate(d.Primary, mode, baseDir),
		Message:  sanitizeMessage(d.Message),
	})
	if includeNotes {
		for _, note := range d.Notes {
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Loc:      relocate(note.Loc, mode, baseDir),
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	return out
}

func relocate(loc source.Location, mode source.PathMode, baseDir string) source.Location {
	if loc.Path != "" {
		loc.Path = source.FormatPath(loc.Path, mode, baseDir)
	}
	return loc
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
