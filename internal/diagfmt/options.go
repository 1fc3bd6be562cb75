// Package diagfmt renders diagnostic bags for people and tools: pretty
// terminal output, one-line short output, JSON and SARIF.
package diagfmt

import (
	"fmt"
	"strings"

	"busindex/internal/diag"
	"busindex/internal/source"
)

// Format selects a renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
	FormatSarif
)

// ParseFormat accepts pretty|short|json|sarif.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "pretty", "":
		return FormatPretty, nil
	case "short":
		return FormatShort, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSarif, nil
	}
	return FormatPretty, fmt.Errorf("invalid diagnostics format: %q (expected: pretty|short|json|sarif)", s)
}

// Options configure every renderer.
type Options struct {
	Color       bool
	PathMode    source.PathMode
	BaseDir     string        // for PathModeRelative
	MinSeverity diag.Severity // lower severities are hidden
	ShowNotes   bool
	ShowSource  bool // print the offending source line (pretty only)
	Max         int  // stop after this many diagnostics, 0 = all
}

func visible(bag *diag.Bag, opts Options) []diag.Diagnostic {
	if bag == nil {
		return nil
	}
	items := bag.Filter(opts.MinSeverity)
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	return items
}
