package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"busindex/internal/diag"
	"busindex/internal/source"
)

// Pretty prints
//
//	path:line:col: error SUB1004: message
//	   12 | func (d *Derived) OnTwo(a, b string) {}
//	      |                   ^
//	  note: path:line:col: note text
//
// Diagnostics are printed in bag order; callers sort the bag first.
func Pretty(w io.Writer, bag *diag.Bag, opts Options) error {
	p := printer{w: w, opts: opts, lines: make(map[string][]string)}
	p.setupColors()
	for _, d := range visible(bag, opts) {
		if err := p.diagnostic(d); err != nil {
			return err
		}
	}
	if bag != nil && bag.Dropped() > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", p.dim.Sprintf("... %d more diagnostics not shown", bag.Dropped())); err != nil {
			return err
		}
	}
	return nil
}

type printer struct {
	w     io.Writer
	opts  Options
	lines map[string][]string // file contents cache

	err, warn, info, code, dim, caret *color.Color
}

func (p *printer) setupColors() {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if p.opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	p.err = mk(color.FgRed, color.Bold)
	p.warn = mk(color.FgYellow, color.Bold)
	p.info = mk(color.FgCyan)
	p.code = mk(color.Bold)
	p.dim = mk(color.Faint)
	p.caret = mk(color.FgGreen, color.Bold)
}

func (p *printer) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err.Sprint(s.Label())
	case diag.SevWarning:
		return p.warn.Sprint(s.Label())
	}
	return p.info.Sprint(s.Label())
}

func (p *printer) location(loc source.Location) string {
	if !loc.IsValid() {
		return ""
	}
	rel := loc
	rel.Path = source.FormatPath(loc.Path, p.opts.PathMode, p.opts.BaseDir)
	return rel.String() + ": "
}

func (p *printer) diagnostic(d diag.Diagnostic) error {
	if _, err := fmt.Fprintf(p.w, "%s%s %s: %s\n",
		p.location(d.Primary), p.severity(d.Severity), p.code.Sprint(d.Code.ID()), d.Message); err != nil {
		return err
	}
	if p.opts.ShowSource {
		if err := p.snippet(d.Primary); err != nil {
			return err
		}
	}
	if !p.opts.ShowNotes {
		return nil
	}
	for _, n := range d.Notes {
		if _, err := fmt.Fprintf(p.w, "  %s %s%s\n", p.dim.Sprint("note:"), p.location(n.Loc), n.Msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) snippet(loc source.Location) error {
	if !loc.IsValid() {
		return nil
	}
	line, ok := p.line(loc.Path, int(loc.Line))
	if !ok {
		return nil
	}
	gutter := fmt.Sprintf("%5d | ", loc.Line)
	if _, err := fmt.Fprintf(p.w, "%s%s\n", p.dim.Sprint(gutter), line); err != nil {
		return err
	}
	if loc.Col == 0 {
		return nil
	}
	// keep tabs so the caret lines up under the source text
	var pad strings.Builder
	for i, r := range line {
		if i >= int(loc.Col)-1 {
			break
		}
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}
	_, err := fmt.Fprintf(p.w, "%s%s%s\n", p.dim.Sprint("      | "), pad.String(), p.caret.Sprint("^"))
	return err
}

func (p *printer) line(path string, n int) (string, bool) {
	lines, ok := p.lines[path]
	if !ok {
		lines = readLines(path)
		p.lines[path] = lines
	}
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out
}
