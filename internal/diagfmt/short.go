package diagfmt

import (
	"io"

	"busindex/internal/diag"
)

// Short prints one sorted line per diagnostic: "severity CODE path:line:col message".
func Short(w io.Writer, bag *diag.Bag, opts Options) error {
	out := diag.FormatShortDiagnostics(visible(bag, opts), opts.PathMode, opts.BaseDir, opts.ShowNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
