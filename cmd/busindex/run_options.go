package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"busindex/internal/diag"
	"busindex/internal/diagfmt"
	"busindex/internal/driver"
	"busindex/internal/index"
	"busindex/internal/source"
	"busindex/internal/version"
)

// addIndexFlags registers the flags shared by generate and check.
func addIndexFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", ".", "project directory (where busindex.toml is searched from)")
	cmd.Flags().StringP("output", "o", "", "artifact path, overrides [output].path")
	cmd.Flags().String("format", "", "artifact format (go|json|msgpack), overrides [output].format")
	cmd.Flags().StringSlice("namespace", nil, "application import-path prefixes, overrides [index].namespace")
	cmd.Flags().StringSlice("tags", nil, "build tags")
	cmd.Flags().Int("jobs", 0, "max parallel extraction workers (0=auto)")
}

type runOptions struct {
	driver  driver.Options
	format  diagfmt.Format
	diag    diagfmt.Options
	quiet   bool
	timings bool
}

// readRunOptions collects the driver options and diagnostics settings.
// Positional args are package patterns.
func readRunOptions(cmd *cobra.Command, args []string) (runOptions, error) {
	var opts runOptions
	root := cmd.Root().PersistentFlags()

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return opts, fmt.Errorf("failed to get dir flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return opts, fmt.Errorf("failed to get output flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	namespace, err := cmd.Flags().GetStringSlice("namespace")
	if err != nil {
		return opts, fmt.Errorf("failed to get namespace flag: %w", err)
	}
	tags, err := cmd.Flags().GetStringSlice("tags")
	if err != nil {
		return opts, fmt.Errorf("failed to get tags flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	configPath, err := root.GetString("config")
	if err != nil {
		return opts, fmt.Errorf("failed to get config flag: %w", err)
	}
	maxDiagnostics, err := root.GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	diagFormat, err := root.GetString("diagnostics-format")
	if err != nil {
		return opts, fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	fullPath, err := root.GetBool("fullpath")
	if err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	verbose, err := root.GetBool("verbose")
	if err != nil {
		return opts, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if verbose && opts.quiet {
		return opts, fmt.Errorf("verbose and quiet flags cannot be used together")
	}

	if opts.format, err = diagfmt.ParseFormat(diagFormat); err != nil {
		return opts, err
	}
	colorStderr, err := useColor(cmd, os.Stderr)
	if err != nil {
		return opts, err
	}

	opts.driver = driver.Options{
		Dir:            dir,
		ConfigPath:     configPath,
		Patterns:       args,
		Tags:           tags,
		Namespace:      namespace,
		Output:         output,
		Format:         format,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}

	pathMode := source.PathModeRelative
	if fullPath {
		pathMode = source.PathModeAbsolute
	}
	minSev := diag.SevWarning
	switch {
	case verbose:
		minSev = diag.SevInfo
	case opts.quiet:
		minSev = diag.SevError
	}
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}
	opts.diag = diagfmt.Options{
		Color:       colorStderr,
		PathMode:    pathMode,
		BaseDir:     baseDir,
		MinSeverity: minSev,
		ShowNotes:   verbose,
		ShowSource:  true,
	}
	return opts, nil
}

// reportRun prints diagnostics and timings for a finished driver run.
func reportRun(cmd *cobra.Command, opts runOptions, res *driver.Result) error {
	stderr := cmd.ErrOrStderr()
	if res == nil {
		return nil
	}
	meta := diagfmt.SarifRunMeta{ToolName: "busindex", ToolVersion: version.Version, InvocationArgs: os.Args[1:]}
	if res.Bag.Len() > 0 || opts.format == diagfmt.FormatSarif || opts.format == diagfmt.FormatJSON {
		res.Bag.Sort()
		if err := diagfmt.Write(stderr, opts.format, res.Bag, opts.diag, meta); err != nil {
			return fmt.Errorf("failed to write diagnostics: %w", err)
		}
	}
	if res.Bag.Dropped() > 0 && !opts.quiet {
		fmt.Fprintf(stderr, "%d more diagnostics were dropped (raise --max-diagnostics)\n", res.Bag.Dropped())
	}
	if opts.timings && res.Timer != nil {
		fmt.Fprint(stderr, res.Timer.Summary())
	}
	if res.State == index.StateFaulted {
		dumpTraceRing(stderr)
	}
	return nil
}

// summarize prints the one-line outcome unless --quiet.
func summarize(w io.Writer, opts runOptions, format string, args ...any) {
	if opts.quiet {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
