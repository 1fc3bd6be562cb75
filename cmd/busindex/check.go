package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"busindex/internal/config"
	"busindex/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [packages]",
	Short: "Verify that the index artifact is up to date",
	Long: `Regenerate the index in memory and compare it with the artifact on disk.
Exits with a non-zero status when the artifact is missing or stale`,
	RunE: runCheck,
}

func init() {
	addIndexFlags(checkCmd)
	checkCmd.Flags().Bool("diff", true, "print a unified diff when the artifact is stale")
	checkCmd.Flags().Int("context", 3, "diff context lines")
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readRunOptions(cmd, args)
	if err != nil {
		return err
	}
	showDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return fmt.Errorf("failed to get diff flag: %w", err)
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	res, runErr := driver.Check(cmd.Context(), opts.driver)
	if err := reportRun(cmd, opts, res); err != nil {
		return err
	}
	if runErr != nil || res.Bag.HasErrors() {
		return errReported
	}

	onDisk, err := driver.ReadArtifact(res.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", res.OutputPath, err)
	}
	want := res.Artifact
	name := displayPath(res.OutputPath)
	out := cmd.OutOrStdout()

	switch {
	case want == nil && onDisk == nil:
		summarize(out, opts, "ok: no subscribers and no artifact")
		return nil
	case want == nil:
		fmt.Fprintf(out, "stale: %s exists but no subscriber methods were found\n", name)
		return errReported
	case bytes.Equal(want, onDisk):
		summarize(out, opts, "ok: %s is up to date", name)
		return nil
	}

	if onDisk == nil {
		fmt.Fprintf(out, "stale: %s does not exist; run busindex generate\n", name)
	} else {
		fmt.Fprintf(out, "stale: %s differs from the current sources; run busindex generate\n", name)
	}
	if showDiff && res.Manifest.Config.Output.Format != config.FormatMsgpack {
		fmt.Fprint(out, unifiedDiff(name, onDisk, want, contextLines))
	}
	return errReported
}

// unifiedDiff renders the patch that turns the file on disk into the fresh artifact.
func unifiedDiff(name string, onDisk, fresh []byte, context int) string {
	from, a := "a/"+name, difflib.SplitLines(string(onDisk))
	if onDisk == nil {
		from, a = "/dev/null", []string{}
	}
	u := difflib.UnifiedDiff{
		A:        a,
		B:        difflib.SplitLines(string(fresh)),
		FromFile: from,
		ToFile:   "b/" + name,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %v)\n", err)
	}
	return s
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
