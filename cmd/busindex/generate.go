package main

import (
	"github.com/spf13/cobra"

	"busindex/internal/driver"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] [packages]",
	Short: "Index subscriber methods and write the lookup table",
	Long: `Load the packages (default ./...), validate every //eventbus:subscribe method,
merge inherited subscriber methods and write the index artifact`,
	RunE: runGenerate,
}

func init() {
	addIndexFlags(generateCmd)
}

// runGenerate writes the artifact. Validation errors are reported and make the
// command fail, but the artifact for the valid declarations is still written.
func runGenerate(cmd *cobra.Command, args []string) error {
	opts, err := readRunOptions(cmd, args)
	if err != nil {
		return err
	}

	res, runErr := driver.Generate(cmd.Context(), opts.driver)
	if err := reportRun(cmd, opts, res); err != nil {
		return err
	}
	if runErr != nil {
		return errReported
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Emitted():
		summarize(out, opts, "wrote %s: %d subscribers, %d methods, %d left to reflection",
			displayPath(res.OutputPath), res.Table.Len(), res.Table.Entries(), len(res.Skipped))
	default:
		summarize(out, opts, "no subscriber methods found; %s not written", displayPath(res.OutputPath))
	}
	if res.Bag.HasErrors() {
		return errReported
	}
	return nil
}
