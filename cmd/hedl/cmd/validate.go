package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hedl-dev/hedl/pkg/hedl"
)

var (
	validateLenient   bool
	validateUntrusted bool
	validatePartial   bool
	validateMaxErrors int
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Parse HEDL documents and report errors",
	Long: `Parse HEDL documents and report errors.

Validation runs the full parser, including reference resolution, under
the selected resource limits. With --lenient, unresolved references
become nulls and are reported as warnings instead of errors. With
--partial, parsing continues past item-level errors up to --max-errors.

Exit codes: 0 valid, 1 syntax-class error, 2 security limit, 3 I/O.
With --partial, item-level errors are printed and the exit code is 0.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateLenient, "lenient", false, "null unresolved references instead of failing")
	validateCmd.Flags().BoolVar(&validateUntrusted, "untrusted", false, "use the tightened limits preset")
	validateCmd.Flags().BoolVar(&validatePartial, "partial", false, "collect errors instead of failing on the first")
	validateCmd.Flags().IntVar(&validateMaxErrors, "max-errors", 20, "error budget in --partial mode")
}

func validateOptions() hedl.ParseOptions {
	opts := hedl.DefaultParseOptions()
	if validateUntrusted {
		opts.Limits = hedl.UntrustedLimits()
	}
	opts.StrictRefs = !validateLenient
	if validatePartial {
		opts.Partial.Enabled = true
		opts.Partial.MaxErrors = validateMaxErrors
		opts.Partial.ReplaceWithNull = true
	}
	return opts
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}

	for _, path := range args {
		input, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		res, err := hedl.ParseWithOptions(input, validateOptions())
		if err != nil {
			return err
		}
		for _, pe := range res.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", displayName(path), pe)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: warning: %s\n", displayName(path), w)
		}
		if len(res.Errors) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", displayName(path))
		}
	}
	return nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}
