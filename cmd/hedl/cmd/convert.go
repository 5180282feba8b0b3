package cmd

import (
	"fmt"

	"github.com/google/renameio/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/hedl"
)

var (
	convertTo     string
	convertFrom   string
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert between HEDL, JSON, and YAML",
	Long: `Convert between HEDL, JSON, and YAML.

The input format defaults to HEDL; use --from json or --from yaml to
import. The output format defaults to JSON; use --to yaml or --to hedl.
Converted output goes to stdout, or to --output atomically.

Examples:
  hedl convert doc.hedl                     # HEDL -> JSON
  hedl convert --to yaml doc.hedl           # HEDL -> YAML
  hedl convert --from json --to hedl d.json # JSON -> canonical HEDL`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertTo, "to", "json", "output format: json, yaml, or hedl")
	convertCmd.Flags().StringVar(&convertFrom, "from", "hedl", "input format: hedl, json, or yaml")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "write output to file (atomic)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	input, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	var doc *hedl.Document
	switch convertFrom {
	case "hedl":
		doc, err = hedl.Parse(input)
	case "json":
		doc, err = hedl.FromJSON(input)
	case "yaml":
		doc, err = hedl.FromYAML(input)
	default:
		return fmt.Errorf("unknown input format %q", convertFrom)
	}
	if err != nil {
		return err
	}

	var out string
	switch convertTo {
	case "json":
		out, err = hedl.ToJSON(doc)
	case "yaml":
		out, err = hedl.ToYAML(doc)
	case "hedl":
		out, err = hedl.Canonicalize(doc)
	default:
		return fmt.Errorf("unknown output format %q", convertTo)
	}
	if err != nil {
		return err
	}

	if convertOutput != "" {
		if err := renameio.WriteFile(convertOutput, []byte(out), 0o644); err != nil {
			return hedlerr.NewIO(pkgerrors.Wrapf(err, "write %s", convertOutput).Error())
		}
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
