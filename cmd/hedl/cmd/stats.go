package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hedl-dev/hedl/pkg/document"
	"github.com/hedl-dev/hedl/pkg/hedl"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Report statistics for a HEDL document",
	Long: `Report statistics for a HEDL document: declared types, root items,
rows (including nested child rows), references, tensors, expressions,
and aliases.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	input, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	doc, err := hedl.Parse(input)
	if err != nil {
		return err
	}

	s := document.CollectStats(doc)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "version\t%d.%d\n", doc.VersionMajor, doc.VersionMinor)
	fmt.Fprintf(w, "types\t%d\n", s.Types)
	fmt.Fprintf(w, "nests\t%d\n", s.Nests)
	fmt.Fprintf(w, "aliases\t%d\n", s.Aliases)
	fmt.Fprintf(w, "root items\t%d\n", s.RootItems)
	fmt.Fprintf(w, "lists\t%d\n", s.Lists)
	fmt.Fprintf(w, "rows\t%d\n", s.Rows)
	fmt.Fprintf(w, "scalars\t%d\n", s.Scalars)
	fmt.Fprintf(w, "references\t%d\n", s.References)
	fmt.Fprintf(w, "tensors\t%d\n", s.Tensors)
	fmt.Fprintf(w, "expressions\t%d\n", s.Exprs)
	return w.Flush()
}
