package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	hedllog "github.com/hedl-dev/hedl/internal/log"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes distinguish error classes for scripting.
const (
	exitOK       = 0
	exitSyntax   = 1
	exitSecurity = 2
	exitIO       = 3
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "hedl",
	Short: "HEDL parser, canonicalizer, and converter",
	Long: `hedl works with HEDL documents: a compact text format for
entity-oriented, graph-shaped data.

Commands parse documents, re-emit them in canonical form, validate them
under configurable resource limits, report statistics, and convert to
JSON or YAML.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		handler, err := hedllog.CreateHandlerWithStrings(cmd.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

// Execute runs the root command and maps the error to an exit code:
// 0 success, 1 syntax-class error, 2 security limit, 3 I/O.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	kind, ok := hedlerr.KindOf(err)
	if !ok {
		return exitIO
	}
	switch kind {
	case hedlerr.Security:
		return exitSecurity
	case hedlerr.IO:
		return exitIO
	default:
		return exitSyntax
	}
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "logfmt", "log format: logfmt or json")
}

// readInput returns the content of path, or stdin when path is "-" or
// empty.
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", hedlerr.NewIO(pkgerrors.Wrap(err, "read stdin").Error())
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", hedlerr.NewIO(pkgerrors.Wrapf(err, "read %s", path).Error())
	}
	return string(data), nil
}
