package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mskrss/background-pingu/internal/acquire"
	"github.com/mskrss/background-pingu/internal/logging"
)

// errUnreadable is returned after at least one source could not be read.
// The reason has already been printed.
var errUnreadable = errors.New("one or more logs could not be read")

var flagDiagnoseScan bool

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <link|file|->...",
	Short: "Report known problems in launcher logs",
	Long: `Diagnose reads each log and prints the problems found, most relevant first.
A source is a paste.ee or mclo.gs link, a direct .txt/.log link, a file path, or "-" for stdin.
With --scan, each argument is treated as chat text and every link in it is diagnosed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().BoolVar(&flagDiagnoseScan, "scan", false, "extract links from the arguments instead of reading them directly")
}

// diagnoseSources expands the arguments into the sources to read.
func diagnoseSources(args []string, scan bool) []string {
	if !scan {
		return args
	}
	return acquire.FindLinks(strings.Join(args, " "))
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	c := getConfig()
	out := newOutput(cmd.OutOrStdout())

	an, err := newAnalyzer(c)
	if err != nil {
		return err
	}
	fetcher := newFetcher(c)

	sources := diagnoseSources(args, flagDiagnoseScan)
	if len(sources) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No log links found.")
		return nil
	}

	failed := false
	for i, source := range sources {
		if len(sources) > 1 {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.style(headerStyle, source))
		}

		text, err := readInput(ctx, fetcher, source, cmd.InOrStdin())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("could not read log", "source", source, "error", err)
			out.AcquireError(source, err)
			failed = true
			continue
		}
		out.Report(an.Analyze(ctx, text))
	}

	if failed {
		return errUnreadable
	}
	return nil
}
