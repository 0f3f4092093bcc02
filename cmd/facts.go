package cmd

import (
	"github.com/spf13/cobra"
)

var factsCmd = &cobra.Command{
	Use:   "facts <link|file|->",
	Short: "Show the facts extracted from a log",
	Long:  `Facts prints everything pingu could determine about the setup in a log, without running any rules.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFacts,
}

func runFacts(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	c := getConfig()
	out := newOutput(cmd.OutOrStdout())

	an, err := newAnalyzer(c)
	if err != nil {
		return err
	}

	text, err := readInput(ctx, newFetcher(c), args[0], cmd.InOrStdin())
	if err != nil {
		out.AcquireError(args[0], err)
		return errUnreadable
	}
	out.Facts(an.Extract(text), an.Catalog())
	return nil
}
