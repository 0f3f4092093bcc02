package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mskrss/background-pingu/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List diagnostic rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		newOutput(cmd.OutOrStdout()).Rules(rules.Default().Names())
		return nil
	},
}
