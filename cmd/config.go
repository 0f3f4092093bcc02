package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mskrss/background-pingu/internal/config"
	pingusignal "github.com/mskrss/background-pingu/internal/signal"
)

var flagConfigForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pingu configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a documented config file",
	Long:  `Init writes the effective settings, with comments for every option, to the config path.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := getConfig().GenerateDocumentedConfig()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagConfigForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// configPath returns the path selected by --config or the default lookup.
func configPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}
	return config.Find()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil && !flagConfigForce {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	err := pingusignal.Critical(func() error {
		return getConfig().SaveDocumentedConfig(path)
	})
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
