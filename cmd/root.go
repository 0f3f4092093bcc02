package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mskrss/background-pingu/internal/config"
	"github.com/mskrss/background-pingu/internal/logging"
	pingusignal "github.com/mskrss/background-pingu/internal/signal"
)

var (
	// rootCtx holds the signal-cancellable context for the application
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// cfg is the loaded tool configuration
	cfg *config.Config

	flagConfigPath string
	flagNoColor    bool
	flagWidth      int
)

var rootCmd = &cobra.Command{
	Use:   "pingu",
	Short: "Diagnose MultiMC-family launcher logs",
	Long: `pingu reads a Minecraft launcher log (a file, stdin, or a paste.ee / mclo.gs link),
extracts facts about the setup and reports known problems with suggested fixes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootCancel != nil {
			rootCancel()
		}
		rootCtx, rootCancel = pingusignal.WithSignalCancel(context.Background())

		path := configPath()
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded

		if err := logging.Init(cfg.Log.GetPath(), logging.ParseLevel(cfg.Log.GetLevel())); err != nil {
			return err
		}
		logging.Debug("command started", "command", cmd.CommandPath(), "config", path)
		return nil
	},
}

// Execute runs the root command. Cleanup happens here rather than in a
// post-run hook, which cobra skips when a command fails.
func Execute() error {
	defer func() {
		_ = logging.Close()
		if rootCancel != nil {
			rootCancel()
		}
	}()
	return rootCmd.Execute()
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
func GetContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// getConfig returns the loaded config, or defaults when PersistentPreRun
// did not run.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// newOutput builds a renderer for out honoring config and flags.
func newOutput(out io.Writer) *renderer {
	c := getConfig()
	width := c.Render.GetWidth()
	if flagWidth > 0 {
		width = flagWidth
	}
	return newRenderer(out, width, c.Render.ShouldColor() && !flagNoColor)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file (default: $PINGU_CONFIG or ~/.pingu/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().IntVar(&flagWidth, "width", 0, "wrap output at this many columns (default: from config)")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(configCmd)
}
