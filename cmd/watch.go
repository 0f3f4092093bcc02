package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mskrss/background-pingu/internal/acquire"
	"github.com/mskrss/background-pingu/internal/analyzer"
	"github.com/mskrss/background-pingu/internal/logging"
	"github.com/mskrss/background-pingu/internal/pubsub"
	"github.com/mskrss/background-pingu/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-diagnose a local log whenever it changes",
	Long: `Watch diagnoses a log file, then diagnoses it again each time the launcher writes to it.
Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	c := getConfig()
	out := newOutput(cmd.OutOrStdout())

	an, err := newAnalyzer(c)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{Path: args[0], DebounceDur: c.Watch.GetDebounce()})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	sub := w.Broker().Subscribe(ctx)
	if err := w.Start(); err != nil {
		return err
	}

	return watchLoop(ctx, cmd.OutOrStdout(), out, an, w.Path(), sub)
}

// watchLoop diagnoses path once and again for every change until ctx is done
// or events is closed. A removed log is reported and then waited for.
func watchLoop(ctx context.Context, stdout io.Writer, out *renderer, an *analyzer.Analyzer, path string, events <-chan pubsub.Event[watcher.WatcherEvent]) error {
	diagnoseFile(ctx, stdout, out, an, path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			fmt.Fprintln(stdout)
			if evt.Type == pubsub.DeletedEvent {
				fmt.Fprintln(stdout, out.style(dimStyle, fmt.Sprintf("[%s] %s was removed, waiting for it to return", time.Now().Format("15:04:05"), path)))
				continue
			}
			diagnoseFile(ctx, stdout, out, an, path)
		}
	}
}

func diagnoseFile(ctx context.Context, stdout io.Writer, out *renderer, an *analyzer.Analyzer, path string) {
	fmt.Fprintln(stdout, out.style(dimStyle, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), path)))
	text, err := acquire.ReadFile(path)
	if err != nil {
		logging.Debug("watched log unreadable", "path", path, "error", err)
		out.AcquireError(path, err)
		return
	}
	out.Report(an.Analyze(ctx, text))
}
