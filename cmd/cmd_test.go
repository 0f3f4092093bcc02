package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mskrss/background-pingu/internal/config"
	"github.com/mskrss/background-pingu/internal/logging"
	"github.com/mskrss/background-pingu/internal/pubsub"
	"github.com/mskrss/background-pingu/internal/rules"
	"github.com/mskrss/background-pingu/internal/watcher"
)

const testConfig = "[log]\npath = \"-\"\n\n[render]\ncolor = false\n\n[fetch]\ncache_minutes = 0\nmax_retries = 0\n"

// execute runs the root command with a quiet config and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0600))

	// Flag variables outlive a single Execute call.
	flagConfigPath, flagNoColor, flagWidth = "", false, 0
	flagDiagnoseScan, flagConfigForce = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := Execute()
	return out.String(), err
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiagnoseFile(t *testing.T) {
	out, err := execute(t, "", "diagnose", writeLog(t, outdatedLoaderLog))
	require.NoError(t, err)
	assert.Contains(t, out, rules.Major.Glyph())
	assert.NotContains(t, out, noIssuesText)
}

func TestDiagnoseNothingFound(t *testing.T) {
	out, err := execute(t, "", "diagnose", writeLog(t, "just some text\n"))
	require.NoError(t, err)
	assert.Equal(t, noIssuesText+"\n", out)
}

func TestDiagnoseStdin(t *testing.T) {
	out, err := execute(t, strings.ReplaceAll(outdatedLoaderLog, "\n", "\r\n"), "diagnose", "-")
	require.NoError(t, err)
	assert.Contains(t, out, rules.Major.Glyph())
}

func TestDiagnoseMissingFile(t *testing.T) {
	out, err := execute(t, "", "diagnose", filepath.Join(t.TempDir(), "missing.log"))
	require.ErrorIs(t, err, errUnreadable)
	assert.Contains(t, out, "Could not read log")
	assert.NotContains(t, out, noIssuesText)
}

func TestDiagnoseEmptyStdin(t *testing.T) {
	out, err := execute(t, "  \n", "diagnose", "-")
	require.ErrorIs(t, err, errUnreadable)
	assert.Contains(t, out, "the log is empty")
}

func TestDiagnoseMultipleSources(t *testing.T) {
	good := writeLog(t, outdatedLoaderLog)
	missing := filepath.Join(t.TempDir(), "missing.log")

	out, err := execute(t, "", "diagnose", good, missing)
	require.ErrorIs(t, err, errUnreadable)
	assert.Contains(t, out, good)
	assert.Contains(t, out, missing)
	assert.Contains(t, out, rules.Major.Glyph(), "a readable log is still diagnosed")
}

func TestDiagnoseScan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, outdatedLoaderLog)
	}))
	defer srv.Close()

	out, err := execute(t, "", "diagnose", "--scan", "my game crashed, log here:", srv.URL+"/latest.log", "thanks!")
	require.NoError(t, err)
	assert.Contains(t, out, rules.Major.Glyph())
}

func TestDiagnoseScanNoLinks(t *testing.T) {
	out, err := execute(t, "", "diagnose", "--scan", "help my game is broken")
	require.NoError(t, err)
	assert.Equal(t, "No log links found.\n", out)
}

func TestDiagnoseUnsupportedLink(t *testing.T) {
	out, err := execute(t, "", "diagnose", "https://example.com/paste")
	require.ErrorIs(t, err, errUnreadable)
	assert.Contains(t, out, "not a paste.ee")
}

func TestFacts(t *testing.T) {
	out, err := execute(t, "", "facts", writeLog(t, outdatedLoaderLog))
	require.NoError(t, err)
	assert.Contains(t, out, "fabric loader")
	assert.Contains(t, out, "0.14.10")
	assert.Contains(t, out, "catalog version")
}

func TestPreRunReplacesRootContext(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0600))
	flagConfigPath = cfgPath
	t.Cleanup(func() {
		flagConfigPath = ""
		rootCancel()
		_ = logging.Close()
	})

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	first := GetContext()
	require.NoError(t, first.Err())

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.ErrorIs(t, first.Err(), context.Canceled, "the previous context is released")
	require.NoError(t, GetContext().Err())
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "", "rules")
	require.NoError(t, err)
	names := rules.Default().Names()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, len(names))
	assert.True(t, strings.HasSuffix(lines[0], names[0]))
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], names[len(names)-1]))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "", "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Fetch.GetMaxRetries())

	_, err = execute(t, "", "--config", path, "config", "init")
	require.Error(t, err, "existing config is not overwritten")

	_, err = execute(t, "", "--config", path, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[fetch]")
	assert.Contains(t, out, "max_retries = 0")
}

func TestDiagnoseSources(t *testing.T) {
	assert.Equal(t, []string{"a.log", "-"}, diagnoseSources([]string{"a.log", "-"}, false))
	assert.Equal(t,
		[]string{"https://mclo.gs/abc"},
		diagnoseSources([]string{"see", "https://mclo.gs/abc,", "and", "https://mclo.gs/abc"}, true))
}

func TestWatchLoop(t *testing.T) {
	path := writeLog(t, outdatedLoaderLog)
	an, err := newAnalyzer(&config.Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	events := make(chan pubsub.Event[watcher.WatcherEvent])
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(context.Background(), &buf, newRenderer(&buf, 80, false), an, path, events)
	}()

	changed := watcher.WatcherEvent{Type: watcher.LogChanged, Path: path}
	events <- pubsub.Event[watcher.WatcherEvent]{Type: pubsub.UpdatedEvent, Payload: changed}
	events <- pubsub.Event[watcher.WatcherEvent]{Type: pubsub.DeletedEvent, Payload: watcher.WatcherEvent{Type: watcher.LogRemoved, Path: path}}
	events <- pubsub.Event[watcher.WatcherEvent]{Type: pubsub.CreatedEvent, Payload: changed}
	close(events)
	require.NoError(t, <-done)

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, path), "one header per diagnosis plus the removal notice")
	assert.Equal(t, 3, strings.Count(out, "old version of Fabric Loader"), "a removal is not diagnosed")
	assert.Contains(t, out, "was removed, waiting for it to return")
	assert.NotContains(t, out, "Could not read log")
}

func TestWatchLoopStopsOnCancel(t *testing.T) {
	path := writeLog(t, "just some text\n")
	an, err := newAnalyzer(&config.Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	require.NoError(t, watchLoop(ctx, &buf, newRenderer(&buf, 80, false), an, path, make(chan pubsub.Event[watcher.WatcherEvent])))
	assert.Contains(t, buf.String(), noIssuesText)
}

func TestNewAnalyzerCatalogOverride(t *testing.T) {
	_, err := newAnalyzer(&config.Config{Catalog: config.CatalogConfig{Path: filepath.Join(t.TempDir(), "missing.toml")}})
	require.Error(t, err)
}
