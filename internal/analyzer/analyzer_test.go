package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mskrss/background-pingu/internal/rules"
)

const prismLog = "Prism Launcher version: 7.1\n\n" +
	"Minecraft folder is:\nC:/Users/me/AppData/Roaming/PrismLauncher/instances/Ranked/.minecraft\n\n" +
	"Checking Java version...\nJava is version 17.0.6, using 64 (amd64) architecture.\n\n" +
	"Main Class:\nnet.fabricmc.loader.impl.launch.knot.KnotClient\n\n" +
	"Mods:\n  [✔️] atum-1.1.3.jar\n  [✔️] SpeedRunIGT-13.3+1.16.1.jar\n\n" +
	"Params:\n  --username Player --version 1.16.1 --gameDir .\n\n" +
	"Java Arguments:\n[-Xms512m, -Xmx6000m]\n\n" +
	"[main/INFO]: Loading Minecraft 1.16.1 with Fabric Loader 0.14.10\n"

func TestAnalyze(t *testing.T) {
	a := New()
	report := a.Analyze(context.Background(), prismLog)

	require.NotEqual(t, uuid.Nil, report.ID)
	require.NotNil(t, report.Facts.Launcher)
	assert.Equal(t, "Prism", report.Facts.LauncherName(""))
	require.Len(t, report.Messages, 2)
	assert.Equal(t, "outdated-fabric-loader", report.Results[0].Rule)
	assert.Equal(t, "memory-allocation", report.Results[1].Rule)

	worst, ok := report.Worst()
	require.True(t, ok)
	assert.Equal(t, rules.Major, worst)
	assert.False(t, report.NeedsReview())
}

func TestAnalyzeNormalizesCarriageReturns(t *testing.T) {
	a := New()
	unix := a.Analyze(context.Background(), prismLog)
	windows := a.Analyze(context.Background(), strings.ReplaceAll(prismLog, "\n", "\r\n"))

	assert.Equal(t, unix.Facts, windows.Facts)
	assert.Equal(t, unix.Messages, windows.Messages)
	assert.NotEqual(t, unix.ID, windows.ID)
}

func TestAnalyzeEmpty(t *testing.T) {
	report := New().Analyze(context.Background(), "")
	assert.True(t, report.Empty())
	assert.NotNil(t, report.Messages)
	_, ok := report.Worst()
	assert.False(t, ok)
}

func TestAnalyzeWithRegistry(t *testing.T) {
	reg, err := rules.NewRegistry()
	require.NoError(t, err)

	report := New(WithRegistry(reg)).Analyze(context.Background(), prismLog)
	assert.True(t, report.Empty())
	assert.Len(t, report.Facts.Mods, 2)
}

func TestAnalyzeLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	report := New(WithLogger(logger)).Analyze(context.Background(), prismLog)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "analyzed log", entry["msg"])
	assert.Equal(t, report.ID.String(), entry["run_id"])
	assert.Equal(t, "competitive", entry["mods_tier"])
	assert.Equal(t, []any{"outdated-fabric-loader", "memory-allocation"}, entry["rules"])
}

func TestAnalyzeConcurrent(t *testing.T) {
	a := New()
	want := a.Analyze(context.Background(), prismLog).Messages

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, a.Analyze(context.Background(), prismLog).Messages)
		}()
	}
	wg.Wait()
}

func TestExtractMatchesAnalyze(t *testing.T) {
	a := New()
	bundle := a.Extract(strings.ReplaceAll(prismLog, "\n", "\r\n"))
	assert.Equal(t, a.Analyze(context.Background(), prismLog).Facts, bundle)
	require.NotNil(t, bundle.FabricLoaderVersion)
	assert.Equal(t, "0.14.10", *bundle.FabricLoaderVersion)
}
