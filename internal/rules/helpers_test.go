package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mskrss/background-pingu/internal/catalog"
	"github.com/mskrss/background-pingu/internal/facts"
)

// newInput extracts facts from log the same way the analyzer does.
func newInput(log string) *Input {
	cat := catalog.Default()
	return &Input{Facts: facts.Extract(log, cat), Log: log, Catalog: cat}
}

// logBuilder assembles launcher logs section by section.
type logBuilder struct {
	sb strings.Builder
}

func newLog(launcher string) *logBuilder {
	b := &logBuilder{}
	if launcher != "" {
		b.sb.WriteString(launcher + " version: 1.0\n\n")
	}
	return b
}

func (b *logBuilder) java(version string) *logBuilder {
	b.sb.WriteString("Checking Java version...\nJava is version " + version + ", using 64 (amd64) architecture.\n\n")
	return b
}

func (b *logBuilder) folder(path string) *logBuilder {
	b.sb.WriteString("Minecraft folder is:\n" + path + "\n\n")
	return b
}

func (b *logBuilder) mainClass(class string) *logBuilder {
	b.sb.WriteString("Main Class:\n" + class + "\n\n")
	return b
}

func (b *logBuilder) mods(names ...string) *logBuilder {
	b.sb.WriteString("Mods:\n")
	for _, n := range names {
		b.sb.WriteString("  [✔️] " + n + "\n")
	}
	b.sb.WriteString("\n")
	return b
}

func (b *logBuilder) version(v string) *logBuilder {
	b.sb.WriteString("Params:\n  --username Player --version " + v + " --gameDir .\n\n")
	return b
}

func (b *logBuilder) javaArgs(args string) *logBuilder {
	b.sb.WriteString("Java Arguments:\n" + args + "\n\n")
	return b
}

func (b *logBuilder) fabric(mc, loader string) *logBuilder {
	b.sb.WriteString("[main/INFO]: Loading Minecraft " + mc + " with Fabric Loader " + loader + "\n")
	return b
}

func (b *logBuilder) line(s string) *logBuilder {
	b.sb.WriteString(s + "\n")
	return b
}

func (b *logBuilder) String() string { return b.sb.String() }

// check runs one rule over log.
func check(rule func(*Input) *Message, log string) *Message {
	return rule(newInput(log))
}

// results runs the default registry and indexes messages by rule name.
func results(t *testing.T, log string) map[string]Message {
	t.Helper()
	out := map[string]Message{}
	for _, r := range Default().Results(newInput(log)) {
		_, dup := out[r.Rule]
		require.False(t, dup, "rule %s reported twice", r.Rule)
		out[r.Rule] = r.Message
	}
	return out
}
