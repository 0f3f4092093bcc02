package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/mskrss/background-pingu/internal/acquire"
	"github.com/mskrss/background-pingu/internal/analyzer"
	"github.com/mskrss/background-pingu/internal/catalog"
	"github.com/mskrss/background-pingu/internal/facts"
	"github.com/mskrss/background-pingu/internal/rules"
)

const (
	noIssuesText  = "No known issues found."
	factsKeyWidth = 22
)

var (
	criticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	majorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderer writes diagnoses to a terminal.
type renderer struct {
	out   io.Writer
	width int
	color bool
}

func newRenderer(out io.Writer, width int, color bool) *renderer {
	return &renderer{out: out, width: width, color: color}
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func severityStyle(s rules.Severity) lipgloss.Style {
	switch s {
	case rules.Critical:
		return criticalStyle
	case rules.Major:
		return majorStyle
	case rules.Warning:
		return warningStyle
	default:
		return infoStyle
	}
}

// glyphSeverity maps a line's leading glyph back to its severity, so that
// combined messages color each part on its own.
func glyphSeverity(line string, fallback rules.Severity) rules.Severity {
	for _, s := range []rules.Severity{rules.Critical, rules.Major, rules.Warning, rules.Info} {
		if strings.HasPrefix(line, s.Glyph()) {
			return s
		}
	}
	return fallback
}

// Report prints the messages of a report, or the no-issues line.
func (r *renderer) Report(report *analyzer.Report) {
	if report.Empty() {
		fmt.Fprintln(r.out, r.style(infoStyle, noIssuesText))
		return
	}
	for i, msg := range report.Messages {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.message(msg)
	}
}

func (r *renderer) message(msg rules.Message) {
	current := msg.Severity
	for _, line := range strings.Split(msg.String(), "\n") {
		current = glyphSeverity(line, current)
		wrapped := line
		if r.width > 0 {
			wrapped = wordwrap.String(line, r.width)
		}
		fmt.Fprintln(r.out, r.style(severityStyle(current), wrapped))
	}
}

// AcquireError prints why a log could not be read. It is distinct from the
// no-issues output.
func (r *renderer) AcquireError(source string, err error) {
	var reason string
	switch {
	case errors.Is(err, acquire.ErrUnsupportedLink):
		reason = "the link is not a paste.ee, mclo.gs or direct .txt/.log link"
	case errors.Is(err, acquire.ErrEmptyLog):
		reason = "the log is empty"
	case errors.Is(err, acquire.ErrFetchFailed):
		reason = "the log could not be downloaded"
	default:
		reason = err.Error()
	}
	fmt.Fprintln(r.out, r.style(criticalStyle, "Could not read log "+source+": "+reason))
}

// Facts prints the fact bundle as an aligned key/value list, followed by the
// catalog version it was classified against.
func (r *renderer) Facts(b *facts.Bundle, cat *catalog.Catalog) {
	rows := [][2]string{
		{"launcher", optional(b.Launcher)},
		{"multimc fork", strconv.FormatBool(b.IsMultiMCFork)},
		{"os", optional(b.OS)},
		{"minecraft folder", facts.Str(b.MinecraftFolder)},
		{"minecraft version", facts.Str(b.MinecraftVersion)},
		{"modloader", optional(b.Modloader)},
		{"fabric loader", facts.Str(b.FabricLoaderVersion)},
		{"java version", facts.Str(b.JavaVersion)},
		{"java major", optionalInt(b.MajorJavaVersion)},
		{"java arguments", facts.Str(b.JavaArguments)},
		{"max memory (MB)", optionalInt(b.MaxMemoryMB)},
		{"mods tier", b.ModsTier.String()},
		{"mods", strconv.Itoa(len(b.Mods))},
		{"catalog version", strconv.Itoa(cat.Version)},
	}

	fmt.Fprintln(r.out, r.style(headerStyle, "Facts"))
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = r.style(dimStyle, "unknown")
		} else if r.width > factsKeyWidth {
			value = truncate.StringWithTail(value, uint(r.width-factsKeyWidth), "...")
		}
		fmt.Fprintf(r.out, "  %-*s%s\n", factsKeyWidth-2, row[0], value)
	}
	for _, m := range b.Mods {
		fmt.Fprintln(r.out, "    "+r.style(dimStyle, "- ")+m)
	}
}

// Rules prints the registry in evaluation order.
func (r *renderer) Rules(names []string) {
	for i, name := range names {
		fmt.Fprintf(r.out, "%3d  %s\n", i+1, name)
	}
}

func optional[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
