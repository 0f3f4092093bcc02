package rules

import (
	"fmt"
	"strings"

	"github.com/mskrss/background-pingu/internal/catalog"
)

// Severity orders messages from informational to critical.
type Severity int

const (
	Info Severity = iota
	Warning
	Major
	Critical
)

// Glyph returns the leading marker the presentation layer keys formatting off.
func (s Severity) Glyph() string {
	switch s {
	case Critical:
		return "🔴"
	case Major:
		return "🟠"
	case Warning:
		return "🟡"
	default:
		return "🟢"
	}
}

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Major:
		return "major"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Message is one diagnosis. Messages have no identity beyond their content.
type Message struct {
	Severity Severity
	Text     string
	// Review marks messages that ping a maintainer because the evidence is
	// unclear or the heuristic needs checking.
	Review bool
}

// String renders the message with its severity glyph.
func (m Message) String() string {
	return m.Severity.Glyph() + " " + m.Text
}

func newMessage(s Severity, format string, args ...any) *Message {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return &Message{Severity: s, Text: text}
}

func critical(format string, args ...any) *Message { return newMessage(Critical, format, args...) }
func major(format string, args ...any) *Message    { return newMessage(Major, format, args...) }
func warning(format string, args ...any) *Message  { return newMessage(Warning, format, args...) }
func info(format string, args ...any) *Message     { return newMessage(Info, format, args...) }

// notify appends the maintainer mention and flags the message for review.
func (m *Message) notify(cat *catalog.Catalog) *Message {
	if cat.Maintainer != "" {
		m.Text += " " + cat.Maintainer
	}
	m.Review = true
	return m
}

// escalate builds a review message for evidence the rules cannot resolve.
func escalate(cat *catalog.Catalog, format string, args ...any) *Message {
	m := newMessage(Major, format, args...)
	if cat.Maintainer != "" {
		m.Text = cat.Maintainer + " :bug: " + m.Text
	} else {
		m.Text = ":bug: " + m.Text
	}
	m.Review = true
	return m
}

// combine folds several findings of one rule into a single message. The first
// part sets the severity; later parts keep their own glyph on their own line.
func combine(parts []*Message) *Message {
	if len(parts) == 0 {
		return nil
	}
	lines := []string{parts[0].Text}
	review := parts[0].Review
	for _, p := range parts[1:] {
		lines = append(lines, p.String())
		review = review || p.Review
	}
	return &Message{
		Severity: parts[0].Severity,
		Text:     strings.Join(lines, "\n"),
		Review:   review,
	}
}

// plural picks the singular or plural form for n items.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
