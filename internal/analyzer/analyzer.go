// Package analyzer diagnoses one launcher log end to end: it normalizes the
// text, extracts the fact bundle and runs the rule registry over it.
package analyzer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mskrss/background-pingu/internal/catalog"
	"github.com/mskrss/background-pingu/internal/facts"
	"github.com/mskrss/background-pingu/internal/logging"
	"github.com/mskrss/background-pingu/internal/rules"
)

// Report is the outcome of one analysis.
type Report struct {
	ID       uuid.UUID
	Facts    *facts.Bundle
	Results  []rules.Result
	Messages []rules.Message
	Duration time.Duration
}

// Empty reports whether no rule produced a message.
func (r *Report) Empty() bool { return len(r.Messages) == 0 }

// NeedsReview reports whether any message asks for a maintainer.
func (r *Report) NeedsReview() bool {
	for _, m := range r.Messages {
		if m.Review {
			return true
		}
	}
	return false
}

// Worst returns the highest severity in the report and false when it is empty.
func (r *Report) Worst() (rules.Severity, bool) {
	if r.Empty() {
		return rules.Info, false
	}
	worst := r.Messages[0].Severity
	for _, m := range r.Messages[1:] {
		if m.Severity > worst {
			worst = m.Severity
		}
	}
	return worst, true
}

// Analyzer is safe for concurrent use; it holds no per-log state.
type Analyzer struct {
	catalog  *catalog.Catalog
	registry *rules.Registry
	logger   *slog.Logger
}

// Option configures an Analyzer during construction.
type Option func(*Analyzer)

// WithCatalog replaces the embedded reference catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *Analyzer) {
		a.catalog = c
	}
}

// WithRegistry replaces the production rule registry.
func WithRegistry(r *rules.Registry) Option {
	return func(a *Analyzer) {
		a.registry = r
	}
}

// WithLogger sets the logger for analysis summaries.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer using the default catalog, registry and package
// logger unless overridden.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.catalog == nil {
		a.catalog = catalog.Default()
	}
	if a.registry == nil {
		a.registry = rules.Default()
	}
	if a.logger == nil {
		a.logger = logging.Logger()
	}
	return a
}

// Catalog returns the catalog the analyzer evaluates against.
func (a *Analyzer) Catalog() *catalog.Catalog { return a.catalog }

// Normalize strips carriage returns so every extractor sees "\n" line endings.
func Normalize(log string) string {
	return strings.ReplaceAll(log, "\r", "")
}

// Extract returns the fact bundle for log without evaluating any rule.
func (a *Analyzer) Extract(log string) *facts.Bundle {
	return facts.Extract(Normalize(log), a.catalog)
}

// Analyze diagnoses log. Any input is accepted; a log with nothing
// recognizable yields an empty report.
func (a *Analyzer) Analyze(ctx context.Context, log string) *Report {
	start := time.Now()
	log = Normalize(log)

	bundle := facts.Extract(log, a.catalog)
	results := a.registry.Results(&rules.Input{Facts: bundle, Log: log, Catalog: a.catalog})

	report := &Report{
		ID:       uuid.New(),
		Facts:    bundle,
		Results:  results,
		Messages: make([]rules.Message, 0, len(results)),
	}
	fired := make([]string, 0, len(results))
	for _, r := range results {
		report.Messages = append(report.Messages, r.Message)
		fired = append(fired, r.Rule)
	}
	report.Duration = time.Since(start)

	a.logger.InfoContext(ctx, "analyzed log",
		"run_id", report.ID.String(),
		"bytes", len(log),
		"mods", len(bundle.Mods),
		"mods_tier", bundle.ModsTier.String(),
		"launcher", bundle.LauncherName(""),
		"rules", fired,
		"review", report.NeedsReview(),
		"duration", report.Duration,
	)
	return report
}
