package cmd

import (
	"context"
	"io"

	"github.com/mskrss/background-pingu/internal/acquire"
	"github.com/mskrss/background-pingu/internal/analyzer"
	"github.com/mskrss/background-pingu/internal/catalog"
	"github.com/mskrss/background-pingu/internal/config"
)

// stdinSource is the argument that reads the log from standard input.
const stdinSource = "-"

// readInput loads the log named by source: a paste link, "-" for stdin, or a
// file path.
func readInput(ctx context.Context, fetcher *acquire.Fetcher, source string, stdin io.Reader) (string, error) {
	switch {
	case source == stdinSource:
		return acquire.ReadAll(stdin)
	case acquire.IsLink(source):
		return fetcher.Fetch(ctx, source)
	default:
		return acquire.ReadFile(source)
	}
}

func newFetcher(c *config.Config) *acquire.Fetcher {
	fc := acquire.DefaultFetcherConfig()
	fc.Timeout = c.Fetch.GetTimeout()
	fc.MaxRetries = c.Fetch.GetMaxRetries()
	fc.CacheTTL = c.Fetch.GetCacheTTL()
	return acquire.NewFetcher(fc)
}

// newAnalyzer builds an analyzer using the configured catalog override, if any.
func newAnalyzer(c *config.Config) (*analyzer.Analyzer, error) {
	if c.Catalog.Path == "" {
		return analyzer.New(), nil
	}
	cat, err := catalog.Load(c.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return analyzer.New(analyzer.WithCatalog(cat)), nil
}
