// Package acquire turns user input (paste links, local files, stdin) into
// normalized log text for the analyzer.
package acquire

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnsupportedLink is returned for links that are neither a known paste
	// site nor a direct .txt/.log file.
	ErrUnsupportedLink = errors.New("unsupported log link")
	// ErrFetchFailed is returned when the log host did not answer with 200.
	ErrFetchFailed = errors.New("failed to fetch log")
	// ErrEmptyLog is returned when the acquired text is empty.
	ErrEmptyLog = errors.New("log is empty")
)

var (
	pasteEEPattern = regexp.MustCompile(`https://paste\.ee/(?:p/|d/)([a-zA-Z0-9]+)`)
	mclogsPattern  = regexp.MustCompile(`https://mclo\.gs/(\w+)`)
	linkPattern    = regexp.MustCompile(`https?://[^\s<>()\[\]"'` + "`" + `]+`)
)

// ResolveLink maps a user-facing link to the URL serving the raw log.
func ResolveLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if m := pasteEEPattern.FindStringSubmatch(link); m != nil {
		return "https://paste.ee/d/" + m[1] + "/0", nil
	}
	if m := mclogsPattern.FindStringSubmatch(link); m != nil {
		return "https://api.mclo.gs/1/raw/" + m[1], nil
	}
	if strings.HasSuffix(link, ".txt") || strings.HasSuffix(link, ".log") {
		return link, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedLink, link)
}

// FindLinks returns the links in text that ResolveLink accepts, in order of
// appearance and without duplicates.
func FindLinks(text string) []string {
	var links []string
	seen := map[string]bool{}
	for _, raw := range linkPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:!?")
		if _, err := ResolveLink(raw); err != nil {
			continue
		}
		if !seen[raw] {
			seen[raw] = true
			links = append(links, raw)
		}
	}
	return links
}

// IsLink reports whether input looks like a URL rather than a path.
func IsLink(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}
