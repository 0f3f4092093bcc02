package rules

import (
	"strconv"
	"strings"

	"github.com/blang/semver"
)

// parseVersion parses dotted versions such as "0.14.10" or "13.3". Short
// versions are padded with zeros.
func parseVersion(v string) (semver.Version, bool) {
	sv, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, false
	}
	return sv, true
}

// versionBelow reports whether v < limit. ok is false when either side is
// not a version.
func versionBelow(v, limit string) (below, ok bool) {
	a, okA := parseVersion(v)
	b, okB := parseVersion(limit)
	if !okA || !okB {
		return false, false
	}
	return a.LT(b), true
}

// versionAbove reports whether v > limit.
func versionAbove(v, limit string) (above, ok bool) {
	a, okA := parseVersion(v)
	b, okB := parseVersion(limit)
	if !okA || !okB {
		return false, false
	}
	return a.GT(b), true
}

// minecraftMinor returns the minor release of a "1.x" or "1.x.y" game version.
func minecraftMinor(v string) (int, bool) {
	parts := strings.Split(v, ".")
	if len(parts) < 2 || parts[0] != "1" {
		return 0, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return minor, true
}
