// Package catalog holds the read-only data the diagnostic rules consult: mod
// name sets, version thresholds, memory limits and help links.
//
// The data ships embedded as catalog.toml and is decoded once. A catalog is
// never mutated after loading, so one value can be shared by any number of
// concurrent diagnoses.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/blang/semver"
)

//go:embed catalog.toml
var embeddedCatalog string

// Catalog is the decoded form of catalog.toml.
type Catalog struct {
	Version    int          `toml:"version"`
	Maintainer string       `toml:"maintainer"`
	Mods       ModSets      `toml:"mods"`
	Fabric     FabricLimits `toml:"fabric"`
	Memory     MemoryLimits `toml:"memory"`
	Links      Links        `toml:"links"`
}

// ModSets contains the substring sets used to classify mod file names.
type ModSets struct {
	Competitive     []string `toml:"competitive"`
	Loader          []string `toml:"loader"`
	Java17          []string `toml:"java17"`
	RankedWhitelist []string `toml:"ranked_whitelist"`
	Practice        []string `toml:"practice"`
}

// FabricLimits contains Fabric Loader and SpeedRunIGT version boundaries.
type FabricLimits struct {
	ReallyOldBelow               string   `toml:"really_old_below"`
	OldBelow                     string   `toml:"old_below"`
	SomewhatOldBelow             string   `toml:"somewhat_old_below"`
	Broken                       []string `toml:"broken"`
	SpeedRunIGTMin               string   `toml:"speedrunigt_min"`
	SpeedRunIGTIncompatibleAbove string   `toml:"speedrunigt_incompatible_above"`
}

// MemoryLimits contains -Xmx thresholds in megabytes.
type MemoryLimits struct {
	CrashBelow            int `toml:"crash_below"`
	LikelyBelow           int `toml:"likely_below"`
	MaybeBelow            int `toml:"maybe_below"`
	ShenandoahCrashBelow  int `toml:"shenandoah_crash_below"`
	ShenandoahLikelyBelow int `toml:"shenandoah_likely_below"`
	ShenandoahMaybeBelow  int `toml:"shenandoah_maybe_below"`
	WayTooMuchAbove       int `toml:"way_too_much_above"`
	TooMuchAbove          int `toml:"too_much_above"`
	MaybeTooMuchAbove     int `toml:"maybe_too_much_above"`
}

// LowThresholds returns the crash, likely and maybe "too little RAM" limits,
// picking the Shenandoah variants when that collector is in use.
func (m MemoryLimits) LowThresholds(shenandoah bool) (crash, likely, maybe int) {
	if shenandoah {
		return m.ShenandoahCrashBelow, m.ShenandoahLikelyBelow, m.ShenandoahMaybeBelow
	}
	return m.CrashBelow, m.LikelyBelow, m.MaybeBelow
}

// Links contains help documents referenced by messages.
type Links struct {
	JavaGuide       string `toml:"java_guide"`
	PrismJavaGuide  string `toml:"prism_java_guide"`
	LowRAMGuide     string `toml:"low_ram_guide"`
	HighRAMGuide    string `toml:"high_ram_guide"`
	MemoryLeakGuide string `toml:"memory_leak_guide"`
	MacSetupVideo   string `toml:"mac_setup_video"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which can only happen through a broken build.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes and validates catalog TOML.
func Parse(data string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog override from disk.
func Load(path string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks that every set is present and every version threshold parses.
func (c *Catalog) Validate() error {
	if c.Version <= 0 {
		return fmt.Errorf("catalog version must be positive, got %d", c.Version)
	}
	sets := map[string][]string{
		"mods.competitive":      c.Mods.Competitive,
		"mods.loader":           c.Mods.Loader,
		"mods.java17":           c.Mods.Java17,
		"mods.ranked_whitelist": c.Mods.RankedWhitelist,
		"mods.practice":         c.Mods.Practice,
	}
	for name, set := range sets {
		if len(set) == 0 {
			return fmt.Errorf("catalog set %s is empty", name)
		}
	}

	versions := append([]string{
		c.Fabric.ReallyOldBelow,
		c.Fabric.OldBelow,
		c.Fabric.SomewhatOldBelow,
		c.Fabric.SpeedRunIGTMin,
		c.Fabric.SpeedRunIGTIncompatibleAbove,
	}, c.Fabric.Broken...)
	for _, v := range versions {
		if _, err := semver.ParseTolerant(v); err != nil {
			return fmt.Errorf("catalog version threshold %q: %w", v, err)
		}
	}
	return nil
}

// ContainsAny reports whether name contains any of the fragments.
// Matching is case-sensitive.
func ContainsAny(name string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// AnyContains reports whether any of the names contains fragment.
func AnyContains(names []string, fragment string) bool {
	for _, n := range names {
		if strings.Contains(n, fragment) {
			return true
		}
	}
	return false
}
