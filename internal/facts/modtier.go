package facts

import "github.com/mskrss/background-pingu/internal/catalog"

// ModsTier is an ordinal classification of the installed mod set. Higher
// tiers are more specific; rules compare tiers with < and >=.
type ModsTier int

const (
	// NoMods means the log lists no mods.
	NoMods ModsTier = iota
	// GenericMods means mods exist but none is loader-only or competitive.
	GenericMods
	// LoaderMods means at least one mod requires a mod loader.
	LoaderMods
	// CompetitiveMods means at least one speedrunning-ruleset mod is present.
	CompetitiveMods
)

func (t ModsTier) String() string {
	switch t {
	case NoMods:
		return "none"
	case GenericMods:
		return "generic"
	case LoaderMods:
		return "loader"
	case CompetitiveMods:
		return "competitive"
	default:
		return "unknown"
	}
}

// ClassifyMods assigns the highest matching tier. The competitive set is
// checked before the loader set: a log with both is competitive.
func ClassifyMods(mods []string, cat *catalog.Catalog) ModsTier {
	if len(mods) == 0 {
		return NoMods
	}
	if anyModMatches(mods, cat.Mods.Competitive) {
		return CompetitiveMods
	}
	if anyModMatches(mods, cat.Mods.Loader) {
		return LoaderMods
	}
	return GenericMods
}

func anyModMatches(mods, fragments []string) bool {
	for _, m := range mods {
		if catalog.ContainsAny(m, fragments) {
			return true
		}
	}
	return false
}
