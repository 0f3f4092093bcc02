package rules

import (
	"regexp"
	"slices"
	"strings"

	"github.com/mskrss/background-pingu/internal/facts"
)

const (
	fabricInstallHint = "Type `!!fabric` for a guide on how to install fabric."
	fabricUpdateHint  = "Type `!!fabric` for instructions on how to do it."
)

// speedRunIGTVersionPattern pulls "13.2" out of "SpeedRunIGT-13.2+1.16.1.jar"
// and "SpeedRunIGT+13.2.jar".
var speedRunIGTVersionPattern = regexp.MustCompile(`[-+](\d+(?:\.\d+)?)(?:\+|\.jar$)`)

// notUsingFabric cross-references the modloader with the mod tier. The more
// the mods depend on Fabric, the more severe a missing or wrong loader is.
func notUsingFabric(in *Input) *Message {
	f := in.Facts
	if f.Modloader == nil {
		return nil
	}
	tier := f.ModsTier
	switch *f.Modloader {
	case facts.Forge:
		if tier <= facts.GenericMods {
			return warning("Note that using Forge isn't allowed for speedrunning.")
		}
		return critical("You seem to be using Fabric mods, but you have Forge installed. %s", fabricInstallHint)
	case facts.Quilt:
		if tier == facts.CompetitiveMods {
			return critical("You're using Quilt, which is not allowed for speedrunning. %s", fabricInstallHint)
		}
		return warning("Note that using Quilt isn't allowed for speedrunning. %s", fabricInstallHint)
	case facts.Vanilla:
		switch tier {
		case facts.CompetitiveMods:
			return critical("You don't have Fabric installed, while all MCSR mods require it. %s", fabricInstallHint)
		case facts.LoaderMods:
			return critical("The mods you're using require having Fabric installed. %s", fabricInstallHint)
		case facts.GenericMods:
			return warning("You don't seem to be using a modloader. %s", fabricInstallHint)
		}
	}
	return nil
}

func shouldUsePrism(in *Input) *Message {
	f := in.Facts
	if !f.LauncherIs(facts.MultiMC) || !f.OSIs(facts.MacOS) {
		return nil
	}
	return warning("If you use M1 or M2, it is recommended to use Prism Launcher instead of MultiMC. "+
		"You can check out this guide for how to set up speedrunning on a Mac: <%s>.", in.Catalog.Links.MacSetupVideo)
}

// speedRunIGTLoaderIncompatibility flags duplicate SpeedRunIGT jars and old
// SpeedRunIGT builds running on a loader they cannot start on.
func speedRunIGTLoaderIncompatibility(in *Input) *Message {
	f := in.Facts
	var igt []string
	for _, m := range f.Mods {
		if strings.Contains(m, "SpeedRunIGT") {
			igt = append(igt, m)
		}
	}
	if len(igt) > 1 {
		return warning("You have several versions of SpeedRunIGT installed. You should delete the older ones.")
	}
	if len(igt) == 0 || f.FabricLoaderVersion == nil {
		return nil
	}

	m := speedRunIGTVersionPattern.FindStringSubmatch(igt[0])
	if m == nil {
		return nil
	}
	limits := in.Catalog.Fabric
	old, ok := versionBelow(m[1], limits.SpeedRunIGTMin)
	if !ok || !old {
		return nil
	}
	newLoader, ok := versionAbove(*f.FabricLoaderVersion, limits.SpeedRunIGTIncompatibleAbove)
	if !ok || !newLoader {
		return nil
	}

	msg := critical("You're using an old version of SpeedRunIGT that is incompatible with Fabric Loader %s+. "+
		"You should delete the version of SpeedrunIGT you have and download the latest one from <https://redlime.github.io/SpeedRunIGT/>.",
		firstBroken(limits.Broken, limits.SpeedRunIGTIncompatibleAbove))
	if facts.Str(f.MinecraftVersion) != "1.16.1" {
		msg.Text += "\n*Alternatively, you can use Fabric Loader " + limits.SpeedRunIGTIncompatibleAbove + ".*"
	}
	return msg
}

// firstBroken names the first loader release past the compatible one.
func firstBroken(broken []string, fallback string) string {
	if len(broken) > 0 {
		return broken[0]
	}
	return fallback
}

// outdatedFabricLoader grades the loader version against the age thresholds,
// then checks the known broken releases.
func outdatedFabricLoader(in *Input) *Message {
	f := in.Facts
	if f.FabricLoaderVersion == nil {
		return nil
	}
	v := *f.FabricLoaderVersion
	limits := in.Catalog.Fabric

	if below, ok := versionBelow(v, limits.ReallyOldBelow); ok && below {
		return critical("You're using a really old version of Fabric Loader. You should update it. %s", fabricUpdateHint)
	}
	if below, ok := versionBelow(v, limits.OldBelow); ok && below {
		sev := Major
		if f.HasModContaining("mcsrranked") {
			sev = Critical
		}
		return newMessage(sev, "You're using an old version of Fabric Loader. You should update it. %s", fabricUpdateHint)
	}
	if below, ok := versionBelow(v, limits.SomewhatOldBelow); ok && below {
		return warning("You're using a somewhat old version of Fabric Loader, you might want to update it.")
	}
	if slices.Contains(limits.Broken, v) {
		return critical("You're using a completely broken version of Fabric Loader. You should update it. %s", fabricUpdateHint)
	}
	return nil
}

func needFabricAPI(in *Input) *Message {
	if !strings.Contains(in.Log, "requires any version of fabric, which is missing!") {
		return nil
	}
	return critical("You're using a mod that requires Fabric API. It is a mod that is separate to Fabric loader. " +
		"You can download it here: <https://modrinth.com/mod/fabric-api>.")
}

// disallowedFabricAPI leaves Ranked instances to the whitelist rule.
func disallowedFabricAPI(in *Input) *Message {
	f := in.Facts
	if f.ModsTier != facts.CompetitiveMods || !f.HasModContaining("fabric-api") || f.HasModContaining("mcsrranked") {
		return nil
	}
	return major("You're using Fabric API, which is not allowed for speedrunning. Delete it from your `mods` folder.")
}
